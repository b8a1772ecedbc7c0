package neem

// Column labels of the tabular query output. These are the names the query
// layer aliases its selected expressions to, and the keys the Result
// accessors read. They mirror the recorded episode schema: tf samples,
// task/participant ontology triples, time intervals and episode metadata.
const (
	ColTask                  = "task"
	ColTaskType              = "task_type"
	ColSubtask               = "subtask"
	ColSubtaskType           = "subtask_type"
	ColParticipant           = "participant"
	ColParticipantType       = "participant_type"
	ColTranslationX          = "x"
	ColTranslationY          = "y"
	ColTranslationZ          = "z"
	ColOrientationX          = "qx"
	ColOrientationY          = "qy"
	ColOrientationZ          = "qz"
	ColOrientationW          = "qw"
	ColFrameID               = "frame_id"
	ColChildFrameID          = "child_frame_id"
	ColStamp                 = "stamp"
	ColEnvironment           = "environment"
	ColEpisodeID             = "neem_id"
	ColEpisodeSQLID          = "neem_sql_id"
	ColTimeInterval          = "time_interval"
	ColIntervalBegin         = "begin"
	ColIntervalEnd           = "end"
	ColTaskParameter         = "task_parameter"
	ColTaskParameterCategory = "task_parameter_category"
	ColTaskParameterType     = "task_parameter_type"
	ColPerformer             = "is_performed_by"
	ColPerformerType         = "is_performed_by_type"
	ColObjectMeshPath        = "object_mesh_path"
	ColParticipantBaseLink   = "participant_base_link"
	ColPerformerBaseLink     = "performer_base_link"
)

// Participant- and performer-prefixed tf columns, used when both entity
// kinds are joined against the tf tables in the same query.
const (
	ColParticipantFrameID      = "participant_tf_frame_id"
	ColParticipantChildFrameID = "participant_tf_child_frame_id"
	ColParticipantStamp        = "participant_tf_stamp"
	ColParticipantTranslationX = "participant_tf_x"
	ColParticipantTranslationY = "participant_tf_y"
	ColParticipantTranslationZ = "participant_tf_z"
	ColParticipantOrientationX = "participant_tf_qx"
	ColParticipantOrientationY = "participant_tf_qy"
	ColParticipantOrientationZ = "participant_tf_qz"
	ColParticipantOrientationW = "participant_tf_qw"

	ColPerformerFrameID      = "performer_tf_frame_id"
	ColPerformerChildFrameID = "performer_tf_child_frame_id"
	ColPerformerStamp        = "performer_tf_stamp"
	ColPerformerTranslationX = "performer_tf_x"
	ColPerformerTranslationY = "performer_tf_y"
	ColPerformerTranslationZ = "performer_tf_z"
	ColPerformerOrientationX = "performer_tf_qx"
	ColPerformerOrientationY = "performer_tf_qy"
	ColPerformerOrientationZ = "performer_tf_qz"
	ColPerformerOrientationW = "performer_tf_qw"
)
