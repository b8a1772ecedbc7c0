package neemquery

import (
	entsql "entgo.io/ent/dialect/sql"
)

// Physical table names of the relational episode store. Triple tables
// carry subject/object columns named after their RDF roles plus a
// neem_id column scoping every row to one episode.
const (
	TableTf                   = "tf"
	TableTfHeader             = "tf_header"
	TableTfTransform          = "tf_transform"
	TableTranslation          = "transform_translation"
	TableRotation             = "transform_rotation"
	TableExecutesTask         = "dul_executesTask"
	TableHasParticipant       = "dul_hasParticipant"
	TableHasTimeInterval      = "dul_hasTimeInterval"
	TableIntervalBegin        = "soma_hasIntervalBegin"
	TableIntervalEnd          = "soma_hasIntervalEnd"
	TableRdfType              = "rdf_type"
	TableHasConstituent       = "dul_hasConstituent"
	TableHasParameter         = "dul_hasParameter"
	TableClassify             = "dul_classifies"
	TableIsPerformedBy        = "soma_isPerformedBy"
	TableHasBaseLink          = "urdf_hasBaseLink"
	TableHasShape             = "soma_hasShape"
	TableHasRegion            = "dul_hasRegion"
	TableHasFilePath          = "soma_hasFilePath"
	TableNeems                = "neems"
	TableEnvironmentIndex     = "neems_environment_index"
)

// schema holds one aliased descriptor per logical table role. Several
// roles share a physical table: every *_type table is an alias of
// rdf_type, subtasks alias dul_executesTask, and the performer tf chain
// aliases the participant one. Descriptors are built against a dialect
// so identifier quoting matches the connection.
type schema struct {
	tf          *entsql.SelectTable
	tfHeader    *entsql.SelectTable
	tfTransform *entsql.SelectTable
	translation *entsql.SelectTable
	rotation    *entsql.SelectTable

	executesTask    *entsql.SelectTable
	hasParticipant  *entsql.SelectTable
	hasTimeInterval *entsql.SelectTable
	intervalBegin   *entsql.SelectTable
	intervalEnd     *entsql.SelectTable

	taskType        *entsql.SelectTable
	participantType *entsql.SelectTable
	performerType   *entsql.SelectTable
	subtaskType     *entsql.SelectTable
	parameterType   *entsql.SelectTable

	hasConstituent *entsql.SelectTable
	subtask        *entsql.SelectTable

	hasParameter      *entsql.SelectTable
	parameterCategory *entsql.SelectTable
	classifies        *entsql.SelectTable

	isPerformedBy *entsql.SelectTable
	hasBaseLink   *entsql.SelectTable

	hasShape    *entsql.SelectTable
	hasRegion   *entsql.SelectTable
	hasFilePath *entsql.SelectTable

	neems            *entsql.SelectTable
	environmentIndex *entsql.SelectTable
}

func newSchema(b *entsql.DialectBuilder) *schema {
	return &schema{
		tf:          b.Table(TableTf),
		tfHeader:    b.Table(TableTfHeader),
		tfTransform: b.Table(TableTfTransform),
		translation: b.Table(TableTranslation),
		rotation:    b.Table(TableRotation),

		executesTask:    b.Table(TableExecutesTask),
		hasParticipant:  b.Table(TableHasParticipant),
		hasTimeInterval: b.Table(TableHasTimeInterval),
		intervalBegin:   b.Table(TableIntervalBegin),
		intervalEnd:     b.Table(TableIntervalEnd),

		taskType:        b.Table(TableRdfType).As("task_type"),
		participantType: b.Table(TableRdfType).As("participant_type"),
		performerType:   b.Table(TableRdfType).As("performer_type"),
		subtaskType:     b.Table(TableRdfType).As("subtask_type"),
		parameterType:   b.Table(TableRdfType).As("parameter_type"),

		hasConstituent: b.Table(TableHasConstituent),
		subtask:        b.Table(TableExecutesTask).As("subtask"),

		hasParameter:      b.Table(TableHasParameter),
		parameterCategory: b.Table(TableClassify).As("parameter_category"),
		classifies:        b.Table(TableClassify),

		isPerformedBy: b.Table(TableIsPerformedBy),
		hasBaseLink:   b.Table(TableHasBaseLink),

		hasShape:    b.Table(TableHasShape),
		hasRegion:   b.Table(TableHasRegion),
		hasFilePath: b.Table(TableHasFilePath),

		neems:            b.Table(TableNeems),
		environmentIndex: b.Table(TableEnvironmentIndex),
	}
}
