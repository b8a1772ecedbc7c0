package sqlite

// schemaDDL mirrors the episode store layout produced by the knowledge
// base converter. Transform rows reference their header and transform
// parts by integer id; triple tables carry subject/object columns named
// after their RDF roles plus a neem_id scoping each row to an episode.
var schemaDDL = []string{
	"CREATE TABLE IF NOT EXISTS `neems` (" +
		"`ID` INTEGER PRIMARY KEY, `_id` TEXT NOT NULL UNIQUE, `name` TEXT, `description` TEXT, " +
		"`image` TEXT, `url` TEXT, `created_at` TEXT, `created_by` TEXT, `visibility` INTEGER, `repo` TEXT)",

	"CREATE TABLE IF NOT EXISTS `neems_environment_index` (" +
		"`ID` INTEGER PRIMARY KEY, `neems_ID` INTEGER REFERENCES `neems`(`ID`), `environment_values` TEXT)",

	"CREATE TABLE IF NOT EXISTS `tf_header` (" +
		"`ID` INTEGER PRIMARY KEY, `seq` INTEGER, `stamp` REAL, `frame_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `transform_translation` (" +
		"`ID` INTEGER PRIMARY KEY, `x` REAL, `y` REAL, `z` REAL)",

	"CREATE TABLE IF NOT EXISTS `transform_rotation` (" +
		"`ID` INTEGER PRIMARY KEY, `x` REAL, `y` REAL, `z` REAL, `w` REAL)",

	"CREATE TABLE IF NOT EXISTS `tf_transform` (" +
		"`ID` INTEGER PRIMARY KEY, " +
		"`translation` INTEGER REFERENCES `transform_translation`(`ID`), " +
		"`rotation` INTEGER REFERENCES `transform_rotation`(`ID`))",

	"CREATE TABLE IF NOT EXISTS `tf` (" +
		"`ID` INTEGER PRIMARY KEY, `_id` TEXT, " +
		"`header` INTEGER REFERENCES `tf_header`(`ID`), " +
		"`child_frame_id` TEXT, " +
		"`transform` INTEGER REFERENCES `tf_transform`(`ID`), " +
		"`neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `rdf_type` (" +
		"`ID` INTEGER PRIMARY KEY, `s` TEXT, `o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `dul_executesTask` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Action_s` TEXT, `dul_Task_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `dul_hasParticipant` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Event_s` TEXT, `dul_Object_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `dul_hasTimeInterval` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Event_s` TEXT, `dul_TimeInterval_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `soma_hasIntervalBegin` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_TimeInterval_s` TEXT, `o` REAL, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `soma_hasIntervalEnd` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_TimeInterval_s` TEXT, `o` REAL, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `dul_hasConstituent` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Entity_s` TEXT, `dul_Entity_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `dul_hasParameter` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Concept_s` TEXT, `dul_Parameter_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `dul_classifies` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Concept_s` TEXT, `dul_Entity_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `soma_isPerformedBy` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Action_s` TEXT, `dul_Agent_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `urdf_hasBaseLink` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_PhysicalObject_s` TEXT, `urdf_Link_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `soma_hasShape` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_PhysicalObject_s` TEXT, `soma_Shape_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `dul_hasRegion` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Entity_s` TEXT, `dul_Region_o` TEXT, `neem_id` TEXT)",

	"CREATE TABLE IF NOT EXISTS `soma_hasFilePath` (" +
		"`ID` INTEGER PRIMARY KEY, `dul_Entity_s` TEXT, `o` TEXT, `neem_id` TEXT)",
}
