package neemquery_test

import (
	"context"
	stdsql "database/sql"

	"entgo.io/ent/dialect"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/neemquery"
)

type sqliteConn struct{ db *stdsql.DB }

func (c *sqliteConn) DB() *stdsql.DB  { return c.db }
func (c *sqliteConn) Dialect() string { return dialect.SQLite }

var episodeDDL = []string{
	"CREATE TABLE `dul_executesTask` (`ID` INTEGER PRIMARY KEY, `dul_Action_s` TEXT, `dul_Task_o` TEXT, `neem_id` TEXT)",
	"CREATE TABLE `rdf_type` (`ID` INTEGER PRIMARY KEY, `s` TEXT, `o` TEXT, `neem_id` TEXT)",
	"CREATE TABLE `dul_hasTimeInterval` (`ID` INTEGER PRIMARY KEY, `dul_Event_s` TEXT, `dul_TimeInterval_o` TEXT, `neem_id` TEXT)",
	"CREATE TABLE `soma_hasIntervalBegin` (`ID` INTEGER PRIMARY KEY, `dul_TimeInterval_s` TEXT, `o` REAL, `neem_id` TEXT)",
	"CREATE TABLE `soma_hasIntervalEnd` (`ID` INTEGER PRIMARY KEY, `dul_TimeInterval_s` TEXT, `o` REAL, `neem_id` TEXT)",
}

var _ = Describe("Query construction", func() {
	It("anchors task queries on the task execution table", func() {
		q := neemquery.New(nil).SelectFromTasks().SelectTask()
		Expect(q.String()).To(ContainSubstring("FROM `dul_executesTask`"))
		Expect(q.String()).To(ContainSubstring("`dul_executesTask`.`dul_Task_o` AS `task`"))
	})

	It("joins type tables under role aliases", func() {
		q := neemquery.New(nil).SelectFromTasks().SelectTaskType().JoinTaskTypes(false)
		s := q.String()
		Expect(s).To(ContainSubstring("JOIN `rdf_type` AS `task_type`"))
		Expect(s).To(ContainSubstring("`task_type`.`o` AS `task_type`"))
	})

	It("excludes the named individual typing from type joins", func() {
		sel := neemquery.New(nil).SelectFromTasks().JoinTaskTypes(false).Construct()
		query, args := sel.Query()
		Expect(query).To(ContainSubstring("`task_type`.`o` <> ?"))
		Expect(args).To(ContainElement("owl:NamedIndividual"))
	})

	It("renders outer joins for optional data", func() {
		s := neemquery.New(nil).SelectFromTasks().JoinTaskParticipants(true).String()
		Expect(s).To(ContainSubstring("LEFT JOIN `dul_hasParticipant`"))
	})

	It("does not join the same table twice", func() {
		q := neemquery.New(nil).SelectFromTasks().JoinTaskTypes(false).JoinTaskTypes(false)
		Expect(countOccurrences(q.String(), "JOIN `rdf_type` AS `task_type`")).To(Equal(1))
	})

	It("widens the tf window by the begin offset", func() {
		sel := neemquery.New(nil).SelectFromTasks().
			JoinTaskTimeInterval().
			JoinTfOnTimeInterval(neemquery.DefaultTfBeginOffset, 0).
			Construct()
		query, args := sel.Query()
		Expect(query).To(ContainSubstring("`tf_header`.`stamp` >= `soma_hasIntervalBegin`.`o` + ?"))
		Expect(query).To(ContainSubstring("`tf_header`.`stamp` <= `soma_hasIntervalEnd`.`o`"))
		Expect(args).To(ContainElement(neemquery.DefaultTfBeginOffset))
	})

	It("matches task types as substrings when asked to", func() {
		sel := neemquery.New(nil).SelectFromTasks().
			JoinTaskTypes(false).
			FilterByTaskTypes([]string{"Pour"}, true).
			Construct()
		query, args := sel.Query()
		Expect(query).To(ContainSubstring("LIKE"))
		Expect(args).To(ContainElement("%Pour%"))
	})

	It("quotes interval labels so they survive as aliases", func() {
		s := neemquery.New(nil).SelectFromTasks().SelectTimeColumns().String()
		Expect(s).To(ContainSubstring("AS `begin`"))
		Expect(s).To(ContainSubstring("AS `end`"))
	})

	It("applies distinct and limit", func() {
		s := neemquery.New(nil).SelectFromTasks().SelectTask().Distinct().Limit(5).String()
		Expect(s).To(ContainSubstring("DISTINCT"))
		Expect(s).To(ContainSubstring("LIMIT 5"))
	})

	It("orders previous tasks by ascending interval end", func() {
		sel := neemquery.NewInterface(nil).PrevTaskQuery(3, 42.5).Construct()
		query, args := sel.Query()
		Expect(query).To(ContainSubstring("`soma_hasIntervalBegin`.`o` < ?"))
		Expect(query).To(ContainSubstring("ORDER BY `soma_hasIntervalEnd`.`o`"))
		Expect(query).NotTo(ContainSubstring("DESC"))
		Expect(args).To(ContainElement(42.5))
	})

	It("resets accumulated state", func() {
		q := neemquery.New(nil).SelectFromTasks().SelectTask().JoinTaskTypes(false)
		q.Reset().SelectFromTasks().SelectTask()
		Expect(q.String()).NotTo(ContainSubstring("rdf_type"))
	})

	It("refuses to execute without a connection", func() {
		_, err := neemquery.New(nil).SelectFromTasks().SelectTask().Result(context.Background())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Query execution", func() {
	var (
		db   *stdsql.DB
		conn *sqliteConn
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = stdsql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		for _, stmt := range episodeDDL {
			_, err = db.Exec(stmt)
			Expect(err).NotTo(HaveOccurred())
		}
		conn = &sqliteConn{db: db}
		ctx = context.Background()

		seed := []string{
			`INSERT INTO dul_executesTask (dul_Action_s, dul_Task_o, neem_id) VALUES
				('soma:Action_1', 'soma:Task_PICK', 'ep1'),
				('soma:Action_2', 'soma:Task_POUR', 'ep1')`,
			`INSERT INTO rdf_type (s, o, neem_id) VALUES
				('soma:Task_PICK', 'soma:PickingUp', 'ep1'),
				('soma:Task_PICK', 'owl:NamedIndividual', 'ep1'),
				('soma:Task_POUR', 'soma:Pouring', 'ep1'),
				('soma:Task_POUR', 'owl:NamedIndividual', 'ep1')`,
			`INSERT INTO dul_hasTimeInterval (dul_Event_s, dul_TimeInterval_o, neem_id) VALUES
				('soma:Action_1', 'soma:Interval_1', 'ep1'),
				('soma:Action_2', 'soma:Interval_2', 'ep1')`,
			`INSERT INTO soma_hasIntervalBegin (dul_TimeInterval_s, o, neem_id) VALUES
				('soma:Interval_1', 12.0, 'ep1'),
				('soma:Interval_2', 3.0, 'ep1')`,
			`INSERT INTO soma_hasIntervalEnd (dul_TimeInterval_s, o, neem_id) VALUES
				('soma:Interval_1', 20.0, 'ep1'),
				('soma:Interval_2', 9.0, 'ep1')`,
		}
		for _, stmt := range seed {
			_, err = db.Exec(stmt)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("returns the task sequence ordered by interval begin", func() {
		res, err := neemquery.NewInterface(conn).TaskSequenceQuery().Result(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Len()).To(Equal(2))
		Expect(res.TaskTypes(false)).To(Equal([]string{"soma:Pouring", "soma:PickingUp"}))
		Expect(res.IntervalBegins()).To(Equal([]float64{3.0, 12.0}))
	})

	It("filters task types by substring", func() {
		res, err := neemquery.NewInterface(conn).TaskSequenceQuery().
			FilterByTaskTypes([]string{"Pour"}, true).
			Result(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Len()).To(Equal(1))
		Expect(res.Tasks(false)).To(Equal([]string{"soma:Task_POUR"}))
	})

	It("carries the episode id on every row", func() {
		res, err := neemquery.NewInterface(conn).TaskSequenceQuery().Result(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.EpisodeIDs(true)).To(Equal([]string{"ep1"}))
	})
})

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
