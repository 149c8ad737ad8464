package schema

import (
	"fmt"
	"strings"
)

// Relation is a many-to-many traversal from Source rows to Target rows
// through the Through table.
type Relation struct {
	Source    Table
	Target    Table
	Through   Table
	SourceKey string
	TargetKey string
}

var (
	// StudentCourses resolves a student's courses.
	StudentCourses = Relation{Source: Students, Target: Courses, Through: StudentsCourses, SourceKey: "student_id", TargetKey: "course_id"}
	// CourseStudents resolves a course's students.
	CourseStudents = Relation{Source: Courses, Target: Students, Through: StudentsCourses, SourceKey: "course_id", TargetKey: "student_id"}
)

// TargetsQuery selects every Target column for the source row bound to $1,
// in insertion order of the join rows.
func (r Relation) TargetsQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s j JOIN %s t ON t.id = j.%s WHERE j.%s = $1 ORDER BY j.id",
		r.Target.SelectColumns("t"), r.Through.Name, r.Target.Name, r.TargetKey, r.SourceKey)
}

// CountQuery selects the given source expressions (alias "s") plus the
// number of join rows per source row as countAlias. Sources without edges
// report zero. Grouping by the primary key lets any source column be selected.
func (r Relation) CountQuery(countAlias string, sourceExprs ...string) string {
	return fmt.Sprintf("SELECT %s, COUNT(j.id) AS %s FROM %s s LEFT JOIN %s j ON j.%s = s.id GROUP BY s.id ORDER BY s.id",
		strings.Join(sourceExprs, ", "), countAlias, r.Source.Name, r.Through.Name, r.SourceKey)
}
