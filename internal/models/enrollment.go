package models

// StudentCourse is one edge of the many-to-many relation between students
// and courses. The pair (StudentID, CourseID) is not unique.
type StudentCourse struct {
	ID        int64 `db:"id" json:"id"`
	StudentID int64 `db:"student_id" json:"student_id"`
	CourseID  int64 `db:"course_id" json:"course_id"`
}
