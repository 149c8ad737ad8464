package models

// Course represents an academic course students can be assigned to.
type Course struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CourseHeadcount is the number of association rows pointing at a course.
type CourseHeadcount struct {
	CourseID     int64  `db:"course_id" json:"course_id"`
	Name         string `db:"name" json:"name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}
