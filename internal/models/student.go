package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID             int64     `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
}

// FullName joins first and last name the way reports print them.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentCourses is a student together with the courses it is associated with.
type StudentCourses struct {
	Student Student  `json:"student"`
	Courses []Course `json:"courses"`
}
