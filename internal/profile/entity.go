// AngelaMos | 2026
// entity.go

package profile

import (
	"encoding/json"
	"time"
)

// StudentProfile carries study-planning details for a student account.
// The two JSON columns hold free-form weekly schedules.
type StudentProfile struct {
	ID                   string          `db:"id"`
	UserID               string          `db:"user_id"`
	GradeLevel           *string         `db:"grade_level"`
	SchoolName           *string         `db:"school_name"`
	TargetSchool         *string         `db:"target_school"`
	AvailableStudyTimes  json.RawMessage `db:"available_study_times"`
	SchoolLectureProgram json.RawMessage `db:"school_lecture_program"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

// ParentStudentRelation links a parent account to a student account.
// The pair is unique.
type ParentStudentRelation struct {
	ID        string    `db:"id"`
	ParentID  string    `db:"parent_id"`
	StudentID string    `db:"student_id"`
	CreatedAt time.Time `db:"created_at"`
}
