// AngelaMos | 2026
// dto.go

package profile

import (
	"encoding/json"
	"time"
)

type CreateProfileRequest struct {
	UserID               string          `json:"user_id"                validate:"required,uuid"`
	GradeLevel           *string         `json:"grade_level"            validate:"omitempty,max=20"`
	SchoolName           *string         `json:"school_name"            validate:"omitempty,max=255"`
	TargetSchool         *string         `json:"target_school"          validate:"omitempty,max=255"`
	AvailableStudyTimes  json.RawMessage `json:"available_study_times"`
	SchoolLectureProgram json.RawMessage `json:"school_lecture_program"`
}

type UpdateProfileRequest struct {
	GradeLevel           *string         `json:"grade_level,omitempty"   validate:"omitempty,max=20"`
	SchoolName           *string         `json:"school_name,omitempty"   validate:"omitempty,max=255"`
	TargetSchool         *string         `json:"target_school,omitempty" validate:"omitempty,max=255"`
	AvailableStudyTimes  json.RawMessage `json:"available_study_times,omitempty"`
	SchoolLectureProgram json.RawMessage `json:"school_lecture_program,omitempty"`
}

type ProfileResponse struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	GradeLevel           *string         `json:"grade_level,omitempty"`
	SchoolName           *string         `json:"school_name,omitempty"`
	TargetSchool         *string         `json:"target_school,omitempty"`
	AvailableStudyTimes  json.RawMessage `json:"available_study_times,omitempty"`
	SchoolLectureProgram json.RawMessage `json:"school_lecture_program,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type CreateRelationRequest struct {
	ParentID  string `json:"parent_id"  validate:"required,uuid"`
	StudentID string `json:"student_id" validate:"required,uuid"`
}

type RelationResponse struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

type RelationListResponse struct {
	Relations []RelationResponse `json:"relations"`
	Total     int                `json:"total"`
}

func ToProfileResponse(p *StudentProfile) ProfileResponse {
	return ProfileResponse{
		ID:                   p.ID,
		UserID:               p.UserID,
		GradeLevel:           p.GradeLevel,
		SchoolName:           p.SchoolName,
		TargetSchool:         p.TargetSchool,
		AvailableStudyTimes:  p.AvailableStudyTimes,
		SchoolLectureProgram: p.SchoolLectureProgram,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func ToRelationResponse(rel *ParentStudentRelation) RelationResponse {
	return RelationResponse{
		ID:        rel.ID,
		ParentID:  rel.ParentID,
		StudentID: rel.StudentID,
		CreatedAt: rel.CreatedAt,
	}
}
