// AngelaMos | 2026
// service.go

package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/subscription"
)

var (
	ErrProfileExists  = errors.New("student profile already exists")
	ErrRelationExists = errors.New("parent-student relation already exists")
	ErrNotStudent     = errors.New("user is not a student")
	ErrNotParent      = errors.New("user is not a parent")
	ErrSelfRelation   = errors.New("parent and student must differ")
)

// RoleChecker reports the role assigned to a user. Satisfied by the
// user service.
type RoleChecker interface {
	RoleTypeOf(ctx context.Context, userID string) (subscription.RoleType, error)
}

type Service struct {
	repo  Repository
	roles RoleChecker
}

func NewService(repo Repository, roles RoleChecker) *Service {
	return &Service{repo: repo, roles: roles}
}

func (s *Service) CreateProfile(
	ctx context.Context,
	req CreateProfileRequest,
) (*ProfileResponse, error) {
	if err := s.requireRole(ctx, req.UserID, subscription.RoleStudent, ErrNotStudent); err != nil {
		return nil, err
	}

	profile := &StudentProfile{
		ID:                   uuid.New().String(),
		UserID:               req.UserID,
		GradeLevel:           req.GradeLevel,
		SchoolName:           req.SchoolName,
		TargetSchool:         req.TargetSchool,
		AvailableStudyTimes:  req.AvailableStudyTimes,
		SchoolLectureProgram: req.SchoolLectureProgram,
	}

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrProfileExists
		}
		return nil, err
	}

	resp := ToProfileResponse(profile)
	return &resp, nil
}

func (s *Service) GetProfile(
	ctx context.Context,
	userID string,
) (*ProfileResponse, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToProfileResponse(profile)
	return &resp, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*ProfileResponse, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.GradeLevel != nil {
		profile.GradeLevel = req.GradeLevel
	}
	if req.SchoolName != nil {
		profile.SchoolName = req.SchoolName
	}
	if req.TargetSchool != nil {
		profile.TargetSchool = req.TargetSchool
	}
	if req.AvailableStudyTimes != nil {
		profile.AvailableStudyTimes = req.AvailableStudyTimes
	}
	if req.SchoolLectureProgram != nil {
		profile.SchoolLectureProgram = req.SchoolLectureProgram
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	resp := ToProfileResponse(profile)
	return &resp, nil
}

// CreateRelation links a parent to a student after checking both ends
// actually carry those roles.
func (s *Service) CreateRelation(
	ctx context.Context,
	req CreateRelationRequest,
) (*RelationResponse, error) {
	if req.ParentID == req.StudentID {
		return nil, ErrSelfRelation
	}

	if err := s.requireRole(ctx, req.ParentID, subscription.RoleParent, ErrNotParent); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, req.StudentID, subscription.RoleStudent, ErrNotStudent); err != nil {
		return nil, err
	}

	rel := &ParentStudentRelation{
		ID:        uuid.New().String(),
		ParentID:  req.ParentID,
		StudentID: req.StudentID,
	}

	if err := s.repo.CreateRelation(ctx, rel); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrRelationExists
		}
		return nil, err
	}

	resp := ToRelationResponse(rel)
	return &resp, nil
}

func (s *Service) ListStudentsOfParent(
	ctx context.Context,
	parentID string,
) (*RelationListResponse, error) {
	relations, err := s.repo.ListRelationsByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	return toRelationList(relations), nil
}

func (s *Service) ListParentsOfStudent(
	ctx context.Context,
	studentID string,
) (*RelationListResponse, error) {
	relations, err := s.repo.ListRelationsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return toRelationList(relations), nil
}

func (s *Service) DeleteRelation(ctx context.Context, id string) error {
	return s.repo.DeleteRelation(ctx, id)
}

func (s *Service) requireRole(
	ctx context.Context,
	userID string,
	want subscription.RoleType,
	mismatch error,
) error {
	role, err := s.roles.RoleTypeOf(ctx, userID)
	if err != nil {
		return fmt.Errorf("check role: %w", err)
	}

	if role != want {
		return mismatch
	}

	return nil
}

func toRelationList(relations []ParentStudentRelation) *RelationListResponse {
	responses := make([]RelationResponse, 0, len(relations))
	for i := range relations {
		responses = append(responses, ToRelationResponse(&relations[i]))
	}

	return &RelationListResponse{
		Relations: responses,
		Total:     len(responses),
	}
}
