// AngelaMos | 2026
// repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/classpanel/classpanel/internal/core"
)

type Repository interface {
	CreateProfile(ctx context.Context, profile *StudentProfile) error
	GetProfileByUserID(ctx context.Context, userID string) (*StudentProfile, error)
	UpdateProfile(ctx context.Context, profile *StudentProfile) error
	CreateRelation(ctx context.Context, rel *ParentStudentRelation) error
	ListRelationsByParent(
		ctx context.Context,
		parentID string,
	) ([]ParentStudentRelation, error)
	ListRelationsByStudent(
		ctx context.Context,
		studentID string,
	) ([]ParentStudentRelation, error)
	DeleteRelation(ctx context.Context, id string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const profileColumns = `
	id, user_id, grade_level, school_name, target_school,
	available_study_times, school_lecture_program, created_at, updated_at`

func (r *repository) CreateProfile(
	ctx context.Context,
	profile *StudentProfile,
) error {
	query := `
		INSERT INTO student_profiles (
			id, user_id, grade_level, school_name, target_school,
			available_study_times, school_lecture_program
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, profile, query,
		profile.ID,
		profile.UserID,
		profile.GradeLevel,
		profile.SchoolName,
		profile.TargetSchool,
		profile.AvailableStudyTimes,
		profile.SchoolLectureProgram,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create profile: %w", core.ErrDuplicateKey)
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("create profile: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

func (r *repository) GetProfileByUserID(
	ctx context.Context,
	userID string,
) (*StudentProfile, error) {
	query := `
		SELECT` + profileColumns + `
		FROM student_profiles
		WHERE user_id = $1`

	var profile StudentProfile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	profile *StudentProfile,
) error {
	query := `
		UPDATE student_profiles
		SET grade_level = $2,
			school_name = $3,
			target_school = $4,
			available_study_times = $5,
			school_lecture_program = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &profile.UpdatedAt, query,
		profile.ID,
		profile.GradeLevel,
		profile.SchoolName,
		profile.TargetSchool,
		profile.AvailableStudyTimes,
		profile.SchoolLectureProgram,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) CreateRelation(
	ctx context.Context,
	rel *ParentStudentRelation,
) error {
	query := `
		INSERT INTO parent_student_relations (
			id, parent_id, student_id
		) VALUES (
			$1, $2, $3
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &rel.CreatedAt, query,
		rel.ID,
		rel.ParentID,
		rel.StudentID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create relation: %w", core.ErrDuplicateKey)
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("create relation: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create relation: %w", err)
	}

	return nil
}

func (r *repository) ListRelationsByParent(
	ctx context.Context,
	parentID string,
) ([]ParentStudentRelation, error) {
	query := `
		SELECT id, parent_id, student_id, created_at
		FROM parent_student_relations
		WHERE parent_id = $1
		ORDER BY created_at DESC`

	var relations []ParentStudentRelation
	if err := r.db.SelectContext(ctx, &relations, query, parentID); err != nil {
		return nil, fmt.Errorf("list relations by parent: %w", err)
	}

	return relations, nil
}

func (r *repository) ListRelationsByStudent(
	ctx context.Context,
	studentID string,
) ([]ParentStudentRelation, error) {
	query := `
		SELECT id, parent_id, student_id, created_at
		FROM parent_student_relations
		WHERE student_id = $1
		ORDER BY created_at DESC`

	var relations []ParentStudentRelation
	if err := r.db.SelectContext(ctx, &relations, query, studentID); err != nil {
		return nil, fmt.Errorf("list relations by student: %w", err)
	}

	return relations, nil
}

func (r *repository) DeleteRelation(ctx context.Context, id string) error {
	query := `DELETE FROM parent_student_relations WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete relation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete relation: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete relation: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
