package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	domainwf "github.com/bgftrust/bgf-dashboard/internal/domain/workflow"
)

// WorkflowRepository implements port.WorkflowRepository
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) port.WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new workflow record
func (r *WorkflowRepository) Create(ctx context.Context, w *entity.Workflow) error {
	query := `
		INSERT INTO workflows (
			request_id, current_stage, head_of_programs_id, submission_date, version
		) VALUES (?, ?, ?, ?, 1)
	`

	result, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query,
		w.RequestID,
		string(w.CurrentStage),
		w.HeadOfProgramsID,
		w.SubmissionDate,
	)
	if err != nil {
		r.logger.Error("Failed to create workflow",
			zap.Int64("request_id", w.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to create workflow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	w.ID = id
	w.Version = 1
	return nil
}

// GetByRequestID retrieves the workflow for a request; returns nil when not found
func (r *WorkflowRepository) GetByRequestID(ctx context.Context, requestID int64) (*entity.Workflow, error) {
	query := selectWorkflow + ` WHERE request_id = ?`

	row := chooseExecutor(ctx, r.db).QueryRowContext(ctx, query, requestID)
	w, err := scanWorkflow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow",
			zap.Int64("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

// Update writes all mutable columns guarded by the version the caller read.
// Returns port.ErrVersionConflict when a concurrent transition won the race.
func (r *WorkflowRepository) Update(ctx context.Context, w *entity.Workflow) error {
	query := `
		UPDATE workflows SET
			current_stage = ?,
			head_of_programs_id = ?,
			assistant_project_officer_id = ?,
			project_manager_id = ?,
			director_id = ?,
			ceo_id = ?,
			patron_id = ?,
			hop_review_date = ?,
			hop_review_notes = ?,
			officer_assignment_date = ?,
			officer_review_date = ?,
			officer_review_notes = ?,
			hop_final_review_date = ?,
			hop_final_review_notes = ?,
			director_review_date = ?,
			director_review_notes = ?,
			executive_approval_date = ?,
			executive_approval_notes = ?,
			ceo_approved = ?,
			patron_approved = ?,
			completed = ?,
			version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`

	result, err := chooseExecutor(ctx, r.db).ExecContext(ctx, query,
		string(w.CurrentStage),
		w.HeadOfProgramsID,
		w.AssistantProjectOfficerID,
		w.ProjectManagerID,
		w.DirectorID,
		w.CEOID,
		w.PatronID,
		w.HopReviewDate,
		w.HopReviewNotes,
		w.OfficerAssignmentDate,
		w.OfficerReviewDate,
		w.OfficerReviewNotes,
		w.HopFinalReviewDate,
		w.HopFinalReviewNotes,
		w.DirectorReviewDate,
		w.DirectorReviewNotes,
		w.ExecutiveApprovalDate,
		w.ExecutiveApprovalNotes,
		w.CEOApproved,
		w.PatronApproved,
		w.Completed,
		w.ID,
		w.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update workflow",
			zap.Int64("id", w.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionConflict
	}

	w.Version++
	return nil
}

// ListAwaitingActor returns open workflows whose current stage is waiting
// on the given actor.
func (r *WorkflowRepository) ListAwaitingActor(ctx context.Context, actorID string) ([]*entity.Workflow, error) {
	query := selectWorkflow + `
		WHERE completed = 0 AND (
			(current_stage IN ('SUBMISSION', 'HOP_REVIEW', 'OFFICER_REVIEW', 'HOP_FINAL_REVIEW') AND head_of_programs_id = ?) OR
			(current_stage = 'OFFICER_ASSIGNMENT' AND (assistant_project_officer_id = ? OR project_manager_id = ?)) OR
			(current_stage = 'DIRECTOR_REVIEW' AND director_id = ?) OR
			(current_stage = 'EXECUTIVE_APPROVAL' AND (ceo_id = ? OR patron_id = ?))
		)
		ORDER BY updated_at DESC
	`

	rows, err := chooseExecutor(ctx, r.db).QueryContext(ctx, query,
		actorID, actorID, actorID, actorID, actorID, actorID)
	if err != nil {
		r.logger.Error("Failed to list workflows awaiting actor",
			zap.String("actor_id", actorID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*entity.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, w)
	}

	return workflows, rows.Err()
}

const selectWorkflow = `
	SELECT id, request_id, current_stage,
		head_of_programs_id, assistant_project_officer_id, project_manager_id,
		director_id, ceo_id, patron_id,
		submission_date, hop_review_date, hop_review_notes,
		officer_assignment_date, officer_review_date, officer_review_notes,
		hop_final_review_date, hop_final_review_notes,
		director_review_date, director_review_notes,
		executive_approval_date, executive_approval_notes,
		ceo_approved, patron_approved, completed, version,
		created_at, updated_at
	FROM workflows`

func scanWorkflow(row rowScanner) (*entity.Workflow, error) {
	var w entity.Workflow
	var stage string
	var hopID, apoID, pmID, directorID, ceoID, patronID sql.NullString
	var hopReviewDate, officerAssignmentDate, officerReviewDate sql.NullTime
	var hopFinalReviewDate, directorReviewDate, executiveApprovalDate sql.NullTime
	var hopReviewNotes, officerReviewNotes, hopFinalReviewNotes sql.NullString
	var directorReviewNotes, executiveApprovalNotes sql.NullString
	var ceoApproved, patronApproved sql.NullBool

	err := row.Scan(
		&w.ID,
		&w.RequestID,
		&stage,
		&hopID,
		&apoID,
		&pmID,
		&directorID,
		&ceoID,
		&patronID,
		&w.SubmissionDate,
		&hopReviewDate,
		&hopReviewNotes,
		&officerAssignmentDate,
		&officerReviewDate,
		&officerReviewNotes,
		&hopFinalReviewDate,
		&hopFinalReviewNotes,
		&directorReviewDate,
		&directorReviewNotes,
		&executiveApprovalDate,
		&executiveApprovalNotes,
		&ceoApproved,
		&patronApproved,
		&w.Completed,
		&w.Version,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	w.CurrentStage = domainwf.Stage(stage)
	w.HeadOfProgramsID = nullString(hopID)
	w.AssistantProjectOfficerID = nullString(apoID)
	w.ProjectManagerID = nullString(pmID)
	w.DirectorID = nullString(directorID)
	w.CEOID = nullString(ceoID)
	w.PatronID = nullString(patronID)
	w.HopReviewDate = nullTime(hopReviewDate)
	w.HopReviewNotes = nullString(hopReviewNotes)
	w.OfficerAssignmentDate = nullTime(officerAssignmentDate)
	w.OfficerReviewDate = nullTime(officerReviewDate)
	w.OfficerReviewNotes = nullString(officerReviewNotes)
	w.HopFinalReviewDate = nullTime(hopFinalReviewDate)
	w.HopFinalReviewNotes = nullString(hopFinalReviewNotes)
	w.DirectorReviewDate = nullTime(directorReviewDate)
	w.DirectorReviewNotes = nullString(directorReviewNotes)
	w.ExecutiveApprovalDate = nullTime(executiveApprovalDate)
	w.ExecutiveApprovalNotes = nullString(executiveApprovalNotes)
	w.CEOApproved = nullBool(ceoApproved)
	w.PatronApproved = nullBool(patronApproved)
	return &w, nil
}

func nullString(v sql.NullString) *string {
	if v.Valid {
		return &v.String
	}
	return nil
}

func nullTime(v sql.NullTime) *time.Time {
	if v.Valid {
		return &v.Time
	}
	return nil
}

func nullBool(v sql.NullBool) *bool {
	if v.Valid {
		return &v.Bool
	}
	return nil
}

// Verify interface compliance
var _ port.WorkflowRepository = (*WorkflowRepository)(nil)
