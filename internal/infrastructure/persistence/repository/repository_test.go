package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	domainwf "github.com/bgftrust/bgf-dashboard/internal/domain/workflow"
	"github.com/bgftrust/bgf-dashboard/internal/infrastructure/persistence/sqlite"
	"github.com/bgftrust/bgf-dashboard/pkg/database"
)

// newTestDB opens a throwaway database and runs the real migrations so the
// repositories are exercised against the schema they ship with.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations(filepath.Join("..", "..", "..", "..", "migrations")))
	return db
}

func seedUsers(t *testing.T, db *database.DB) {
	t.Helper()
	users := NewUserRepository(db.DB, zap.NewNop())
	for id, role := range map[string]entity.Role{
		"applicant-1": entity.RoleUser,
		"hop-1":       entity.RoleHeadOfPrograms,
		"apo-1":       entity.RoleAssistantProjectOfficer,
		"pm-1":        entity.RoleProjectManager,
		"dir-1":       entity.RoleDirector,
		"ceo-1":       entity.RoleCEO,
		"patron-1":    entity.RolePatron,
	} {
		require.NoError(t, users.Create(context.Background(), &entity.User{
			ID:       id,
			FullName: id,
			Email:    id + "@bgf.test",
			Role:     role,
		}))
	}
}

func seedRequest(t *testing.T, requests port.RequestRepository, ticket string) *entity.Request {
	t.Helper()
	req := &entity.Request{
		TicketNumber: ticket,
		Title:        "Test request",
		RequestType:  entity.RequestTypeOther,
		RequesterID:  "applicant-1",
		Status:       entity.RequestStatusUnderReview,
	}
	require.NoError(t, requests.Create(context.Background(), req))
	return req
}

func seedWorkflow(t *testing.T, workflows port.WorkflowRepository, requestID int64) *entity.Workflow {
	t.Helper()
	hop := "hop-1"
	w := &entity.Workflow{
		RequestID:        requestID,
		CurrentStage:     domainwf.StageSubmission,
		HeadOfProgramsID: &hop,
		SubmissionDate:   time.Now().UTC(),
	}
	require.NoError(t, workflows.Create(context.Background(), w))
	return w
}

func TestWorkflowUpdateVersionGuard(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	requests := NewRequestRepository(db.DB, zap.NewNop())
	workflows := NewWorkflowRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	req := seedRequest(t, requests, "BGF-20260831-race0001")
	seedWorkflow(t, workflows, req.ID)

	// Two callers read the same version; only the first write may land.
	first, err := workflows.GetByRequestID(ctx, req.ID)
	require.NoError(t, err)
	second, err := workflows.GetByRequestID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, first.Version, second.Version)

	first.CurrentStage = domainwf.StageHopReview
	require.NoError(t, workflows.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.CurrentStage = domainwf.StageOfficerAssignment
	err = workflows.Update(ctx, second)
	assert.ErrorIs(t, err, port.ErrVersionConflict)

	stored, err := workflows.GetByRequestID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domainwf.StageHopReview, stored.CurrentStage, "loser's write must not land")
	assert.Equal(t, int64(2), stored.Version)
}

func TestWorkflowRoundTrip(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	requests := NewRequestRepository(db.DB, zap.NewNop())
	workflows := NewWorkflowRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	req := seedRequest(t, requests, "BGF-20260831-trip0001")
	w := seedWorkflow(t, workflows, req.ID)

	apo := "apo-1"
	notes := "checked on site"
	reviewed := time.Now().UTC()
	approved := true
	w.CurrentStage = domainwf.StageOfficerReview
	w.AssistantProjectOfficerID = &apo
	w.OfficerReviewDate = &reviewed
	w.OfficerReviewNotes = &notes
	w.CEOApproved = &approved
	require.NoError(t, workflows.Update(ctx, w))

	stored, err := workflows.GetByRequestID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domainwf.StageOfficerReview, stored.CurrentStage)
	require.NotNil(t, stored.AssistantProjectOfficerID)
	assert.Equal(t, "apo-1", *stored.AssistantProjectOfficerID)
	require.NotNil(t, stored.OfficerReviewNotes)
	assert.Equal(t, "checked on site", *stored.OfficerReviewNotes)
	require.NotNil(t, stored.OfficerReviewDate)
	require.NotNil(t, stored.CEOApproved)
	assert.True(t, *stored.CEOApproved)
	assert.Nil(t, stored.PatronApproved, "unset decision stays null")
	assert.Nil(t, stored.DirectorReviewNotes)

	missing, err := workflows.GetByRequestID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListAwaitingActorSeatMapping(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	requests := NewRequestRepository(db.DB, zap.NewNop())
	workflows := NewWorkflowRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	// Fresh submission: waiting on the head of programs.
	reqA := seedRequest(t, requests, "BGF-20260831-seatA")
	seedWorkflow(t, workflows, reqA.ID)

	// Officer assigned: waiting on the officer, not the head of programs.
	reqB := seedRequest(t, requests, "BGF-20260831-seatB")
	wB := seedWorkflow(t, workflows, reqB.ID)
	apo := "apo-1"
	wB.CurrentStage = domainwf.StageOfficerAssignment
	wB.AssistantProjectOfficerID = &apo
	require.NoError(t, workflows.Update(ctx, wB))

	// Director review pending.
	reqC := seedRequest(t, requests, "BGF-20260831-seatC")
	wC := seedWorkflow(t, workflows, reqC.ID)
	dir := "dir-1"
	wC.CurrentStage = domainwf.StageDirectorReview
	wC.DirectorID = &dir
	require.NoError(t, workflows.Update(ctx, wC))

	// Executive approval pending: both seats see it.
	reqD := seedRequest(t, requests, "BGF-20260831-seatD")
	wD := seedWorkflow(t, workflows, reqD.ID)
	ceo, patron := "ceo-1", "patron-1"
	wD.CurrentStage = domainwf.StageExecutiveApproval
	wD.CEOID = &ceo
	wD.PatronID = &patron
	require.NoError(t, workflows.Update(ctx, wD))

	// Completed workflows never appear in anyone's queue.
	reqE := seedRequest(t, requests, "BGF-20260831-seatE")
	wE := seedWorkflow(t, workflows, reqE.ID)
	wE.CurrentStage = domainwf.StageCompleted
	wE.Completed = true
	require.NoError(t, workflows.Update(ctx, wE))

	byRequest := func(ws []*entity.Workflow) []int64 {
		var ids []int64
		for _, w := range ws {
			ids = append(ids, w.RequestID)
		}
		return ids
	}

	hopQueue, err := workflows.ListAwaitingActor(ctx, "hop-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{reqA.ID}, byRequest(hopQueue))

	apoQueue, err := workflows.ListAwaitingActor(ctx, "apo-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{reqB.ID}, byRequest(apoQueue))

	dirQueue, err := workflows.ListAwaitingActor(ctx, "dir-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{reqC.ID}, byRequest(dirQueue))

	ceoQueue, err := workflows.ListAwaitingActor(ctx, "ceo-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{reqD.ID}, byRequest(ceoQueue))

	patronQueue, err := workflows.ListAwaitingActor(ctx, "patron-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{reqD.ID}, byRequest(patronQueue))
}

func TestRepositoriesJoinContextTransaction(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	requests := NewRequestRepository(db.DB, zap.NewNop())
	txManager := sqlite.NewDB(db.DB, zap.NewNop())
	ctx := context.Background()

	// A failed unit of work leaves nothing behind.
	boom := errors.New("boom")
	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req := &entity.Request{
			TicketNumber: "BGF-20260831-roll0001",
			Title:        "Rolled back",
			RequestType:  entity.RequestTypeOther,
			RequesterID:  "applicant-1",
			Status:       entity.RequestStatusUnderReview,
		}
		if err := requests.Create(txCtx, req); err != nil {
			return err
		}

		// Visible through the same transaction before it fails.
		inside, err := requests.GetByID(txCtx, req.ID)
		require.NoError(t, err)
		require.NotNil(t, inside)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := requests.GetByTicketNumber(ctx, "BGF-20260831-roll0001")
	require.NoError(t, err)
	assert.Nil(t, after, "rolled back create must not be visible")

	// A nested call joins the outer transaction instead of opening its own,
	// which on sqlite would deadlock on the single writer.
	err = txManager.WithTransaction(ctx, func(outer context.Context) error {
		return txManager.WithTransaction(outer, func(inner context.Context) error {
			return requests.Create(inner, &entity.Request{
				TicketNumber: "BGF-20260831-nest0001",
				Title:        "Nested",
				RequestType:  entity.RequestTypeOther,
				RequesterID:  "applicant-1",
				Status:       entity.RequestStatusUnderReview,
			})
		})
	})
	require.NoError(t, err)

	committed, err := requests.GetByTicketNumber(ctx, "BGF-20260831-nest0001")
	require.NoError(t, err)
	require.NotNil(t, committed)
	assert.Equal(t, "Nested", committed.Title)
}
