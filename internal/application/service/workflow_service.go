package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	domainwf "github.com/bgftrust/bgf-dashboard/internal/domain/workflow"
)

// WorkflowService is the stage transition engine. Every operation loads the
// workflow, validates the actor against the stage's recorded assignee,
// applies the transition and persists it inside one transaction. The
// precondition check and the write share the workflow's optimistic version,
// so two racing calls on the same request can never both commit.
type WorkflowService interface {
	// Initialize creates the workflow for a freshly created request and
	// auto-assigns the current head of programs, if one exists.
	Initialize(ctx context.Context, requestID int64) (*entity.Workflow, error)

	Get(ctx context.Context, requestID int64) (*entity.Workflow, error)
	History(ctx context.Context, requestID int64) ([]*entity.WorkflowHistory, error)

	SubmitHopInitialReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error)
	AssignToOfficer(ctx context.Context, requestID int64, actor entity.Actor, officerID string, officerType entity.Role) (*entity.Workflow, error)
	SubmitOfficerReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error)
	SubmitHopFinalReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error)
	AssignToDirector(ctx context.Context, requestID int64, actor entity.Actor, directorID string) (*entity.Workflow, error)
	SubmitDirectorReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error)
	SubmitExecutiveApproval(ctx context.Context, requestID int64, actor entity.Actor, approved bool, notes string) (*entity.Workflow, error)
}

type workflowServiceImpl struct {
	requestRepo  port.RequestRepository
	workflowRepo port.WorkflowRepository
	historyRepo  port.HistoryRepository
	identity     port.IdentityLookup
	notifier     port.Notifier
	txManager    port.TransactionManager
	logger       *zap.Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	requestRepo port.RequestRepository,
	workflowRepo port.WorkflowRepository,
	historyRepo port.HistoryRepository,
	identity port.IdentityLookup,
	notifier port.Notifier,
	txManager port.TransactionManager,
	logger *zap.Logger,
) WorkflowService {
	return &workflowServiceImpl{
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		historyRepo:  historyRepo,
		identity:     identity,
		notifier:     notifier,
		txManager:    txManager,
		logger:       logger,
	}
}

// pendingNote is a notification collected during a transaction and
// dispatched only after the transition has committed.
type pendingNote struct {
	userID  string
	title   string
	message string
}

func (s *workflowServiceImpl) Initialize(ctx context.Context, requestID int64) (*entity.Workflow, error) {
	var created *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.requestRepo.GetByID(txCtx, requestID)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if req == nil {
			return ErrRequestNotFound
		}

		existing, err := s.workflowRepo.GetByRequestID(txCtx, requestID)
		if err != nil {
			return fmt.Errorf("get workflow: %w", err)
		}
		if existing != nil {
			return ErrWorkflowExists
		}

		w := &entity.Workflow{
			RequestID:      requestID,
			CurrentStage:   domainwf.StageSubmission,
			SubmissionDate: time.Now(),
		}

		// A vacant head-of-programs seat is not an error; the field stays
		// null until someone holding the role exists.
		hop, err := s.identity.FindOneByRole(txCtx, entity.RoleHeadOfPrograms)
		if err != nil {
			return fmt.Errorf("resolve head of programs: %w", err)
		}
		if hop != nil {
			w.HeadOfProgramsID = &hop.ID
			pend = append(pend, pendingNote{
				userID:  hop.ID,
				title:   "New funding request",
				message: fmt.Sprintf("Request %s is awaiting your initial review.", req.TicketNumber),
			})
		}

		if err := s.workflowRepo.Create(txCtx, w); err != nil {
			return fmt.Errorf("create workflow: %w", err)
		}
		if err := s.requestRepo.UpdateStatus(txCtx, req.ID, entity.RequestStatusUnderReview); err != nil {
			return fmt.Errorf("update request status: %w", err)
		}

		history := &entity.WorkflowHistory{
			WorkflowID: w.ID,
			ActorID:    req.RequesterID,
			NewStage:   w.CurrentStage,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}

		pend = append(pend, pendingNote{
			userID:  req.RequesterID,
			title:   "Request received",
			message: fmt.Sprintf("Your request %s has been received and is under review.", req.TicketNumber),
		})

		created = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Workflow initialized",
		zap.Int64("request_id", requestID),
		zap.Int64("workflow_id", created.ID))

	s.dispatch(ctx, requestID, pend)
	return created, nil
}

func (s *workflowServiceImpl) Get(ctx context.Context, requestID int64) (*entity.Workflow, error) {
	w, err := s.workflowRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	if w == nil {
		return nil, ErrWorkflowNotFound
	}
	return w, nil
}

func (s *workflowServiceImpl) History(ctx context.Context, requestID int64) ([]*entity.WorkflowHistory, error) {
	w, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByWorkflowID(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func (s *workflowServiceImpl) SubmitHopInitialReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	const op = "submit_hop_initial_review"
	var out *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, w, machine, err := s.loadForAction(txCtx, requestID, op, domainwf.ActionSubmitHopReview)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(op, actor, w.HeadOfProgramsID, "head of programs"); err != nil {
			return err
		}

		prev := w.CurrentStage
		if err := machine.Fire(txCtx, domainwf.ActionSubmitHopReview); err != nil {
			return &InvalidStageError{Operation: op, Stage: w.CurrentStage}
		}
		now := time.Now()
		w.HopReviewDate = &now
		w.HopReviewNotes = optional(notes)
		w.CurrentStage = machine.Stage()

		if err := s.commit(txCtx, req, w, actor.ID, prev, w.HopReviewNotes, entity.RequestStatusOfficerAssignmentPending); err != nil {
			return err
		}

		pend = append(pend, pendingNote{
			userID:  req.RequesterID,
			title:   "Request progressing",
			message: fmt.Sprintf("Request %s passed initial review and is awaiting officer assignment.", req.TicketNumber),
		})
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, requestID, pend)
	return out, nil
}

func (s *workflowServiceImpl) AssignToOfficer(ctx context.Context, requestID int64, actor entity.Actor, officerID string, officerType entity.Role) (*entity.Workflow, error) {
	const op = "assign_to_officer"
	var out *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, w, machine, err := s.loadForAction(txCtx, requestID, op, domainwf.ActionAssignOfficer)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(op, actor, w.HeadOfProgramsID, "head of programs"); err != nil {
			return err
		}
		if !officerType.IsOfficer() {
			return &InvalidAssignmentError{UserID: officerID, Expected: officerType}
		}
		if err := s.requireRole(txCtx, officerID, officerType); err != nil {
			return err
		}

		prev := w.CurrentStage
		if err := machine.Fire(txCtx, domainwf.ActionAssignOfficer); err != nil {
			return &InvalidStageError{Operation: op, Stage: w.CurrentStage}
		}
		now := time.Now()
		switch officerType {
		case entity.RoleAssistantProjectOfficer:
			w.AssistantProjectOfficerID = &officerID
		case entity.RoleProjectManager:
			w.ProjectManagerID = &officerID
		}
		w.OfficerAssignmentDate = &now
		w.CurrentStage = machine.Stage()

		if err := s.commit(txCtx, req, w, actor.ID, prev, nil, entity.RequestStatusUnderOfficerReview); err != nil {
			return err
		}

		pend = append(pend,
			pendingNote{
				userID:  officerID,
				title:   "Request assigned to you",
				message: fmt.Sprintf("Request %s has been assigned to you for review.", req.TicketNumber),
			},
			pendingNote{
				userID:  req.RequesterID,
				title:   "Request progressing",
				message: fmt.Sprintf("Request %s has been assigned to an officer for review.", req.TicketNumber),
			})
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, requestID, pend)
	return out, nil
}

func (s *workflowServiceImpl) SubmitOfficerReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	const op = "submit_officer_review"
	var out *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, w, machine, err := s.loadForAction(txCtx, requestID, op, domainwf.ActionSubmitOfficerReview)
		if err != nil {
			return err
		}

		officerID, officerRole, ok := w.AssignedOfficer()
		if !ok {
			return &UnauthorizedActorError{Operation: op, ActorID: actor.ID, Reason: "no officer assigned"}
		}
		if actor.Role != officerRole || actor.ID != officerID {
			return &UnauthorizedActorError{Operation: op, ActorID: actor.ID, Reason: "actor is not the assigned officer"}
		}

		prev := w.CurrentStage
		if err := machine.Fire(txCtx, domainwf.ActionSubmitOfficerReview); err != nil {
			return &InvalidStageError{Operation: op, Stage: w.CurrentStage}
		}
		now := time.Now()
		w.OfficerReviewDate = &now
		w.OfficerReviewNotes = optional(notes)
		w.CurrentStage = machine.Stage()

		if err := s.commit(txCtx, req, w, actor.ID, prev, w.OfficerReviewNotes, entity.RequestStatusHopFinalReviewPending); err != nil {
			return err
		}

		if w.HeadOfProgramsID != nil {
			pend = append(pend, pendingNote{
				userID:  *w.HeadOfProgramsID,
				title:   "Officer review completed",
				message: fmt.Sprintf("Request %s is awaiting your final review.", req.TicketNumber),
			})
		}
		pend = append(pend, pendingNote{
			userID:  req.RequesterID,
			title:   "Request progressing",
			message: fmt.Sprintf("Officer review of request %s is complete.", req.TicketNumber),
		})
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, requestID, pend)
	return out, nil
}

func (s *workflowServiceImpl) SubmitHopFinalReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	const op = "submit_hop_final_review"
	var out *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, w, machine, err := s.loadForAction(txCtx, requestID, op, domainwf.ActionSubmitHopFinalReview)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(op, actor, w.HeadOfProgramsID, "head of programs"); err != nil {
			return err
		}

		prev := w.CurrentStage
		if err := machine.Fire(txCtx, domainwf.ActionSubmitHopFinalReview); err != nil {
			return &InvalidStageError{Operation: op, Stage: w.CurrentStage}
		}
		now := time.Now()
		w.HopFinalReviewDate = &now
		w.HopFinalReviewNotes = optional(notes)
		w.CurrentStage = machine.Stage()

		if err := s.commit(txCtx, req, w, actor.ID, prev, w.HopFinalReviewNotes, entity.RequestStatusDirectorAssignmentPending); err != nil {
			return err
		}

		pend = append(pend, pendingNote{
			userID:  req.RequesterID,
			title:   "Request progressing",
			message: fmt.Sprintf("Request %s passed final programs review.", req.TicketNumber),
		})
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, requestID, pend)
	return out, nil
}

func (s *workflowServiceImpl) AssignToDirector(ctx context.Context, requestID int64, actor entity.Actor, directorID string) (*entity.Workflow, error) {
	const op = "assign_to_director"
	var out *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, w, machine, err := s.loadForAction(txCtx, requestID, op, domainwf.ActionAssignDirector)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(op, actor, w.HeadOfProgramsID, "head of programs"); err != nil {
			return err
		}
		if err := s.requireRole(txCtx, directorID, entity.RoleDirector); err != nil {
			return err
		}

		prev := w.CurrentStage
		if err := machine.Fire(txCtx, domainwf.ActionAssignDirector); err != nil {
			return &InvalidStageError{Operation: op, Stage: w.CurrentStage}
		}
		w.DirectorID = &directorID
		w.CurrentStage = machine.Stage()

		if err := s.commit(txCtx, req, w, actor.ID, prev, nil, entity.RequestStatusUnderDirectorReview); err != nil {
			return err
		}

		pend = append(pend,
			pendingNote{
				userID:  directorID,
				title:   "Request assigned to you",
				message: fmt.Sprintf("Request %s is awaiting your review.", req.TicketNumber),
			},
			pendingNote{
				userID:  req.RequesterID,
				title:   "Request progressing",
				message: fmt.Sprintf("Request %s has been escalated to a director.", req.TicketNumber),
			})
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, requestID, pend)
	return out, nil
}

func (s *workflowServiceImpl) SubmitDirectorReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	const op = "submit_director_review"
	var out *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, w, machine, err := s.loadForAction(txCtx, requestID, op, domainwf.ActionSubmitDirectorReview)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(op, actor, w.DirectorID, "director"); err != nil {
			return err
		}

		prev := w.CurrentStage
		if err := machine.Fire(txCtx, domainwf.ActionSubmitDirectorReview); err != nil {
			return &InvalidStageError{Operation: op, Stage: w.CurrentStage}
		}
		now := time.Now()
		w.DirectorReviewDate = &now
		w.DirectorReviewNotes = optional(notes)
		w.CurrentStage = machine.Stage()

		// Executive seats are resolved when the stage is reached. A vacant
		// seat stays null; the corresponding approval can then never be
		// recorded, which is the documented single-holder simplification.
		for _, exec := range []struct {
			role  entity.Role
			field **string
		}{
			{entity.RoleCEO, &w.CEOID},
			{entity.RolePatron, &w.PatronID},
		} {
			holder, err := s.identity.FindOneByRole(txCtx, exec.role)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", exec.role, err)
			}
			if holder != nil {
				id := holder.ID
				*exec.field = &id
				pend = append(pend, pendingNote{
					userID:  id,
					title:   "Executive approval required",
					message: fmt.Sprintf("Request %s is awaiting your approval.", req.TicketNumber),
				})
			}
		}

		if err := s.commit(txCtx, req, w, actor.ID, prev, w.DirectorReviewNotes, entity.RequestStatusPendingExecutiveApproval); err != nil {
			return err
		}

		pend = append(pend, pendingNote{
			userID:  req.RequesterID,
			title:   "Request progressing",
			message: fmt.Sprintf("Request %s is awaiting executive approval.", req.TicketNumber),
		})
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, requestID, pend)
	return out, nil
}

func (s *workflowServiceImpl) SubmitExecutiveApproval(ctx context.Context, requestID int64, actor entity.Actor, approved bool, notes string) (*entity.Workflow, error) {
	const op = "submit_executive_approval"
	var out *entity.Workflow
	var pend []pendingNote

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, w, machine, err := s.loadForAction(txCtx, requestID, op, domainwf.ActionRecordExecutiveVote)
		if err != nil {
			return err
		}

		switch actor.Role {
		case entity.RoleCEO:
			if err := s.requireAssignee(op, actor, w.CEOID, "ceo"); err != nil {
				return err
			}
			w.CEOApproved = &approved
		case entity.RolePatron:
			if err := s.requireAssignee(op, actor, w.PatronID, "patron"); err != nil {
				return err
			}
			w.PatronApproved = &approved
		default:
			return &UnauthorizedActorError{Operation: op, ActorID: actor.ID, Reason: "role must be ceo or patron"}
		}

		// Completion rule: both approvals complete the request as approved;
		// a single rejection completes it immediately as rejected, regardless
		// of the other executive's recorded or pending decision.
		finalize := !approved || w.BothExecutivesApproved()

		action := domainwf.ActionRecordExecutiveVote
		status := ""
		now := time.Now()

		// Both executives share one notes field; append the second
		// decision's notes so the first's are not lost.
		var voteNotes *string
		if notes != "" {
			voteNotes = &notes
			if w.ExecutiveApprovalNotes != nil && *w.ExecutiveApprovalNotes != "" {
				joined := *w.ExecutiveApprovalNotes + "\n" + notes
				w.ExecutiveApprovalNotes = &joined
			} else {
				w.ExecutiveApprovalNotes = &notes
			}
		}
		if finalize {
			action = domainwf.ActionFinalizeRequest
			w.Completed = true
			w.ExecutiveApprovalDate = &now
			if w.BothExecutivesApproved() {
				status = entity.RequestStatusApproved
			} else {
				status = entity.RequestStatusRejected
			}
		}

		prev := w.CurrentStage
		if err := machine.Fire(txCtx, action); err != nil {
			return &InvalidStageError{Operation: op, Stage: w.CurrentStage}
		}
		w.CurrentStage = machine.Stage()

		if err := s.commit(txCtx, req, w, actor.ID, prev, voteNotes, status); err != nil {
			return err
		}

		if finalize {
			outcome := "approved"
			if status == entity.RequestStatusRejected {
				outcome = "rejected"
			}
			pend = append(pend, pendingNote{
				userID:  req.RequesterID,
				title:   "Request decision",
				message: fmt.Sprintf("Your request %s has been %s.", req.TicketNumber, outcome),
			})
		} else if other := w.OtherExecutive(actor.Role); other != nil {
			pend = append(pend, pendingNote{
				userID:  *other,
				title:   "Executive approval pending",
				message: fmt.Sprintf("Request %s still requires your decision.", req.TicketNumber),
			})
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, requestID, pend)
	return out, nil
}

// loadForAction loads the request and workflow and verifies the action is
// permitted in the current stage. Returning InvalidStageError here means a
// duplicate call after success fails loudly instead of being re-applied.
func (s *workflowServiceImpl) loadForAction(ctx context.Context, requestID int64, op string, action domainwf.Action) (*entity.Request, *entity.Workflow, domainwf.StateMachine, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, nil, nil, ErrRequestNotFound
	}

	w, err := s.workflowRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get workflow: %w", err)
	}
	if w == nil {
		return nil, nil, nil, ErrWorkflowNotFound
	}

	machine := domainwf.BuildRequestStateMachine(w.CurrentStage)
	if !machine.CanFire(action) {
		return nil, nil, nil, &InvalidStageError{Operation: op, Stage: w.CurrentStage}
	}
	return req, w, machine, nil
}

// requireAssignee verifies the actor matches a recorded assignee field.
func (s *workflowServiceImpl) requireAssignee(op string, actor entity.Actor, assignee *string, seat string) error {
	if assignee == nil {
		return &UnauthorizedActorError{Operation: op, ActorID: actor.ID, Reason: "no " + seat + " recorded on workflow"}
	}
	if *assignee != actor.ID {
		return &UnauthorizedActorError{Operation: op, ActorID: actor.ID, Reason: "actor is not the recorded " + seat}
	}
	return nil
}

// requireRole verifies an assignment target resolves to the expected role.
func (s *workflowServiceImpl) requireRole(ctx context.Context, userID string, expected entity.Role) error {
	user, err := s.identity.ResolveUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if user == nil {
		return &InvalidAssignmentError{UserID: userID, Expected: expected}
	}
	if user.Role != expected {
		return &InvalidAssignmentError{UserID: userID, Expected: expected, Actual: user.Role}
	}
	return nil
}

// commit persists the mutated workflow, mirrors the request status and
// appends the history entry. Runs inside the operation's transaction.
func (s *workflowServiceImpl) commit(ctx context.Context, req *entity.Request, w *entity.Workflow, actorID string, prev domainwf.Stage, notes *string, status string) error {
	if err := s.workflowRepo.Update(ctx, w); err != nil {
		if errors.Is(err, port.ErrVersionConflict) {
			return ErrPersistenceConflict
		}
		return fmt.Errorf("update workflow: %w", err)
	}
	if status != "" && status != req.Status {
		if err := s.requestRepo.UpdateStatus(ctx, req.ID, status); err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
		req.Status = status
	}
	history := &entity.WorkflowHistory{
		WorkflowID:    w.ID,
		ActorID:       actorID,
		PreviousStage: prev,
		NewStage:      w.CurrentStage,
		Notes:         notes,
	}
	if err := s.historyRepo.Create(ctx, history); err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return nil
}

// dispatch delivers collected notifications after commit. Failures are
// logged and never surfaced: the transition has already happened.
func (s *workflowServiceImpl) dispatch(ctx context.Context, requestID int64, notes []pendingNote) {
	for _, n := range notes {
		if n.userID == "" {
			continue
		}
		if err := s.notifier.Notify(ctx, n.userID, n.title, n.message, requestID); err != nil {
			s.logger.Warn("Notification dispatch failed",
				zap.String("user_id", n.userID),
				zap.Int64("request_id", requestID),
				zap.Error(err))
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
