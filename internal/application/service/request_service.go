package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/port"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// ErrInvalidRequest is returned for request input that fails validation
var ErrInvalidRequest = errors.New("invalid request")

// CreateRequestInput carries the fields an applicant submits
type CreateRequestInput struct {
	Title       string
	Description string
	RequestType entity.RequestType
	Amount      *float64
	RequesterID string
}

// RequestView is a request together with its workflow state
type RequestView struct {
	Request  *entity.Request  `json:"request"`
	Workflow *entity.Workflow `json:"workflow"`
}

// RequestService owns the request records. Workflow creation happens in the
// same transaction as request creation so the two can never diverge.
type RequestService interface {
	Create(ctx context.Context, input CreateRequestInput) (*RequestView, error)
	Get(ctx context.Context, id int64) (*RequestView, error)
	List(ctx context.Context, limit, offset int, status string) ([]*entity.Request, error)
	ListAwaitingActor(ctx context.Context, actorID string) ([]*entity.Workflow, error)
}

type requestServiceImpl struct {
	requestRepo  port.RequestRepository
	workflowRepo port.WorkflowRepository
	workflowSvc  WorkflowService
	txManager    port.TransactionManager
	logger       *zap.Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requestRepo port.RequestRepository,
	workflowRepo port.WorkflowRepository,
	workflowSvc WorkflowService,
	txManager port.TransactionManager,
	logger *zap.Logger,
) RequestService {
	return &requestServiceImpl{
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		workflowSvc:  workflowSvc,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *requestServiceImpl) Create(ctx context.Context, input CreateRequestInput) (*RequestView, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	request := &entity.Request{
		TicketNumber: newTicketNumber(),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		RequestType:  input.RequestType,
		Amount:       input.Amount,
		RequesterID:  input.RequesterID,
		Status:       entity.RequestStatusUnderReview,
	}

	var workflow *entity.Workflow
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, request); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		w, err := s.workflowSvc.Initialize(txCtx, request.ID)
		if err != nil {
			return fmt.Errorf("initialize workflow: %w", err)
		}
		workflow = w
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create request",
			zap.String("requester_id", input.RequesterID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Request created",
		zap.Int64("id", request.ID),
		zap.String("ticket_number", request.TicketNumber),
		zap.String("requester_id", request.RequesterID))

	return &RequestView{Request: request, Workflow: workflow}, nil
}

func (s *requestServiceImpl) Get(ctx context.Context, id int64) (*RequestView, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	workflow, err := s.workflowRepo.GetByRequestID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return &RequestView{Request: request, Workflow: workflow}, nil
}

func (s *requestServiceImpl) List(ctx context.Context, limit, offset int, status string) ([]*entity.Request, error) {
	requests, err := s.requestRepo.List(ctx, limit, offset, status)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

func (s *requestServiceImpl) ListAwaitingActor(ctx context.Context, actorID string) ([]*entity.Workflow, error) {
	workflows, err := s.workflowRepo.ListAwaitingActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list workflows awaiting actor: %w", err)
	}
	return workflows, nil
}

func validateCreateInput(input CreateRequestInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if !input.RequestType.IsValid() {
		return fmt.Errorf("%w: unknown request type %q", ErrInvalidRequest, input.RequestType)
	}
	if input.RequesterID == "" {
		return fmt.Errorf("%w: requester id is required", ErrInvalidRequest)
	}
	if input.Amount != nil && *input.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	return nil
}

// newTicketNumber generates a unique human-readable ticket reference,
// e.g. BGF-20260831-1a2b3c4d.
func newTicketNumber() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("BGF-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
