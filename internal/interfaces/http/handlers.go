package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/service"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	requestService      service.RequestService
	workflowService     service.WorkflowService
	commentService      service.CommentService
	notificationService service.NotificationService
	reportService       service.ReportService
	logger              *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	requestService service.RequestService,
	workflowService service.WorkflowService,
	commentService service.CommentService,
	notificationService service.NotificationService,
	reportService service.ReportService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		requestService:      requestService,
		workflowService:     workflowService,
		commentService:      commentService,
		notificationService: notificationService,
		reportService:       reportService,
		logger:              logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateRequestBody is the payload for POST /api/v1/requests
type CreateRequestBody struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	RequestType string   `json:"request_type" binding:"required"`
	Amount      *float64 `json:"amount"`
}

// ReviewBody is the payload for review submission endpoints
type ReviewBody struct {
	Notes string `json:"notes"`
}

// AssignOfficerBody is the payload for POST /api/v1/requests/:id/assign-officer
type AssignOfficerBody struct {
	OfficerID   string `json:"officer_id" binding:"required"`
	OfficerType string `json:"officer_type" binding:"required"`
}

// AssignDirectorBody is the payload for POST /api/v1/requests/:id/assign-director
type AssignDirectorBody struct {
	DirectorID string `json:"director_id" binding:"required"`
}

// ExecutiveApprovalBody is the payload for POST /api/v1/requests/:id/executive-approval
type ExecutiveApprovalBody struct {
	Approved *bool  `json:"approved" binding:"required"`
	Notes    string `json:"notes"`
}

// CommentBody is the payload for POST /api/v1/requests/:id/comments
type CommentBody struct {
	Text string `json:"text" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateRequest handles POST /api/v1/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	actor := actorFrom(c)
	view, err := h.requestService.Create(c.Request.Context(), service.CreateRequestInput{
		Title:       body.Title,
		Description: body.Description,
		RequestType: entity.RequestType(body.RequestType),
		Amount:      body.Amount,
		RequesterID: actor.ID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: view})
}

// ListRequests handles GET /api/v1/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	limit, offset := pagination(c)
	status := c.Query("status")

	requests, err := h.requestService.List(c.Request.Context(), limit, offset, status)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// GetRequest handles GET /api/v1/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	view, err := h.requestService.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// GetHistory handles GET /api/v1/requests/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	entries, err := h.workflowService.History(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// SubmitHopInitialReview handles POST /api/v1/requests/:id/hop-review
func (h *Handlers) SubmitHopInitialReview(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body ReviewBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body")
		return
	}

	w, err := h.workflowService.SubmitHopInitialReview(c.Request.Context(), id, actorFrom(c), body.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: w})
}

// AssignToOfficer handles POST /api/v1/requests/:id/assign-officer
func (h *Handlers) AssignToOfficer(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body AssignOfficerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	w, err := h.workflowService.AssignToOfficer(c.Request.Context(), id, actorFrom(c),
		body.OfficerID, entity.Role(body.OfficerType))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: w})
}

// SubmitOfficerReview handles POST /api/v1/requests/:id/officer-review
func (h *Handlers) SubmitOfficerReview(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body ReviewBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body")
		return
	}

	w, err := h.workflowService.SubmitOfficerReview(c.Request.Context(), id, actorFrom(c), body.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: w})
}

// SubmitHopFinalReview handles POST /api/v1/requests/:id/hop-final-review
func (h *Handlers) SubmitHopFinalReview(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body ReviewBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body")
		return
	}

	w, err := h.workflowService.SubmitHopFinalReview(c.Request.Context(), id, actorFrom(c), body.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: w})
}

// AssignToDirector handles POST /api/v1/requests/:id/assign-director
func (h *Handlers) AssignToDirector(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body AssignDirectorBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	w, err := h.workflowService.AssignToDirector(c.Request.Context(), id, actorFrom(c), body.DirectorID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: w})
}

// SubmitDirectorReview handles POST /api/v1/requests/:id/director-review
func (h *Handlers) SubmitDirectorReview(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body ReviewBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body")
		return
	}

	w, err := h.workflowService.SubmitDirectorReview(c.Request.Context(), id, actorFrom(c), body.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: w})
}

// SubmitExecutiveApproval handles POST /api/v1/requests/:id/executive-approval
func (h *Handlers) SubmitExecutiveApproval(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body ExecutiveApprovalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	w, err := h.workflowService.SubmitExecutiveApproval(c.Request.Context(), id, actorFrom(c),
		*body.Approved, body.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: w})
}

// ListComments handles GET /api/v1/requests/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListComments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: comments})
}

// AddComment handles POST /api/v1/requests/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var body CommentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), id, actorFrom(c).ID, body.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: comment})
}

// MyQueue handles GET /api/v1/queue
func (h *Handlers) MyQueue(c *gin.Context) {
	workflows, err := h.requestService.ListAwaitingActor(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: workflows})
}

// ListNotifications handles GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	limit, offset := pagination(c)

	notifications, err := h.notificationService.ListForUser(c.Request.Context(), actorFrom(c).ID, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, actorFrom(c).ID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RequestsRegister handles GET /api/v1/reports/requests
func (h *Handlers) RequestsRegister(c *gin.Context) {
	data, err := h.reportService.RequestsRegister(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="requests_register.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handlers) requestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid request id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// writeError maps service errors onto HTTP status codes. The error
// taxonomy is deliberate: stage conflicts and lost races are 409,
// wrong-actor is 403, bad assignment targets are 422.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var stageErr *service.InvalidStageError
	var actorErr *service.UnauthorizedActorError
	var assignErr *service.InvalidAssignmentError

	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrWorkflowNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.As(err, &actorErr):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.As(err, &assignErr):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.As(err, &stageErr),
		errors.Is(err, service.ErrPersistenceConflict),
		errors.Is(err, service.ErrWorkflowExists):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrEmptyComment):
		status = http.StatusBadRequest
		msg = err.Error()
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
	}

	c.JSON(status, Response{Success: false, Error: msg})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
