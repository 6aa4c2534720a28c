package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/service"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	domainwf "github.com/bgftrust/bgf-dashboard/internal/domain/workflow"
)

// Stub services. Each call returns the canned value or error; the HTTP
// layer under test only translates, so no state is needed.

type stubRequestService struct {
	view *service.RequestView
	err  error
}

func (s *stubRequestService) Create(ctx context.Context, input service.CreateRequestInput) (*service.RequestView, error) {
	return s.view, s.err
}

func (s *stubRequestService) Get(ctx context.Context, id int64) (*service.RequestView, error) {
	return s.view, s.err
}

func (s *stubRequestService) List(ctx context.Context, limit, offset int, status string) ([]*entity.Request, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*entity.Request{s.view.Request}, nil
}

func (s *stubRequestService) ListAwaitingActor(ctx context.Context, actorID string) ([]*entity.Workflow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*entity.Workflow{s.view.Workflow}, nil
}

type stubWorkflowService struct {
	w   *entity.Workflow
	err error
}

func (s *stubWorkflowService) Initialize(ctx context.Context, requestID int64) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) Get(ctx context.Context, requestID int64) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) History(ctx context.Context, requestID int64) ([]*entity.WorkflowHistory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*entity.WorkflowHistory{}, nil
}

func (s *stubWorkflowService) SubmitHopInitialReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) AssignToOfficer(ctx context.Context, requestID int64, actor entity.Actor, officerID string, officerType entity.Role) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) SubmitOfficerReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) SubmitHopFinalReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) AssignToDirector(ctx context.Context, requestID int64, actor entity.Actor, directorID string) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) SubmitDirectorReview(ctx context.Context, requestID int64, actor entity.Actor, notes string) (*entity.Workflow, error) {
	return s.w, s.err
}

func (s *stubWorkflowService) SubmitExecutiveApproval(ctx context.Context, requestID int64, actor entity.Actor, approved bool, notes string) (*entity.Workflow, error) {
	return s.w, s.err
}

type stubCommentService struct {
	comment *entity.Comment
	err     error
}

func (s *stubCommentService) AddComment(ctx context.Context, requestID int64, userID, text string) (*entity.Comment, error) {
	return s.comment, s.err
}

func (s *stubCommentService) ListComments(ctx context.Context, requestID int64) ([]*entity.Comment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*entity.Comment{s.comment}, nil
}

type stubNotificationService struct {
	err error
}

func (s *stubNotificationService) Notify(ctx context.Context, userID, title, message string, requestID int64) error {
	return s.err
}

func (s *stubNotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error) {
	return nil, s.err
}

func (s *stubNotificationService) MarkRead(ctx context.Context, id int64, userID string) error {
	return s.err
}

type stubReportService struct {
	data []byte
	err  error
}

func (s *stubReportService) RequestsRegister(ctx context.Context, status string) ([]byte, error) {
	return s.data, s.err
}

type stubs struct {
	requests      *stubRequestService
	workflows     *stubWorkflowService
	comments      *stubCommentService
	notifications *stubNotificationService
	reports       *stubReportService
}

func newTestServer() (*Server, *stubs) {
	hop := "hop-1"
	w := &entity.Workflow{ID: 1, RequestID: 1, CurrentStage: domainwf.StageSubmission, HeadOfProgramsID: &hop}
	st := &stubs{
		requests: &stubRequestService{view: &service.RequestView{
			Request:  &entity.Request{ID: 1, TicketNumber: "BGF-20260831-aaaa1111", Status: entity.RequestStatusUnderReview},
			Workflow: w,
		}},
		workflows:     &stubWorkflowService{w: w},
		comments:      &stubCommentService{comment: &entity.Comment{ID: 1, WorkflowID: 1, UserID: "hop-1", Text: "hi"}},
		notifications: &stubNotificationService{},
		reports:       &stubReportService{data: []byte("xlsx-bytes")},
	}
	srv := NewServer(DefaultServerConfig(),
		st.requests, st.workflows, st.comments, st.notifications, st.reports, zap.NewNop())
	return srv, st
}

func doRequest(srv *Server, method, path, body string, withActor bool) *httptest.ResponseRecorder {
	if withActor {
		return doRequestAs(srv, method, path, body, "hop-1", "head_of_programs")
	}
	return doRequestAs(srv, method, path, body, "", "")
}

func doRequestAs(srv *Server, method, path, body, actorID, actorRole string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actorID != "" {
		req.Header.Set(headerActorID, actorID)
		req.Header.Set(headerActorRole, actorRole)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer()
	rec := doRequest(srv, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActorHeadersRequired(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(srv, http.MethodGet, "/api/v1/requests/1", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/1", nil)
	req.Header.Set(headerActorID, "hop-1")
	req.Header.Set(headerActorRole, "grand_vizier")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetRequest(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(srv, http.MethodGet, "/api/v1/requests/1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	rec = doRequest(srv, http.MethodGet, "/api/v1/requests/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRequestValidatesBody(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(srv, http.MethodPost, "/api/v1/requests", `{"description":"no title"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/v1/requests",
		`{"title":"Help","request_type":"other"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTransitionEndpointWithEmptyBody(t *testing.T) {
	srv, _ := newTestServer()

	// Review notes are optional; an empty body is accepted.
	rec := doRequest(srv, http.MethodPost, "/api/v1/requests/1/hop-review", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExecutiveApprovalRequiresDecision(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequestAs(srv, http.MethodPost, "/api/v1/requests/1/executive-approval", `{"notes":"x"}`, "ceo-1", "ceo")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequestAs(srv, http.MethodPost, "/api/v1/requests/1/executive-approval", `{"approved":false}`, "ceo-1", "ceo")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransitionRoleGate(t *testing.T) {
	srv, _ := newTestServer()

	// A recognised but unrelated role is stopped at the gate, before the
	// engine's assignee check is ever reached.
	rec := doRequestAs(srv, http.MethodPost, "/api/v1/requests/1/hop-review", "", "stranger-1", "user")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequestAs(srv, http.MethodPost, "/api/v1/requests/1/executive-approval", `{"approved":true}`, "dir-1", "director")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequestAs(srv, http.MethodPost, "/api/v1/requests/1/director-review", "", "hop-1", "head_of_programs")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Either officer role passes the officer review gate.
	rec = doRequestAs(srv, http.MethodPost, "/api/v1/requests/1/officer-review", "", "pm-1", "project_manager")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequestAs(srv, http.MethodPost, "/api/v1/requests/1/officer-review", "", "apo-1", "assistant_project_officer")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", service.ErrRequestNotFound, http.StatusNotFound},
		{"workflow missing", service.ErrWorkflowNotFound, http.StatusNotFound},
		{"wrong stage", &service.InvalidStageError{Operation: "x", Stage: domainwf.StageCompleted}, http.StatusConflict},
		{"lost race", service.ErrPersistenceConflict, http.StatusConflict},
		{"wrong actor", &service.UnauthorizedActorError{Operation: "x", ActorID: "a"}, http.StatusForbidden},
		{"bad assignment", &service.InvalidAssignmentError{UserID: "u", Expected: entity.RoleDirector}, http.StatusUnprocessableEntity},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, st := newTestServer()
			st.workflows.err = tt.err

			rec := doRequest(srv, http.MethodPost, "/api/v1/requests/1/hop-review", `{"notes":"n"}`, true)
			assert.Equal(t, tt.status, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
		})
	}
}

func TestRequestsRegisterDownload(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(srv, http.MethodGet, "/api/v1/reports/requests", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "requests_register.xlsx")
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
}

func TestMyQueue(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(srv, http.MethodGet, "/api/v1/queue", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}
