// Package handler exposes the applicant workflow over HTTP.
//
// Applicant routes authenticate with a bearer token issued at registration
// or by POST /applicants/session. Reviewer routes sit under /admin and
// require the shared X-Admin-Token header.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	"assistflow/internal/platform/metrics"
	"assistflow/internal/ratelimit"
	verificationModels "assistflow/internal/verification/models"
	"assistflow/internal/workflow/service"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/audit"
	"assistflow/pkg/platform/httputil"
	"assistflow/pkg/platform/middleware/admin"
	"assistflow/pkg/platform/middleware/auth"
	request "assistflow/pkg/platform/middleware/request"
	"assistflow/pkg/platform/middleware/requesttime"
	"assistflow/pkg/requestcontext"
)

// Service is the workflow surface the handler drives.
type Service interface {
	Register(ctx context.Context, cmd service.RegisterCommand) (*applicantModels.Applicant, error)
	Authenticate(ctx context.Context, addr, password string) (*applicantModels.Applicant, error)
	GetApplicant(ctx context.Context, addr string) (*applicantModels.Applicant, error)
	SubmitCode(ctx context.Context, addr, code string) (*applicantModels.Applicant, error)
	RequestResend(ctx context.Context, addr string) (*verificationModels.ResendRequest, error)
	ConfirmEligibility(ctx context.Context, addr string) (*applicantModels.Applicant, error)
	SubmitDocument(ctx context.Context, addr string, cmd service.SubmitDocumentCommand) (*documentModels.Document, applicantModels.LifecycleState, error)
	ListDocuments(ctx context.Context, addr string) ([]*documentModels.Document, error)
	RemoveDocument(ctx context.Context, addr, documentID string) error
	SaveBankAccount(ctx context.Context, addr string, cmd service.BankAccountCommand) (*applicantModels.BankAccount, error)
	BankAccount(ctx context.Context, addr string) (*applicantModels.BankAccount, error)
	TakeApprovalNotification(ctx context.Context, addr string) (*applicantModels.ApprovalNotification, error)

	IssueCode(ctx context.Context, addr string) (*verificationModels.Challenge, error)
	DecideDocument(ctx context.Context, cmd service.DecideDocumentCommand) (*documentModels.Document, error)
	ApplyAccountAction(ctx context.Context, addr string, action applicantModels.AccountAction, reason string) (*applicantModels.Applicant, error)
	Dashboard(ctx context.Context) (*service.Dashboard, error)
	ReviewQueue(ctx context.Context) ([]documentModels.QueueEntry, error)
	Activity(ctx context.Context, limit int) ([]audit.Entry, error)
	Export(ctx context.Context) (*service.Snapshot, error)
}

// Tokens issues and validates applicant bearer tokens.
type Tokens interface {
	auth.TokenValidator
	IssueApplicantToken(email string) (string, time.Time, error)
}

// Handler serves the applicant and reviewer APIs.
type Handler struct {
	service    Service
	tokens     Tokens
	adminToken string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	limiter    *ratelimit.Middleware
}

// Option configures a Handler.
type Option func(*Handler)

// WithRateLimiter throttles session and code entry per client IP.
func WithRateLimiter(l *ratelimit.Middleware) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// New creates a workflow handler. metrics may be nil.
func New(svc Service, tokens Tokens, adminToken string, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Handler {
	h := &Handler{
		service:    svc,
		tokens:     tokens,
		adminToken: adminToken,
		logger:     logger,
		metrics:    m,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the workflow routes on r.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(request.Recovery(h.logger))
	router.Use(request.RequestID)
	router.Use(request.Logger(h.logger))
	router.Use(requesttime.Middleware)
	router.Use(h.observeLatency)

	router.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Post("/applicants", h.HandleRegister)
		r.With(h.limiter.Limit("session")).Post("/applicants/session", h.HandleSession)
	})

	router.Route("/me", func(r chi.Router) {
		r.Use(auth.RequireApplicant(h.tokens, h.logger))
		r.Get("/", h.HandleGetMe)
		r.Get("/documents", h.HandleListDocuments)
		r.Delete("/documents/{id}", h.HandleRemoveDocument)
		r.Get("/bank-account", h.HandleGetBankAccount)
		r.Get("/notifications/approval", h.HandleApprovalNotification)
		r.Post("/verification/resend", h.HandleRequestResend)
		r.Post("/eligibility", h.HandleConfirmEligibility)
		r.Group(func(r chi.Router) {
			r.Use(request.ContentTypeJSON)
			r.With(h.limiter.Limit("code")).Post("/verification/code", h.HandleSubmitCode)
			r.Post("/documents", h.HandleSubmitDocument)
			r.Put("/bank-account", h.HandleSaveBankAccount)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/dashboard", h.HandleDashboard)
		r.Get("/queue", h.HandleReviewQueue)
		r.Get("/activity", h.HandleActivity)
		r.Get("/export", h.HandleExport)
		r.Post("/applicants/{email}/code", h.HandleIssueCode)
		r.Group(func(r chi.Router) {
			r.Use(request.ContentTypeJSON)
			r.Post("/documents/{id}/decision", h.HandleDecideDocument)
			r.Post("/applicants/{email}/account-action", h.HandleAccountAction)
		})
	})

	r.Mount("/", router)
}

func (h *Handler) observeLatency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = r.Method + " " + rc.RoutePattern()
		}
		h.metrics.ObserveLatency(route, time.Since(start))
	})
}

// HandleRegister creates an applicant and returns a session token.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	a, err := h.service.Register(ctx, service.RegisterCommand{Profile: req.profile(), Password: req.Password})
	if err != nil {
		h.fail(w, ctx, requestID, "failed to register applicant", err)
		return
	}
	h.writeSession(w, ctx, requestID, http.StatusCreated, a)
}

// HandleSession issues a fresh token to a registered applicant.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	a, err := h.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(w, ctx, requestID, "session rejected", err)
		return
	}
	h.writeSession(w, ctx, requestID, http.StatusOK, a)
}

func (h *Handler) writeSession(w http.ResponseWriter, ctx context.Context, requestID string, status int, a *applicantModels.Applicant) {
	token, expiresAt, err := h.tokens.IssueApplicantToken(a.Email)
	if err != nil {
		h.fail(w, ctx, requestID, "failed to issue token", err)
		return
	}
	httputil.WriteJSON(w, status, SessionResponse{Applicant: a, Token: token, ExpiresAt: expiresAt})
}

// fail logs and writes err. Client errors log at warn, the rest at error.
func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, requestID, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", requestID,
		"actor", string(requestcontext.Actor(ctx)),
	)
	httputil.WriteError(w, err)
}
