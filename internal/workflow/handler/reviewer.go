package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	"assistflow/internal/workflow/service"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/httputil"
	request "assistflow/pkg/platform/middleware/request"
)

// IssueCodeResponse echoes the issued code so a reviewer can relay it by
// phone when delivery is manual.
type IssueCodeResponse struct {
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issuedAt"`
}

// HandleDashboard returns the reviewer dashboard.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	dash, err := h.service.Dashboard(ctx)
	if err != nil {
		h.fail(w, ctx, requestID, "failed to build dashboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dash)
}

// HandleReviewQueue lists documents awaiting a decision.
func (h *Handler) HandleReviewQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	entries, err := h.service.ReviewQueue(ctx)
	if err != nil {
		h.fail(w, ctx, requestID, "failed to list review queue", err)
		return
	}
	if entries == nil {
		entries = []documentModels.QueueEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"queue": entries})
}

// HandleActivity returns the newest activity entries. ?limit=0 returns all.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	limit := service.DashboardActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	entries, err := h.service.Activity(ctx, limit)
	if err != nil {
		h.fail(w, ctx, requestID, "failed to read activity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

// HandleExport downloads a snapshot of every applicant and the activity log.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	snap, err := h.service.Export(ctx)
	if err != nil {
		h.fail(w, ctx, requestID, "failed to export", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+snap.FileName()+`"`)
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// HandleIssueCode generates and delivers a verification code.
func (h *Handler) HandleIssueCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	c, err := h.service.IssueCode(ctx, chi.URLParam(r, "email"))
	if err != nil {
		h.fail(w, ctx, requestID, "failed to issue code", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, IssueCodeResponse{
		Email:    c.Email,
		Code:     c.Code,
		IssuedAt: c.IssuedAt,
	})
}

// HandleDecideDocument approves or rejects one document.
func (h *Handler) HandleDecideDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	doc, err := h.service.DecideDocument(ctx, service.DecideDocumentCommand{
		DocumentID: chi.URLParam(r, "id"),
		Decision:   documentModels.Decision(req.Decision),
		Reason:     req.Reason,
	})
	if err != nil {
		h.fail(w, ctx, requestID, "failed to decide document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandleAccountAction locks, suspends, blocks or reactivates an account.
func (h *Handler) HandleAccountAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AccountActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	a, err := h.service.ApplyAccountAction(ctx, chi.URLParam(r, "email"), applicantModels.AccountAction(req.Action), req.Reason)
	if err != nil {
		h.fail(w, ctx, requestID, "failed to apply account action", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}
