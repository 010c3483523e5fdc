package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"assistflow/internal/workflow/service"
	"assistflow/pkg/platform/httputil"
	request "assistflow/pkg/platform/middleware/request"
	"assistflow/pkg/requestcontext"
)

// HandleGetMe returns the caller's applicant record.
func (h *Handler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	a, err := h.service.GetApplicant(ctx, requestcontext.ApplicantEmail(ctx))
	if err != nil {
		h.fail(w, ctx, requestID, "failed to get applicant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

// HandleSubmitCode checks a verification code.
func (h *Handler) HandleSubmitCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	a, err := h.service.SubmitCode(ctx, requestcontext.ApplicantEmail(ctx), req.Code)
	if err != nil {
		h.fail(w, ctx, requestID, "verification code rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

// HandleRequestResend asks reviewers for a new code.
func (h *Handler) HandleRequestResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	rr, err := h.service.RequestResend(ctx, requestcontext.ApplicantEmail(ctx))
	if err != nil {
		h.fail(w, ctx, requestID, "failed to request code resend", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, rr)
}

// HandleConfirmEligibility moves a verified applicant to eligible.
func (h *Handler) HandleConfirmEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	a, err := h.service.ConfirmEligibility(ctx, requestcontext.ApplicantEmail(ctx))
	if err != nil {
		h.fail(w, ctx, requestID, "failed to confirm eligibility", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

// HandleSubmitDocument records an uploaded document and queues it for review.
func (h *Handler) HandleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	doc, state, err := h.service.SubmitDocument(ctx, requestcontext.ApplicantEmail(ctx), service.SubmitDocumentCommand{Upload: req.upload()})
	if err != nil {
		h.fail(w, ctx, requestID, "failed to submit document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, SubmitDocumentResponse{Document: doc, LifecycleState: state})
}

// HandleListDocuments lists the caller's documents.
func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	docs, err := h.service.ListDocuments(ctx, requestcontext.ApplicantEmail(ctx))
	if err != nil {
		h.fail(w, ctx, requestID, "failed to list documents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// HandleRemoveDocument withdraws a pending document.
func (h *Handler) HandleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	if err := h.service.RemoveDocument(ctx, requestcontext.ApplicantEmail(ctx), chi.URLParam(r, "id")); err != nil {
		h.fail(w, ctx, requestID, "failed to remove document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSaveBankAccount stores disbursement details for an approved applicant.
func (h *Handler) HandleSaveBankAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BankAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	acct, err := h.service.SaveBankAccount(ctx, requestcontext.ApplicantEmail(ctx), service.BankAccountCommand{
		AccountHolderName: req.AccountHolderName,
		BankName:          req.BankName,
		RoutingNumber:     req.RoutingNumber,
		AccountNumber:     req.AccountNumber,
		AccountType:       req.AccountType,
	})
	if err != nil {
		h.fail(w, ctx, requestID, "failed to save bank account", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBankAccountResponse(acct))
}

// HandleGetBankAccount returns the saved account with the number masked.
func (h *Handler) HandleGetBankAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	acct, err := h.service.BankAccount(ctx, requestcontext.ApplicantEmail(ctx))
	if err != nil {
		h.fail(w, ctx, requestID, "failed to get bank account", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBankAccountResponse(acct))
}

// HandleApprovalNotification consumes the approval signal. 204 means there
// is nothing to report.
func (h *Handler) HandleApprovalNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	n, err := h.service.TakeApprovalNotification(ctx, requestcontext.ApplicantEmail(ctx))
	if err != nil {
		h.fail(w, ctx, requestID, "failed to read approval notification", err)
		return
	}
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ApprovalResponse{
		Approved:   true,
		Amount:     n.Amount.StringFixed(2),
		ApprovedAt: n.ApprovedAt,
	})
}
