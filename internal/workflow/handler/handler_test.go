package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	jwttoken "assistflow/internal/jwt_token"
	"assistflow/internal/platform/metrics"
	"assistflow/internal/ratelimit"
	verificationModels "assistflow/internal/verification/models"
	"assistflow/internal/workflow/handler/mocks"
	"assistflow/internal/workflow/service"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/audit"
	"assistflow/pkg/platform/middleware/admin"
	"assistflow/pkg/requestcontext"
	"assistflow/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const (
	testAdminToken = "reviewer-secret"
	testEmail      = "jane@example.com"
	testPassword   = "Str0ng!pass"
)

type testEnv struct {
	router  http.Handler
	service *mocks.MockService
	tokens  *jwttoken.JWTService
}

func newTestHandler(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	tokens := jwttoken.NewJWTService("test-signing-key", "assistflow", "assistflow-applicants", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(svc, tokens, testAdminToken, logger, metrics.New(prometheus.NewRegistry()))
	r := chi.NewRouter()
	h.Register(r)
	return &testEnv{router: r, service: svc, tokens: tokens}
}

func (e *testEnv) asApplicant(t *testing.T, req *http.Request, email string) *http.Request {
	t.Helper()
	token, _, err := e.tokens.IssueApplicantToken(email)
	require.NoError(t, err)
	return testutil.WithBearer(req, token)
}

func asReviewer(req *http.Request, reviewer string) *http.Request {
	req.Header.Set(admin.HeaderAdminToken, testAdminToken)
	if reviewer != "" {
		req.Header.Set(admin.HeaderReviewer, reviewer)
	}
	return req
}

func testApplicant() *applicantModels.Applicant {
	return &applicantModels.Applicant{
		Email:              testEmail,
		FirstName:          "Jane",
		LastName:           "Doe",
		DateOfBirth:        "1990-04-01",
		RegistrationNumber: "ERA1748779200000",
		LifecycleState:     applicantModels.StatePendingVerification,
		AccountStatus:      applicantModels.AccountActive,
	}
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Email:           "  Jane@Example.com ",
		FirstName:       "Jane",
		LastName:        "Doe",
		DateOfBirth:     "1990-04-01",
		City:            "Springfield",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}
}

func TestHandleRegister(t *testing.T) {
	t.Run("creates applicant and returns a usable token", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd service.RegisterCommand) (*applicantModels.Applicant, error) {
				assert.Equal(t, testEmail, cmd.Profile.Email)
				assert.Equal(t, "Springfield", cmd.Profile.Address.City)
				assert.Equal(t, testPassword, cmd.Password)
				return testApplicant(), nil
			})

		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/applicants", validRegistration()))

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[SessionResponse](t, rr)
		assert.Equal(t, "ERA1748779200000", resp.Applicant.RegistrationNumber)
		email, err := env.tokens.ValidateApplicantToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, testEmail, email)
	})

	t.Run("rejects invalid form before reaching the service", func(t *testing.T) {
		env := newTestHandler(t)
		cases := map[string]func(*RegisterRequest){
			"bad email":         func(r *RegisterRequest) { r.Email = "not-an-email" },
			"missing last name": func(r *RegisterRequest) { r.LastName = " " },
			"bad birth date":    func(r *RegisterRequest) { r.DateOfBirth = "01/04/1990" },
			"negative children": func(r *RegisterRequest) { r.NumberOfChildren = -1 },
			"weak password": func(r *RegisterRequest) {
				r.Password, r.ConfirmPassword = "password", "password"
			},
			"unconfirmed password": func(r *RegisterRequest) { r.ConfirmPassword = "Str0ng!pasS" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				req := validRegistration()
				mutate(&req)
				rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/applicants", req))
				testutil.AssertStatus(t, rr, http.StatusBadRequest)
			})
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		env := newTestHandler(t)
		rr := testutil.DoRequest(env.router, testutil.NewRequestWithBody(t, http.MethodPost, "/applicants", "{"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "an applicant with this email already exists"))

		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/applicants", validRegistration()))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeConflict))
	})
}

func TestHandleSession(t *testing.T) {
	t.Run("correct password issues a token", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().Authenticate(gomock.Any(), testEmail, testPassword).Return(testApplicant(), nil)

		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/applicants/session",
			SessionRequest{Email: testEmail, Password: testPassword}))

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "token")
	})

	t.Run("rejected credentials are unauthorized", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().Authenticate(gomock.Any(), testEmail, "wrong").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "email or password is incorrect"))

		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/applicants/session",
			SessionRequest{Email: testEmail, Password: "wrong"}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
		assert.NotContains(t, string(testutil.ReadBody(t, rr)), "token")
	})

	t.Run("missing password never reaches the service", func(t *testing.T) {
		env := newTestHandler(t)

		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/applicants/session",
			SessionRequest{Email: testEmail}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})
}

func TestApplicantRoutesRequireToken(t *testing.T) {
	env := newTestHandler(t)

	rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/me"))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))

	req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/me"), "garbage")
	rr = testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestHandleGetMe(t *testing.T) {
	env := newTestHandler(t)
	env.service.EXPECT().GetApplicant(gomock.Any(), testEmail).
		DoAndReturn(func(ctx context.Context, _ string) (*applicantModels.Applicant, error) {
			assert.Equal(t, requestcontext.ActorApplicant, requestcontext.Actor(ctx))
			return testApplicant(), nil
		})

	rr := testutil.DoRequest(env.router, env.asApplicant(t, testutil.NewRequest(t, http.MethodGet, "/me"), testEmail))

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "lifecycleState", string(applicantModels.StatePendingVerification))
}

func TestHandleSubmitCode(t *testing.T) {
	t.Run("malformed code never reaches the service", func(t *testing.T) {
		env := newTestHandler(t)
		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPost, "/me/verification/code", SubmitCodeRequest{Code: "12ab"}), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	t.Run("wrong code", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().SubmitCode(gomock.Any(), testEmail, "123456").
			Return(nil, dErrors.New(dErrors.CodeInvalidCode, "verification code is incorrect"))

		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPost, "/me/verification/code", SubmitCodeRequest{Code: " 123456 "}), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidCode))
	})

	t.Run("accepted", func(t *testing.T) {
		env := newTestHandler(t)
		verified := testApplicant()
		verified.LifecycleState = applicantModels.StateVerifiedPendingEligibility
		env.service.EXPECT().SubmitCode(gomock.Any(), testEmail, "123456").Return(verified, nil)

		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPost, "/me/verification/code", SubmitCodeRequest{Code: "123456"}), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "lifecycleState", string(applicantModels.StateVerifiedPendingEligibility))
	})
}

func TestHandleRequestResend(t *testing.T) {
	env := newTestHandler(t)
	env.service.EXPECT().RequestResend(gomock.Any(), testEmail).
		Return(&verificationModels.ResendRequest{Email: testEmail}, nil)

	req := env.asApplicant(t, testutil.NewRequest(t, http.MethodPost, "/me/verification/resend"), testEmail)
	rr := testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, rr, http.StatusAccepted)
}

func TestHandleSubmitDocument(t *testing.T) {
	upload := SubmitDocumentRequest{
		Category:    string(documentModels.CategoryID),
		Type:        "drivers_license",
		FileRef:     "blob://1",
		FileName:    "license.pdf",
		FileSize:    2048,
		ContentType: "application/pdf",
	}

	t.Run("queued", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().SubmitDocument(gomock.Any(), testEmail, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, cmd service.SubmitDocumentCommand) (*documentModels.Document, applicantModels.LifecycleState, error) {
				assert.Equal(t, documentModels.CategoryID, cmd.Upload.Category)
				return &documentModels.Document{ID: "doc-1", Email: testEmail, Status: documentModels.StatusPendingReview}, applicantModels.StateDocumentsSubmitted, nil
			})

		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPost, "/me/documents", upload), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[SubmitDocumentResponse](t, rr)
		assert.Equal(t, "doc-1", resp.Document.ID)
		assert.Equal(t, applicantModels.StateDocumentsSubmitted, resp.LifecycleState)
	})

	t.Run("type outside category", func(t *testing.T) {
		env := newTestHandler(t)
		bad := upload
		bad.Type = "utility_bills"
		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPost, "/me/documents", bad), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("not yet eligible", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().SubmitDocument(gomock.Any(), testEmail, gomock.Any()).
			Return(nil, applicantModels.LifecycleState(""), dErrors.New(dErrors.CodeInvalidState, "documents are not accepted yet"))

		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPost, "/me/documents", upload), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})
}

func TestHandleRemoveDocument(t *testing.T) {
	env := newTestHandler(t)
	env.service.EXPECT().RemoveDocument(gomock.Any(), testEmail, "doc-7").Return(nil)

	req := env.asApplicant(t, testutil.NewRequest(t, http.MethodDelete, "/me/documents/doc-7"), testEmail)
	rr := testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}

func TestBankAccountResponsesAreMasked(t *testing.T) {
	acct := &applicantModels.BankAccount{
		Email:             testEmail,
		AccountHolderName: "Jane Doe",
		BankName:          "First Bank",
		RoutingNumber:     "021000021",
		AccountNumber:     "123456789012",
		AccountType:       "checking",
	}

	t.Run("save", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().SaveBankAccount(gomock.Any(), testEmail, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, cmd service.BankAccountCommand) (*applicantModels.BankAccount, error) {
				assert.Equal(t, "123456789012", cmd.AccountNumber)
				return acct, nil
			})

		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPut, "/me/bank-account", BankAccountRequest{
			AccountHolderName: "Jane Doe",
			BankName:          "First Bank",
			RoutingNumber:     "021000021",
			AccountNumber:     "123456789012",
			AccountType:       "checking",
		}), testEmail)
		rr := testutil.DoRequest(env.router, req)

		testutil.AssertStatusOK(t, rr)
		assert.NotContains(t, string(testutil.ReadBody(t, rr)), "123456789012")
		testutil.AssertJSONContains(t, rr, "accountNumber", acct.MaskedAccountNumber())
	})

	t.Run("read", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().BankAccount(gomock.Any(), testEmail).Return(acct, nil)

		req := env.asApplicant(t, testutil.NewRequest(t, http.MethodGet, "/me/bank-account"), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusOK(t, rr)
		assert.NotContains(t, string(testutil.ReadBody(t, rr)), "123456789012")
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestHandler(t)
		req := env.asApplicant(t, testutil.NewJSONRequest(t, http.MethodPut, "/me/bank-account", BankAccountRequest{BankName: "First Bank"}), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})
}

func TestHandleApprovalNotification(t *testing.T) {
	t.Run("nothing to report", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().TakeApprovalNotification(gomock.Any(), testEmail).Return(nil, nil)

		req := env.asApplicant(t, testutil.NewRequest(t, http.MethodGet, "/me/notifications/approval"), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	t.Run("approved", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().TakeApprovalNotification(gomock.Any(), testEmail).
			Return(&applicantModels.ApprovalNotification{Email: testEmail, Amount: decimal.NewFromInt(1000)}, nil)

		req := env.asApplicant(t, testutil.NewRequest(t, http.MethodGet, "/me/notifications/approval"), testEmail)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "amount", "1000.00")
	})
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestHandler(t)

	rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/admin/dashboard"))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))

	req := env.asApplicant(t, testutil.NewRequest(t, http.MethodGet, "/admin/dashboard"), testEmail)
	rr = testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestHandleDashboard(t *testing.T) {
	env := newTestHandler(t)
	env.service.EXPECT().Dashboard(gomock.Any()).Return(&service.Dashboard{
		Stats: service.Stats{TotalUsers: 3, PendingVerifications: 1},
	}, nil)

	rr := testutil.DoRequest(env.router, asReviewer(testutil.NewRequest(t, http.MethodGet, "/admin/dashboard"), ""))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[service.Dashboard](t, rr)
	assert.Equal(t, 3, resp.Stats.TotalUsers)
}

func TestHandleIssueCode(t *testing.T) {
	env := newTestHandler(t)
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.service.EXPECT().IssueCode(gomock.Any(), testEmail).
		DoAndReturn(func(ctx context.Context, _ string) (*verificationModels.Challenge, error) {
			assert.Equal(t, requestcontext.ActorReviewer, requestcontext.Actor(ctx))
			assert.Equal(t, "alice", requestcontext.ActorID(ctx))
			return &verificationModels.Challenge{Email: testEmail, Code: "482913", IssuedAt: issuedAt}, nil
		})

	rr := testutil.DoRequest(env.router, asReviewer(testutil.NewRequest(t, http.MethodPost, "/admin/applicants/"+testEmail+"/code"), "alice"))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "code", "482913")
}

func TestHandleDecideDocument(t *testing.T) {
	t.Run("reject requires a reason", func(t *testing.T) {
		env := newTestHandler(t)
		req := asReviewer(testutil.NewJSONRequest(t, http.MethodPost, "/admin/documents/doc-1/decision", DecisionRequest{Decision: "reject"}), "")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	t.Run("unknown decision", func(t *testing.T) {
		env := newTestHandler(t)
		req := asReviewer(testutil.NewJSONRequest(t, http.MethodPost, "/admin/documents/doc-1/decision", DecisionRequest{Decision: "maybe"}), "")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("approve", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().DecideDocument(gomock.Any(), service.DecideDocumentCommand{
			DocumentID: "doc-1",
			Decision:   documentModels.DecisionApprove,
		}).Return(&documentModels.Document{ID: "doc-1", Status: documentModels.StatusApproved}, nil)

		req := asReviewer(testutil.NewJSONRequest(t, http.MethodPost, "/admin/documents/doc-1/decision", DecisionRequest{Decision: "approve"}), "")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("already decided", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().DecideDocument(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "document has already been decided"))

		req := asReviewer(testutil.NewJSONRequest(t, http.MethodPost, "/admin/documents/doc-1/decision", DecisionRequest{Decision: "approve"}), "")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeConflict))
	})
}

func TestHandleAccountAction(t *testing.T) {
	t.Run("unknown action", func(t *testing.T) {
		env := newTestHandler(t)
		req := asReviewer(testutil.NewJSONRequest(t, http.MethodPost, "/admin/applicants/"+testEmail+"/account-action", AccountActionRequest{Action: "ban"}), "")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("suspend", func(t *testing.T) {
		env := newTestHandler(t)
		suspended := testApplicant()
		suspended.AccountStatus = applicantModels.AccountSuspended
		env.service.EXPECT().ApplyAccountAction(gomock.Any(), testEmail, applicantModels.ActionSuspend, "duplicate claim").
			Return(suspended, nil)

		req := asReviewer(testutil.NewJSONRequest(t, http.MethodPost, "/admin/applicants/"+testEmail+"/account-action",
			AccountActionRequest{Action: "suspend", Reason: "duplicate claim"}), "")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "accountStatus", string(applicantModels.AccountSuspended))
	})
}

func TestHandleActivity(t *testing.T) {
	t.Run("defaults to the dashboard limit", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().Activity(gomock.Any(), service.DashboardActivityLimit).Return([]audit.Entry{}, nil)
		rr := testutil.DoRequest(env.router, asReviewer(testutil.NewRequest(t, http.MethodGet, "/admin/activity"), ""))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("zero returns everything", func(t *testing.T) {
		env := newTestHandler(t)
		env.service.EXPECT().Activity(gomock.Any(), 0).Return(nil, nil)
		rr := testutil.DoRequest(env.router, asReviewer(testutil.NewRequest(t, http.MethodGet, "/admin/activity?limit=0"), ""))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("bad limit", func(t *testing.T) {
		env := newTestHandler(t)
		rr := testutil.DoRequest(env.router, asReviewer(testutil.NewRequest(t, http.MethodGet, "/admin/activity?limit=abc"), ""))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func TestHandleExport(t *testing.T) {
	env := newTestHandler(t)
	env.service.EXPECT().Export(gomock.Any()).Return(&service.Snapshot{
		ExportedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}, nil)

	rr := testutil.DoRequest(env.router, asReviewer(testutil.NewRequest(t, http.MethodGet, "/admin/export"), ""))

	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, `attachment; filename="treasury-era-export-2025-06-01.json"`, rr.Header().Get("Content-Disposition"))
}

func TestHandleReviewQueue(t *testing.T) {
	env := newTestHandler(t)
	env.service.EXPECT().ReviewQueue(gomock.Any()).Return(nil, nil)

	rr := testutil.DoRequest(env.router, asReviewer(testutil.NewRequest(t, http.MethodGet, "/admin/queue"), ""))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"queue":[]}`, string(testutil.ReadBody(t, rr)))
}

func TestSessionIsRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	tokens := jwttoken.NewJWTService("test-signing-key", "assistflow", "assistflow-applicants", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := ratelimit.New(ratelimit.NewWindows(nil), 1, time.Minute, logger)

	r := chi.NewRouter()
	New(svc, tokens, testAdminToken, logger, nil, WithRateLimiter(limiter)).Register(r)

	svc.EXPECT().Authenticate(gomock.Any(), testEmail, "wrong").
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "email or password is incorrect")).Times(1)
	body := SessionRequest{Email: testEmail, Password: "wrong"}

	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/applicants/session", body))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	rr = testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/applicants/session", body))
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, string(dErrors.CodeTooManyRequests))
}
