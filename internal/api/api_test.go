package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rightsquest/internal/api"
	"github.com/mcoot/rightsquest/internal/api/apierr"
	"github.com/mcoot/rightsquest/internal/api/response"
	"github.com/mcoot/rightsquest/internal/catalog"
	"github.com/mcoot/rightsquest/internal/factory"
	"github.com/mcoot/rightsquest/internal/middleware"
	"github.com/mcoot/rightsquest/internal/services/payment"
	"github.com/mcoot/rightsquest/internal/testutil"
)

const testWallet = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

// testServer wires the router over an in-memory test app
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Catalog:     app.Catalog,
		UserService: app.UserService,
		Sessions:    app.Sessions,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// connect links testWallet and returns the user id
func (ts *testServer) connect(t *testing.T) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/users/connect", map[string]string{
		"wallet_address": testWallet,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.ConnectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.User.ID
}

func testPayment() map[string]any {
	return map[string]any{
		"amount":      payment.TestAmount,
		"recipient":   payment.TestRecipient,
		"description": "Premium guide",
		"metadata":    map[string]string{"module": "dispute-resolution"},
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get(middleware.RequestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/catalog/modules", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	var modules []response.Module
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &modules))
	require.Len(t, modules, 3)
	assert.Equal(t, string(catalog.BasicsModuleID), modules[0].ID)
	assert.Equal(t, 100, modules[0].Points)
	assert.Equal(t, 15, modules[0].DurationMinutes)
	assert.Equal(t, []string{string(catalog.DisputeModuleID)}, modules[0].Unlocks)

	rr = ts.request(http.MethodGet, "/api/v1/catalog/badges", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var badges []response.Badge
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &badges))
	assert.Len(t, badges, len(catalog.DefaultBadges))
	assert.Equal(t, "bronze", badges[0].Tier)

	rr = ts.request(http.MethodGet, "/api/v1/catalog/levels", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var levels []response.Level
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &levels))
	require.Len(t, levels, 6)
	assert.Equal(t, "Rights Champion", levels[5].Title)
}

func TestConnect(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/connect", map[string]string{
		"wallet_address": "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ConnectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, testWallet, resp.User.WalletAddress)
	assert.Empty(t, resp.User.CompletedModules)
	assert.True(t, resp.Session.Connected)
	assert.Nil(t, resp.Session.LastError)

	// Same wallet, any case, is the same user
	again := ts.connect(t)
	assert.Equal(t, resp.User.ID, again)
}

func TestConnectValidation(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/connect", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/users/connect", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/users/connect", map[string]string{"wallet_address": "0x123"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidWallet, decodeError(t, rr).Code)
}

func TestUserNotFound(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/v1/users/ghost",
		"/api/v1/users/ghost/stats",
		"/api/v1/users/ghost/session",
		"/api/v1/users/ghost/modules",
		"/api/v1/users/ghost/payments",
	} {
		rr := ts.request(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Equal(t, apierr.CodeUserNotFound, decodeError(t, rr).Code, path)
	}
}

func TestGetAndDeleteUser(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)

	rr := ts.request(http.MethodGet, "/api/v1/users/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var user response.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, id, user.ID)

	rr = ts.request(http.MethodDelete, "/api/v1/users/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/users/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStartModule(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/"+id+"/modules/"+string(catalog.DisputeModuleID)+"/start", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeModuleLocked, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/users/"+id+"/modules/ghost/start", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeModuleNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/users/"+id+"/modules/"+string(catalog.BasicsModuleID)+"/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp response.StartModuleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.PointsAwarded)
	assert.False(t, resp.AlreadyCompleted)
	assert.ElementsMatch(t, []string{string(catalog.BadgeFirstModule), string(catalog.BadgeBasicsMaster)}, resp.BadgesAwarded)
	assert.Equal(t, 100, resp.User.Score)

	rr = ts.request(http.MethodPost, "/api/v1/users/"+id+"/modules/"+string(catalog.BasicsModuleID)+"/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyCompleted)
	assert.Zero(t, resp.PointsAwarded)
	assert.Equal(t, 100, resp.User.Score)
}

func TestModulesAndStats(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/"+id+"/modules/"+string(catalog.BasicsModuleID)+"/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/users/"+id+"/modules", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var modules []response.ModuleStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &modules))
	require.Len(t, modules, 3)
	assert.True(t, modules[0].Completed)
	assert.True(t, modules[1].Unlocked)
	assert.False(t, modules[1].Completed)
	assert.False(t, modules[2].Unlocked)

	rr = ts.request(http.MethodGet, "/api/v1/users/"+id+"/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats response.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 100, stats.TotalScore)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, "Learner", stats.Rank)
	assert.Equal(t, 200, stats.PointsToNextLevel)
	assert.Equal(t, 33, stats.ProgressPercent)
	assert.Equal(t, 2, stats.BadgesEarned)
	require.NotNil(t, stats.NextBadge)
	assert.NotEqual(t, string(catalog.BadgeFirstModule), stats.NextBadge.ID)
}

func TestPayment(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/"+id+"/payments", testPayment())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var outcome response.PaymentOutcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
	assert.Equal(t, "succeeded", outcome.State)
	assert.Len(t, outcome.TxRef, 66)
	assert.Equal(t, 1, outcome.Confirmations)
	assert.Nil(t, outcome.Error)

	rr = ts.request(http.MethodGet, "/api/v1/users/"+id+"/payments/"+outcome.TxRef, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var status response.PaymentStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "confirmed", status.Status)
	assert.Equal(t, outcome.TxRef, status.TxRef)

	rr = ts.request(http.MethodGet, "/api/v1/users/"+id+"/payments", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var receipts []response.Receipt
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &receipts))
	require.Len(t, receipts, 1)
	assert.Equal(t, outcome.TxRef, receipts[0].TxRef)
	assert.Equal(t, payment.TestAmount, receipts[0].Amount)
	assert.Equal(t, "Premium guide", receipts[0].Description)
}

func TestPaymentFailuresAreClassified(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)

	cases := []struct {
		name   string
		amount string
		to     string
		status int
		code   string
	}{
		{"zero amount", "0", payment.TestRecipient, http.StatusBadRequest, apierr.CodeInvalidAmount},
		{"garbage amount", "abc", payment.TestRecipient, http.StatusBadRequest, apierr.CodeInvalidAmount},
		{"short recipient", "1", "0x1234", http.StatusBadRequest, apierr.CodeInvalidRecipient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/users/"+id+"/payments", map[string]string{
				"amount":    tc.amount,
				"recipient": tc.to,
			})
			assert.Equal(t, tc.status, rr.Code)

			var outcome response.PaymentOutcome
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
			assert.Equal(t, "failed", outcome.State)
			require.NotNil(t, outcome.Error)
			assert.Equal(t, tc.code, outcome.Error.Code)
			assert.Empty(t, outcome.TxRef)
		})
	}
	assert.Zero(t, ts.app.Chain.Transactions())

	rr := ts.request(http.MethodGet, "/api/v1/users/"+id+"/session", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var state response.SessionState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.False(t, state.Loading)
	require.NotNil(t, state.LastError)
	assert.Equal(t, "pay", state.LastError.Operation)
	assert.Equal(t, "invalid_recipient", state.LastError.Kind)
}

func TestPaymentSubmissionRejected(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)
	ts.app.Chain.SetRejecter(func(_, _ payment.Address, _ []byte) error {
		return errors.New("user denied transaction signature")
	})

	rr := ts.request(http.MethodPost, "/api/v1/users/"+id+"/payments", testPayment())
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var outcome response.PaymentOutcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
	require.NotNil(t, outcome.Error)
	assert.Equal(t, apierr.CodeSubmissionFailed, outcome.Error.Code)
	assert.Equal(t, "submission_failure", outcome.Error.Kind)
}

func TestDisconnectedWallet(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/"+id+"/disconnect", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/users/"+id+"/payments", testPayment())
	assert.Equal(t, http.StatusConflict, rr.Code)
	var outcome response.PaymentOutcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
	require.NotNil(t, outcome.Error)
	assert.Equal(t, apierr.CodeNotInitialized, outcome.Error.Code)
	assert.Equal(t, "Wallet client not initialized", outcome.Error.Message)

	rr = ts.request(http.MethodGet, "/api/v1/users/"+id+"/payments/0xabc", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNotInitialized, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/users/"+id+"/payments/test", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var dry response.DryRunResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dry))
	assert.False(t, dry.Success)
	assert.False(t, dry.WalletConnected)
}

func TestPaymentDryRun(t *testing.T) {
	ts := newTestServer(t)
	id := ts.connect(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/"+id+"/payments/test", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var dry response.DryRunResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dry))
	assert.True(t, dry.Success)
	assert.True(t, dry.WalletConnected)
	assert.Equal(t, "Payment flow test completed successfully", dry.Message)
	assert.Equal(t, payment.TestAmount, dry.TestPayment.Amount)
	assert.Equal(t, int64(8453), dry.Config.ChainID)
	assert.Zero(t, ts.app.Chain.Transactions())
}

func TestErrorStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(apierr.NewInvalidRequestError("x")))
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(errors.New("boom")))

	status, code := apierr.PaymentStatus("confirmation_timeout")
	assert.Equal(t, http.StatusGatewayTimeout, status)
	assert.Equal(t, apierr.CodeConfirmationTimeout, code)

	status, code = apierr.PaymentStatus("cancelled")
	assert.Equal(t, 499, status)
	assert.Equal(t, apierr.CodePaymentCancelled, code)
}
