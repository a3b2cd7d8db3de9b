package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rightsquest/internal/api/apierr"
	"github.com/mcoot/rightsquest/internal/api/request"
	"github.com/mcoot/rightsquest/internal/api/response"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/session"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	sessions *session.Manager
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(sessions *session.Manager) *PaymentHandler {
	return &PaymentHandler{sessions: sessions}
}

// Pay handles POST /api/v1/users/{id}/payments
// The outcome is always the body; the status reflects its classification
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req request.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	outcome := sess.Pay(r.Context(), model.PaymentRequest{
		Amount:      req.Amount,
		Recipient:   req.Recipient,
		Description: req.Description,
		Metadata:    req.Metadata,
	})

	if outcome.Succeeded() {
		response.JSON(w, http.StatusOK, response.PaymentOutcomeFromModel(outcome, ""))
		return
	}
	status, code := apierr.PaymentStatus(outcome.Error.Kind)
	response.JSON(w, status, response.PaymentOutcomeFromModel(outcome, code))
}

// Test handles POST /api/v1/users/{id}/payments/test
func (h *PaymentHandler) Test(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	result := sess.TestPaymentFlow(r.Context())
	response.JSON(w, http.StatusOK, response.DryRunResultFromModel(result))
}

// List handles GET /api/v1/users/{id}/payments
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	receipts, err := sess.Receipts(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.Receipt, len(receipts))
	for i, rc := range receipts {
		out[i] = response.ReceiptFromModel(rc)
	}
	response.JSON(w, http.StatusOK, out)
}

// Status handles GET /api/v1/users/{id}/payments/{ref}
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	ref := model.TxRef(mux.Vars(r)["ref"])

	sess, err := h.sessions.Session(r.Context(), userID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	report, err := sess.PaymentStatus(r.Context(), ref)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PaymentStatusFromModel(report))
}
