package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/domain"
	"bloodlink/internal/escalation"
	"bloodlink/internal/inventory"
	"bloodlink/internal/platform/middleware"
	id "bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/httputil"
)

// HandleSweep runs one escalation sweep and returns its report.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "manual sweep requested",
		"operator", middleware.GetOperator(ctx),
		"client_ip", middleware.GetClientIP(ctx),
		"request_id", middleware.GetRequestID(ctx),
	)
	report := h.ops.Sweep(ctx)
	httputil.WriteJSON(w, http.StatusOK, report)
}

type inventoryResponse struct {
	BankID      string                 `json:"bank_id"`
	Evaluations []inventory.Evaluation `json:"evaluations"`
}

// HandleInventory returns the stock classification for one bank.
func (h *Handler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bankID, err := id.ParseBankID(chi.URLParam(r, "bankID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	evals, err := h.ops.InventoryReport(ctx, bankID)
	if err != nil {
		h.logger.ErrorContext(ctx, "inventory report failed",
			"bank_id", bankID.String(),
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inventoryResponse{BankID: bankID.String(), Evaluations: evals})
}

type dispatchResponse struct {
	RequestID                string                        `json:"request_id"`
	Generation               int64                         `json:"generation"`
	SearchRadiusKm           float64                       `json:"search_radius_km"`
	DonorsFound              int                           `json:"donors_found"`
	MatchesPersisted         int                           `json:"matches_persisted"`
	DonorsNotified           int                           `json:"donors_notified"`
	EstimatedResponseMinutes int                           `json:"estimated_response_minutes"`
	FollowUpScheduled        bool                          `json:"follow_up_scheduled"`
	Escalation               *escalation.EscalationOutcome `json:"escalation,omitempty"`
}

// HandleDispatchRequest matches a pending request and notifies donors.
func (h *Handler) HandleDispatchRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.ops.HandleRequest(ctx, requestID)
	if err != nil && (out == nil || out.Match == nil) {
		h.logger.ErrorContext(ctx, "request dispatch failed",
			"request_id", requestID.String(),
			"operator", middleware.GetOperator(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := dispatchResponse{
		RequestID:         requestID.String(),
		DonorsNotified:    out.DonorsNotified,
		FollowUpScheduled: out.FollowUpScheduled,
		Escalation:        out.Escalation,
	}
	if m := out.Match; m != nil {
		resp.Generation = m.Generation
		resp.SearchRadiusKm = m.SearchRadiusKm
		resp.DonorsFound = len(m.Donors)
		resp.MatchesPersisted = len(m.Persisted)
		resp.EstimatedResponseMinutes = int(m.EstimatedResponse.Minutes())
	}
	if err != nil {
		h.logger.WarnContext(ctx, "request dispatched with errors",
			"request_id", requestID.String(),
			"error", err,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type matchResponseRequest struct {
	Response domain.DonorResponse `json:"response"`
}

// HandleMatchResponse records a donor's answer to a match.
func (h *Handler) HandleMatchResponse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matchID, err := id.ParseMatchID(chi.URLParam(r, "matchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body matchResponseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	match, err := h.matching.RespondToMatch(ctx, matchID, body.Response)
	if err != nil {
		h.logger.WarnContext(ctx, "match response rejected",
			"match_id", matchID.String(),
			"response", body.Response,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

type donorRequestsResponse struct {
	DonorID  string                 `json:"donor_id"`
	Requests []*domain.BloodRequest `json:"requests"`
}

// HandleDonorRequests lists pending requests a donor can serve.
func (h *Handler) HandleDonorRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, err := id.ParseDonorID(chi.URLParam(r, "donorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	requests, err := h.matching.FindPendingRequestsForDonor(ctx, donorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending request lookup failed",
			"donor_id", donorID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if requests == nil {
		requests = []*domain.BloodRequest{}
	}
	httputil.WriteJSON(w, http.StatusOK, donorRequestsResponse{DonorID: donorID.String(), Requests: requests})
}
