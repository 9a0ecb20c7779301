package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"bloodlink/internal/compatibility"
	"bloodlink/internal/platform/middleware"
	id "bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/httputil"
)

// scoringConfig is the wire form of compatibility.Config. Response times are
// whole minutes. On update, omitted fields keep their current value.
type scoringConfig struct {
	DonatesTo              map[id.BloodType][]id.BloodType `json:"donates_to,omitempty"`
	UrgencyWeights         map[id.Urgency]float64          `json:"urgency_weights,omitempty"`
	DefaultWeight          *float64                        `json:"default_weight,omitempty"`
	SearchRadiusKm         map[id.Urgency]float64          `json:"search_radius_km,omitempty"`
	DefaultRadiusKm        *float64                        `json:"default_radius_km,omitempty"`
	BaseResponseMinutes    map[id.Urgency]int              `json:"base_response_minutes,omitempty"`
	DefaultResponseMinutes *int                            `json:"default_response_minutes,omitempty"`
}

func toScoringConfig(cfg compatibility.Config) scoringConfig {
	out := scoringConfig{
		DonatesTo:              cfg.DonatesTo,
		UrgencyWeights:         cfg.UrgencyWeights,
		DefaultWeight:          &cfg.DefaultWeight,
		SearchRadiusKm:         cfg.SearchRadiusKm,
		DefaultRadiusKm:        &cfg.DefaultRadiusKm,
		BaseResponseMinutes:    make(map[id.Urgency]int, len(cfg.BaseResponseTime)),
		DefaultResponseMinutes: new(int),
	}
	for u, d := range cfg.BaseResponseTime {
		out.BaseResponseMinutes[u] = int(d.Minutes())
	}
	*out.DefaultResponseMinutes = int(cfg.DefaultResponseTime.Minutes())
	return out
}

// applyTo overlays the fields set in c onto cfg. Maps replace the current map
// whole.
func (c scoringConfig) applyTo(cfg compatibility.Config) compatibility.Config {
	if c.DonatesTo != nil {
		cfg.DonatesTo = c.DonatesTo
	}
	if c.UrgencyWeights != nil {
		cfg.UrgencyWeights = c.UrgencyWeights
	}
	if c.DefaultWeight != nil {
		cfg.DefaultWeight = *c.DefaultWeight
	}
	if c.SearchRadiusKm != nil {
		cfg.SearchRadiusKm = c.SearchRadiusKm
	}
	if c.DefaultRadiusKm != nil {
		cfg.DefaultRadiusKm = *c.DefaultRadiusKm
	}
	if c.BaseResponseMinutes != nil {
		cfg.BaseResponseTime = make(map[id.Urgency]time.Duration, len(c.BaseResponseMinutes))
		for u, m := range c.BaseResponseMinutes {
			cfg.BaseResponseTime[u] = time.Duration(m) * time.Minute
		}
	}
	if c.DefaultResponseMinutes != nil {
		cfg.DefaultResponseTime = time.Duration(*c.DefaultResponseMinutes) * time.Minute
	}
	return cfg
}

// HandleGetScoring returns the scoring configuration in effect.
func (h *Handler) HandleGetScoring(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toScoringConfig(h.matching.Scorer().Config()))
}

// HandleUpdateScoring swaps in a new scoring configuration. The body is
// merged over the current configuration and validated before it takes effect.
func (h *Handler) HandleUpdateScoring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body scoringConfig
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	cfg := body.applyTo(h.matching.Scorer().Config())
	if err := h.matching.ReloadScoring(ctx, cfg); err != nil {
		h.logger.WarnContext(ctx, "scoring update rejected",
			"operator", middleware.GetOperator(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "scoring configuration updated",
		"operator", middleware.GetOperator(ctx),
		"request_id", middleware.GetRequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, toScoringConfig(cfg))
}
