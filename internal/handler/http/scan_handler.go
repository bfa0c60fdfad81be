package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/cache"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/service"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

const (
	defaultLimit   = 10
	maxLimit       = 100
	maxRequestBody = 10 << 20 // 10MB
)

// ScanHandler handles HTTP requests for arbitrage scans and cached opportunities
type ScanHandler struct {
	service *service.ScannerService
	logger  zerolog.Logger
}

// NewScanHandler creates a new scan HTTP handler
func NewScanHandler(service *service.ScannerService, logger zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		service: service,
		logger:  logger.With().Str("component", "scan_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *ScanHandler) RegisterRoutes(mux *http.ServeMux) {
	// POST /api/v1/scan - Scan a batch of odds records
	mux.HandleFunc("/api/v1/scan", h.handleScan)

	// GET /api/v1/opportunities?limit=N - Most profitable cached opportunities
	mux.HandleFunc("/api/v1/opportunities", h.handleTopOpportunities)

	// GET /api/v1/opportunities/:id - A single cached opportunity
	mux.HandleFunc("/api/v1/opportunities/", h.handleOpportunity)

	// GET /api/v1/events/:event_id/opportunities - Cached opportunities for an event
	mux.HandleFunc("/api/v1/events/", h.handleEventOpportunities)
}

// ScanRequest is the body of POST /api/v1/scan.
// Stake may be a JSON string or number; when absent the configured default is used.
type ScanRequest struct {
	Records []models.OddsRecord `json:"records"`
	Stake   json.RawMessage     `json:"stake,omitempty"`
}

// handleScan handles POST /api/v1/scan
func (h *ScanHandler) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ScanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	stake, err := parseStakeField(req.Stake)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ScanRecords(r.Context(), "http", uuid.NewString(), req.Records, stake)
	if err != nil {
		if errors.Is(err, arbitrage.ErrInvalidStake) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Int("records", len(req.Records)).Msg("scan failed")
		h.errorResponse(w, http.StatusInternalServerError, "scan failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, ToScanResponse(result))
}

// handleTopOpportunities handles GET /api/v1/opportunities?limit=N
func (h *ScanHandler) handleTopOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	opps, err := h.service.TopOpportunities(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Int("limit", limit).Msg("failed to retrieve top opportunities")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve opportunities")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":         len(opps),
		"opportunities": ToOpportunityResponses(opps),
	})
}

// handleOpportunity handles GET /api/v1/opportunities/:id
func (h *ScanHandler) handleOpportunity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/opportunities/")
	if id == "" || strings.Contains(id, "/") {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/opportunities/:id")
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid opportunity id")
		return
	}

	opp, err := h.service.Opportunity(r.Context(), id)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "opportunity not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to retrieve opportunity")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve opportunity")
		return
	}

	h.jsonResponse(w, http.StatusOK, ToOpportunityResponse(opp))
}

// handleEventOpportunities handles GET /api/v1/events/:event_id/opportunities
func (h *ScanHandler) handleEventOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse path: /api/v1/events/:event_id/opportunities
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/events/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "opportunities" {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/events/:event_id/opportunities")
		return
	}

	eventID := parts[0]
	if eventID == "" {
		h.errorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}

	opps, err := h.service.OpportunitiesByEvent(r.Context(), eventID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event_id", eventID).
			Msg("failed to retrieve event opportunities")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve opportunities")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"event_id":      eventID,
		"count":         len(opps),
		"opportunities": ToOpportunityResponses(opps),
	})
}

// jsonResponse writes a JSON response
func (h *ScanHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *ScanHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

// parseStakeField returns nil when no stake was sent
func parseStakeField(raw json.RawMessage) (*decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	input := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, &arbitrage.InvalidStakeError{Value: string(raw)}
		}
	}

	stake, err := arbitrage.ParseStake(input)
	if err != nil {
		return nil, err
	}
	return &stake, nil
}

// ScanResponse represents the API response for a scan
type ScanResponse struct {
	Opportunities      []*OpportunityResponse `json:"opportunities"`
	GroupsScanned      int                    `json:"groups_scanned"`
	IncompleteGroups   int                    `json:"incomplete_groups"`
	CombinationsTested int                    `json:"combinations_tested"`
	BelowThreshold     int                    `json:"below_threshold"`
	Malformed          []string               `json:"malformed"`
}

// OpportunityResponse represents an opportunity with amounts rounded for display
type OpportunityResponse struct {
	ID                         string         `json:"id"`
	EventID                    string         `json:"event_id"`
	HomeTeam                   string         `json:"home_team"`
	AwayTeam                   string         `json:"away_team"`
	MarketType                 string         `json:"market_type"`
	Line                       string         `json:"line,omitempty"`
	ProfitPercent              string         `json:"profit_percent"`
	CombinedImpliedProbability string         `json:"combined_implied_probability"`
	TotalStake                 string         `json:"total_stake"`
	GuaranteedPayout           string         `json:"guaranteed_payout"`
	Legs                       []*LegResponse `json:"legs"`
	DetectedAt                 string         `json:"detected_at"`
}

// LegResponse represents one bet of an opportunity
type LegResponse struct {
	Outcome   string `json:"outcome"`
	Bookmaker string `json:"bookmaker"`
	Price     string `json:"price"`
	Stake     string `json:"stake"`
	Payout    string `json:"payout"`
}

// ToScanResponse converts a scan result to API response format
func ToScanResponse(result *arbitrage.ScanResult) *ScanResponse {
	malformed := make([]string, len(result.Malformed))
	for i, err := range result.Malformed {
		malformed[i] = err.Error()
	}

	return &ScanResponse{
		Opportunities:      ToOpportunityResponses(result.Opportunities),
		GroupsScanned:      result.GroupsScanned,
		IncompleteGroups:   result.IncompleteGroups,
		CombinationsTested: result.CombinationsTested,
		BelowThreshold:     result.BelowThreshold,
		Malformed:          malformed,
	}
}

// ToOpportunityResponses converts opportunities preserving their order
func ToOpportunityResponses(opps []*models.ArbitrageOpportunity) []*OpportunityResponse {
	out := make([]*OpportunityResponse, len(opps))
	for i, opp := range opps {
		out[i] = ToOpportunityResponse(opp)
	}
	return out
}

// ToOpportunityResponse converts an opportunity to API response format.
// Money and profit are rounded to 2 places here and nowhere earlier.
func ToOpportunityResponse(opp *models.ArbitrageOpportunity) *OpportunityResponse {
	resp := &OpportunityResponse{
		ID:                         opp.ID.String(),
		EventID:                    opp.EventID,
		HomeTeam:                   opp.HomeTeam,
		AwayTeam:                   opp.AwayTeam,
		MarketType:                 string(opp.MarketType),
		ProfitPercent:              opp.ProfitPercent.StringFixed(2),
		CombinedImpliedProbability: opp.CombinedImpliedProbability.StringFixed(6),
		TotalStake:                 opp.TotalStake.StringFixed(2),
		GuaranteedPayout:           opp.GuaranteedPayout.StringFixed(2),
		Legs:                       make([]*LegResponse, len(opp.Legs)),
		DetectedAt:                 opp.DetectedAt.Format(time.RFC3339),
	}
	if opp.Line != nil {
		resp.Line = opp.Line.String()
	}

	for i, leg := range opp.Legs {
		resp.Legs[i] = &LegResponse{
			Outcome:   string(leg.Outcome),
			Bookmaker: leg.Bookmaker,
			Price:     leg.Price.String(),
			Stake:     leg.Stake.StringFixed(2),
			Payout:    leg.Payout.StringFixed(2),
		}
	}

	return resp
}
