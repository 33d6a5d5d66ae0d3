package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	datafeed "github.com/fazecat/niftyscreener/Internal/database"
	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

// ScanRunner is satisfied by *scanner.Service.
type ScanRunner interface {
	RunScan(ctx context.Context, credential string, scanLimit int, mode scanner.Mode) ([]scanner.Result, error)
}

type API struct {
	Scanner      ScanRunner
	Credential   string
	DefaultLimit int
	Thresholds   signals.Thresholds
	Swing        signals.SwingFilter
	JWTManager   *JWTManager
	TokenHours   int
	Now          func() time.Time
	// DB is the Postgres universe store; nil when the universe is a CSV file.
	DB *sqlx.DB
}

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: false, Error: message}); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
	}
}

func (api *API) now() time.Time {
	if api.Now != nil {
		return api.Now()
	}
	return time.Now()
}

func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if api.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := datafeed.HealthCheck(ctx, api.DB); err != nil {
			log.Warn().Err(err).Msg("health check: database unreachable")
			WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	WriteJSON(w, http.StatusOK, "healthy")
}

type scanResponse struct {
	Mode      scanner.Mode     `json:"mode"`
	Count     int              `json:"count"`
	Results   []scanner.Result `json:"results"`
	ScannedAt time.Time        `json:"scanned_at"`
	Elapsed   string           `json:"elapsed"`
}

func (api *API) HandleScan(w http.ResponseWriter, r *http.Request) {
	mode, err := scanner.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := api.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	user := ""
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		user = claims.UserID
	}
	log.Info().Str("user", user).Str("mode", string(mode)).Int("limit", limit).Msg("API scan requested")

	start := api.now()
	results, err := api.Scanner.RunScan(r.Context(), api.Credential, limit, mode)
	if err != nil {
		switch {
		case errors.Is(err, scanner.ErrMissingCredential), errors.Is(err, scanner.ErrEmptyUniverse):
			WriteError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			WriteError(w, http.StatusGatewayTimeout, "scan cancelled")
		default:
			log.Error().Err(err).Str("mode", string(mode)).Msg("Scan failed")
			WriteError(w, http.StatusInternalServerError, "Failed to run scan")
		}
		return
	}
	if results == nil {
		results = []scanner.Result{}
	}

	WriteJSON(w, http.StatusOK, scanResponse{
		Mode:      mode,
		Count:     len(results),
		Results:   results,
		ScannedAt: start.UTC(),
		Elapsed:   api.now().Sub(start).Round(time.Millisecond).String(),
	})
}

func (api *API) HandleCriteria(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"thresholds": api.Thresholds,
		"swing": map[string]interface{}{
			"min_price":        api.Swing.MinPrice,
			"max_price":        api.Swing.MaxPrice,
			"min_rsi":          api.Swing.MinRSI,
			"max_rsi":          api.Swing.MaxRSI,
			"min_volume_ratio": api.Swing.MinVolumeRatio,
			"min_rr":           api.Swing.MinRiskReward,
			"trending_min_rr":  api.Swing.TrendingRiskReward,
			"min_filters":      api.Swing.MinFiltersPassed,
			"filters":          signals.FilterNames,
		},
		"conditions": signals.ConditionNames,
	})
}

type tokenRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (api *API) HandleGenerateToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	hours := api.TokenHours
	if hours <= 0 {
		hours = 24
	}
	token, err := api.JWTManager.GenerateToken(req.UserID, req.Email, hours)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate token")
		WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_in": hours * 3600,
	})
}
