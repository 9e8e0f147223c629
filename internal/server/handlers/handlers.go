package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/duplicates"
	"github.com/AlexTLDR/agencydesk/internal/i18n"
	"github.com/AlexTLDR/agencydesk/internal/metrics"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

const maxBodyBytes = 1 << 20

// Store is the customer persistence used by the handlers
type Store interface {
	CreateCustomer(ctx context.Context, name, phone string) (*database.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*database.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, name, phone string) (*database.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	SearchCustomers(ctx context.Context, filters database.CustomerFilters) (*database.CustomerPage, error)
	AllCustomers(ctx context.Context) ([]database.Customer, error)
}

// Server is what handlers need from the HTTP server
type Server interface {
	GetStore() Store
	GetChecker() *duplicates.Checker
	GetPhones() *utils.PhoneNormalizer
	GetMetrics() *metrics.Metrics
	GetLogger() zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

// parseID parses an ID string and returns an error if invalid
func parseID(idStr string) (int64, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID format: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid ID: must be positive")
	}
	return id, nil
}

// pathID reads the {id} path value, writing a 400 when it is not a positive integer
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(i18n.GetLanguageFromRequest(r), i18n.InvalidRequest))
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(i18n.GetLanguageFromRequest(r), i18n.InvalidRequest))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps storage failures to a response
func writeStoreError(s Server, w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.GetLanguageFromRequest(r)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, i18n.T(lang, i18n.NotFound))
		return
	}
	logger := s.GetLogger()
	logger.Error().Err(err).Str("path", r.URL.Path).Msg("customer store failed")
	writeError(w, http.StatusInternalServerError, i18n.T(lang, i18n.InternalError))
}
