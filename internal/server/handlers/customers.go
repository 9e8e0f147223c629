package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/duplicates"
	"github.com/AlexTLDR/agencydesk/internal/i18n"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

// customerRequest is the create/update payload
type customerRequest struct {
	Name             string `json:"customer_name"`
	Phone            string `json:"customer_phone"`
	ConfirmDifferent bool   `json:"confirm_different"`
}

type duplicatesResponse struct {
	Error      string             `json:"error,omitempty"`
	Duplicates []duplicates.Match `json:"duplicates"`
}

// validateCustomer trims the payload and normalizes the phone.
// On failure it writes a localized 400 and returns false.
func validateCustomer(s Server, w http.ResponseWriter, r *http.Request, req *customerRequest) bool {
	lang := i18n.GetLanguageFromRequest(r)

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, i18n.T(lang, i18n.NameRequired))
		return false
	}
	if utf8.RuneCountInString(req.Name) > utils.MaxNameLength {
		writeError(w, http.StatusBadRequest, i18n.T(lang, i18n.NameTooLong))
		return false
	}

	if err := utils.ValidatePhoneInput(req.Phone); err != nil {
		writeError(w, http.StatusBadRequest, i18n.PhoneError(lang, err))
		return false
	}

	formatted := s.GetPhones().Format(req.Phone)
	s.GetMetrics().IncrementPhoneFormat(formatted != "")
	if formatted == "" {
		writeError(w, http.StatusBadRequest, i18n.T(lang, i18n.PhoneInvalid))
		return false
	}
	req.Phone = formatted
	return true
}

// HandleListCustomers searches customers by name with pagination
func HandleListCustomers(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))

		result, err := s.GetStore().SearchCustomers(r.Context(), database.CustomerFilters{
			Name:    q.Get("filter_name"),
			Page:    page,
			PerPage: perPage,
		})
		if err != nil {
			writeStoreError(s, w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleGetCustomer returns one customer
func HandleGetCustomer(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		customer, err := s.GetStore().GetCustomerByID(r.Context(), id)
		if err != nil {
			writeStoreError(s, w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

// HandleCreateCustomer validates and stores a new customer. Unless the
// operator confirmed the customer is a different person, likely duplicates
// are returned with 409 instead.
func HandleCreateCustomer(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !validateCustomer(s, w, r, &req) {
			return
		}

		if !req.ConfirmDifferent {
			if matches := s.GetChecker().FindMatches(r.Context(), req.Name); len(matches) > 0 {
				writeJSON(w, http.StatusConflict, duplicatesResponse{
					Error:      i18n.T(i18n.GetLanguageFromRequest(r), i18n.DuplicatesFound),
					Duplicates: matches,
				})
				return
			}
		}

		customer, err := s.GetStore().CreateCustomer(r.Context(), req.Name, req.Phone)
		if err != nil {
			writeStoreError(s, w, r, err)
			return
		}

		logger := s.GetLogger()
		logger.Info().
			Int64("customer_id", customer.ID).
			Bool("confirmed_different", req.ConfirmDifferent).
			Msg("customer created")
		writeJSON(w, http.StatusCreated, customer)
	}
}

// HandleUpdateCustomer replaces a customer's name and phone
func HandleUpdateCustomer(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req customerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !validateCustomer(s, w, r, &req) {
			return
		}

		customer, err := s.GetStore().UpdateCustomer(r.Context(), id, req.Name, req.Phone)
		if err != nil {
			writeStoreError(s, w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

// HandleDeleteCustomer deletes a customer
func HandleDeleteCustomer(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := s.GetStore().DeleteCustomer(r.Context(), id); err != nil {
			writeStoreError(s, w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleCheckDuplicates runs the duplicate check without creating anything.
// Search failures are absorbed by the checker, so this always answers 200.
func HandleCheckDuplicates(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customerRequest
		if !decodeBody(w, r, &req) {
			return
		}

		matches := s.GetChecker().FindMatches(r.Context(), req.Name)
		if matches == nil {
			matches = []duplicates.Match{}
		}
		writeJSON(w, http.StatusOK, duplicatesResponse{Duplicates: matches})
	}
}
