package handlers

import (
	"net/http"

	"github.com/AlexTLDR/agencydesk/internal/i18n"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

type formatPhoneRequest struct {
	Phone string `json:"phone"`
}

type formatPhoneResponse struct {
	Formatted string         `json:"formatted"`
	Display   string         `json:"display"`
	Valid     bool           `json:"valid"`
	Country   *utils.Country `json:"country,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type countriesResponse struct {
	DefaultCountryCode string          `json:"default_country_code"`
	Countries          []utils.Country `json:"countries"`
}

// HandleFormatPhone previews how a typed phone number will be stored and shown
func HandleFormatPhone(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formatPhoneRequest
		if !decodeBody(w, r, &req) {
			return
		}

		lang := i18n.GetLanguageFromRequest(r)
		phones := s.GetPhones()
		resp := formatPhoneResponse{}

		if err := utils.ValidatePhoneInput(req.Phone); err != nil {
			resp.Error = i18n.PhoneError(lang, err)
			writeJSON(w, http.StatusOK, resp)
			return
		}

		resp.Formatted = phones.Format(req.Phone)
		resp.Valid = resp.Formatted != ""
		s.GetMetrics().IncrementPhoneFormat(resp.Valid)

		if !resp.Valid {
			resp.Error = i18n.T(lang, i18n.PhoneInvalid)
			writeJSON(w, http.StatusOK, resp)
			return
		}

		resp.Display = phones.Display(resp.Formatted)
		if country, ok := phones.Country(resp.Formatted); ok {
			resp.Country = &country
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleCountries lists the supported calling codes for the country picker
func HandleCountries(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phones := s.GetPhones()
		writeJSON(w, http.StatusOK, countriesResponse{
			DefaultCountryCode: phones.DefaultCountryCode(),
			Countries:          phones.Countries(),
		})
	}
}
