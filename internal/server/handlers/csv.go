package handlers

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/i18n"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

// csvHeader returns the column titles in the request language
func csvHeader(lang i18n.Language) []string {
	return []string{
		i18n.T(lang, i18n.ColumnName),
		i18n.T(lang, i18n.ColumnPhone),
		i18n.T(lang, i18n.ColumnDisplayPhone),
		i18n.T(lang, i18n.ColumnCountry),
		i18n.T(lang, i18n.ColumnCreated),
	}
}

// customerCSVRow converts a customer to CSV columns; unknown countries are "-"
func customerCSVRow(phones *utils.PhoneNormalizer, c database.Customer) []string {
	country := "-"
	if found, ok := phones.Country(c.Phone); ok {
		country = found.Name
	}
	return []string{
		c.Name,
		c.Phone,
		phones.Display(c.Phone),
		country,
		c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleExportCSV exports all customers to CSV
func HandleExportCSV(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customers, err := s.GetStore().AllCustomers(r.Context())
		if err != nil {
			writeStoreError(s, w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=customers.csv")

		// Write UTF-8 BOM for Excel compatibility
		_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

		cw := csv.NewWriter(w)
		_ = cw.Write(csvHeader(i18n.GetLanguageFromRequest(r)))

		phones := s.GetPhones()
		for _, c := range customers {
			_ = cw.Write(customerCSVRow(phones, c))
		}

		cw.Flush()
		if err := cw.Error(); err != nil {
			logger := s.GetLogger()
			logger.Error().Err(err).Msg("failed to write customer csv")
		}
	}
}
