package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Duplicate check outcomes
const (
	OutcomeClean        = "clean"
	OutcomeDuplicates   = "duplicates"
	OutcomeSearchFailed = "search_failed"
)

// Phone format results
const (
	PhoneOK      = "ok"
	PhoneInvalid = "invalid"
)

// Metrics provides observability for customer intake.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Duplicate checks by outcome
	DuplicateChecks *prometheus.CounterVec

	// Phone normalization attempts by result
	PhoneFormats *prometheus.CounterVec
}

// New creates Metrics registered on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DuplicateChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agencydesk_duplicate_checks_total",
			Help: "Customer duplicate checks by outcome",
		}, []string{"outcome"}), // outcome: "clean", "duplicates", "search_failed"

		PhoneFormats: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agencydesk_phone_formats_total",
			Help: "Phone normalization attempts by result",
		}, []string{"result"}),
	}
}

// IncrementDuplicateCheck records a duplicate check outcome.
func (m *Metrics) IncrementDuplicateCheck(outcome string) {
	if m != nil {
		m.DuplicateChecks.WithLabelValues(outcome).Inc()
	}
}

// IncrementPhoneFormat records whether a phone could be normalized.
func (m *Metrics) IncrementPhoneFormat(ok bool) {
	if m == nil {
		return
	}
	result := PhoneOK
	if !ok {
		result = PhoneInvalid
	}
	m.PhoneFormats.WithLabelValues(result).Inc()
}
