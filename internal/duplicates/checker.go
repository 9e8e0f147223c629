// Package duplicates warns operators about customers that probably already
// exist before a new record is created.
package duplicates

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/metrics"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

const (
	DefaultThreshold = 0.8
	DefaultPageSize  = 10
)

// Reason explains why a record was classified as a duplicate
type Reason string

const (
	ReasonNone     Reason = "none"
	ReasonExact    Reason = "exact"
	ReasonContains Reason = "contains"
	ReasonSimilar  Reason = "similar"
)

// Searcher fetches customers by name, e.g. the local database or the agency API
type Searcher interface {
	SearchCustomers(ctx context.Context, filters database.CustomerFilters) (*database.CustomerPage, error)
}

// Match is the classification of one existing customer against a candidate name
type Match struct {
	Customer database.Customer `json:"customer"`
	Reason   Reason            `json:"reason"`
	Score    float64           `json:"score"`
}

// Duplicate reports whether the match should be shown to the operator
func (m Match) Duplicate() bool {
	return m.Reason != ReasonNone
}

type Checker struct {
	search    Searcher
	threshold float64
	pageSize  int
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Checker)

// WithThreshold sets the similarity a name must exceed to count as a duplicate
func WithThreshold(threshold float64) Option {
	return func(c *Checker) {
		c.threshold = threshold
	}
}

// WithPageSize sets how many search results are inspected
func WithPageSize(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Checker) {
		c.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

func NewChecker(search Searcher, opts ...Option) *Checker {
	c := &Checker{
		search:    search,
		threshold: DefaultThreshold,
		pageSize:  DefaultPageSize,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured similarity threshold
func (c *Checker) Threshold() float64 {
	return c.threshold
}

// Classify compares a candidate name against an existing one after
// lowercasing and trimming both. A blank name on either side never matches,
// though its score is still reported. Names longer than utils.MaxNameLength
// runes are matched exactly or by substring only, and score 0.
func (c *Checker) Classify(candidate, existing string) (Reason, float64) {
	a := utils.NormalizeName(candidate)
	b := utils.NormalizeName(existing)

	if a == b {
		if a == "" {
			return ReasonNone, 1
		}
		return ReasonExact, 1
	}

	scored := utf8.RuneCountInString(a) <= utils.MaxNameLength &&
		utf8.RuneCountInString(b) <= utils.MaxNameLength
	score := 0.0
	if scored {
		score = utils.NameSimilarity(a, b)
	}

	switch {
	case a == "" || b == "":
		return ReasonNone, score
	case strings.Contains(a, b) || strings.Contains(b, a):
		return ReasonContains, score
	case scored && score > c.threshold:
		return ReasonSimilar, score
	default:
		return ReasonNone, score
	}
}

// FindMatches searches for customers named like name and returns the ones
// classified as duplicates, in search order. A failed search is logged and
// yields no matches; it never blocks customer creation.
func (c *Checker) FindMatches(ctx context.Context, name string) []Match {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	page, err := c.search.SearchCustomers(ctx, database.CustomerFilters{
		Name:    name,
		Page:    1,
		PerPage: c.pageSize,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("name", name).Msg("duplicate check search failed")
		c.metrics.IncrementDuplicateCheck(metrics.OutcomeSearchFailed)
		return []Match{}
	}

	matches := []Match{}
	if page != nil {
		for _, customer := range page.Data {
			reason, score := c.Classify(name, customer.Name)
			if reason == ReasonNone {
				continue
			}
			matches = append(matches, Match{Customer: customer, Reason: reason, Score: score})
		}
	}

	outcome := metrics.OutcomeClean
	if len(matches) > 0 {
		outcome = metrics.OutcomeDuplicates
	}
	c.metrics.IncrementDuplicateCheck(outcome)

	return matches
}

// CheckForDuplicates returns the existing customers that look like name.
// An empty result may also mean the search failed.
func (c *Checker) CheckForDuplicates(ctx context.Context, name string) []database.Customer {
	matches := c.FindMatches(ctx, name)
	customers := make([]database.Customer, 0, len(matches))
	for _, m := range matches {
		customers = append(customers, m.Customer)
	}
	return customers
}
