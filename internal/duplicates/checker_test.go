package duplicates

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/metrics"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

type fakeSearcher struct {
	customers []database.Customer
	err       error
	calls     []database.CustomerFilters
}

func (f *fakeSearcher) SearchCustomers(_ context.Context, filters database.CustomerFilters) (*database.CustomerPage, error) {
	f.calls = append(f.calls, filters)
	if f.err != nil {
		return nil, f.err
	}
	return &database.CustomerPage{Data: f.customers, Total: len(f.customers)}, nil
}

func customers(names ...string) []database.Customer {
	out := make([]database.Customer, len(names))
	for i, n := range names {
		out[i] = database.Customer{ID: int64(i + 1), Name: n}
	}
	return out
}

func TestClassify(t *testing.T) {
	c := NewChecker(&fakeSearcher{})

	tests := []struct {
		name       string
		candidate  string
		existing   string
		wantReason Reason
	}{
		{name: "exact after normalization", candidate: "John Smith", existing: "john smith", wantReason: ReasonExact},
		{name: "surrounding whitespace", candidate: "  John Smith ", existing: "JOHN SMITH", wantReason: ReasonExact},
		{name: "candidate contained in existing", candidate: "John", existing: "John Smith", wantReason: ReasonContains},
		{name: "existing contained in candidate", candidate: "John Smith Jr", existing: "John Smith", wantReason: ReasonContains},
		{name: "one edit is similar", candidate: "Jon Smith", existing: "John Smith", wantReason: ReasonSimilar},
		{name: "similarity exactly at threshold is not enough", candidate: "Jon Smyth", existing: "John Smith", wantReason: ReasonNone},
		{name: "unrelated", candidate: "Aisha Khan", existing: "John Smith", wantReason: ReasonNone},
		{name: "empty existing name", candidate: "John", existing: "   ", wantReason: ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, _ := c.Classify(tt.candidate, tt.existing)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestClassifyScore(t *testing.T) {
	c := NewChecker(&fakeSearcher{})

	_, score := c.Classify("Jon Smith", "John Smith")
	assert.InDelta(t, 0.9, score, 1e-9)

	_, score = c.Classify("Jon Smyth", "John Smith")
	assert.InDelta(t, 0.8, score, 1e-9)
}

func TestClassifyBlankNames(t *testing.T) {
	c := NewChecker(&fakeSearcher{})

	reason, score := c.Classify("", "  ")
	assert.Equal(t, ReasonNone, reason)
	assert.Equal(t, 1.0, score)

	reason, score = c.Classify("John", "")
	assert.Equal(t, ReasonNone, reason)
	assert.Equal(t, 0.0, score)
}

func TestClassifyLongNames(t *testing.T) {
	c := NewChecker(&fakeSearcher{})
	long := strings.Repeat("a", utils.MaxNameLength+100)

	reason, score := c.Classify(long, long[1:]+"b")
	assert.Equal(t, ReasonNone, reason, "names over the limit are not scored")
	assert.Zero(t, score)

	reason, score = c.Classify(long+" smith", long)
	assert.Equal(t, ReasonContains, reason)
	assert.Zero(t, score)

	reason, _ = c.Classify(long, long)
	assert.Equal(t, ReasonExact, reason)
}

func TestClassifyCustomThreshold(t *testing.T) {
	c := NewChecker(&fakeSearcher{}, WithThreshold(0.75))

	reason, _ := c.Classify("Jon Smyth", "John Smith")
	assert.Equal(t, ReasonSimilar, reason)
	assert.Equal(t, 0.75, c.Threshold())
}

func TestCheckForDuplicates(t *testing.T) {
	search := &fakeSearcher{customers: customers("John Smith", "Aisha Khan", "Jon Smith", "Johnathan Smythe", "john")}
	c := NewChecker(search)

	got := c.CheckForDuplicates(context.Background(), "  John Smith ")

	names := []string{}
	for _, cust := range got {
		names = append(names, cust.Name)
	}
	assert.Equal(t, []string{"John Smith", "Jon Smith", "john"}, names)

	require.Len(t, search.calls, 1)
	assert.Equal(t, database.CustomerFilters{Name: "John Smith", Page: 1, PerPage: DefaultPageSize}, search.calls[0])
}

func TestFindMatchesReasons(t *testing.T) {
	search := &fakeSearcher{customers: customers("john smith", "John Smith Jr", "Jon Smith")}
	c := NewChecker(search, WithPageSize(5))

	matches := c.FindMatches(context.Background(), "John Smith")
	require.Len(t, matches, 3)
	assert.Equal(t, ReasonExact, matches[0].Reason)
	assert.Equal(t, ReasonContains, matches[1].Reason)
	assert.Equal(t, ReasonSimilar, matches[2].Reason)
	assert.True(t, matches[2].Duplicate())
	assert.Equal(t, 5, search.calls[0].PerPage)
}

func TestCheckForDuplicatesEmptyName(t *testing.T) {
	search := &fakeSearcher{customers: customers("John")}
	c := NewChecker(search)

	assert.Empty(t, c.CheckForDuplicates(context.Background(), "   "))
	assert.Empty(t, search.calls, "empty names must not hit the search")
}

func TestCheckForDuplicatesSearchFailure(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	search := &fakeSearcher{err: errors.New("connection reset by peer")}
	c := NewChecker(search, WithLogger(zerolog.New(&buf)), WithMetrics(m))

	got := c.CheckForDuplicates(context.Background(), "John Smith")

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "duplicate check search failed")
	assert.Contains(t, buf.String(), "connection reset by peer")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateChecks.WithLabelValues(metrics.OutcomeSearchFailed)))
}

func TestCheckForDuplicatesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	search := &fakeSearcher{customers: customers("John Smith")}
	c := NewChecker(search, WithMetrics(m))

	c.CheckForDuplicates(context.Background(), "John Smith")
	c.CheckForDuplicates(context.Background(), "Aisha Khan")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateChecks.WithLabelValues(metrics.OutcomeDuplicates)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateChecks.WithLabelValues(metrics.OutcomeClean)))
}

func TestCheckForDuplicatesAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.New("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	for _, name := range []string{"John Smith", "Johnny Cash", "Aisha Khan"} {
		_, err := db.CreateCustomer(ctx, name, "")
		require.NoError(t, err)
	}

	c := NewChecker(db.Candidates())
	got := c.CheckForDuplicates(ctx, "john")

	names := []string{}
	for _, cust := range got {
		names = append(names, cust.Name)
	}
	assert.Equal(t, []string{"John Smith", "Johnny Cash"}, names)
}

func TestCheckForDuplicatesMisspeltAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.New("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	for _, name := range []string{"John Smith", "Jonas Brandt", "Aisha Khan"} {
		_, err := db.CreateCustomer(ctx, name, "")
		require.NoError(t, err)
	}

	matches := NewChecker(db.Candidates()).FindMatches(ctx, "Jon Smith")

	require.Len(t, matches, 1)
	assert.Equal(t, "John Smith", matches[0].Customer.Name)
	assert.Equal(t, ReasonSimilar, matches[0].Reason)
	assert.InDelta(t, 0.9, matches[0].Score, 1e-9)
}
