package database

import (
	"context"
	"fmt"
	"strings"
)

const (
	fragmentRunes = 3
	maxFragments  = 8
)

// CandidateSearch looks up customers that share a name fragment with the
// filter, so misspelt names still reach the duplicate classifier.
type CandidateSearch struct {
	db *DB
}

// Candidates returns a searcher for duplicate candidates
func (db *DB) Candidates() *CandidateSearch {
	return &CandidateSearch{db: db}
}

// SearchCustomers returns customers whose name contains the first letters of
// any word in filters.Name. Names containing the whole filter come first.
func (s *CandidateSearch) SearchCustomers(ctx context.Context, filters CustomerFilters) (*CustomerPage, error) {
	frags := nameFragments(filters.Name)
	if len(frags) == 0 {
		return s.db.SearchCustomers(ctx, filters)
	}
	filters = filters.Normalize()

	conds := make([]string, len(frags))
	args := make([]any, 0, len(frags)+3)
	for i, f := range frags {
		conds[i] = fmt.Sprintf(`LOWER(customer_name) LIKE $%d ESCAPE '\'`, i+1)
		args = append(args, "%"+escapeLike(f)+"%")
	}
	where := strings.Join(conds, " OR ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM customers
		 WHERE %s
		 ORDER BY CASE WHEN LOWER(customer_name) LIKE $%d ESCAPE '\' THEN 0 ELSE 1 END,
		          LOWER(customer_name) ASC, id ASC
		 LIMIT $%d OFFSET $%d`, customerColumns, where, n+1, n+2, n+3)
	args = append(args,
		"%"+escapeLike(strings.ToLower(strings.TrimSpace(filters.Name)))+"%",
		filters.PerPage,
		(filters.Page-1)*filters.PerPage,
	)

	customers, err := s.db.queryCustomers(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}

	return &CustomerPage{
		Data:    customers,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}

// nameFragments lowercases name and keeps the leading runes of each word,
// without repeats.
func nameFragments(name string) []string {
	var frags []string
	seen := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(name)) {
		r := []rune(word)
		if len(r) > fragmentRunes {
			r = r[:fragmentRunes]
		}
		f := string(r)
		if seen[f] {
			continue
		}
		seen[f] = true
		frags = append(frags, f)
		if len(frags) == maxFragments {
			break
		}
	}
	return frags
}
