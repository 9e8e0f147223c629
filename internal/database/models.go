package database

import (
	"time"
)

// Customer field names match the agency API payloads
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"customer_name"`
	Phone     string    `json:"customer_phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerFilters selects a page of customers by name
type CustomerFilters struct {
	Name    string `json:"filter_name"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

type CustomerPage struct {
	Data    []Customer `json:"data"`
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Normalize clamps page and per_page to usable values
func (f CustomerFilters) Normalize() CustomerFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}
