package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("customer not found")

const customerColumns = `id, customer_name, customer_phone, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	c := &Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCustomer inserts a customer; phone is expected in canonical form
func (db *DB) CreateCustomer(ctx context.Context, name, phone string) (*Customer, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO customers (customer_name, customer_phone) VALUES ($1, $2) RETURNING id`,
		name, phone,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return db.GetCustomerByID(ctx, id)
}

// GetCustomerByID retrieves a customer by ID
func (db *DB) GetCustomerByID(ctx context.Context, id int64) (*Customer, error) {
	c, err := scanCustomer(db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// UpdateCustomer updates a customer's name and phone
func (db *DB) UpdateCustomer(ctx context.Context, id int64, name, phone string) (*Customer, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE customers SET customer_name = $1, customer_phone = $2, updated_at = $3 WHERE id = $4`,
		name, phone, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}
	return db.GetCustomerByID(ctx, id)
}

// UpdateCustomerPhone rewrites only the phone column
func (db *DB) UpdateCustomerPhone(ctx context.Context, id int64, phone string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE customers SET customer_phone = $1, updated_at = $2 WHERE id = $3`,
		phone, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer phone: %w", err)
	}
	return requireAffected(result)
}

// DeleteCustomer deletes a customer
func (db *DB) DeleteCustomer(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchCustomers returns a page of customers whose name contains
// filters.Name, case-insensitively. An empty name matches everyone.
func (db *DB) SearchCustomers(ctx context.Context, filters CustomerFilters) (*CustomerPage, error) {
	filters = filters.Normalize()
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(filters.Name))) + "%"

	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE LOWER(customer_name) LIKE $1 ESCAPE '\'`, pattern,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	customers, err := db.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers
		 WHERE LOWER(customer_name) LIKE $1 ESCAPE '\'
		 ORDER BY LOWER(customer_name) ASC, id ASC
		 LIMIT $2 OFFSET $3`,
		pattern, filters.PerPage, (filters.Page-1)*filters.PerPage,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}

	return &CustomerPage{
		Data:    customers,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}

// AllCustomers returns every customer ordered by creation time
func (db *DB) AllCustomers(ctx context.Context) ([]Customer, error) {
	customers, err := db.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, nil
}

// queryCustomers runs a customer SELECT; the result is never nil
func (db *DB) queryCustomers(ctx context.Context, query string, args ...any) ([]Customer, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
