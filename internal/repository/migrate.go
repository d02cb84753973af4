package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS members (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	phone VARCHAR(10) NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	aadhaar_number VARCHAR(12) NOT NULL DEFAULT '',
	loan_amount NUMERIC(14, 2) NOT NULL,
	amount_given NUMERIC(14, 2) NOT NULL DEFAULT 0,
	interest_percentage NUMERIC(7, 3) NOT NULL DEFAULT 0,
	collection_type TEXT NOT NULL CHECK (collection_type IN ('daily', 'weekly', '10 days', 'monthly')),
	total_payable NUMERIC(14, 2) NOT NULL,
	balance_remaining NUMERIC(14, 2) NOT NULL CHECK (balance_remaining >= 0),
	min_payment_amount NUMERIC(14, 2) NOT NULL,
	start_date DATE NOT NULL,
	next_payment_date DATE,
	status TEXT NOT NULL CHECK (status IN ('active', 'completed', 'closed')),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_members_status ON members (status);

CREATE TABLE IF NOT EXISTS payments (
	id UUID PRIMARY KEY,
	member_id UUID NOT NULL REFERENCES members (id) ON DELETE RESTRICT,
	paid_amount NUMERIC(14, 2) NOT NULL CHECK (paid_amount >= 0),
	previous_balance NUMERIC(14, 2) NOT NULL,
	updated_balance NUMERIC(14, 2) NOT NULL,
	paid_date DATE NOT NULL,
	next_payment_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payments_member ON payments (member_id, paid_date DESC, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_payments_paid_date ON payments (paid_date);

CREATE TABLE IF NOT EXISTS admins (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// Decimals are TEXT in SQLite so no precision is lost
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS members (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	aadhaar_number TEXT NOT NULL DEFAULT '',
	loan_amount TEXT NOT NULL,
	amount_given TEXT NOT NULL DEFAULT '0',
	interest_percentage TEXT NOT NULL DEFAULT '0',
	collection_type TEXT NOT NULL CHECK (collection_type IN ('daily', 'weekly', '10 days', 'monthly')),
	total_payable TEXT NOT NULL,
	balance_remaining TEXT NOT NULL,
	min_payment_amount TEXT NOT NULL,
	start_date DATE NOT NULL,
	next_payment_date DATE,
	status TEXT NOT NULL CHECK (status IN ('active', 'completed', 'closed')),
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_members_status ON members (status);

CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	member_id TEXT NOT NULL REFERENCES members (id) ON DELETE RESTRICT,
	paid_amount TEXT NOT NULL,
	previous_balance TEXT NOT NULL,
	updated_balance TEXT NOT NULL,
	paid_date DATE NOT NULL,
	next_payment_date DATE NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payments_member ON payments (member_id, paid_date DESC, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_payments_paid_date ON payments (paid_date);

CREATE TABLE IF NOT EXISTS admins (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Migrate creates the tables when they don't already exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var schema string
	switch db.DriverName() {
	case DriverPostgres:
		schema = postgresSchema
	case DriverSQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
