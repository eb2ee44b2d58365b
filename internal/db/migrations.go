package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS dresses (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		reference VARCHAR(64),
		price_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		price_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		daily_price_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		daily_price_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS dress_rates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		dress_id UUID NOT NULL REFERENCES dresses(id),
		valid_from TIMESTAMPTZ NOT NULL,
		valid_to TIMESTAMPTZ NOT NULL,
		daily_price_ht NUMERIC(18,2) NOT NULL,
		daily_price_ttc NUMERIC(18,2) NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_dress_rates_dress_id ON dress_rates (dress_id);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		first_name VARCHAR(128),
		last_name VARCHAR(128) NOT NULL,
		phone VARCHAR(32),
		email VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contract_types (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS contract_addons (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		price_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		price_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		included BOOLEAN NOT NULL DEFAULT FALSE
	);`,
	`CREATE TABLE IF NOT EXISTS contract_packages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		price_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		price_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		num_dresses INT NOT NULL DEFAULT 1
	);`,
	`CREATE TABLE IF NOT EXISTS package_addons (
		package_id UUID NOT NULL REFERENCES contract_packages(id) ON DELETE CASCADE,
		addon_id UUID NOT NULL REFERENCES contract_addons(id),
		PRIMARY KEY (package_id, addon_id)
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'booking_status') THEN
			CREATE TYPE booking_status AS ENUM ('CONFIRMED', 'ACTIVE', 'RETURNED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('CREATED', 'ACTIVE', 'CLOSED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(64) NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		contract_type_id UUID NOT NULL,
		package_id UUID REFERENCES contract_packages(id),
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		payment_method VARCHAR(32) NOT NULL DEFAULT 'CARD',
		total_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		deposit_due_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		deposit_due_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		deposit_paid_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		deposit_paid_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		caution_due_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		caution_due_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		caution_paid_ht NUMERIC(18,2) NOT NULL DEFAULT 0,
		caution_paid_ttc NUMERIC(18,2) NOT NULL DEFAULT 0,
		status contract_status NOT NULL DEFAULT 'CREATED',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_customer_id ON contracts (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_period ON contracts (start_at, end_at);`,
	`CREATE TABLE IF NOT EXISTS contract_dresses (
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		dress_id UUID NOT NULL REFERENCES dresses(id),
		position INT NOT NULL DEFAULT 0,
		PRIMARY KEY (contract_id, dress_id)
	);`,
	`CREATE TABLE IF NOT EXISTS contract_addon_links (
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		addon_id UUID NOT NULL REFERENCES contract_addons(id),
		PRIMARY KEY (contract_id, addon_id)
	);`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		dress_id UUID NOT NULL REFERENCES dresses(id),
		contract_id UUID REFERENCES contracts(id),
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		status booking_status NOT NULL DEFAULT 'CONFIRMED',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_dress_id ON bookings (dress_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_period ON bookings (start_at, end_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
