package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/purchase-orders/constants"
)

const (
	ordersTable    = "orders"
	colCreatedAt   = "created_at"
	colUpdatedAt   = "updated_at"
	businessKeyIdx = "orders_business_key"
)

// ddl returns the statements creating the orders table. Text columns are NOT NULL
// with an empty default so the business key never holds NULL text; numeric columns
// stay nullable.
func ddl() []string {
	defs := make([]string, 0, len(constants.CanonicalColumns)+2)
	for _, c := range constants.CanonicalColumns {
		if constants.IsNumericColumn(c) {
			defs = append(defs, fmt.Sprintf("%q NUMERIC", c))
		} else {
			defs = append(defs, fmt.Sprintf("%q TEXT NOT NULL DEFAULT ''", c))
		}
	}
	defs = append(defs,
		fmt.Sprintf("%q TIMESTAMP NOT NULL", colCreatedAt),
		fmt.Sprintf("%q TIMESTAMP NOT NULL", colUpdatedAt),
	)

	key := make([]string, len(constants.KeyColumns))
	for i, c := range constants.KeyColumns {
		key[i] = fmt.Sprintf("%q", c)
	}
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (\n\t%s\n)", ordersTable, strings.Join(defs, ",\n\t")),
		fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %q ON %q (%s)", businessKeyIdx, ordersTable, strings.Join(key, ", ")),
	}
}

// Migrate creates the orders table and its unique business-key index if missing.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range ddl() {
		if err := db.Driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
