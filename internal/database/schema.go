package database

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.surql
var schema string

// Schema returns the SurrealQL that defines the user and job tables
func Schema() string {
	return schema
}

// Migrate applies the schema. Every statement is IF NOT EXISTS so it can run on each start.
func Migrate(ctx context.Context, db Database) error {
	if err := db.Execute(ctx, schema, nil); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
