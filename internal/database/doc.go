// Package database provides the document store handle for the Jobs API.
//
// The Database interface abstracts SurrealDB so repositories can be tested
// against fakes and the handle can be injected rather than held globally.
//
//   - Query: one {status, result} entry per statement
//   - QueryOne: first record of the first statement, or ErrNotFound
//   - Execute: run statements, ignore results
//
// The schema (user and job tables, the unique email index and the owner
// index) is embedded from schema.surql and applied with Migrate at start-up.
//
//	db := database.NewSurrealDB(cfg)
//	if err := db.Connect(ctx); err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := database.Migrate(ctx, db); err != nil {
//	    return err
//	}
//
// Failures wrap ErrConnection or ErrQuery; check them with errors.Is.
package database
