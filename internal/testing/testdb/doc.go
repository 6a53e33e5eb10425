// Package testdb provides SurrealDB databases for integration tests.
//
// Each TestDB gets its own namespace with the schema applied, so tests can
// run in parallel against one server. Tests using it are skipped unless
// TEST_DB_HOST is set:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewJobRepository(tdb.DB)
//	}
package testdb
