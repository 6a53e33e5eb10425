// Package repository implements the SurrealDB data access layer.
//
// Repositories take a database.Database in their constructor and speak
// parameterized SurrealQL. Lookups that find nothing return nil, nil; the
// service layer decides what absence means.
//
// Job queries always filter on both id and owner:
//
//	SELECT * FROM job WHERE id = type::record($id) AND owner = type::record($owner)
//
// so a job that belongs to another user is indistinguishable from a job that
// does not exist. Ids from clients are normalized to "table:key" and ids that
// name another table are treated as absent without touching the store.
package repository
