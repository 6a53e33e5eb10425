// Package fixtures provides test data factories.
//
// Factories take the repositories to write through, so the same fixtures
// work against SurrealDB and the in-memory store:
//
//	store := memstore.New()
//	f := fixtures.New(store.Users(), store.Jobs())
//	ann := f.CreateUser(t)
//	job := f.CreateJob(t, ann, fixtures.WithStatus(model.JobStatusInterview))
package fixtures
