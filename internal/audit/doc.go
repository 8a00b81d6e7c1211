// Package audit persists the PIN pad's authentication trail.
//
// Every verification attempt and every lockout transition is written to the
// auth_events table. Rows carry the candidate length and, for failed
// attempts, its FNV-1a digest. PIN digits are never stored.
//
// Usage:
//
//	repo := audit.NewSQLiteRepository(db, clockwork.NewRealClock())
//	res, err := repo.List(ctx, audit.Filter{Kind: audit.KindLockout})
package audit
