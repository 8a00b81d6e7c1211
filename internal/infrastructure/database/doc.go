// Package database provides the PIN pad's SQLite storage.
//
// The database holds:
//   - schema_migrations: applied migration versions
//   - auth_events: the authentication audit trail (see internal/audit)
//   - nv_words: persisted words for the sqlite NV backend (see internal/nvstore)
//
// Security Considerations:
//   - All queries use parameterised statements
//   - The database file is chmod 0600
//   - Plaintext PINs are never written; attempts are stored by length and digest
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are embedded from the top-level migrations package and are
// additive: new columns are nullable or defaulted, and every .up.sql has a
// matching .down.sql.
package database
