// Package database opens the SQLite file that holds the register write
// journal and applies its schema migrations.
//
// The connection uses the mattn/go-sqlite3 driver with an optional WAL
// journal, a busy timeout and a single-connection pool. Migration SQL is
// passed in as an fs.FS (normally migrations.FS, embedded in the binary);
// applied versions are tracked in schema_migrations.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
