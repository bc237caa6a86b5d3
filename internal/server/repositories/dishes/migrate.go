package dishes

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/gophprovider/internal/server/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Open opens the SQLite catalogue at dsn and applies the embedded schema and
// seed migrations. Already applied migrations are skipped.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the catalogue migrations through a dedicated goose provider,
// leaving the package-level goose state to the credential store.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations.Dishes, "sqlite")
	if err != nil {
		return err
	}

	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("dishes migrations: %w", err)
	}
	return nil
}
