package back // nolint:testpackage

import (
	"crosspointx/internal/config"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

// testBack returns a Back over a fresh in-memory database with the full
// schema applied. A single connection is enforced, in-memory SQLite gives
// every new connection its own empty database.
func testBack(t *testing.T) *Back {
	t.Helper()

	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("unable to open in-memory DB: %s", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := ioutil.ReadFile(filepath.Join("..", "..", "migrations", "000001_initial.up.sql"))
	if err != nil {
		t.Fatalf("unable to read schema: %s", err)
	}

	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("unable to apply schema: %s", err)
	}

	return &Back{
		db:            db,
		config:        &config.Config{},
		notifications: map[int]chan Notification{},
	}
}

func registerTestPlayer(t *testing.T, b *Back, name string) Player {
	t.Helper()

	player, err := b.RegisterPlayer(name, "")
	if err != nil {
		t.Fatalf("unable to register %s: %s", name, err)
	}

	return player
}

func createTestVenue(t *testing.T, b *Back, name, slug string) Venue {
	t.Helper()

	venue := NewVenue(name, slug)
	if err := b.transaction(venue.insert); err != nil {
		t.Fatalf("unable to create venue %s: %s", slug, err)
	}

	return venue
}
