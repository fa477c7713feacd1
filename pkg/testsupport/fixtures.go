package testsupport

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest interface{}) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// OpenDB opens a private in-memory sqlite database and creates a table for
// every model, e.g. (*store.SubjectRow)(nil). The database is closed when
// the test ends.
func OpenDB(t *testing.T, models ...interface{}) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// every connection to :memory: is a distinct database
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("failed to create table for %T: %v", model, err)
		}
	}

	return db
}

// InsertFixture loads a JSON array from path into rows, a pointer to a
// slice of models, and inserts it.
func InsertFixture(t *testing.T, db bun.IDB, path string, rows interface{}) {
	t.Helper()

	LoadFixtureJSON(t, path, rows)
	Insert(t, db, rows)
}

// Insert inserts rows, a pointer to a model or to a slice of models.
// Empty slices are skipped.
func Insert(t *testing.T, db bun.IDB, rows interface{}) {
	t.Helper()

	v := reflect.Indirect(reflect.ValueOf(rows))
	if v.Kind() == reflect.Slice && v.Len() == 0 {
		return
	}
	if _, err := db.NewInsert().Model(rows).Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert %T: %v", rows, err)
	}
}
