package store

import (
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Tables from schema.sql
// 1 - Added idx_entries_run_key for ordered scans
const currentSchemaVersion = 1

// collationName is the SQLite collation ordering entry keys.
const collationName = "jcodec"

// ErrSchemaMismatch is returned when a database is opened with a schema other
// than the one it was created with.
var ErrSchemaMismatch = errors.New("store: schema does not match database")

// ErrNoSchema is returned when opening a database without a schema and the
// database does not record one.
var ErrNoSchema = errors.New("store: database has no schema")

// Options configures a Store. The zero value is usable.
type Options struct {
	// RunIDs generates run identifiers. Nil means UUIDv7Generator.
	RunIDs RunIDGenerator

	// Compress stores payloads zstd-compressed when that makes them smaller.
	// Reading handles both forms regardless of this setting.
	Compress bool

	// Logger receives store diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Store is a sorted spill store for keys of one schema.
// It is safe for concurrent use.
type Store struct {
	db          *sql.DB
	schema      schema.Schema
	fingerprint string
	runIDs      RunIDGenerator
	compress    bool
	logger      *slog.Logger

	mu    sync.Mutex // guards codec
	codec *codec.Codec
}

// Open creates or opens a SQLite database at the given path for keys of s.
// Applies required pragmas and migrations automatically.
//
// A nil schema opens an existing database with the schema it records.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string, s schema.Schema, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if s == nil {
		stored, err := ReadSchema(path)
		if err != nil {
			return nil, err
		}
		s = stored
	}

	c, err := codec.New(s)
	if err != nil {
		return nil, fmt.Errorf("failed to build codec: %w", err)
	}
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint schema: %w", err)
	}
	doc, err := schema.MarshalDoc(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	driver, err := registerDriver(s, fp, logger)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// exists per connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := bindSchema(db, fp, doc); err != nil {
		db.Close()
		return nil, err
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = UUIDv7Generator{}
	}

	logger.Debug("store opened", "path", path, "schema", schema.Format(s), "fingerprint", fp)
	return &Store{
		db:          db,
		schema:      s,
		fingerprint: fp,
		runIDs:      runIDs,
		compress:    opts.Compress,
		logger:      logger,
		codec:       c,
	}, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Schema returns the schema of the store's keys.
func (s *Store) Schema() schema.Schema {
	return s.schema
}

// Fingerprint returns the fingerprint of the store's schema.
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

// ReadSchema returns the schema recorded in the database at path without
// opening it as a store.
func ReadSchema(path string) (schema.Schema, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var doc []byte
	err = db.QueryRow(`SELECT doc FROM schemas LIMIT 1`).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "no such table") {
			return nil, ErrNoSchema
		}
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := schema.ParseDoc(doc)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return s, nil
}

var (
	driversMu sync.Mutex
	drivers   = make(map[string]bool)
)

// registerDriver registers, once per schema, a sqlite3 driver whose
// connections carry the jcodec collation for s. The collation logs to the
// logger of the first store opened for the schema.
func registerDriver(s schema.Schema, fp string, logger *slog.Logger) (string, error) {
	name := "sqlite3_jcodec_" + fp[:16]

	driversMu.Lock()
	defer driversMu.Unlock()
	if drivers[name] {
		return name, nil
	}

	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			c, err := codec.New(s)
			if err != nil {
				return fmt.Errorf("build collation codec: %w", err)
			}
			return conn.RegisterCollation(collationName, keyCollation(c, logger))
		},
	})
	drivers[name] = true
	return name, nil
}

// keyCollation compares hex-encoded keys with c. SQLite needs a total order
// and cannot take an error, so keys that fail to decode compare as text.
// The connection serializes calls, so c is never used concurrently.
func keyCollation(c *codec.Codec, logger *slog.Logger) func(a, b string) int {
	var bufA, bufB []byte
	return func(a, b string) int {
		var errA, errB error
		bufA, errA = decodeKey(bufA[:0], a)
		bufB, errB = decodeKey(bufB[:0], b)
		if errA == nil && errB == nil {
			r, err := c.CompareBytes(bufA, bufB)
			if err == nil {
				return r
			}
			errA = err
		}
		logger.Warn("store: collation fell back to text order", "error", errors.Join(errA, errB))
		return strings.Compare(a, b)
	}
}

func encodeKey(enc []byte) string {
	return hex.EncodeToString(enc)
}

func decodeKey(dst []byte, key string) ([]byte, error) {
	return hex.AppendDecode(dst, []byte(key))
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the ordered scan index: codec order of key, then
// insertion order.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_entries_run_key
		ON entries(run, key, id)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// bindSchema records the schema of a new database, or checks that an
// existing database was created with the same one.
func bindSchema(db *sql.DB, fp string, doc []byte) error {
	var existing string
	err := db.QueryRow(`SELECT fingerprint FROM schemas LIMIT 1`).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.Exec(`INSERT INTO schemas (fingerprint, doc) VALUES (?, ?)`, fp, doc); err != nil {
			return fmt.Errorf("record schema: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema: %w", err)
	case existing != fp:
		return fmt.Errorf("%w: database has %s, opened with %s", ErrSchemaMismatch, existing[:16], fp[:16])
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
