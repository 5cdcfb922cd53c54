// Package sqlite stores PLY element records. SQLite is the query engine and
// JSONL files in the data directory are the source of truth: the database
// is rebuilt from them on every Attach and they are rewritten after
// mutations according to the sync strategy.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/plycore/pkg/ply"
)

// dbFileName is the SQLite cache file inside DataDir.
const dbFileName = "plystore.db"

// Lifecycle and lookup errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrNotFound        = errors.New("element not found")
	ErrInvalidClass    = errors.New("element class must not be empty")
	ErrNilElement      = errors.New("element must not be nil")
)

// Record is one stored element with its identity and class.
type Record struct {
	ID        string
	Class     string
	CreatedAt time.Time
	Element   *ply.DefaultElement
}

// Backend is a SQLite-backed element store. It is safe for concurrent use.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   Config
	dataDir  string
	db       *sql.DB
	logger   *slog.Logger

	// dirty is set when a committed mutation has not yet been written to
	// JSONL under the on_close or batch strategy. pending counts those
	// mutations and batchTimer flushes them after the batch interval.
	dirty      bool
	pending    int
	batchTimer *time.Timer

	now func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for load and persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the store in config.DataDir, creating the directory and
// empty JSONL files if needed, and loads the JSONL files into a fresh
// SQLite database. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := ensureJSONLFiles(dataDir); err != nil {
		return err
	}

	// The database is a cache of the JSONL files and is rebuilt each time.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("creating schema: %w", err)
	}

	stats, err := loadAllJSONL(db, dataDir, b.logger)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}
	b.logger.Debug("store attached",
		"data_dir", dataDir,
		"elements", stats.elements,
		"properties", stats.properties,
		"skipped", stats.skipped)

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.dirty = false
	b.pending = 0
	b.attached = true
	return nil
}

// Detach writes pending changes and closes the database. Detach is
// idempotent; after it, operations return ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.stopBatchTimerLocked()
	if err := b.flushLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.attached = false
	return nil
}

// Flush writes pending changes to the JSONL files. It is a no-op under the
// immediate strategy, where every mutation is written before it commits.
func (b *Backend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return ErrDetached
	}
	return b.flushLocked()
}

func (b *Backend) flushLocked() error {
	if !b.dirty {
		return nil
	}
	if err := persistJSONL(b.db, b.dataDir); err != nil {
		return err
	}
	b.stopBatchTimerLocked()
	b.dirty = false
	b.pending = 0
	return nil
}

// commitLocked commits a mutation. Under the immediate strategy the JSONL
// files are rewritten from tx before it commits, and a failed write rolls
// the mutation back.
// Other strategies commit and record the mutation as pending. The caller
// holds b.mu.
func (b *Backend) commitLocked(tx *sql.Tx) error {
	switch b.config.SyncStrategy {
	case SyncOnClose, SyncBatch:
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing: %w", err)
		}
		b.dirty = true
		b.pending++
		if b.config.SyncStrategy == SyncBatch {
			b.batchLocked()
		}
		return nil
	}

	if err := persistJSONL(tx, b.dataDir); err != nil {
		// One file may already hold the mutation; roll back and rewrite
		// both from the committed state.
		tx.Rollback()
		if perr := persistJSONL(b.db, b.dataDir); perr != nil {
			b.logger.Error("JSONL files differ from the database", "data_dir", b.dataDir, "error", perr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		// The files already hold the rolled-back mutation; rewrite them
		// from the committed state.
		if perr := persistJSONL(b.db, b.dataDir); perr != nil {
			b.logger.Error("JSONL files differ from the database", "data_dir", b.dataDir, "error", perr)
		}
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// batchLocked flushes once BatchSize mutations are pending and otherwise
// arms the interval timer. A failed flush leaves the mutations pending for
// the next one. The caller holds b.mu.
func (b *Backend) batchLocked() {
	if b.pending >= b.config.batchSize() {
		if err := b.flushLocked(); err != nil {
			b.logger.Error("batch flush failed", "data_dir", b.dataDir, "pending", b.pending, "error", err)
		}
		return
	}
	if b.batchTimer == nil {
		b.batchTimer = time.AfterFunc(b.config.batchInterval(), b.flushOnTimer)
	}
}

// flushOnTimer runs on the batch timer's goroutine.
func (b *Backend) flushOnTimer() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.batchTimer = nil
	if !b.attached {
		return
	}
	if err := b.flushLocked(); err != nil {
		b.logger.Error("batch flush failed", "data_dir", b.dataDir, "pending", b.pending, "error", err)
	}
}

func (b *Backend) stopBatchTimerLocked() {
	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}

// Put stores e under class. An empty id generates a new UUID v7; storing
// an existing id replaces its class and properties but keeps its position
// and creation time. Returns the id used. Under the immediate strategy an
// error means nothing was stored.
func (b *Backend) Put(class, id string, e *ply.DefaultElement) (string, error) {
	if class == "" {
		return "", ErrInvalidClass
	}
	if e == nil {
		return "", ErrNilElement
	}

	type row struct {
		name, typ, value string
	}
	rows := make([]row, 0, e.Len())
	for name, p := range e.All() {
		value, err := ply.EncodeValue(p)
		if err != nil {
			return "", fmt.Errorf("encoding property %s: %w", name, err)
		}
		rows = append(rows, row{name: name, typ: ply.VariantName(p), value: string(value)})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", ErrDetached
	}
	if id == "" {
		id = generateUUID()
	}

	tx, err := b.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning put: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM elements WHERE element_id = ?)", id).Scan(&exists); err != nil {
		return "", fmt.Errorf("checking element: %w", err)
	}
	if exists {
		if _, err := tx.Exec("UPDATE elements SET class = ? WHERE element_id = ?", class, id); err != nil {
			return "", fmt.Errorf("updating element: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM element_properties WHERE element_id = ?", id); err != nil {
			return "", fmt.Errorf("clearing properties: %w", err)
		}
	} else {
		createdAt := b.now().UTC().Format(time.RFC3339Nano)
		_, err := tx.Exec(`INSERT INTO elements (element_id, class, seq, created_at)
VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM elements), ?)`, id, class, createdAt)
		if err != nil {
			return "", fmt.Errorf("inserting element: %w", err)
		}
	}

	for i, r := range rows {
		_, err := tx.Exec("INSERT INTO element_properties (element_id, name, ordinal, type, value) VALUES (?, ?, ?, ?, ?)",
			id, r.name, i, r.typ, r.value)
		if err != nil {
			return "", fmt.Errorf("inserting property %s: %w", r.name, err)
		}
	}
	if err := b.commitLocked(tx); err != nil {
		return "", fmt.Errorf("put %s: %w", id, err)
	}
	return id, nil
}

// Get returns the record stored under id, or ErrNotFound.
func (b *Backend) Get(id string) (*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, ErrDetached
	}

	rec := &Record{ID: id}
	var createdAt string
	err := b.db.QueryRow("SELECT class, created_at FROM elements WHERE element_id = ?", id).Scan(&rec.Class, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading element: %w", err)
	}
	rec.CreatedAt = b.parseCreatedAt(id, createdAt)

	if rec.Element, err = b.loadElement(id); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record stored under id, or returns ErrNotFound.
func (b *Backend) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return ErrDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM elements WHERE element_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting element: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err := b.commitLocked(tx); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Fetch returns every record of class in insertion order. An empty class
// returns all records.
func (b *Backend) Fetch(class string) ([]*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, ErrDetached
	}

	query := "SELECT element_id, class, created_at FROM elements ORDER BY seq"
	var args []any
	if class != "" {
		query = "SELECT element_id, class, created_at FROM elements WHERE class = ? ORDER BY seq"
		args = append(args, class)
	}
	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching elements: %w", err)
	}
	var records []*Record
	for rows.Next() {
		rec := &Record{}
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Class, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning element: %w", err)
		}
		rec.CreatedAt = b.parseCreatedAt(rec.ID, createdAt)
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.Element, err = b.loadElement(rec.ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Classes returns the distinct element classes in order of first use.
func (b *Backend) Classes() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, ErrDetached
	}

	rows, err := b.db.Query("SELECT class FROM elements GROUP BY class ORDER BY MIN(seq)")
	if err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// loadElement rebuilds the element stored under id. The caller holds b.mu.
func (b *Backend) loadElement(id string) (*ply.DefaultElement, error) {
	rows, err := b.db.Query("SELECT name, type, value FROM element_properties WHERE element_id = ? ORDER BY ordinal", id)
	if err != nil {
		return nil, fmt.Errorf("reading properties: %w", err)
	}
	defer rows.Close()

	e := ply.NewDefaultElement()
	for rows.Next() {
		var name, typ, value string
		if err := rows.Scan(&name, &typ, &value); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		p, err := ply.DecodeValue(typ, []byte(value))
		if err != nil {
			return nil, fmt.Errorf("decoding %s.%s: %w", id, name, err)
		}
		e.SetProperty(name, p)
	}
	return e, rows.Err()
}

// parseCreatedAt parses a stored creation time. The loader rejects bad
// values, so a failure here means the database was changed behind the
// store; it is logged and reported as the zero time.
func (b *Backend) parseCreatedAt(id, value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		b.logger.Warn("unparsable created_at", "element_id", id, "value", value, "error", err)
	}
	return t
}

// generateUUID generates a new UUID v7 for element IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to v4 if v7 generation fails.
		return uuid.New().String()
	}
	return id.String()
}
