// Package sqlitevec provides a SQLite-backed document driver using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/kauni/pkg/vector"
)

// DefaultTable is the document table name used when Config.Table is empty.
const DefaultTable = "documents"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Driver implements vector.Driver using SQLite with sqlite-vec.
type Driver struct {
	db       *sql.DB
	docTable string
	vecTable string
	logger   *slog.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Table is the document table name. The embeddings live in "<table>_vec".
	Table string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewDriver creates a new SQLite document driver backed by sqlite-vec.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	table := c.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrStore, err)
	}

	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	d := &Driver{
		db:       db,
		docTable: table,
		vecTable: table + "_vec",
		logger:   logger,
	}

	// vec0 virtual tables use integer rowids, so documents map their string
	// ID to an integer rowid shared with the embeddings table.
	createDocs := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`, d.docTable)
	if _, err := db.Exec(createDocs); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d])`,
		d.vecTable, c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec document driver initialized",
		"db_path", c.DBPath,
		"table", table,
		"dimensions", c.Dimensions,
		"vec_version", vecVersion,
	)

	return d, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Upsert stores documents with their embeddings.
// If a document with the same ID already exists, it is replaced.
func (d *Driver) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", vector.ErrStore, err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if err := d.upsertOne(ctx, tx, doc); err != nil {
			return fmt.Errorf("%w: %v", vector.ErrStore, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", vector.ErrStore, err)
	}

	d.logger.Debug("upserted documents to sqlite-vec", "count", len(docs))

	return nil
}

func (d *Driver) upsertOne(ctx context.Context, tx *sql.Tx, doc vector.Document) error {
	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata for doc %s: %w", doc.ID, err)
	}
	embBlob := serializeFloat32(doc.Embedding)

	var rowID int64
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT rowid FROM %s WHERE doc_id = ?`, d.docTable), doc.ID,
	).Scan(&rowID)

	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET content = ?, metadata = ? WHERE rowid = ?`, d.docTable),
			doc.Content, metadata, rowID,
		); err != nil {
			return fmt.Errorf("updating document %s: %w", doc.ID, err)
		}

		// vec0 does not support UPDATE
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, d.vecTable), rowID,
		); err != nil {
			return fmt.Errorf("deleting old embedding for doc %s: %w", doc.ID, err)
		}

	case errors.Is(err, sql.ErrNoRows):
		result, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s(doc_id, content, metadata) VALUES (?, ?, ?)`, d.docTable),
			doc.ID, doc.Content, metadata,
		)
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}

		rowID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid for doc %s: %w", doc.ID, err)
		}

	default:
		return fmt.Errorf("checking for existing document %s: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, d.vecTable),
		rowID, embBlob,
	); err != nil {
		return fmt.Errorf("inserting embedding for doc %s: %w", doc.ID, err)
	}

	return nil
}

// Query finds the k documents nearest to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	// KNN via vec0 MATCH, joined back to the document table.
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			d.doc_id,
			d.content,
			d.metadata,
			ve.distance
		FROM %s ve
		INNER JOIN %s d ON d.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance
	`, d.vecTable, d.docTable), serializeFloat32(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %v", vector.ErrStore, err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var (
			r        vector.QueryResult
			metadata string
			distance float64
		)
		if err := rows.Scan(&r.ID, &r.Content, &metadata, &distance); err != nil {
			return nil, fmt.Errorf("%w: scanning query result: %v", vector.ErrStore, err)
		}
		r.Metadata = decodeMetadata(metadata)
		r.Distance = float32(max(distance, 0))
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating query results: %v", vector.ErrStore, err)
	}

	d.logger.Debug("queried sqlite-vec", "results", len(results))

	return results, nil
}

// Scan returns up to k documents in storage order.
func (d *Driver) Scan(ctx context.Context, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	rows, err := d.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT doc_id, content, metadata FROM %s LIMIT ?`, d.docTable), k)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning documents: %v", vector.ErrStore, err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var (
			r        vector.QueryResult
			metadata string
		)
		if err := rows.Scan(&r.ID, &r.Content, &metadata); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", vector.ErrStore, err)
		}
		r.Metadata = decodeMetadata(metadata)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %v", vector.ErrStore, err)
	}

	return results, nil
}

// Count returns the number of stored documents.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, d.docTable)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", vector.ErrStore, err)
	}
	return n, nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

func encodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(s string) map[string]any {
	m := map[string]any{}
	_ = json.Unmarshal([]byte(s), &m)
	return m
}

var _ vector.Driver = (*Driver)(nil)
