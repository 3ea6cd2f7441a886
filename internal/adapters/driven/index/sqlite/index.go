// Package sqlite provides a durable vector index backed by SQLite.
//
// Chunks live in a single table with typed metadata columns; the
// department filter is pushed into SQL so restricted rows never leave
// the database, and similarity ranking happens in process.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/knowgrid/knowgrid/internal/adapters/driven/index"
	"github.com/knowgrid/knowgrid/internal/adapters/driven/index/sqlite/migrations"
	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// dimensionsKey is the index_meta key holding the embedding dimension.
const dimensionsKey = "dimensions"

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a SQLite-backed implementation of driven.VectorIndex.
type Index struct {
	db   *sql.DB
	path string
}

// New creates a SQLite index at the specified data directory.
// If dataDir is empty, defaults to ~/.knowgrid/data.
func New(dataDir string) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".knowgrid", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode so reads do not block behind ingestion writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &Index{
		db:   db,
		path: dbPath,
	}

	if err := idx.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return idx, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// migrate runs all pending migrations.
func (idx *Index) migrate(fsys embed.FS) error {
	_, err := idx.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := idx.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Add upserts chunks by id in a single transaction.
func (idx *Index) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	dims, err := idx.dimensionsTx(ctx, tx)
	if err != nil {
		return err
	}
	if dims == 0 {
		dims = len(chunks[0].Embedding)
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != dims {
			return fmt.Errorf("add chunk %s: got %d dimensions, index has %d: %w",
				chunk.ID, len(chunk.Embedding), dims, domain.ErrDimensionMismatch)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, dimensionsKey, strconv.Itoa(dims))
	if err != nil {
		return fmt.Errorf("saving index dimensions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source, department, doc_type, access_level,
			chunk_index, total_chunks, section, page_number, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			department = excluded.department,
			doc_type = excluded.doc_type,
			access_level = excluded.access_level,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks,
			section = excluded.section,
			page_number = excluded.page_number,
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		m := chunk.Meta
		_, err := stmt.ExecContext(ctx, chunk.ID, m.Source, m.Department, m.DocType,
			m.AccessLevel, m.ChunkIndex, m.TotalChunks, m.Section, m.PageNumber,
			chunk.Text, float32SliceToBytes(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// DeleteSource removes every chunk of the given source.
func (idx *Index) DeleteSource(ctx context.Context, source string) (int, error) {
	result, err := idx.db.ExecContext(ctx, "DELETE FROM chunks WHERE source = ?", source)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks of %q: %w", source, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(removed), nil
}

// Search loads the filter-visible rows and ranks them by cosine
// similarity in process.
func (idx *Index) Search(ctx context.Context, query []float32, k int, filter domain.AccessFilter) ([]driven.VectorHit, error) {
	if k <= 0 || filter.Unsatisfiable() {
		return nil, nil
	}

	sqlQuery := `
		SELECT id, source, department, doc_type, access_level,
			chunk_index, total_chunks, section, page_number, content, embedding
		FROM chunks
	`
	var args []any
	if !filter.AllowAll {
		placeholders := strings.Repeat("?,", len(filter.Departments))
		sqlQuery += " WHERE department IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, dep := range filter.Departments {
			args = append(args, dep)
		}
	}

	rows, err := idx.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return index.TopK(candidates, query, k, filter), nil
}

// Stats reports chunk, source, and per-department counts.
func (idx *Index) Stats(ctx context.Context) (driven.IndexStats, error) {
	var stats driven.IndexStats

	row := idx.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(DISTINCT source) FROM chunks")
	if err := row.Scan(&stats.ChunkCount, &stats.DocumentCount); err != nil {
		return driven.IndexStats{}, fmt.Errorf("counting chunks: %w", err)
	}

	rows, err := idx.db.QueryContext(ctx, "SELECT department, COUNT(*) FROM chunks GROUP BY department")
	if err != nil {
		return driven.IndexStats{}, fmt.Errorf("counting departments: %w", err)
	}
	defer rows.Close()

	stats.Departments = make(map[string]int)
	for rows.Next() {
		var department string
		var count int
		if err := rows.Scan(&department, &count); err != nil {
			return driven.IndexStats{}, fmt.Errorf("scanning department count: %w", err)
		}
		stats.Departments[department] = count
	}
	if err := rows.Err(); err != nil {
		return driven.IndexStats{}, fmt.Errorf("iterating department counts: %w", err)
	}

	return stats, nil
}

// Dimensions returns the stored embedding dimension, 0 when the index
// is empty.
func (idx *Index) Dimensions(ctx context.Context) (int, error) {
	return scanDimensions(idx.db.QueryRowContext(ctx,
		"SELECT value FROM index_meta WHERE key = ?", dimensionsKey))
}

// dimensionsTx reads the stored dimension inside a transaction.
func (idx *Index) dimensionsTx(ctx context.Context, tx *sql.Tx) (int, error) {
	return scanDimensions(tx.QueryRowContext(ctx,
		"SELECT value FROM index_meta WHERE key = ?", dimensionsKey))
}

// scanDimensions parses the stored dimension, 0 when unset.
func scanDimensions(row *sql.Row) (int, error) {
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading index dimensions: %w", err)
	}

	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing index dimensions %q: %w", value, err)
	}
	return dims, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (domain.Chunk, error) {
	var chunk domain.Chunk
	var blob []byte

	if err := rows.Scan(&chunk.ID, &chunk.Meta.Source, &chunk.Meta.Department,
		&chunk.Meta.DocType, &chunk.Meta.AccessLevel, &chunk.Meta.ChunkIndex,
		&chunk.Meta.TotalChunks, &chunk.Meta.Section, &chunk.Meta.PageNumber,
		&chunk.Text, &blob); err != nil {
		return domain.Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(blob)
	return chunk, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
