package archive

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrFrameNotFound is returned for indices missing from the archive.
var ErrFrameNotFound = errors.New("frame not found")

// Frame is a decoded archive frame.
type Frame struct {
	Index   int
	Elapsed time.Duration
	Data    []byte
}

// Reader reads frames from an archive database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens an archive database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain frames table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadFrame reads a frame and returns its decompressed data.
func (r *Reader) ReadFrame(index int) (Frame, error) {
	var (
		elapsedMS  int64
		compressed []byte
	)
	err := r.db.QueryRow(
		"SELECT elapsed_ms, frame_data FROM frames WHERE frame_index=?", index,
	).Scan(&elapsedMS, &compressed)

	if errors.Is(err, sql.ErrNoRows) {
		return Frame{}, fmt.Errorf("%w: %d", ErrFrameNotFound, index)
	}
	if err != nil {
		return Frame{}, fmt.Errorf("failed to query frame: %w", err)
	}

	data, err := gzipDecompress(compressed)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decompress frame: %w", err)
	}

	return Frame{
		Index:   index,
		Elapsed: time.Duration(elapsedMS) * time.Millisecond,
		Data:    data,
	}, nil
}

// FrameCount returns the number of stored frames.
func (r *Reader) FrameCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return count, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		values[name] = value
	}

	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return metadataFromMap(values), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
