package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_New(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.noise")

	w, err := New(dbPath, Metadata{Name: "Test", Kind: KindTexture, Format: "png"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file was not created")
	}

	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected frames table to exist, got count=%d", count)
	}
}

func TestRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "anim.noise")
	meta := Metadata{
		Name:        "drift",
		Kind:        KindTexture,
		Format:      "png",
		Resolution:  64,
		Interval:    250 * time.Millisecond,
		Seed:        42,
		Family:      "perlin",
		Gradient:    "0:#000000,1:#ffffff|0:1,1:1",
		Description: "gradient drift",
		Version:     "1",
	}

	w, err := New(dbPath, meta)
	require.NoError(t, err)
	for i := 0; i < 70; i++ {
		idx, err := w.Append([]byte(fmt.Sprintf("frame %d", i)), time.Duration(i)*meta.Interval)
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
	require.NoError(t, w.Close())

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	count, err := r.FrameCount()
	require.NoError(t, err)
	assert.Equal(t, 70, count)

	frame, err := r.ReadFrame(65)
	require.NoError(t, err)
	assert.Equal(t, "frame 65", string(frame.Data))
	assert.Equal(t, 65*250*time.Millisecond, frame.Elapsed)

	got, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, meta, got)
	assert.Equal(t, "image/png", got.ContentType())

	_, err = r.ReadFrame(70)
	assert.True(t, errors.Is(err, ErrFrameNotFound))
}

func TestNew_DiscardsPreviousRecording(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rerecord.noise")

	record := func(name string, frames int) {
		w, err := New(dbPath, Metadata{Name: name, Kind: KindTexture})
		require.NoError(t, err)
		for i := 0; i < frames; i++ {
			_, err := w.Append([]byte(fmt.Sprintf("%s %d", name, i)), time.Duration(i)*time.Second)
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())
	}
	record("first", 5)
	record("second", 2)

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	count, err := r.FrameCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	frame, err := r.ReadFrame(1)
	require.NoError(t, err)
	assert.Equal(t, "second 1", string(frame.Data))

	_, err = r.ReadFrame(4)
	assert.True(t, errors.Is(err, ErrFrameNotFound))

	meta, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "second", meta.Name)
}

func TestWriter_CopiesData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "copy.noise")
	w, err := New(dbPath, Metadata{})
	require.NoError(t, err)

	buf := []byte("abc")
	_, err = w.Append(buf, 0)
	require.NoError(t, err)
	copy(buf, "xyz")
	require.NoError(t, w.Close())

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()
	frame, err := r.ReadFrame(0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(frame.Data))
}

func TestWriter_ConcurrentAppend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "concurrent.noise")
	w, err := New(dbPath, Metadata{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if _, err := w.Append([]byte("x"), 0); err != nil {
					t.Errorf("append failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()
	count, err := r.FrameCount()
	require.NoError(t, err)
	assert.Equal(t, 100, count)
}

func TestOpenReader_MissingTable(t *testing.T) {
	_, err := OpenReader(filepath.Join(t.TempDir(), "missing.noise"))
	assert.Error(t, err)
}

func TestMetadata_ToMapSkipsEmpty(t *testing.T) {
	m := Metadata{Name: "x", Resolution: 0}.ToMap()
	assert.Equal(t, map[string]string{"name": "x"}, m)
	assert.Equal(t, "application/octet-stream", Metadata{}.ContentType())
	assert.Equal(t, "model/obj", Metadata{Format: "obj"}.ContentType())
}
