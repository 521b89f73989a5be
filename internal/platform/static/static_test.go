package static

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectories(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "static")
	uploads := filepath.Join(base, "uploads")

	d, err := New(root, "static/", uploads)
	require.NoError(t, err)

	assert.DirExists(t, root)
	assert.DirExists(t, uploads)
	assert.Equal(t, root, d.Root())
	assert.Equal(t, "/static/processed_a.jpg", d.URL("processed_a.jpg"))
}

func TestSave_WritesAndOverwrites(t *testing.T) {
	d, err := New(t.TempDir(), "/static")
	require.NoError(t, err)

	write := func(s string) func(io.Writer) error {
		return func(w io.Writer) error {
			_, err := io.WriteString(w, s)
			return err
		}
	}

	require.NoError(t, d.Save("a.jpg", write("first")))
	require.NoError(t, d.Save("a.jpg", write("second")))

	got, err := os.ReadFile(filepath.Join(d.Root(), "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(d.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestSave_WriterErrorLeavesNothing(t *testing.T) {
	d, err := New(t.TempDir(), "/static")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = d.Save("b.jpg", func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(d.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_RejectsPathNames(t *testing.T) {
	d, err := New(t.TempDir(), "/static")
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../x.jpg", "a/b.jpg", `a\b.jpg`} {
		err := d.Save(name, func(io.Writer) error { return nil })
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestWritable(t *testing.T) {
	d, err := New(t.TempDir(), "/static")
	require.NoError(t, err)
	assert.NoError(t, d.Writable())

	missing := &Dir{root: filepath.Join(t.TempDir(), "gone")}
	assert.Error(t, missing.Writable())
}
