package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/purchase-orders/internal/common"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDirectory_NaturalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "po_10.md", "ten")
	writeFile(t, dir, "po_2.md", "two")
	writeFile(t, dir, "po_1.json", "one")
	writeFile(t, dir, "cover.txt", "cover")
	writeFile(t, dir, "scan.pdf", "binary")
	writeFile(t, dir, ".po_3.md", "hidden")

	doc, err := NewFSIngestor(nil).LoadDirectory(context.Background(), dir)

	require.NoError(t, err)
	var sources, texts []string
	for _, p := range doc.Pages {
		sources = append(sources, p.Source)
		texts = append(texts, p.Text)
	}
	assert.Equal(t, []string{"po_1.json", "po_2.md", "po_10.md", "cover.txt"}, sources)
	assert.Equal(t, []string{"one", "two", "ten", "cover"}, texts)
	assert.Equal(t, 1, doc.Pages[0].Index)
	assert.Equal(t, uint32(4), doc.Stats.Matched)
	assert.Equal(t, uint32(4), doc.Stats.Succeeded)
	assert.Equal(t, filepath.Base(dir), doc.Name)
}

func TestLoadDirectory_Errors(t *testing.T) {
	i := NewFSIngestor(nil)

	_, err := i.LoadDirectory(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = i.LoadDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, common.ErrNotFound)

	file := writeFile(t, t.TempDir(), "po_1.md", "x")
	_, err = i.LoadDirectory(context.Background(), file)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLoadFile_RejectsExtension(t *testing.T) {
	p := writeFile(t, t.TempDir(), "po_1.pdf", "x")

	_, err := NewFSIngestor(nil).LoadFile(context.Background(), p, 1)

	assert.Error(t, err)
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"po_12.md", 12, true},
		{"/tmp/x/page-003.txt", 3, true},
		{"2024_po_7_final.md", 7, true},
		{"cover.md", 0, false},
	}
	for _, tt := range tests {
		got, ok := PageNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
