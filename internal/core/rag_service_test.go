package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internationally/internal/store"
)

// stubEmbedder maps exact texts to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (e *stubEmbedder) GetEmbedding(text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func newKBStore(t *testing.T, chunks map[string][]float32) *store.SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var content string
	for text := range chunks {
		if content != "" {
			content += "\n\n"
		}
		content += text
	}
	path := filepath.Join(dir, "kb.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err = s.IngestKnowledgeBase(path, func(text string) ([]float32, error) {
		return chunks[text], nil
	})
	require.NoError(t, err)
	return s
}

func TestGetRelevantContextFiltersByThreshold(t *testing.T) {
	chunks := map[string][]float32{
		"F-1 students may work on campus up to 20 hours a week.": {1, 0, 0},
		"The dining halls close at 8pm on weekends.":             {0, 1, 0},
	}
	s := newKBStore(t, chunks)

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"can I work on my visa": {1, 0, 0},
	}}
	rag, err := NewRAGService(s, embedder)
	require.NoError(t, err)

	ctx, err := rag.GetRelevantContext("can I work on my visa")
	require.NoError(t, err)
	assert.Contains(t, ctx, "work on campus")
	assert.NotContains(t, ctx, "dining halls")
}

func TestGetRelevantContextEmptyWhenNothingMatches(t *testing.T) {
	chunks := map[string][]float32{
		"F-1 students may work on campus up to 20 hours a week.": {1, 0, 0},
	}
	s := newKBStore(t, chunks)

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"what's the weather": {0, 1, 0},
	}}
	rag, err := NewRAGService(s, embedder)
	require.NoError(t, err)

	ctx, err := rag.GetRelevantContext("what's the weather")
	require.NoError(t, err)
	assert.Empty(t, ctx)
}

func TestGetRelevantContextEmptyKnowledgeBase(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	rag, err := NewRAGService(s, &stubEmbedder{})
	require.NoError(t, err)

	ctx, err := rag.GetRelevantContext("anything")
	require.NoError(t, err)
	assert.Empty(t, ctx)
}
