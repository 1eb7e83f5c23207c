package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryRecord(id, content string, embedding []float32) ContentRecord {
	return ContentRecord{
		ID:           id,
		DocumentName: "doc.pdf",
		PageNumber:   1,
		ContentType:  ContentTypeText,
		Content:      content,
		Embedding:    embedding,
	}
}

func TestMemoryUpsertIdempotent(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, memoryRecord("a", "old content", []float32{1, 0})))
	require.NoError(t, st.Upsert(ctx, memoryRecord("a", "new content", []float32{0, 1})))

	assert.Equal(t, 1, st.Count())
	record, ok := st.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new content", record.Content)
}

func TestMemoryKNNSearchOrdersBySimilarity(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, memoryRecord("aligned", "x", []float32{1, 0})))
	require.NoError(t, st.Upsert(ctx, memoryRecord("diagonal", "x", []float32{1, 1})))
	require.NoError(t, st.Upsert(ctx, memoryRecord("orthogonal", "x", []float32{0, 1})))

	hits, err := st.KNNSearch(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "aligned", hits[0].ID)
	assert.Equal(t, "diagonal", hits[1].ID)
	assert.Equal(t, "orthogonal", hits[2].ID)
	assert.InDelta(t, 1.0, hits[0].RawScore, 1e-9)
}

func TestMemoryKNNSearchAppliesLimit(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, st.Upsert(ctx, memoryRecord(id, "x", []float32{1, 0})))
	}

	hits, err := st.KNNSearch(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMemoryLexicalSearchScoresByTermCount(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, memoryRecord("twice", "circle and circle again", []float32{1, 0})))
	require.NoError(t, st.Upsert(ctx, memoryRecord("once", "a single Circle here", []float32{1, 0})))
	require.NoError(t, st.Upsert(ctx, memoryRecord("none", "a square only", []float32{1, 0})))

	hits, err := st.LexicalSearch(ctx, "circle", 3)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "twice", hits[0].ID)
	assert.Equal(t, 2.0, hits[0].RawScore)
	// 匹配不区分大小写
	assert.Equal(t, "once", hits[1].ID)
}

func TestMemorySearchTieBreakByID(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, memoryRecord("z", "circle", []float32{1, 0})))
	require.NoError(t, st.Upsert(ctx, memoryRecord("a", "circle", []float32{1, 0})))

	hits, err := st.LexicalSearch(ctx, "circle", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "z", hits[1].ID)
}

func TestMemorySearchEmptyInputs(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Upsert(ctx, memoryRecord("a", "circle", []float32{1, 0})))

	hits, err := st.KNNSearch(ctx, nil, 3)
	require.NoError(t, err)
	assert.Nil(t, hits)

	hits, err = st.LexicalSearch(ctx, "   ", 3)
	require.NoError(t, err)
	assert.Nil(t, hits)
}
