package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihub/pdfchat-go/internal/store"
)

// stubStore 返回预置结果的存储桩
type stubStore struct {
	knnHits     []store.SearchHit
	lexicalHits []store.SearchHit
	knnErr      error
	lexicalErr  error
	upserts     []store.ContentRecord
}

func (s *stubStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *stubStore) Upsert(ctx context.Context, record store.ContentRecord) error {
	s.upserts = append(s.upserts, record)
	return nil
}

func (s *stubStore) KNNSearch(ctx context.Context, embedding []float32, limit int) ([]store.SearchHit, error) {
	return s.knnHits, s.knnErr
}

func (s *stubStore) LexicalSearch(ctx context.Context, keywords string, limit int) ([]store.SearchHit, error) {
	return s.lexicalHits, s.lexicalErr
}

func (s *stubStore) Ready() bool {
	return true
}

// stubEmbedder 返回固定向量
type stubEmbedder struct {
	vector []float32
	err    error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.vector, e.err
}

func (e *stubEmbedder) Dimensions() int { return len(e.vector) }
func (e *stubEmbedder) Ready() bool     { return e.err == nil }

// stubKeywords 返回固定关键词
type stubKeywords struct {
	keywords string
	err      error
}

func (k *stubKeywords) Extract(question string) (string, error) {
	return k.keywords, k.err
}

func hit(id string, score float64) store.SearchHit {
	return store.SearchHit{
		ID:           id,
		DocumentName: "manual.pdf",
		PageNumber:   1,
		ContentType:  store.ContentTypeText,
		Content:      "content of " + id,
		RawScore:     score,
	}
}

func newTestEngine(st store.Store) *HybridSearchEngine {
	return NewHybridSearchEngine(st,
		&stubEmbedder{vector: []float32{0.1, 0.2}},
		&stubKeywords{keywords: "circle color"})
}

func TestSearchAlphaOneFollowsKNNOrder(t *testing.T) {
	st := &stubStore{
		knnHits:     []store.SearchHit{hit("a", 0.9), hit("b", 0.6), hit("c", 0.3)},
		lexicalHits: []store.SearchHit{hit("c", 5.0), hit("d", 2.0)},
	}
	results, err := newTestEngine(st).Search(context.Background(), "question", 1.0, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Equal(t, "c", results[2].ID)
}

func TestSearchAlphaZeroFollowsLexicalOrder(t *testing.T) {
	st := &stubStore{
		knnHits:     []store.SearchHit{hit("a", 0.9), hit("b", 0.6)},
		lexicalHits: []store.SearchHit{hit("c", 5.0), hit("d", 2.0)},
	}
	results, err := newTestEngine(st).Search(context.Background(), "question", 0.0, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "c", results[0].ID)
	assert.Equal(t, "d", results[1].ID)
}

func TestSearchMaxScoreNormalization(t *testing.T) {
	st := &stubStore{
		knnHits: []store.SearchHit{hit("a", 0.9), hit("b", 0.6), hit("c", 0.3)},
	}
	results, err := newTestEngine(st).Search(context.Background(), "question", 1.0, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.667, results[1].Score, 1e-3)
	assert.InDelta(t, 0.333, results[2].Score, 1e-3)
}

func TestSearchFusesBothSignals(t *testing.T) {
	st := &stubStore{
		knnHits:     []store.SearchHit{hit("a", 0.9), hit("c", 0.3)},
		lexicalHits: []store.SearchHit{hit("c", 5.0), hit("d", 2.0)},
	}
	results, err := newTestEngine(st).Search(context.Background(), "question", 0.8, 4)
	require.NoError(t, err)

	byID := make(map[string]float64, len(results))
	for _, result := range results {
		byID[result.ID] = result.Score
	}

	// 双路命中：0.8*(0.3/0.9) + 0.2*(5.0/5.0)
	assert.InDelta(t, 0.8*(0.3/0.9)+0.2, byID["c"], 1e-9)
	// 仅KNN命中：缺席的一路记0，不重新归一化
	assert.InDelta(t, 0.8*1.0, byID["a"], 1e-9)
	// 仅全文命中
	assert.InDelta(t, 0.2*(2.0/5.0), byID["d"], 1e-9)
}

func TestSearchTieBreakByID(t *testing.T) {
	st := &stubStore{
		knnHits: []store.SearchHit{hit("z", 0.5), hit("a", 0.5), hit("m", 0.5)},
	}
	results, err := newTestEngine(st).Search(context.Background(), "question", 1.0, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "m", results[1].ID)
	assert.Equal(t, "z", results[2].ID)
}

func TestSearchEmptyQuestion(t *testing.T) {
	_, err := newTestEngine(&stubStore{}).Search(context.Background(), "  ", 0.8, 3)
	assert.Error(t, err)
}

func TestSearchDegradesOnStoreFailure(t *testing.T) {
	// 两路检索都失败时退化为空结果，而不是报错
	st := &stubStore{
		knnErr:     errors.New("knn down"),
		lexicalErr: errors.New("fulltext down"),
	}
	results, err := newTestEngine(st).Search(context.Background(), "question", 0.8, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchLexicalOnlyWhenEmbeddingFails(t *testing.T) {
	st := &stubStore{
		lexicalHits: []store.SearchHit{hit("c", 5.0)},
	}
	engine := NewHybridSearchEngine(st,
		&stubEmbedder{err: errors.New("quota exceeded")},
		&stubKeywords{keywords: "circle"})

	results, err := engine.Search(context.Background(), "question", 0.8, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].ID)
}

func TestSearchZeroMaxScoreKeepsZeros(t *testing.T) {
	st := &stubStore{
		knnHits: []store.SearchHit{hit("a", 0.0), hit("b", 0.0)},
	}
	results, err := newTestEngine(st).Search(context.Background(), "question", 1.0, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		assert.Zero(t, result.Score)
	}
}
