package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

// MemoryStore 内存存储：暴力余弦相似度 + 词频相关度
// 主要用于测试与无外部依赖的本地运行
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ContentRecord
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]ContentRecord),
	}
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, record ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Count 当前记录数
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get 按id取记录
func (s *MemoryStore) Get(id string) (ContentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	return record, ok
}

func (s *MemoryStore) KNNSearch(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]SearchHit, 0, len(s.records))
	for _, record := range s.records {
		score := cosineSimilarity(embedding, record.Embedding)
		hits = append(hits, toHit(record, score))
	}

	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *MemoryStore) LexicalSearch(ctx context.Context, keywords string, limit int) ([]SearchHit, error) {
	terms := strings.Fields(strings.ToLower(keywords))
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]SearchHit, 0, len(s.records))
	for _, record := range s.records {
		content := strings.ToLower(record.Content)
		score := 0.0
		for _, term := range terms {
			score += float64(strings.Count(content, term))
		}
		if score > 0 {
			hits = append(hits, toHit(record, score))
		}
	}

	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *MemoryStore) Ready() bool {
	return true
}

func toHit(record ContentRecord, score float64) SearchHit {
	return SearchHit{
		ID:           record.ID,
		DocumentName: record.DocumentName,
		PageNumber:   record.PageNumber,
		ContentType:  record.ContentType,
		Content:      record.Content,
		RawScore:     score,
	}
}

func sortHits(hits []SearchHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].RawScore == hits[j].RawScore {
			return hits[i].ID < hits[j].ID
		}
		return hits[i].RawScore > hits[j].RawScore
	})
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
