package store

import "context"

// CompositeStore 组合存储：Milvus负责向量KNN，ES负责BM25全文
// 写入时双写，两侧都以记录id作为主键保证幂等
type CompositeStore struct {
	vector  *MilvusStore
	lexical *ElasticStore
}

// NewCompositeStore 创建Milvus+ES复合存储
func NewCompositeStore(vector *MilvusStore, lexical *ElasticStore) *CompositeStore {
	return &CompositeStore{
		vector:  vector,
		lexical: lexical,
	}
}

func (s *CompositeStore) EnsureSchema(ctx context.Context) error {
	if err := s.vector.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.lexical.EnsureSchema(ctx)
}

func (s *CompositeStore) Upsert(ctx context.Context, record ContentRecord) error {
	if err := s.vector.Upsert(ctx, record); err != nil {
		return err
	}
	return s.lexical.Upsert(ctx, record)
}

func (s *CompositeStore) KNNSearch(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error) {
	return s.vector.KNNSearch(ctx, embedding, limit)
}

func (s *CompositeStore) LexicalSearch(ctx context.Context, keywords string, limit int) ([]SearchHit, error) {
	return s.lexical.LexicalSearch(ctx, keywords, limit)
}

func (s *CompositeStore) Ready() bool {
	return s.vector.Ready() && s.lexical.Ready()
}
