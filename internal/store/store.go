package store

import "context"

// ContentRecord 持久化的内容记录
// id 形如 "{type}_{document}_{page}_{index}"，重复写入同一id为幂等覆盖
type ContentRecord struct {
	ID           string
	DocumentName string
	PageNumber   int
	ContentType  string // text | image
	Content      string
	Embedding    []float32
}

// SearchHit 单次检索返回的一行，RawScore为该检索信号的原始得分
type SearchHit struct {
	ID           string
	DocumentName string
	PageNumber   int
	ContentType  string
	Content      string
	RawScore     float64
}

const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// Store 内容存储抽象：按主键幂等写入，支持向量KNN与全文相关度检索
type Store interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, record ContentRecord) error
	KNNSearch(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error)
	LexicalSearch(ctx context.Context, keywords string, limit int) ([]SearchHit, error)
	Ready() bool
}
