package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/aihub/pdfchat-go/internal/logger"
	"go.uber.org/zap"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	VectorSize int
	Distance   string
	UseTLS     bool
	Timeout    time.Duration
}

// MilvusStore 基于Milvus的向量检索，提供复合存储的KNN一侧
type MilvusStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
	distance     entity.MetricType
	loaded       bool
}

// NewMilvusStore 创建Milvus向量存储
func NewMilvusStore(opts MilvusOptions) (*MilvusStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "pdf_contents"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	milvusClient, err := client.NewClient(ctx, client.Config{
		Address:       opts.Address,
		DBName:        opts.Database,
		Username:      opts.Username,
		Password:      opts.Password,
		EnableTLSAuth: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &MilvusStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
		distance:     formatMilvusDistance(opts.Distance),
	}, nil
}

func formatMilvusDistance(value string) entity.MetricType {
	switch strings.ToUpper(value) {
	case "DOT", "IP", "INNER_PRODUCT":
		return entity.IP
	case "L2", "EUCLIDEAN":
		return entity.L2
	default:
		return entity.COSINE
	}
}

func (s *MilvusStore) EnsureSchema(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !hasCollection {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "PDF content embeddings",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{"max_length": "512"},
				},
				{
					Name:       "document_name",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "1024"},
				},
				{
					Name:     "page_number",
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:       "content_type",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "16"},
				},
				{
					Name:       "content",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "65535"},
				},
				{
					Name:       "content_embedding",
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{"dim": fmt.Sprintf("%d", s.vectorSize)},
				},
			},
		}

		if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		var index entity.Index
		var err error
		index, err = entity.NewIndexHNSW(s.distance, 8, 64)
		if err != nil {
			// HNSW不可用时退回IVF_FLAT
			index, err = entity.NewIndexIvfFlat(s.distance, 128)
			if err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}
		if err := s.milvusClient.CreateIndex(ctx, s.collection, "content_embedding", index, false); err != nil {
			logger.Warn("milvus create index failed", zap.String("collection", s.collection), zap.Error(err))
		}
	}

	if !s.loaded {
		if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
			logger.Warn("milvus load collection failed", zap.String("collection", s.collection), zap.Error(err))
		} else {
			s.loaded = true
		}
	}

	return nil
}

func (s *MilvusStore) Upsert(ctx context.Context, record ContentRecord) error {
	if len(record.Embedding) == 0 {
		return fmt.Errorf("embedding is empty")
	}

	embedding := record.Embedding
	if len(embedding) != s.vectorSize {
		// 维度不符时补零或截断
		padded := make([]float32, s.vectorSize)
		copy(padded, embedding)
		embedding = padded
	}

	idColumn := entity.NewColumnVarChar("id", []string{record.ID})
	docColumn := entity.NewColumnVarChar("document_name", []string{record.DocumentName})
	pageColumn := entity.NewColumnInt64("page_number", []int64{int64(record.PageNumber)})
	typeColumn := entity.NewColumnVarChar("content_type", []string{record.ContentType})
	contentColumn := entity.NewColumnVarChar("content", []string{record.Content})
	vectorColumn := entity.NewColumnFloatVector("content_embedding", s.vectorSize, [][]float32{embedding})

	_, err := s.milvusClient.Upsert(ctx, s.collection, "", idColumn, docColumn, pageColumn, typeColumn, contentColumn, vectorColumn)
	if err != nil {
		return fmt.Errorf("milvus upsert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("milvus flush failed", zap.String("collection", s.collection), zap.Error(err))
	}

	return nil
}

func (s *MilvusStore) KNNSearch(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		"",
		[]string{"document_name", "page_number", "content_type", "content"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"content_embedding",
		s.distance,
		limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []SearchHit{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []SearchHit{}, nil
	}

	var ids []string
	if idCol, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = idCol.Data()
	}

	var docNames, contentTypes, contents []string
	var pages []int64
	for _, field := range result.Fields {
		switch field.Name() {
		case "document_name":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				docNames = col.Data()
			}
		case "page_number":
			if col, ok := field.(*entity.ColumnInt64); ok {
				pages = col.Data()
			}
		case "content_type":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				contentTypes = col.Data()
			}
		case "content":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				contents = col.Data()
			}
		}
	}

	hits := make([]SearchHit, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		if i >= len(ids) {
			break
		}
		hit := SearchHit{ID: ids[i]}
		if i < len(docNames) {
			hit.DocumentName = docNames[i]
		}
		if i < len(pages) {
			hit.PageNumber = int(pages[i])
		}
		if i < len(contentTypes) {
			hit.ContentType = contentTypes[i]
		}
		if i < len(contents) {
			hit.Content = contents[i]
		}
		if i < len(result.Scores) {
			hit.RawScore = float64(result.Scores[i])
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

func (s *MilvusStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
