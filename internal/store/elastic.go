package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticOptions ES客户端配置
type ElasticOptions struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	Index     string
	Analyzer  string
}

// ElasticStore 基于ES的BM25全文检索，提供复合存储的词法一侧
type ElasticStore struct {
	client   *elasticsearch.Client
	index    string
	analyzer string
	ensured  bool
	mu       sync.Mutex
}

// NewElasticStore 创建ES全文存储
func NewElasticStore(opts ElasticOptions) (*ElasticStore, error) {
	if len(opts.Addresses) == 0 {
		opts.Addresses = []string{"http://localhost:9200"}
	}
	if opts.Index == "" {
		opts.Index = "pdf_contents"
	}
	if opts.Analyzer == "" {
		opts.Analyzer = "english"
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: opts.Addresses,
		Username:  opts.Username,
		Password:  opts.Password,
		APIKey:    opts.APIKey,
	})
	if err != nil {
		return nil, err
	}

	return &ElasticStore{
		client:   client,
		index:    opts.Index,
		analyzer: opts.Analyzer,
	}, nil
}

func (e *ElasticStore) EnsureSchema(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ensured {
		return nil
	}

	existsReq := esapi.IndicesExistsRequest{Index: []string{e.index}}
	resp, err := existsReq.Do(ctx, e.client)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		e.ensured = true
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"document_name": map[string]interface{}{"type": "keyword"},
				"page_number":   map[string]interface{}{"type": "integer"},
				"content_type":  map[string]interface{}{"type": "keyword"},
				"content": map[string]interface{}{
					"type":     "text",
					"analyzer": e.analyzer,
				},
			},
		},
	}

	body, _ := json.Marshal(mapping)
	createReq := esapi.IndicesCreateRequest{
		Index: e.index,
		Body:  bytes.NewReader(body),
	}
	createResp, err := createReq.Do(ctx, e.client)
	if err != nil {
		return err
	}
	defer createResp.Body.Close()

	if createResp.IsError() {
		return fmt.Errorf("create index error: %s", createResp.String())
	}

	e.ensured = true
	return nil
}

// Upsert 以记录id作为文档id写入，重复写入覆盖
func (e *ElasticStore) Upsert(ctx context.Context, record ContentRecord) error {
	doc := map[string]interface{}{
		"document_name": record.DocumentName,
		"page_number":   record.PageNumber,
		"content_type":  record.ContentType,
		"content":       record.Content,
	}

	payload, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: record.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "true",
	}

	resp, err := req.Do(ctx, e.client)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index content error: %s", resp.String())
	}
	return nil
}

func (e *ElasticStore) LexicalSearch(ctx context.Context, keywords string, limit int) ([]SearchHit, error) {
	if keywords == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"content": map[string]interface{}{
					"query": keywords,
				},
			},
		},
	}

	payload, _ := json.Marshal(body)
	searchReq := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(payload),
	}

	resp, err := searchReq.Do(ctx, e.client)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("search error: %s", resp.String())
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	hitsWrapper, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	rawHits, ok := hitsWrapper["hits"].([]interface{})
	if !ok {
		return nil, nil
	}

	hits := make([]SearchHit, 0, len(rawHits))
	for _, raw := range rawHits {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := entry["_id"].(string)
		if !ok {
			continue
		}
		source, ok := entry["_source"].(map[string]interface{})
		if !ok {
			continue
		}

		hit := SearchHit{
			ID:       id,
			RawScore: coerceScore(entry["_score"]),
		}
		hit.DocumentName, _ = source["document_name"].(string)
		hit.ContentType, _ = source["content_type"].(string)
		hit.Content, _ = source["content"].(string)
		if page, ok := source["page_number"].(float64); ok {
			hit.PageNumber = int(page)
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

func (e *ElasticStore) Ready() bool {
	if e.client == nil {
		return false
	}
	resp, err := e.client.Ping()
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return !resp.IsError()
}
