package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/aihub/pdfchat-go/internal/logger"
	"go.uber.org/zap"
)

// CrateDBOptions CrateDB客户端配置
type CrateDBOptions struct {
	URL        string // _sql HTTP端点
	Username   string
	Password   string
	Table      string
	Analyzer   string
	VectorSize int
	Timeout    time.Duration
}

type crateDBStore struct {
	client     *http.Client
	url        string
	username   string
	password   string
	table      string
	analyzer   string
	vectorSize int
}

// 表名与分词器名无法作为绑定参数，只允许普通标识符
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewCrateDBStore 创建CrateDB存储
func NewCrateDBStore(opts CrateDBOptions) (Store, error) {
	if opts.URL == "" {
		opts.URL = "http://localhost:4200/_sql"
	}
	if opts.Table == "" {
		opts.Table = "pdf_contents"
	}
	if opts.Analyzer == "" {
		opts.Analyzer = "english"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if !identPattern.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name: %q", opts.Table)
	}
	if !identPattern.MatchString(opts.Analyzer) {
		return nil, fmt.Errorf("invalid analyzer name: %q", opts.Analyzer)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &crateDBStore{
		client:     &http.Client{Timeout: timeout},
		url:        opts.URL,
		username:   opts.Username,
		password:   opts.Password,
		table:      opts.Table,
		analyzer:   opts.Analyzer,
		vectorSize: opts.VectorSize,
	}, nil
}

type crateRequest struct {
	Stmt string        `json:"stmt"`
	Args []interface{} `json:"args,omitempty"`
}

type crateResponse struct {
	Cols []string        `json:"cols"`
	Rows [][]interface{} `json:"rows"`
}

func (s *crateDBStore) execute(ctx context.Context, stmt string, args []interface{}) (*crateResponse, error) {
	payload, err := json.Marshal(crateRequest{Stmt: stmt, Args: args})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cratedb query failed: %s", string(body))
	}

	var result crateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode cratedb response: %w", err)
	}
	return &result, nil
}

func (s *crateDBStore) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		document_name TEXT,
		page_number INT,
		content_type TEXT,
		content TEXT INDEX USING FULLTEXT WITH (analyzer = '%s'),
		content_embedding FLOAT_VECTOR(%d)
	)`, s.table, s.analyzer, s.vectorSize)

	if _, err := s.execute(ctx, stmt, nil); err != nil {
		return err
	}
	if _, err := s.execute(ctx, fmt.Sprintf("REFRESH TABLE %s", s.table), nil); err != nil {
		return err
	}
	return nil
}

func (s *crateDBStore) Upsert(ctx context.Context, record ContentRecord) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (id, document_name, page_number, content_type, content, content_embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			document_name = excluded.document_name,
			page_number = excluded.page_number,
			content_type = excluded.content_type,
			content = excluded.content,
			content_embedding = excluded.content_embedding`, s.table)

	_, err := s.execute(ctx, stmt, []interface{}{
		record.ID,
		record.DocumentName,
		record.PageNumber,
		record.ContentType,
		record.Content,
		record.Embedding,
	})
	return err
}

func (s *crateDBStore) KNNSearch(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	stmt := fmt.Sprintf(`SELECT id, document_name, page_number, content_type, content, _score
		FROM %s
		WHERE knn_match(content_embedding, ?, ?)
		ORDER BY _score DESC
		LIMIT ?`, s.table)

	resp, err := s.execute(ctx, stmt, []interface{}{embedding, limit, limit})
	if err != nil {
		return nil, err
	}
	return decodeHits(resp.Rows), nil
}

func (s *crateDBStore) LexicalSearch(ctx context.Context, keywords string, limit int) ([]SearchHit, error) {
	if keywords == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	stmt := fmt.Sprintf(`SELECT id, document_name, page_number, content_type, content, _score
		FROM %s
		WHERE MATCH(content, ?)
		ORDER BY _score DESC
		LIMIT ?`, s.table)

	resp, err := s.execute(ctx, stmt, []interface{}{keywords, limit})
	if err != nil {
		return nil, err
	}
	return decodeHits(resp.Rows), nil
}

func (s *crateDBStore) Ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.execute(ctx, "SELECT 1", nil)
	return err == nil
}

// decodeHits 按命名字段解析行，格式不符的行直接丢弃
func decodeHits(rows [][]interface{}) []SearchHit {
	hits := make([]SearchHit, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			logger.Warn("cratedb row too short, dropped", zap.Int("columns", len(row)))
			continue
		}
		id, okID := row[0].(string)
		doc, okDoc := row[1].(string)
		contentType, okType := row[3].(string)
		content, okContent := row[4].(string)
		if !okID || !okDoc || !okType || !okContent {
			logger.Warn("cratedb row malformed, dropped")
			continue
		}

		page := 0
		if v, ok := row[2].(float64); ok {
			page = int(v)
		}

		hits = append(hits, SearchHit{
			ID:           id,
			DocumentName: doc,
			PageNumber:   page,
			ContentType:  contentType,
			Content:      content,
			RawScore:     coerceScore(row[5]),
		})
	}
	return hits
}

// coerceScore 解析失败时退回0.0，不中断整批结果
func coerceScore(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return 0.0
}
