package knowledge

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/aihub/pdfchat-go/internal/logger"
	"github.com/aihub/pdfchat-go/internal/store"
	"go.uber.org/zap"
)

// SearchResult 单条融合检索结果，Score为加权融合后的综合得分
type SearchResult struct {
	ID           string
	DocumentName string
	PageNumber   int
	ContentType  string
	Content      string
	Score        float64
}

// HybridSearchEngine 组合向量KNN与BM25全文检索
type HybridSearchEngine struct {
	store    store.Store
	embedder Embedder
	keywords KeywordExtractor
}

// NewHybridSearchEngine 创建混合检索引擎
func NewHybridSearchEngine(st store.Store, embedder Embedder, keywords KeywordExtractor) *HybridSearchEngine {
	return &HybridSearchEngine{
		store:    st,
		embedder: embedder,
		keywords: keywords,
	}
}

// Search 混合检索
// alpha为向量信号权重，1-alpha为全文信号权重
//
// 流程：
//  1. 问题向量化 + 词性关键词提取
//  2. 独立执行KNN与BM25检索，各取limit条
//  3. 每路结果按各自最高分归一化
//  4. 按记录id融合：alpha*knn + (1-alpha)*bm25，缺席的一路记0
//  5. 按融合得分降序，取前limit条
func (e *HybridSearchEngine) Search(ctx context.Context, question string, alpha float64, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question cannot be empty")
	}
	if limit <= 0 {
		limit = 3
	}

	var knnHits []store.SearchHit
	embedding, err := e.embedder.Embed(ctx, question)
	if err != nil {
		// 向量化失败降级为仅全文检索
		logger.Warn("question embedding failed", zap.Error(err))
	} else {
		knnHits, err = e.store.KNNSearch(ctx, embedding, limit)
		if err != nil {
			logger.Warn("knn search failed", zap.Error(err))
			knnHits = nil
		}
	}

	keywords := ""
	if e.keywords != nil {
		keywords, err = e.keywords.Extract(question)
		if err != nil {
			logger.Warn("keyword extraction failed", zap.Error(err))
			keywords = ""
		}
	}
	logger.Debug("extracted keywords", zap.String("keywords", keywords))

	var lexicalHits []store.SearchHit
	if keywords != "" {
		lexicalHits, err = e.store.LexicalSearch(ctx, keywords, limit)
		if err != nil {
			logger.Warn("lexical search failed", zap.Error(err))
			lexicalHits = nil
		}
	}

	logger.Debug("hybrid search candidates",
		zap.Int("knn", len(knnHits)),
		zap.Int("lexical", len(lexicalHits)))

	results := fuseHits(knnHits, lexicalHits, alpha)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// fuseHits 归一化并按id加权融合两路结果
func fuseHits(knnHits, lexicalHits []store.SearchHit, alpha float64) []SearchResult {
	knnMax := maxRawScore(knnHits)
	lexicalMax := maxRawScore(lexicalHits)

	merged := make(map[string]*SearchResult)
	for _, hit := range knnHits {
		result := toSearchResult(hit)
		result.Score = alpha * normalizeScore(hit.RawScore, knnMax)
		merged[hit.ID] = &result
	}
	for _, hit := range lexicalHits {
		weighted := (1 - alpha) * normalizeScore(hit.RawScore, lexicalMax)
		if existing, ok := merged[hit.ID]; ok {
			existing.Score += weighted
		} else {
			result := toSearchResult(hit)
			result.Score = weighted
			merged[hit.ID] = &result
		}
	}

	results := make([]SearchResult, 0, len(merged))
	for _, result := range merged {
		results = append(results, *result)
	}

	sortResultsByScore(results)
	return results
}

// normalizeScore 最大值归一化；该路结果的最高分为0或空时不缩放
func normalizeScore(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return score
	}
	return score / maxScore
}

func maxRawScore(hits []store.SearchHit) float64 {
	max := 0.0
	for _, hit := range hits {
		if hit.RawScore > max {
			max = hit.RawScore
		}
	}
	return max
}

func toSearchResult(hit store.SearchHit) SearchResult {
	return SearchResult{
		ID:           hit.ID,
		DocumentName: hit.DocumentName,
		PageNumber:   hit.PageNumber,
		ContentType:  hit.ContentType,
		Content:      hit.Content,
	}
}

// 得分相同时按id升序，保证排序稳定可复现
func sortResultsByScore(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].ID < results[j].ID
		}
		return results[i].Score > results[j].Score
	})
}
