package knowledge

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// KeywordExtractor 从问题中提取检索关键词
type KeywordExtractor interface {
	Extract(question string) (string, error)
}

// POSKeywordExtractor 基于词性标注，保留名词、专有名词和动词
// 过滤掉虚词可以让BM25匹配更聚焦
type POSKeywordExtractor struct{}

// NewPOSKeywordExtractor 创建词性关键词提取器
func NewPOSKeywordExtractor() *POSKeywordExtractor {
	return &POSKeywordExtractor{}
}

func (e *POSKeywordExtractor) Extract(question string) (string, error) {
	doc, err := prose.NewDocument(question,
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return "", err
	}

	var keywords []string
	for _, token := range doc.Tokens() {
		if isContentTag(token.Tag) {
			keywords = append(keywords, token.Text)
		}
	}
	return strings.Join(keywords, " "), nil
}

// isContentTag 判断Penn Treebank词性标签是否属于名词/专有名词/动词
func isContentTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || strings.HasPrefix(tag, "VB")
}
