package knowledge

import (
	"regexp"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`)
	spacePattern = regexp.MustCompile(`\s{2,}`)
)

// Chunker 句子感知的文本分块器
type Chunker struct {
	maxChunkSize int
	overlap      int // 预留参数，当前分块不产生重叠
}

// NewChunker 创建分块器
func NewChunker(maxChunkSize, overlap int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
	}
}

// Clean 去除URL、邮箱、电话号码，压缩连续空白
// 幂等：Clean(Clean(x)) == Clean(x)
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = phonePattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split 按句号边界切分文本，贪心累积到maxChunkSize
// 句子不会被截断在块中间
func (c *Chunker) Split(text string) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		if len(current)+len(sentence) < c.maxChunkSize {
			current += " " + sentence
			continue
		}
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current = sentence
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// SplitSentences 按终止标点（. ! ?）后跟空白切分句子
// 终止标点保留在句尾，分隔空白被吃掉
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(runes) || !isSpaceRune(runes[i+1]) {
			continue
		}
		sentence := string(runes[start : i+1])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		// 跳过句间空白
		j := i + 1
		for j < len(runes) && isSpaceRune(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		if tail := string(runes[start:]); strings.TrimSpace(tail) != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
