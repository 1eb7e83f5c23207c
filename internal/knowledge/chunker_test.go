package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRemovesNoise(t *testing.T) {
	text := "Visit https://example.com/docs or www.example.org for info. " +
		"Contact john@example.com or call +1 234-567-8901 now."
	cleaned := Clean(text)

	assert.NotContains(t, cleaned, "https://")
	assert.NotContains(t, cleaned, "www.")
	assert.NotContains(t, cleaned, "@")
	assert.NotContains(t, cleaned, "234-567")
	assert.NotContains(t, cleaned, "  ")
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"Plain sentence without noise.",
		"Multiple    spaces\t\tand\nnewlines here.",
		"See https://a.b/c and mail x@y.z, call 0123456789.",
		"",
	}
	for _, input := range inputs {
		once := Clean(input)
		assert.Equal(t, once, Clean(once))
	}
}

func TestSplitSentencesKeepsTerminators(t *testing.T) {
	sentences := SplitSentences("First one. Second one! Third one? Trailing bit")

	require.Len(t, sentences, 4)
	assert.Equal(t, "First one.", sentences[0])
	assert.Equal(t, "Second one!", sentences[1])
	assert.Equal(t, "Third one?", sentences[2])
	assert.Equal(t, "Trailing bit", sentences[3])
}

func TestSplitSentencesNoSplitWithoutWhitespace(t *testing.T) {
	// 小数点后无空白不是句子边界
	sentences := SplitSentences("Version 1.2 is out. It works.")
	require.Len(t, sentences, 2)
	assert.Equal(t, "Version 1.2 is out.", sentences[0])
}

func TestSplitRespectsSentenceBoundaries(t *testing.T) {
	chunker := NewChunker(60, 0)
	text := "The first sentence is here. The second sentence follows it. " +
		"A third sentence arrives. The fourth one closes the text."

	chunks := chunker.Split(text)
	require.NotEmpty(t, chunks)

	// 每个块必须以完整句子结尾
	for _, chunk := range chunks {
		last := chunk[len(chunk)-1]
		assert.Contains(t, []byte{'.', '!', '?'}, last)
	}

	// 拼接所有块应还原完整句子序列
	joined := strings.Join(chunks, " ")
	for _, sentence := range SplitSentences(text) {
		assert.Contains(t, joined, sentence)
	}
}

func TestSplitEmitsFinalBuffer(t *testing.T) {
	chunker := NewChunker(500, 0)
	chunks := chunker.Split("Only one short sentence here.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Only one short sentence here.", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	chunker := NewChunker(500, 0)
	assert.Empty(t, chunker.Split(""))
	assert.Empty(t, chunker.Split("   "))
}

func TestDetectBoilerplateTwoPagesNever(t *testing.T) {
	pages := [][]string{
		{"Header", "body text", "Footer"},
		{"Header", "other text", "Footer"},
	}
	assert.Empty(t, DetectBoilerplate(pages))
}

func TestDetectBoilerplateThreePages(t *testing.T) {
	pages := [][]string{
		{"Acme Corp", "page one body", "Page 1"},
		{"Acme Corp", "page two body", "Page 2"},
		{"Acme Corp", "page three body", "Page 3"},
	}
	boilerplate := DetectBoilerplate(pages)

	// 出现3次的首行是样板行，只出现1次的页脚不是
	assert.Contains(t, boilerplate, "Acme Corp")
	assert.NotContains(t, boilerplate, "Page 1")
}

func TestDetectBoilerplateSkipsShortPages(t *testing.T) {
	// 不超过2行的页面不贡献候选
	pages := [][]string{
		{"Acme Corp", "Acme Corp"},
		{"Acme Corp", "Acme Corp"},
		{"Acme Corp", "Acme Corp"},
	}
	assert.Empty(t, DetectBoilerplate(pages))
}
