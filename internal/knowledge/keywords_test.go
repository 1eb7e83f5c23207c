package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsContentTag(t *testing.T) {
	for _, tag := range []string{"NN", "NNS", "NNP", "NNPS", "VB", "VBD", "VBG", "VBN", "VBP", "VBZ"} {
		assert.True(t, isContentTag(tag), tag)
	}
	for _, tag := range []string{"DT", "IN", "JJ", "WP", "RB", "CC", "PRP"} {
		assert.False(t, isContentTag(tag), tag)
	}
}

func TestExtractKeepsNounsAndVerbs(t *testing.T) {
	keywords, err := NewPOSKeywordExtractor().Extract("What color is the circle?")
	require.NoError(t, err)

	assert.Contains(t, keywords, "color")
	assert.Contains(t, keywords, "circle")
	// 限定词和疑问词被过滤
	fields := strings.Fields(keywords)
	assert.NotContains(t, fields, "the")
	assert.NotContains(t, fields, "What")
}

func TestExtractEmptyQuestion(t *testing.T) {
	keywords, err := NewPOSKeywordExtractor().Extract("")
	require.NoError(t, err)
	assert.Empty(t, keywords)
}
