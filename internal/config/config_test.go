package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	require.NoError(t, LoadConfig())

	assert.False(t, AppConfig.Debug)
	assert.Equal(t, "cratedb", AppConfig.Store.Provider)
	assert.Equal(t, "pdf_contents", AppConfig.Store.Collection)
	assert.Equal(t, 1536, AppConfig.Store.VectorSize)
	assert.Equal(t, "text-embedding-ada-002", AppConfig.OpenAI.EmbeddingModel)
	assert.Equal(t, 500, AppConfig.OpenAI.AnswerMaxTokens)
	assert.InDelta(t, 0.3, AppConfig.OpenAI.AnswerTemperature, 1e-9)
	assert.Equal(t, 500, AppConfig.Ingest.ChunkSize)
	assert.Equal(t, 50, AppConfig.Ingest.MinChunkChars)
	assert.InDelta(t, 0.8, AppConfig.Search.Alpha, 1e-9)
	assert.Equal(t, 3, AppConfig.Search.Limit)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_PROVIDER", "memory")
	t.Setenv("PDF_COLLECTION_TABLE_NAME", "manuals")
	t.Setenv("CRATEDB_URL", "http://crate:4200/_sql")
	t.Setenv("GPT_MODEL", "gpt-4o")
	t.Setenv("DEBUG", "TRUE")

	require.NoError(t, LoadConfig())

	assert.True(t, AppConfig.Debug)
	assert.Equal(t, "memory", AppConfig.Store.Provider)
	assert.Equal(t, "manuals", AppConfig.Store.Collection)
	assert.Equal(t, "http://crate:4200/_sql", AppConfig.Store.CrateDB.URL)
	assert.Equal(t, "gpt-4o", AppConfig.OpenAI.ChatModel)
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_PROVIDER", "oracle")

	assert.Error(t, LoadConfig())
}
