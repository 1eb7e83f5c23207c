package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Debug  bool
	Store  StoreConfig
	OpenAI OpenAIConfig
	Ingest IngestConfig
	Search SearchConfig
}

type StoreConfig struct {
	Provider      string `validate:"oneof=cratedb milvus memory"`
	Collection    string `validate:"required"`
	VectorSize    int    `validate:"gt=0"`
	CrateDB       CrateDBConfig
	Milvus        MilvusConfig
	Elasticsearch ElasticsearchConfig
}

type CrateDBConfig struct {
	URL      string
	Username string
	Password string
	Analyzer string
}

type MilvusConfig struct {
	Address  string
	Username string
	Password string
	Database string
	Distance string
	TLS      bool
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
}

type OpenAIConfig struct {
	APIKey                      string
	EmbeddingModel              string
	ChatModel                   string // 需要具备视觉能力，用于图片描述
	AnswerModel                 string
	AnswerMaxTokens             int     `validate:"gt=0"`
	AnswerTemperature           float64 `validate:"gte=0"`
	MaxImageDescriptionTokens   int     `validate:"gt=0"`
	ImageDescriptionTemperature float64 `validate:"gte=0"`
}

type IngestConfig struct {
	PDFDir        string
	ChunkSize     int `validate:"gt=0"`
	ChunkOverlap  int `validate:"gte=0"`
	MinChunkChars int `validate:"gte=0"`
	ContextWindow int `validate:"gt=0"`
}

type SearchConfig struct {
	Alpha float64 `validate:"gte=0,lte=1"`
	Limit int     `validate:"gt=0"`
}

var AppConfig *Config

// LoadConfig 加载配置：默认值 < 环境变量
func LoadConfig() error {
	// 默认值
	viper.SetDefault("debug", false)
	viper.SetDefault("store.provider", "cratedb")
	viper.SetDefault("store.collection", "pdf_contents")
	viper.SetDefault("store.vector_size", 1536)
	viper.SetDefault("store.cratedb.url", "http://localhost:4200/_sql")
	viper.SetDefault("store.cratedb.analyzer", "english")
	viper.SetDefault("store.milvus.address", "localhost:19530")
	viper.SetDefault("store.milvus.database", "default")
	viper.SetDefault("store.milvus.distance", "cosine")
	viper.SetDefault("store.milvus.tls", false)
	viper.SetDefault("store.elasticsearch.addresses", []string{"http://localhost:9200"})
	viper.SetDefault("openai.embedding_model", "text-embedding-ada-002")
	viper.SetDefault("openai.chat_model", "gpt-4-turbo")
	viper.SetDefault("openai.answer_model", "gpt-3.5-turbo")
	viper.SetDefault("openai.answer_max_tokens", 500)
	viper.SetDefault("openai.answer_temperature", 0.3)
	viper.SetDefault("openai.max_image_description_tokens", 300)
	viper.SetDefault("openai.image_description_temperature", 0.2)
	viper.SetDefault("ingest.pdf_dir", "./pdfs")
	viper.SetDefault("ingest.chunk_size", 500)
	viper.SetDefault("ingest.chunk_overlap", 50)
	viper.SetDefault("ingest.min_chunk_chars", 50)
	viper.SetDefault("ingest.context_window", 300)
	viper.SetDefault("search.alpha", 0.8)
	viper.SetDefault("search.limit", 3)

	viper.SetEnvPrefix("PDFCHAT")
	viper.AutomaticEnv()

	// 兼容原有环境变量命名
	if url := os.Getenv("CRATEDB_URL"); url != "" {
		viper.Set("store.cratedb.url", url)
	}
	if user := os.Getenv("CRATEDB_USERNAME"); user != "" {
		viper.Set("store.cratedb.username", user)
	}
	if pass := os.Getenv("CRATEDB_PASSWORD"); pass != "" {
		viper.Set("store.cratedb.password", pass)
	}
	if analyzer := os.Getenv("CRATEDB_FULL_TEXT_ANALYZER"); analyzer != "" {
		viper.Set("store.cratedb.analyzer", analyzer)
	}
	if table := os.Getenv("PDF_COLLECTION_TABLE_NAME"); table != "" {
		viper.Set("store.collection", table)
	}
	if provider := os.Getenv("STORE_PROVIDER"); provider != "" {
		viper.Set("store.provider", provider)
	}
	if addr := os.Getenv("MILVUS_ADDRESS"); addr != "" {
		viper.Set("store.milvus.address", addr)
	}
	if addrs := os.Getenv("ELASTICSEARCH_ADDRESSES"); addrs != "" {
		viper.Set("store.elasticsearch.addresses", strings.Split(addrs, ","))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		viper.Set("openai.api_key", key)
	}
	if model := os.Getenv("TEXT_EMBEDDING_MODEL"); model != "" {
		viper.Set("openai.embedding_model", model)
	}
	if model := os.Getenv("GPT_MODEL"); model != "" {
		viper.Set("openai.chat_model", model)
	}
	if tokens := os.Getenv("MAX_IMAGE_DESCRIPTION_TOKENS"); tokens != "" {
		if v, err := strconv.Atoi(tokens); err == nil {
			viper.Set("openai.max_image_description_tokens", v)
		}
	}
	if temp := os.Getenv("IMAGE_DESCRIPTION_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			viper.Set("openai.image_description_temperature", v)
		}
	}
	if dir := os.Getenv("PDF_DIR"); dir != "" {
		viper.Set("ingest.pdf_dir", dir)
	}
	if debug := os.Getenv("DEBUG"); debug != "" {
		viper.Set("debug", strings.ToLower(debug) == "true")
	}

	config := &Config{
		Debug: viper.GetBool("debug"),
		Store: StoreConfig{
			Provider:   viper.GetString("store.provider"),
			Collection: viper.GetString("store.collection"),
			VectorSize: viper.GetInt("store.vector_size"),
			CrateDB: CrateDBConfig{
				URL:      viper.GetString("store.cratedb.url"),
				Username: viper.GetString("store.cratedb.username"),
				Password: viper.GetString("store.cratedb.password"),
				Analyzer: viper.GetString("store.cratedb.analyzer"),
			},
			Milvus: MilvusConfig{
				Address:  viper.GetString("store.milvus.address"),
				Username: viper.GetString("store.milvus.username"),
				Password: viper.GetString("store.milvus.password"),
				Database: viper.GetString("store.milvus.database"),
				Distance: viper.GetString("store.milvus.distance"),
				TLS:      viper.GetBool("store.milvus.tls"),
			},
			Elasticsearch: ElasticsearchConfig{
				Addresses: viper.GetStringSlice("store.elasticsearch.addresses"),
				Username:  viper.GetString("store.elasticsearch.username"),
				Password:  viper.GetString("store.elasticsearch.password"),
				APIKey:    viper.GetString("store.elasticsearch.api_key"),
			},
		},
		OpenAI: OpenAIConfig{
			APIKey:                      viper.GetString("openai.api_key"),
			EmbeddingModel:              viper.GetString("openai.embedding_model"),
			ChatModel:                   viper.GetString("openai.chat_model"),
			AnswerModel:                 viper.GetString("openai.answer_model"),
			AnswerMaxTokens:             viper.GetInt("openai.answer_max_tokens"),
			AnswerTemperature:           viper.GetFloat64("openai.answer_temperature"),
			MaxImageDescriptionTokens:   viper.GetInt("openai.max_image_description_tokens"),
			ImageDescriptionTemperature: viper.GetFloat64("openai.image_description_temperature"),
		},
		Ingest: IngestConfig{
			PDFDir:        viper.GetString("ingest.pdf_dir"),
			ChunkSize:     viper.GetInt("ingest.chunk_size"),
			ChunkOverlap:  viper.GetInt("ingest.chunk_overlap"),
			MinChunkChars: viper.GetInt("ingest.min_chunk_chars"),
			ContextWindow: viper.GetInt("ingest.context_window"),
		},
		Search: SearchConfig{
			Alpha: viper.GetFloat64("search.alpha"),
			Limit: viper.GetInt("search.limit"),
		},
	}

	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	AppConfig = config
	return nil
}
