package store

import (
	"fmt"

	"github.com/aihub/pdfchat-go/internal/config"
)

// NewFromConfig 按配置选择存储后端
func NewFromConfig(cfg config.StoreConfig) (Store, error) {
	switch cfg.Provider {
	case "cratedb", "":
		return NewCrateDBStore(CrateDBOptions{
			URL:        cfg.CrateDB.URL,
			Username:   cfg.CrateDB.Username,
			Password:   cfg.CrateDB.Password,
			Table:      cfg.Collection,
			Analyzer:   cfg.CrateDB.Analyzer,
			VectorSize: cfg.VectorSize,
		})
	case "milvus":
		vector, err := NewMilvusStore(MilvusOptions{
			Address:    cfg.Milvus.Address,
			Username:   cfg.Milvus.Username,
			Password:   cfg.Milvus.Password,
			Collection: cfg.Collection,
			Database:   cfg.Milvus.Database,
			VectorSize: cfg.VectorSize,
			Distance:   cfg.Milvus.Distance,
			UseTLS:     cfg.Milvus.TLS,
		})
		if err != nil {
			return nil, err
		}
		lexical, err := NewElasticStore(ElasticOptions{
			Addresses: cfg.Elasticsearch.Addresses,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
			APIKey:    cfg.Elasticsearch.APIKey,
			Index:     cfg.Collection,
		})
		if err != nil {
			return nil, err
		}
		return NewCompositeStore(vector, lexical), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store provider: %q", cfg.Provider)
	}
}
