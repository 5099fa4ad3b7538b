package model

import "time"

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	TopK                int     `json:"top_k"`
	KeywordTemperature  float64 `json:"keyword_temperature"`
	ResponseTemperature float64 `json:"response_temperature"`
	ResponseMaxTokens   int     `json:"response_max_tokens"`
}

// DefaultQueryConfig returns the settings used by the example and report drivers.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:                3,
		KeywordTemperature:  0.3,
		ResponseTemperature: 0.7,
		ResponseMaxTokens:   1000,
	}
}

// VectorConfig controls index lifecycle, chunking and upload pacing.
type VectorConfig struct {
	Dimension         int           `json:"dimension"`
	ChunkSize         int           `json:"chunk_size"`
	BatchSize         int           `json:"batch_size"`
	MaxContentLength  int           `json:"max_content_length"`
	EmbedInterval     time.Duration `json:"embed_interval"`
	BatchInterval     time.Duration `json:"batch_interval"`
	DeleteWait        time.Duration `json:"delete_wait"`
	ReadyInitialWait  time.Duration `json:"ready_initial_wait"`
	ReadyPollInterval time.Duration `json:"ready_poll_interval"`
}

// DefaultVectorConfig returns settings for 1536 dimensional ada-002 embeddings.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Dimension:         1536,
		ChunkSize:         1000,
		BatchSize:         25,
		MaxContentLength:  1000,
		EmbedInterval:     500 * time.Millisecond,
		BatchInterval:     2 * time.Second,
		DeleteWait:        10 * time.Second,
		ReadyInitialWait:  10 * time.Second,
		ReadyPollInterval: 5 * time.Second,
	}
}
