package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "gene-relations/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractorKind selects the relation extractor variant.
type ExtractorKind string

const (
	ExtractorRules  ExtractorKind = "rules"
	ExtractorSimple ExtractorKind = "simple"
)

// CollisionPolicy decides which canonical gene name keeps a normalized key
// when two names normalize to the same key.
type CollisionPolicy string

const (
	// CollisionLastWins keeps the name indexed last.
	CollisionLastWins CollisionPolicy = "last-wins"
	// CollisionFirstWins keeps the name indexed first.
	CollisionFirstWins CollisionPolicy = "first-wins"
)

// LexiconConfig holds the dictionary sources shared by every extractor.
// Empty paths select the bundled defaults; SynonymsFile may also be
// "default" for the bundled synonym table, or empty for no expansion.
type LexiconConfig struct {
	GenesFile     string `json:"genes_file" yaml:"genes_file"`
	RelationsFile string `json:"relations_file" yaml:"relations_file"`
	SynonymsFile  string `json:"synonyms_file,omitempty" yaml:"synonyms_file,omitempty"`
	StopwordsFile string `json:"stopwords_file" yaml:"stopwords_file"`

	// LengthThreshold splits the gene index: keys of this length or shorter
	// match exactly, longer keys match by containment (default 5).
	LengthThreshold int `json:"length_threshold" yaml:"length_threshold"`

	// Collisions selects the duplicate-key policy (default last-wins).
	Collisions CollisionPolicy `json:"collisions" yaml:"collisions"`
}

// MiningConfig holds settings for the mining stage (corpus -> relations).
type MiningConfig struct {
	LexiconConfig `yaml:",inline"`

	// Model selects the extractor variant (default rules).
	Model ExtractorKind `json:"model" yaml:"model"`

	// MinGenes is the number of distinct genes a stem-gated sentence must
	// contain to be reported by the rules extractor. Zero reports every
	// stem-gated sentence.
	MinGenes int `json:"min_genes" yaml:"min_genes"`

	// Workers is the size of the extraction pool (0 = all logical cores).
	Workers int `json:"workers" yaml:"workers"`

	// BatchSize is the number of papers handed to a worker at a time (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// QueueSize bounds the result channel between workers and writer (default 64).
	QueueSize int `json:"queue_size" yaml:"queue_size"`

	// FlushEvery is the number of results buffered between disk flushes (default 50).
	FlushEvery int `json:"flush_every" yaml:"flush_every"`

	// Output is the output path stem; ".json" replaces any extension.
	Output string `json:"output" yaml:"output"`

	// DBDir, when set, also indexes every result into the relation store there.
	DBDir string `json:"db_dir,omitempty" yaml:"db_dir,omitempty"`
}

// FetchConfig holds settings for corpus acquisition from the Entrez utilities.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the E-utilities endpoint root.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey raises the NCBI rate limit from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email and Tool identify the client to NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Tool  string `json:"tool" yaml:"tool"`

	// SearchPageSize is the number of ids requested per esearch call (default 100000).
	SearchPageSize int `json:"search_page_size" yaml:"search_page_size"`

	// FetchBatchSize is the number of ids per efetch call (default 1000).
	FetchBatchSize int `json:"fetch_batch_size" yaml:"fetch_batch_size"`

	// BatchDelay is the pause between consecutive efetch calls (default 1s).
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`

	// MaxRetries bounds retries on throttled responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the relation index.
type StoreConfig struct {
	// Dir is the directory containing relations.db.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
