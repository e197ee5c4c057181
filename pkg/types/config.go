package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "refcheck/0.1 (academic-research)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the bibliographic index client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the publication search endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxHits is the number of candidates requested per query (default 5).
	MaxHits int `json:"max_hits" yaml:"max_hits"`

	// MinRequestInterval is the minimum delay between consecutive queries
	// (default 1s). The index rate-limits aggressively.
	MinRequestInterval time.Duration `json:"min_request_interval" yaml:"min_request_interval"`

	// MaxRetries is the number of retries on a rate-limit response before
	// the query is treated as a soft failure (default 1).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// MatcherConfig holds the thresholds and weights for candidate scoring and
// match resolution. The values are empirically tuned, so every one of them
// is config-driven rather than a code constant.
type MatcherConfig struct {
	// SimilarityThreshold is the minimum combined score for a match
	// (default 0.7).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// AmbiguityGap is the minimum score separation between the top two
	// candidates to avoid an AMBIGUOUS verdict (default 0.05).
	AmbiguityGap float64 `json:"ambiguity_gap" yaml:"ambiguity_gap"`

	// MaxQueryTokens truncates the search query to the first N title
	// tokens (default 6); longer queries degrade index recall.
	MaxQueryTokens int `json:"max_query_tokens" yaml:"max_query_tokens"`

	// ShortTitleWords is the word count at or below which a title is
	// treated as short: the author signal gets more weight and a second
	// title+surname query is issued (default 4).
	ShortTitleWords int `json:"short_title_words" yaml:"short_title_words"`

	// TitleWeight and AuthorWeight blend title and author scores for
	// normal-length titles (defaults 0.7 / 0.3).
	TitleWeight  float64 `json:"title_weight" yaml:"title_weight"`
	AuthorWeight float64 `json:"author_weight" yaml:"author_weight"`

	// ShortTitleWeight and ShortAuthorWeight apply instead when the title
	// has at most ShortTitleWords words (defaults 0.6 / 0.4).
	ShortTitleWeight  float64 `json:"short_title_weight" yaml:"short_title_weight"`
	ShortAuthorWeight float64 `json:"short_author_weight" yaml:"short_author_weight"`

	// LowConfidenceReview is the score above which a LOW_CONFIDENCE match
	// is labeled REVIEW rather than UNVERIFIED (default 0.4).
	LowConfidenceReview float64 `json:"low_confidence_review" yaml:"low_confidence_review"`

	// SuspiciousConfidence is the score below which a NOT_FOUND reference
	// with a short title is labeled SUSPICIOUS (default 0.3).
	SuspiciousConfidence float64 `json:"suspicious_confidence" yaml:"suspicious_confidence"`
}

// RevisionConfig holds settings for the label revision stages.
type RevisionConfig struct {
	// SkipRegex disables the regex re-extraction stage.
	SkipRegex bool `json:"skip_regex" yaml:"skip_regex"`

	// SkipAdjudication disables the external adjudication stage.
	SkipAdjudication bool `json:"skip_adjudication" yaml:"skip_adjudication"`

	// PromoteConfidence is the reweighted confidence at or above which
	// REVIEW/UNVERIFIED results are promoted to VERIFIED (default 0.7).
	PromoteConfidence float64 `json:"promote_confidence" yaml:"promote_confidence"`

	// ReviewConfidence is the reweighted confidence at or above which
	// UNVERIFIED results are promoted to REVIEW (default 0.5). Below it,
	// VERIFIED results are demoted to REVIEW.
	ReviewConfidence float64 `json:"review_confidence" yaml:"review_confidence"`

	// RegexMinSimilarity is the minimum similarity between a regex-derived
	// title and the original for the correction to be attempted (default 0.5).
	RegexMinSimilarity float64 `json:"regex_min_similarity" yaml:"regex_min_similarity"`
}

// AdjudicationConfig holds settings for the external semantic adjudicator.
type AdjudicationConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the adjudication API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Models lists model identifiers in order of preference; the client
	// falls through the list when a model is unavailable.
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`

	// MinConfidence is the verdict confidence required to promote a
	// reference to VERIFIED (default 0.7, or 0.8 in strict mode).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// BatchSize caps how many references go into one adjudication request
	// (default 20).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxRetries is the per-model retry count on transient failures
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the local lookup cache.
type StoreConfig struct {
	// Dir is the directory holding the cache database (default ".refcheck").
	Dir string `json:"dir" yaml:"dir"`

	// MaxAge is how long a cached lookup stays fresh (default 7 days).
	MaxAge time.Duration `json:"max_age" yaml:"max_age"`
}

// ExtractionConfig holds settings for the structured reference extractor.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// GrobidURL is the GROBID processReferences endpoint.
	GrobidURL string `json:"grobid_url" yaml:"grobid_url"`
}

// Config groups all stage configurations.
type Config struct {
	Search       SearchConfig       `json:"search" yaml:"search"`
	Matcher      MatcherConfig      `json:"matcher" yaml:"matcher"`
	Revision     RevisionConfig     `json:"revision" yaml:"revision"`
	Adjudication AdjudicationConfig `json:"adjudication" yaml:"adjudication"`
	Extraction   ExtractionConfig   `json:"extraction" yaml:"extraction"`
	Store        StoreConfig        `json:"store" yaml:"store"`
}

// DefaultConfig returns the tuned defaults for every stage.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			HTTPConfig:         HTTPConfig{Timeout: 10 * time.Second, UserAgent: "refcheck/0.1 (academic-research)"},
			BaseURL:            "https://dblp.org/search/publ/api",
			MaxHits:            5,
			MinRequestInterval: time.Second,
			MaxRetries:         1,
		},
		Matcher: MatcherConfig{
			SimilarityThreshold:  0.7,
			AmbiguityGap:         0.05,
			MaxQueryTokens:       6,
			ShortTitleWords:      4,
			TitleWeight:          0.7,
			AuthorWeight:         0.3,
			ShortTitleWeight:     0.6,
			ShortAuthorWeight:    0.4,
			LowConfidenceReview:  0.4,
			SuspiciousConfidence: 0.3,
		},
		Revision: RevisionConfig{
			PromoteConfidence:  0.7,
			ReviewConfidence:   0.5,
			RegexMinSimilarity: 0.5,
		},
		Adjudication: AdjudicationConfig{
			HTTPConfig:    HTTPConfig{Timeout: 30 * time.Second, UserAgent: "refcheck/0.1"},
			Models:        []string{"gemini-1.5-flash", "gemini-1.5-flash-8b", "gemini-2.0-flash"},
			MinConfidence: 0.7,
			BatchSize:     20,
			MaxRetries:    3,
		},
		Extraction: ExtractionConfig{
			HTTPConfig: HTTPConfig{Timeout: 120 * time.Second, UserAgent: "refcheck/0.1"},
			GrobidURL:  "http://localhost:8070/api/processReferences",
		},
		Store: StoreConfig{
			Dir:    ".refcheck",
			MaxAge: 7 * 24 * time.Hour,
		},
	}
}
