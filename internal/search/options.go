package search

import (
	"fmt"

	"go.uber.org/zap"
)

// Default tuning for the inverted index matcher.
const (
	DefaultMinQueryLength   = 2
	DefaultMaxResults       = 8
	DefaultFuzzyMaxDistance = 2
	DefaultExactWeight      = 10
	DefaultPartialWeight    = 5
	DefaultFuzzyBase        = 3

	// MinTokenLength is the shortest word stored as an index key.
	MinTokenLength = 2
)

// Options tunes index building and query matching.
type Options struct {
	// MinQueryLength is the shortest trimmed query, in runes, that is matched.
	MinQueryLength int

	// MaxResults caps the number of returned records.
	MaxResults int

	// FuzzyMaxDistance is the largest edit distance that still earns a fuzzy bonus.
	// Zero disables fuzzy matching.
	FuzzyMaxDistance int

	ExactWeight   int
	PartialWeight int

	// FuzzyBase sets the fuzzy bonus: max(1, FuzzyBase - distance).
	FuzzyBase int

	// Fusion weighs the engines of the hybrid searcher.
	Fusion FusionConfig

	Logger *zap.Logger
}

// DefaultOptions returns the stock matcher tuning.
func DefaultOptions() Options {
	return Options{
		MinQueryLength:   DefaultMinQueryLength,
		MaxResults:       DefaultMaxResults,
		FuzzyMaxDistance: DefaultFuzzyMaxDistance,
		ExactWeight:      DefaultExactWeight,
		PartialWeight:    DefaultPartialWeight,
		FuzzyBase:        DefaultFuzzyBase,
		Fusion:           DefaultFusionConfig,
	}
}

// Validate checks that the knobs are usable.
func (o Options) Validate() error {
	if o.MinQueryLength < 1 {
		return fmt.Errorf("minQueryLength must be at least 1, got %d", o.MinQueryLength)
	}
	if o.MaxResults < 1 {
		return fmt.Errorf("maxResults must be at least 1, got %d", o.MaxResults)
	}
	if o.FuzzyMaxDistance < 0 {
		return fmt.Errorf("fuzzyMaxDistance must not be negative, got %d", o.FuzzyMaxDistance)
	}
	if o.ExactWeight < 0 || o.PartialWeight < 0 {
		return fmt.Errorf("weights must not be negative")
	}
	return nil
}

// Option adjusts Options.
type Option func(*Options)

// WithOptions replaces every knob at once. The logger is kept unless o sets one.
func WithOptions(o Options) Option {
	return func(dst *Options) {
		logger := dst.Logger
		*dst = o
		if dst.Logger == nil {
			dst.Logger = logger
		}
	}
}

// WithMaxResults caps the result list.
func WithMaxResults(n int) Option {
	return func(o *Options) { o.MaxResults = n }
}

// WithMinQueryLength sets the shortest matched query.
func WithMinQueryLength(n int) Option {
	return func(o *Options) { o.MinQueryLength = n }
}

// WithFuzzyMaxDistance sets the largest rewarded edit distance.
func WithFuzzyMaxDistance(n int) Option {
	return func(o *Options) { o.FuzzyMaxDistance = n }
}

// WithWeights sets the exact and partial match weights.
func WithWeights(exact, partial int) Option {
	return func(o *Options) {
		o.ExactWeight = exact
		o.PartialWeight = partial
	}
}

// WithFusion sets the hybrid engine weights.
func WithFusion(config FusionConfig) Option {
	return func(o *Options) { o.Fusion = config }
}

// WithLogger sets the logger used for build warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func resolveOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.FuzzyBase <= 0 {
		o.FuzzyBase = DefaultFuzzyBase
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
