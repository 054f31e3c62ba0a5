package sawmill

type options struct {
	taxonomyPath        string
	confidenceThreshold float64
	maxEvents           int
	statistical         bool
}

// Option configures a Sawmill instance.
type Option func(*options)

// WithTaxonomyFile loads the failure taxonomy from a YAML file instead of
// using the built-in default taxonomy.
func WithTaxonomyFile(path string) Option {
	return func(o *options) {
		o.taxonomyPath = path
	}
}

// WithConfidenceThreshold sets the rule confidence below which the
// statistical fallback may supply the label. Default: 0.55.
func WithConfidenceThreshold(t float64) Option {
	return func(o *options) {
		o.confidenceThreshold = t
	}
}

// WithMaxEvents caps how many normalized events are kept per log,
// retaining the tail. Default: 2000.
func WithMaxEvents(n int) Option {
	return func(o *options) {
		o.maxEvents = n
	}
}

// WithStatisticalFallback enables the trainable naive Bayes fallback.
// Disabled instances report ErrDisabled from Train. Default: disabled.
func WithStatisticalFallback(enabled bool) Option {
	return func(o *options) {
		o.statistical = enabled
	}
}

func defaultOptions() options {
	return options{
		confidenceThreshold: 0.55,
		maxEvents:           2000,
	}
}
