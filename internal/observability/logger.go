package observability

import "go.uber.org/zap"

// NewLogger builds the process logger. Verbose mode uses the human-readable
// development encoder at debug level; otherwise JSON at info level.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
