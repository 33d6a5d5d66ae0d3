package datafeed

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProviderUpstox = "upstox"
	ProviderAlpaca = "alpaca"
)

// SourceOptions selects and decorates the bar provider for a scan.
type SourceOptions struct {
	Provider     string
	Config       ProviderConfig
	AlpacaSecret string

	// Redis enables the bar cache when non-nil.
	Redis    redis.Cmdable
	CacheTTL time.Duration
	Recorder CacheRecorder
}

// NewBarSource builds the provider client for credential, wrapped in the
// redis cache when one is configured.
func NewBarSource(credential string, opts SourceOptions) (BarSource, error) {
	var source BarSource
	switch strings.ToLower(opts.Provider) {
	case ProviderUpstox, "":
		source = NewUpstoxClient(credential, opts.Config)
	case ProviderAlpaca:
		if opts.AlpacaSecret == "" {
			return nil, fmt.Errorf("alpaca provider needs an API secret")
		}
		source = NewAlpacaSource(credential, opts.AlpacaSecret)
	default:
		return nil, fmt.Errorf("unknown bar provider %q", opts.Provider)
	}

	if opts.Redis != nil {
		source = NewCachedSource(source, opts.Redis, opts.CacheTTL, opts.Recorder)
	}
	return source, nil
}
