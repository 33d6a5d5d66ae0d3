package scanner

import (
	"context"
	"fmt"
	"strings"
)

// SourceFactory builds the bar source for one scan from the caller's credential.
type SourceFactory func(credential string) (BarSource, error)

// Service is the scan entry point used by the bot, the scheduler and the API.
type Service struct {
	universe UniverseSource
	sources  SourceFactory
	opts     Options
}

func NewService(universe UniverseSource, sources SourceFactory, opts Options) *Service {
	return &Service{universe: universe, sources: sources, opts: opts.withDefaults()}
}

func (s *Service) Options() Options {
	return s.opts
}

// RunScan loads the universe and scans its first scanLimit instruments.
// A missing credential or an empty universe fails before any symbol is fetched.
func (s *Service) RunScan(ctx context.Context, credential string, scanLimit int, mode Mode) ([]Result, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrMissingCredential
	}

	instruments, err := s.universe.LoadInstruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load instruments: %w", err)
	}
	if len(instruments) == 0 {
		return nil, ErrEmptyUniverse
	}

	source, err := s.sources(credential)
	if err != nil {
		return nil, fmt.Errorf("failed to build bar source: %w", err)
	}
	return Scan(ctx, source, instruments, scanLimit, mode, s.opts)
}
