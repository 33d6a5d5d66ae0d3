package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fazecat/niftyscreener/Internal/strategy/sectors"
	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
	"github.com/fazecat/niftyscreener/Internal/types"
)

type Mode string

const (
	ModeComposite Mode = "composite"
	ModeSwing     Mode = "swing"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeComposite, "":
		return ModeComposite, nil
	case ModeSwing:
		return ModeSwing, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// BarSource returns daily bars sorted ascending by timestamp. An empty slice
// with a nil error is a valid answer.
type BarSource interface {
	FetchBars(ctx context.Context, instrumentKey string, lookbackDays int) ([]types.Bar, error)
}

type UniverseSource interface {
	LoadInstruments(ctx context.Context) ([]types.Instrument, error)
}

// Recorder receives scan telemetry. metrics.Collector satisfies it.
type Recorder interface {
	ScanStarted(mode string)
	UnitCompleted(mode, outcome string)
	ScanCompleted(mode string, qualified int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ScanStarted(string)                       {}
func (nopRecorder) UnitCompleted(string, string)             {}
func (nopRecorder) ScanCompleted(string, int, time.Duration) {}

// Unit outcomes, as reported to the Recorder.
const (
	OutcomeQualified    = "qualified"
	OutcomeRejected     = "rejected"
	OutcomeSkipped      = "insufficient_history"
	OutcomeFetchError   = "fetch_error"
	OutcomeComputeError = "compute_error"
)

type Options struct {
	Workers           int
	FetchTimeout      time.Duration
	LookbackDays      int
	MinBars           int
	MinCompositeScore int
	TailBars          int

	Thresholds signals.Thresholds
	Swing      *signals.SwingFilter
	Classifier *sectors.Classifier
	Recorder   Recorder
}

func DefaultOptions() Options {
	return Options{
		Workers:           10,
		FetchTimeout:      8 * time.Second,
		LookbackDays:      100,
		MinBars:           20,
		MinCompositeScore: 5,
		TailBars:          50,
		Thresholds:        signals.DefaultThresholds(),
		Swing:             signals.NewSwingFilter(),
		Classifier:        sectors.DefaultClassifier(),
		Recorder:          nopRecorder{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = d.FetchTimeout
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = d.LookbackDays
	}
	if o.MinBars <= 0 {
		o.MinBars = d.MinBars
	}
	if o.MinCompositeScore <= 0 {
		o.MinCompositeScore = d.MinCompositeScore
	}
	if o.TailBars <= 0 {
		o.TailBars = d.TailBars
	}
	if o.Thresholds == (signals.Thresholds{}) {
		o.Thresholds = d.Thresholds
	}
	if o.Swing == nil {
		o.Swing = d.Swing
	}
	if o.Classifier == nil {
		o.Classifier = d.Classifier
	}
	if o.Recorder == nil {
		o.Recorder = d.Recorder
	}
	return o
}

// unitOutcome is the Either of one symbol's work: a result, an error, or
// neither when the symbol simply did not qualify.
type unitOutcome struct {
	index  int
	symbol string
	result *Result
	err    error
}

func (u unitOutcome) label() string {
	var fetchErr *FetchError
	switch {
	case u.result != nil:
		return OutcomeQualified
	case u.err == nil:
		return OutcomeRejected
	case errors.Is(u.err, ErrInsufficientHistory):
		return OutcomeSkipped
	case errors.As(u.err, &fetchErr):
		return OutcomeFetchError
	default:
		return OutcomeComputeError
	}
}

// Scan runs fetch, compute and score for the first limit instruments on a
// bounded worker pool and returns the qualifying results, best first. A
// failing symbol is logged and dropped; it never aborts the scan. Ties keep
// the universe order.
func Scan(ctx context.Context, source BarSource, instruments []types.Instrument, limit int, mode Mode, opts Options) ([]Result, error) {
	if len(instruments) == 0 {
		return nil, ErrEmptyUniverse
	}
	if mode != ModeComposite && mode != ModeSwing {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	opts = opts.withDefaults()
	if limit <= 0 || limit > len(instruments) {
		limit = len(instruments)
	}
	queue := instruments[:limit]

	start := time.Now()
	opts.Recorder.ScanStarted(string(mode))

	outcomes := make(chan unitOutcome, len(queue))
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	go func() {
		for i, inst := range queue {
			i, inst := i, inst
			g.Go(func() error {
				outcomes <- runUnit(ctx, source, i, inst, mode, opts)
				return nil
			})
		}
		_ = g.Wait()
		close(outcomes)
	}()

	collected := make([]unitOutcome, 0, len(queue))
	failures := 0
	for out := range outcomes {
		outcome := out.label()
		opts.Recorder.UnitCompleted(string(mode), outcome)

		switch outcome {
		case OutcomeQualified:
			collected = append(collected, out)
		case OutcomeSkipped:
			log.Debug().Str("symbol", out.symbol).Err(out.err).Msg("skipping symbol")
		case OutcomeFetchError, OutcomeComputeError:
			failures++
			log.Warn().Str("symbol", out.symbol).Str("stage", outcome).Err(out.err).Msg("symbol failed")
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	results := make([]Result, len(collected))
	for i, out := range collected {
		results[i] = *out.result
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SortKey() > results[j].SortKey()
	})

	elapsed := time.Since(start)
	opts.Recorder.ScanCompleted(string(mode), len(results), elapsed)
	log.Info().
		Str("mode", string(mode)).
		Int("scanned", len(queue)).
		Int("qualified", len(results)).
		Int("failed", failures).
		Dur("elapsed", elapsed).
		Msg("scan complete")

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func runUnit(ctx context.Context, source BarSource, index int, inst types.Instrument, mode Mode, opts Options) (out unitOutcome) {
	out = unitOutcome{index: index, symbol: inst.Symbol}
	defer func() {
		if r := recover(); r != nil {
			out.result = nil
			out.err = &ComputeError{Symbol: inst.Symbol, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
	defer cancel()

	bars, err := source.FetchBars(fetchCtx, inst.InstrumentKey, opts.LookbackDays)
	if err != nil {
		out.err = &FetchError{Symbol: inst.Symbol, InstrumentKey: inst.InstrumentKey, Err: err}
		return out
	}
	if len(bars) < opts.MinBars {
		out.err = fmt.Errorf("%s has %d bars: %w", inst.Symbol, len(bars), ErrInsufficientHistory)
		return out
	}

	switch mode {
	case ModeSwing:
		out.result, out.err = scoreSwing(inst.Symbol, bars, opts)
	default:
		out.result, out.err = scoreComposite(inst.Symbol, bars, opts)
	}
	return out
}
