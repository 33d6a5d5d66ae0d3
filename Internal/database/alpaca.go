package datafeed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/fazecat/niftyscreener/Internal/types"
)

// barsGetter is the slice of the alpaca marketdata client this package needs.
type barsGetter interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaSource serves daily bars from Alpaca market data. Instrument keys are
// plain ticker symbols.
type AlpacaSource struct {
	client barsGetter
	now    func() time.Time
}

func NewAlpacaSource(apiKey, apiSecret string) *AlpacaSource {
	return &AlpacaSource{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		now: time.Now,
	}
}

func (a *AlpacaSource) FetchBars(ctx context.Context, symbol string, lookbackDays int) ([]types.Bar, error) {
	end := a.now().UTC()
	req := marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     end.AddDate(0, 0, -lookbackDays),
		End:       end,
	}

	type reply struct {
		bars []marketdata.Bar
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		bars, err := a.client.GetBars(symbol, req)
		done <- reply{bars, err}
	}()

	var r reply
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return nil, fmt.Errorf("alpaca bars for %s: %w", symbol, r.err)
	}

	bars := make([]types.Bar, 0, len(r.bars))
	for _, b := range r.bars {
		bars = append(bars, types.Bar{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    int64(b.Volume),
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
