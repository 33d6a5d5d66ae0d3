package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fazecat/niftyscreener/Internal/notifications"
	"github.com/fazecat/niftyscreener/Internal/strategy/sectors"
	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

type scanCall struct {
	limit int
	mode  scanner.Mode
}

type fakeScanner struct {
	mu      sync.Mutex
	calls   []scanCall
	results map[scanner.Mode][]scanner.Result
	err     error
}

func (f *fakeScanner) RunScan(_ context.Context, credential string, limit int, mode scanner.Mode) ([]scanner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scanCall{limit: limit, mode: mode})
	if f.err != nil {
		return nil, f.err
	}
	if credential == "" {
		return nil, scanner.ErrMissingCredential
	}
	return f.results[mode], nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeUpdater struct {
	batches [][]notifications.Update
	offsets []int64
	cancel  context.CancelFunc
}

func (f *fakeUpdater) GetUpdates(ctx context.Context, offset int64, _ time.Duration) ([]notifications.Update, error) {
	f.offsets = append(f.offsets, offset)
	if len(f.batches) == 0 {
		f.cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func swingPick(symbol, sector string) scanner.Result {
	a := signals.NewSwingFilter().Assess(symbol, 1500, 50, 55, 2.0, sectors.ParseLabel(sector))
	return scanner.Result{Mode: scanner.ModeSwing, Swing: &a}
}

func compositePick(symbol string, score int) scanner.Result {
	return scanner.Result{Mode: scanner.ModeComposite, Composite: &scanner.CompositeResult{
		Symbol: symbol, Price: 250, ATR: 10, RSI: 60, ADX: 30, Volume: 200000, Score: score,
	}}
}

func newTestBot(s Scanner, credential string) (*Bot, *fakeSender) {
	sender := &fakeSender{}
	bot := NewBot(s, sender, nil, BotConfig{
		ChatID:         "42",
		Credential:     credential,
		SignalsLimit:   100,
		SwingLimit:     200,
		CompositeLimit: 300,
		Location:       time.UTC,
	})
	bot.now = func() time.Time { return time.Date(2024, 3, 4, 15, 0, 7, 0, time.UTC) }
	return bot, sender
}

func TestHandleMessage_StaticCommands(t *testing.T) {
	tests := []struct {
		text     string
		contains string
	}{
		{"/swingtop5", "SWING TRADE FILTER CRITERIA"},
		{"/backtest", "BACKTESTING GUIDE"},
		{"/help", "STOCK SCREENER BOT - COMMANDS"},
		{"/start", "STOCK SCREENER BOT - COMMANDS"},
		{"/HELP@ScreenerBot", "STOCK SCREENER BOT - COMMANDS"},
		{"/status", "Scheduler is not running"},
		{"/foo", "Unknown Command: /foo"},
		{"hello there", "Type /help to see available commands."},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			bot, sender := newTestBot(&fakeScanner{}, "token")
			require.NoError(t, bot.HandleMessage(context.Background(), tt.text))
			sent := sender.messages()
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0], tt.contains)
		})
	}
}

func TestHandleMessage_StatusUsesScheduler(t *testing.T) {
	bot, sender := newTestBot(&fakeScanner{}, "token")
	calls := 0
	bot.SetStatusSource(func() string {
		calls++
		return "⏰ <b>SCHEDULER STATUS</b>"
	})

	require.NoError(t, bot.HandleMessage(context.Background(), "/status"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"⏰ <b>SCHEDULER STATUS</b>"}, sender.messages())
}

func TestCriteriaMessage_ReflectsFilter(t *testing.T) {
	f := signals.NewSwingFilter()
	f.MinRiskReward = 2.5
	f.MinPrice = 100
	msg := CriteriaMessage(f)
	assert.Contains(t, msg, "Risk/Reward Ratio ≥ 2.5")
	assert.Contains(t, msg, "CMP between ₹100 and ₹2000")
	assert.Contains(t, msg, "RSI(14) between 40 and 65")
	assert.Contains(t, msg, "at least 4 of the 5 filters")
}

func TestGetSignals(t *testing.T) {
	fs := &fakeScanner{results: map[scanner.Mode][]scanner.Result{
		scanner.ModeSwing: {swingPick("HDFCBANK", "Finance🔥"), swingPick("ITC", "FMCG")},
	}}
	bot, sender := newTestBot(fs, "token")

	require.NoError(t, bot.HandleMessage(context.Background(), "/getsignals"))

	sent := sender.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, ScanningMessage, sent[0])
	assert.Contains(t, sent[1], "TOP 5 SWING TRADE PICKS")
	assert.Contains(t, sent[1], "#1 HDFCBANK")
	assert.Contains(t, sent[1], "#2 ITC")
	assert.True(t, strings.HasSuffix(sent[1], "\n⏰ Updated: 15:00:07"))
	assert.Equal(t, []scanCall{{limit: 100, mode: scanner.ModeSwing}}, fs.calls)
}

func TestGetSignals_MissingCredential(t *testing.T) {
	fs := &fakeScanner{}
	bot, sender := newTestBot(fs, "  ")

	require.NoError(t, bot.HandleMessage(context.Background(), "/getsignals"))
	assert.Equal(t, []string{MissingCredentialMessage}, sender.messages())
	assert.Empty(t, fs.calls)
}

func TestGetSignals_ScanError(t *testing.T) {
	fs := &fakeScanner{err: errors.New("universe <missing>")}
	bot, sender := newTestBot(fs, "token")

	require.NoError(t, bot.HandleMessage(context.Background(), "/getsignals"))
	sent := sender.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "❌ Error generating signals: universe &lt;missing&gt;", sent[1])
}

func TestGetSignals_NoSetups(t *testing.T) {
	bot, sender := newTestBot(&fakeScanner{}, "token")

	require.NoError(t, bot.HandleMessage(context.Background(), "/getsignals"))
	sent := sender.messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "No qualifying swing trade setups found")
}

func TestSendDailySignals(t *testing.T) {
	fs := &fakeScanner{results: map[scanner.Mode][]scanner.Result{
		scanner.ModeSwing:     {swingPick("SBIN", "PSU🔥")},
		scanner.ModeComposite: {compositePick("TCS", 16)},
	}}
	bot, sender := newTestBot(fs, "token")

	require.NoError(t, bot.SendDailySignals(context.Background()))

	sent := sender.messages()
	require.Len(t, sent, 3)
	assert.Equal(t, DailyHeaderMessage, sent[0])
	assert.True(t, strings.HasPrefix(sent[1], "🎯 <b>DAILY SWING PICKS</b>\n"))
	assert.Contains(t, sent[1], "SBIN")
	assert.True(t, strings.HasPrefix(sent[2], "🚀 <b>DAILY TOP PERFORMERS</b>\n"))
	assert.Contains(t, sent[2], "TCS")
	assert.Equal(t, []scanCall{
		{limit: 200, mode: scanner.ModeSwing},
		{limit: 300, mode: scanner.ModeComposite},
	}, fs.calls)
}

func TestSendDailySignals_NothingQualifies(t *testing.T) {
	bot, sender := newTestBot(&fakeScanner{}, "token")

	require.NoError(t, bot.SendDailySignals(context.Background()))
	assert.Equal(t, []string{DailyHeaderMessage, DailyNoSetupsMessage}, sender.messages())
}

func TestSendDailySignals_OnlyComposite(t *testing.T) {
	fs := &fakeScanner{results: map[scanner.Mode][]scanner.Result{
		scanner.ModeComposite: {compositePick("TCS", 16)},
	}}
	bot, sender := newTestBot(fs, "token")

	require.NoError(t, bot.SendDailySignals(context.Background()))
	sent := sender.messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "DAILY TOP PERFORMERS")
}

func TestSendDailySignals_Errors(t *testing.T) {
	bot, sender := newTestBot(&fakeScanner{}, "")
	err := bot.SendDailySignals(context.Background())
	assert.ErrorIs(t, err, scanner.ErrMissingCredential)
	assert.Equal(t, []string{DailyMissingCredential}, sender.messages())

	boom := errors.New("boom")
	bot, sender = newTestBot(&fakeScanner{err: boom}, "token")
	err = bot.SendDailySignals(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "❌ Daily signals error: boom", sender.messages()[1])
}

func TestRun_DispatchesAuthorizedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updater := &fakeUpdater{cancel: cancel, batches: [][]notifications.Update{
		{
			{UpdateID: 10, Message: &notifications.Message{Text: "/help", Chat: notifications.Chat{ID: 42}}},
			{UpdateID: 11, Message: &notifications.Message{Text: "/help", Chat: notifications.Chat{ID: 7}}},
			{UpdateID: 12},
		},
		{
			{UpdateID: 13, Message: &notifications.Message{Text: "/backtest", Chat: notifications.Chat{ID: 42}}},
		},
	}}
	sender := &fakeSender{}
	bot := NewBot(&fakeScanner{}, sender, updater, BotConfig{ChatID: "42", RetryDelay: time.Millisecond})

	require.NoError(t, bot.Run(ctx))

	sent := sender.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, HelpMessage, sent[0])
	assert.Equal(t, BacktestMessage, sent[1])
	assert.Equal(t, []int64{0, 13, 14}, updater.offsets)
	assert.Equal(t, int64(14), bot.Offset())
}
