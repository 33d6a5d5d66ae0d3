package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fazecat/niftyscreener/Internal/notifications"
	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
	"github.com/fazecat/niftyscreener/Internal/utils/formatting"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

// Scanner runs one scan over the configured universe. *scanner.Service satisfies it.
type Scanner interface {
	RunScan(ctx context.Context, credential string, scanLimit int, mode scanner.Mode) ([]scanner.Result, error)
}

type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

type Updater interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]notifications.Update, error)
}

type BotConfig struct {
	ChatID         string
	Credential     string
	SignalsLimit   int
	SwingLimit     int
	CompositeLimit int
	PollTimeout    time.Duration
	RetryDelay     time.Duration
	Swing          *signals.SwingFilter
	Location       *time.Location
}

// Bot answers chat commands and pushes scheduled digests.
type Bot struct {
	scanner Scanner
	sender  Sender
	updates Updater
	cfg     BotConfig
	offset  int64
	now     func() time.Time
	status  func() string
}

func NewBot(s Scanner, sender Sender, updates Updater, cfg BotConfig) *Bot {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.Swing == nil {
		cfg.Swing = signals.NewSwingFilter()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Bot{
		scanner: s,
		sender:  sender,
		updates: updates,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetStatusSource makes /status report the scheduler running alongside the
// bot. Without one, /status says no schedule is active.
func (b *Bot) SetStatusSource(status func() string) {
	b.status = status
}

func (b *Bot) Send(ctx context.Context, text string) error {
	return b.sender.SendMessage(ctx, text)
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if b.updates == nil {
		return errors.New("bot has no update source")
	}
	log.Info().Str("chat_id", b.cfg.ChatID).Msg("Telegram bot listening for commands")

	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := b.updates.GetUpdates(ctx, b.offset, b.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Msg("Failed to fetch Telegram updates")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(b.cfg.RetryDelay):
			}
			continue
		}
		b.Dispatch(ctx, updates)
	}
}

// Dispatch handles a batch of updates and advances the poll offset.
func (b *Bot) Dispatch(ctx context.Context, updates []notifications.Update) {
	for _, u := range updates {
		if u.UpdateID >= b.offset {
			b.offset = u.UpdateID + 1
		}
		if u.Message == nil || u.Message.Text == "" {
			continue
		}
		if u.Message.ChatID() != b.cfg.ChatID {
			log.Warn().Str("chat_id", u.Message.ChatID()).Msg("Ignoring message from unauthorized chat")
			continue
		}
		if err := b.HandleMessage(ctx, u.Message.Text); err != nil {
			log.Error().Err(err).Str("text", u.Message.Text).Msg("Failed to handle message")
			_ = b.Send(ctx, ProcessingErrorMessage)
		}
	}
}

func (b *Bot) Offset() int64 {
	return b.offset
}

func (b *Bot) HandleMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return b.Send(ctx, GreetingMessage)
	}

	command := strings.ToLower(strings.Fields(text)[0])
	// commands addressed as /cmd@BotName in group chats
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	log.Info().Str("command", command).Msg("Handling bot command")

	switch command {
	case "/swingtop5":
		return b.Send(ctx, CriteriaMessage(b.cfg.Swing))
	case "/backtest":
		return b.Send(ctx, BacktestMessage)
	case "/getsignals":
		return b.getSignals(ctx)
	case "/status":
		if b.status == nil {
			return b.Send(ctx, SchedulerOffMessage)
		}
		return b.Send(ctx, b.status())
	case "/help", "/start":
		return b.Send(ctx, HelpMessage)
	default:
		return b.Send(ctx, UnknownCommandMessage(command))
	}
}

func (b *Bot) getSignals(ctx context.Context) error {
	if strings.TrimSpace(b.cfg.Credential) == "" {
		return b.Send(ctx, MissingCredentialMessage)
	}
	if err := b.Send(ctx, ScanningMessage); err != nil {
		return err
	}

	results, err := b.scanner.RunScan(ctx, b.cfg.Credential, b.cfg.SignalsLimit, scanner.ModeSwing)
	if err != nil {
		if errors.Is(err, scanner.ErrMissingCredential) {
			return b.Send(ctx, MissingCredentialMessage)
		}
		log.Error().Err(err).Msg("Signal scan failed")
		return b.Send(ctx, errorMessage("Error generating signals", err))
	}

	now := b.now().In(b.cfg.Location)
	msg := formatting.FormatDigest(results, scanner.ModeSwing, now)
	if summary := formatting.SectorSummary(results); summary != "" {
		msg += "\n" + summary
	}
	msg += timestampLine(now.Format("15:04:05"))
	return b.Send(ctx, msg)
}

// SendDailySignals runs both scan modes and sends one message per non-empty mode.
func (b *Bot) SendDailySignals(ctx context.Context) error {
	if strings.TrimSpace(b.cfg.Credential) == "" {
		_ = b.Send(ctx, DailyMissingCredential)
		return scanner.ErrMissingCredential
	}
	if err := b.Send(ctx, DailyHeaderMessage); err != nil {
		log.Warn().Err(err).Msg("Failed to send daily header")
	}

	swing, err := b.scanner.RunScan(ctx, b.cfg.Credential, b.cfg.SwingLimit, scanner.ModeSwing)
	if err != nil {
		_ = b.Send(ctx, errorMessage("Daily signals error", err))
		return fmt.Errorf("daily swing scan: %w", err)
	}
	composite, err := b.scanner.RunScan(ctx, b.cfg.Credential, b.cfg.CompositeLimit, scanner.ModeComposite)
	if err != nil {
		_ = b.Send(ctx, errorMessage("Daily signals error", err))
		return fmt.Errorf("daily composite scan: %w", err)
	}

	now := b.now().In(b.cfg.Location)
	if len(swing) == 0 && len(composite) == 0 {
		return b.Send(ctx, DailyNoSetupsMessage)
	}
	if len(swing) > 0 {
		if err := b.Send(ctx, "🎯 <b>DAILY SWING PICKS</b>\n"+formatting.FormatDigest(swing, scanner.ModeSwing, now)); err != nil {
			return err
		}
	}
	if len(composite) > 0 {
		if err := b.Send(ctx, "🚀 <b>DAILY TOP PERFORMERS</b>\n"+formatting.FormatDigest(composite, scanner.ModeComposite, now)); err != nil {
			return err
		}
	}
	log.Info().Int("swing", len(swing)).Int("composite", len(composite)).Msg("Daily signals sent")
	return nil
}
