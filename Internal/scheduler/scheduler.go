package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/fazecat/niftyscreener/Internal/utils/config"
)

const (
	JobMarketOpen   = "market_open"
	JobDailySignals = "daily_signals"
	JobMarketClose  = "market_close"
	JobWeekend      = "weekend_review"
)

// Notifier is the chat side of the scheduler. *handlers.Bot satisfies it.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendDailySignals(ctx context.Context) error
}

type JobRun struct {
	Name    string
	NextRun time.Time
}

type DailyScheduler struct {
	cron     *gocron.Scheduler
	notifier Notifier
	loc      *time.Location
	holidays map[string]bool
	now      func() time.Time

	mu  sync.Mutex
	ctx context.Context
}

func NewDailyScheduler(notifier Notifier, cfg *config.Config) (*DailyScheduler, error) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	s := &DailyScheduler{
		cron:     gocron.NewScheduler(loc),
		notifier: notifier,
		loc:      loc,
		holidays: cfg.HolidaySet(),
		now:      time.Now,
		ctx:      context.Background(),
	}
	s.cron.SingletonModeAll()

	jobs := []struct {
		name string
		at   string
		days string
		fn   func()
	}{
		{JobMarketOpen, cfg.Scheduler.MarketOpen, "1-5", s.marketOpen},
		{JobDailySignals, cfg.Scheduler.Signals, "1-5", s.dailySignals},
		{JobMarketClose, cfg.Scheduler.MarketClose, "1-5", s.marketClose},
		{JobWeekend, cfg.Scheduler.Weekend, "6", s.weekendReview},
	}
	for _, j := range jobs {
		expr, err := cronAt(j.at, j.days)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.name, err)
		}
		if _, err := s.cron.Cron(expr).Tag(j.name).Do(j.fn); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}
	return s, nil
}

// cronAt turns "HH:MM" into a five-field cron expression for the given weekdays.
func cronAt(at, days string) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok {
		return "", fmt.Errorf("invalid time %q, want HH:MM", at)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, days), nil
}

// Start runs the jobs in the background until Stop or ctx is done.
func (s *DailyScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.StartAsync()
	log.Info().Str("timezone", s.loc.String()).Int("jobs", len(s.cron.Jobs())).Msg("Scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

func (s *DailyScheduler) Stop() {
	if !s.cron.IsRunning() {
		return
	}
	s.cron.Stop()
	log.Info().Msg("Scheduler stopped")
}

func (s *DailyScheduler) IsRunning() bool {
	return s.cron.IsRunning()
}

func (s *DailyScheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// IsMarketDay reports whether t falls on a weekday that is not a configured holiday,
// judged in the exchange timezone.
func (s *DailyScheduler) IsMarketDay(t time.Time) bool {
	local := t.In(s.loc)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !s.holidays[local.Format("2006-01-02")]
}

func (s *DailyScheduler) send(name, text string) {
	if err := s.notifier.Send(s.context(), text); err != nil {
		log.Error().Err(err).Str("job", name).Msg("Failed to send scheduled message")
		return
	}
	log.Info().Str("job", name).Msg("Scheduled message sent")
}

func (s *DailyScheduler) marketOpen() {
	now := s.now().In(s.loc)
	if !s.IsMarketDay(now) {
		log.Debug().Str("job", JobMarketOpen).Msg("Market closed today, skipping")
		return
	}
	s.send(JobMarketOpen, MarketOpenMessage(now))
}

func (s *DailyScheduler) dailySignals() {
	now := s.now().In(s.loc)
	if !s.IsMarketDay(now) {
		log.Debug().Str("job", JobDailySignals).Msg("Market closed today, skipping")
		return
	}
	start := time.Now()
	if err := s.notifier.SendDailySignals(s.context()); err != nil {
		log.Error().Err(err).Msg("Daily signals failed")
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("Daily signals completed")
}

func (s *DailyScheduler) marketClose() {
	now := s.now().In(s.loc)
	if !s.IsMarketDay(now) {
		log.Debug().Str("job", JobMarketClose).Msg("Market closed today, skipping")
		return
	}
	s.send(JobMarketClose, MarketCloseMessage(now))
}

func (s *DailyScheduler) weekendReview() {
	s.send(JobWeekend, WeekendMessage(s.now().In(s.loc)))
}

// NextRuns lists scheduled jobs by their next run time. Runs are only known
// once the scheduler has started.
func (s *DailyScheduler) NextRuns() []JobRun {
	var runs []JobRun
	for _, job := range s.cron.Jobs() {
		tags := job.Tags()
		if len(tags) == 0 {
			continue
		}
		runs = append(runs, JobRun{Name: tags[0], NextRun: job.NextRun().In(s.loc)})
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].NextRun.Before(runs[j].NextRun) })
	return runs
}

func (s *DailyScheduler) Status() string {
	return StatusMessage(s.now().In(s.loc), s.IsRunning(), s.NextRuns(), s.IsMarketDay(s.now()))
}
