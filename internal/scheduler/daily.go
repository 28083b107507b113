package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"upbot/internal/logger"
)

// DailyScheduler fires a task at fixed local wall-clock times every day.
type DailyScheduler struct {
	Times          []string // "HH:MM"
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewDailyScheduler(ctx context.Context, times []string) *DailyScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &DailyScheduler{
		Times: times,
		ctx:   ctx,
		nowFn: time.Now,
	}
}

// Start blocks, running task at each configured time until the context is
// canceled. Runs are sequential: a run that overshoots its slot delays the
// next one rather than overlapping it.
func (s *DailyScheduler) Start(task func()) {
	if s == nil {
		return
	}
	if task == nil {
		logger.Warnf("DailyScheduler: task is nil, exit")
		return
	}
	marks, err := parseClockTimes(s.Times)
	if err != nil {
		logger.Errorf("DailyScheduler: %v, exit", err)
		return
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	logger.Infof("DailyScheduler: started times=%v run_immediately=%v", s.Times, s.RunImmediately)
	if s.RunImmediately {
		logger.Infof("DailyScheduler: RunImmediately=true, execute once before schedule loop")
		task()
	}

	for {
		now := s.nowFn()
		next := nextRun(now, marks)
		wait := next.Sub(now)
		logger.Infof("DailyScheduler: next run at %s (in %s)",
			next.Format(time.RFC3339), wait.Truncate(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			logger.Infof("DailyScheduler: context canceled, stop")
			return
		case <-timer.C:
		}
		task()
	}
}

type clockTime struct {
	hour, minute int
}

func parseClockTimes(times []string) ([]clockTime, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("no schedule times configured")
	}
	marks := make([]clockTime, 0, len(times))
	for _, raw := range times {
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule time %q: %w", raw, err)
		}
		marks = append(marks, clockTime{hour: t.Hour(), minute: t.Minute()})
	}
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].hour != marks[j].hour {
			return marks[i].hour < marks[j].hour
		}
		return marks[i].minute < marks[j].minute
	})
	return marks, nil
}

// nextRun returns the first mark strictly after now, rolling to tomorrow's
// earliest mark when today's are all past.
func nextRun(now time.Time, marks []clockTime) time.Time {
	for _, m := range marks {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), m.hour, m.minute, 0, 0, now.Location())
		if candidate.After(now) {
			return candidate
		}
	}
	first := marks[0]
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.hour, first.minute, 0, 0, now.Location())
}
