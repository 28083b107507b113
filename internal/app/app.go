// Package app wires configuration into the running bot and owns its
// lifecycle.
package app

import (
	"context"
	"fmt"

	"upbot/internal/config"
	"upbot/internal/ledger"
	"upbot/internal/logger"
	"upbot/internal/notify"
	"upbot/internal/pipeline"
	"upbot/internal/scheduler"
)

type App struct {
	cfg          *config.Config
	orchestrator *pipeline.Orchestrator
	store        *ledger.Store
	instructions interface {
		Watch() error
		Close() error
	}
	telegram *notify.Telegram
}

func New(cfg *config.Config) (*App, error) {
	return NewBuilder(cfg).Build()
}

// Run blocks on the schedule loop until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.store.Close()

	if err := a.instructions.Watch(); err != nil {
		logger.Warnf("app: instructions watch unavailable: %v", err)
	}
	defer a.instructions.Close()

	logger.Infof("app: %s pipeline starting, schedule=%v", a.cfg.Market.Symbol, a.cfg.Schedule.Times)
	sched := scheduler.NewDailyScheduler(ctx, a.cfg.Schedule.Times)
	sched.RunImmediately = a.cfg.Schedule.RunImmediately
	sched.Start(func() { a.runOnce(ctx) })
	return nil
}

// RunOnce executes a single pipeline run, for the -once flag and tests.
func (a *App) RunOnce(ctx context.Context) pipeline.Result {
	return a.runOnce(ctx)
}

func (a *App) runOnce(ctx context.Context) pipeline.Result {
	res := a.orchestrator.Run(ctx)
	if a.telegram != nil {
		msg := notify.FormatRunResult(a.cfg.Market.Symbol, res)
		if err := a.telegram.SendText(ctx, msg); err != nil {
			logger.Warnf("app: telegram notification failed: %v", err)
		}
	}
	return res
}
