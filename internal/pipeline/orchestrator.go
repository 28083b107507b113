// Package pipeline runs the observe, decide, execute, record cycle. One
// Run is one cycle; runs never overlap and share no mutable state.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"upbot/internal/decision"
	"upbot/internal/executor"
	"upbot/internal/ledger"
	"upbot/internal/logger"
	"upbot/internal/observe"
)

// State tracks where a run is in its lifecycle. Transitions are strictly
// forward; Aborted is reachable from Gathering, Requesting, and Recording.
// A recording abort keeps the directive and execution report on the result,
// since the order may already be out.
type State string

const (
	StateGathering  State = "GATHERING"
	StateRequesting State = "REQUESTING"
	StateExecuting  State = "EXECUTING"
	StateRecording  State = "RECORDING"
	StateDone       State = "DONE"
	StateAborted    State = "ABORTED"
)

// Result is the outcome of one run.
type Result struct {
	State     State
	Directive *decision.Directive
	Report    executor.Report
	RecordID  int64
	Err       error
}

type Orchestrator struct {
	assembler *observe.Assembler
	requester *decision.Requester
	executor  *executor.Executor
	store     *ledger.Store
	symbol    string
	nowFn     func() time.Time
}

func NewOrchestrator(assembler *observe.Assembler, requester *decision.Requester, exec *executor.Executor, store *ledger.Store, symbol string) *Orchestrator {
	return &Orchestrator{
		assembler: assembler,
		requester: requester,
		executor:  exec,
		store:     store,
		symbol:    symbol,
		nowFn:     time.Now,
	}
}

// Run executes one full cycle. It returns rather than panics on every
// failure path: the scheduler owns the process lifetime, not a single run.
func (o *Orchestrator) Run(ctx context.Context) Result {
	started := o.nowFn()
	logger.Infof("pipeline: run started for %s", o.symbol)

	// GATHERING. The assembler degrades instead of failing, so the only
	// abort here is context cancellation.
	obs := o.assembler.Assemble(ctx)
	if err := ctx.Err(); err != nil {
		logger.Warnf("pipeline: run aborted during gathering: %v", err)
		return Result{State: StateAborted, Err: err}
	}

	// REQUESTING. A nil directive after the retry budget is a normal
	// terminal outcome: no trade, no decision row, run log only.
	directive, trace := o.requester.RequestDirective(ctx, obs)
	if directive == nil {
		o.appendRunLog(ctx, trace, "no_directive", "retry budget exhausted without a valid directive")
		logger.Warnf("pipeline: run aborted, no directive obtained")
		return Result{State: StateAborted}
	}
	logger.Infof("pipeline: directive %s", directive)

	// EXECUTING. The executor absorbs exchange failures; the run always
	// reaches recording.
	report := o.executor.Execute(ctx, *directive)

	// RECORDING. The ledger row reflects the account after execution, not
	// the observation snapshot.
	snap := o.executor.Snapshot(ctx)
	rec := ledger.Record{
		Timestamp:        started.UnixMilli(),
		Decision:         string(directive.Action),
		Percentage:       directive.Percentage,
		Reason:           directive.Rationale,
		AssetBalance:     snap.AssetBalance,
		QuoteBalance:     snap.QuoteBalance,
		AssetAvgBuyPrice: snap.AssetAvgCost,
		AssetQuotePrice:  snap.AskPrice,
	}
	id, err := o.store.Append(ctx, rec)
	if err != nil {
		// No decision row was committed, so the run must not report Done.
		logger.Errorf("pipeline: recording decision failed: %v", err)
		o.appendRunLog(ctx, trace, "record_failed",
			fmt.Sprintf("%s; recording failed: %v", report.Detail, err))
		return Result{State: StateAborted, Directive: directive, Report: report, Err: err}
	}
	o.appendRunLog(ctx, trace, string(report.Outcome), report.Detail)

	logger.Infof("pipeline: run finished in %s (%s, %s)",
		time.Since(started).Round(time.Millisecond), directive.Action, report.Outcome)
	return Result{State: StateDone, Directive: directive, Report: report, RecordID: id}
}

func (o *Orchestrator) appendRunLog(ctx context.Context, trace decision.Trace, outcome, detail string) {
	userJSON, err := json.Marshal(trace.User)
	if err != nil {
		userJSON = []byte("[]")
	}
	log := ledger.RunLog{
		Timestamp:     o.nowFn().UnixMilli(),
		Symbol:        o.symbol,
		ProviderID:    trace.ProviderID,
		SystemPrompt:  trace.System,
		UserPrompt:    userJSON,
		RawOutput:     trace.RawOutput,
		Attempts:      trace.Attempts,
		ImageAttached: trace.ImageAttached,
		Outcome:       outcome,
		Detail:        detail,
		Error:         trace.Err,
	}
	if err := o.store.AppendRunLog(ctx, log); err != nil {
		logger.Warnf("pipeline: appending run log failed: %v", err)
	}
}
