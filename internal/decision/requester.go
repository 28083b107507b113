package decision

import (
	"context"
	"encoding/json"
	"time"

	"upbot/internal/gateway/provider"
	"upbot/internal/logger"
	"upbot/internal/observe"
)

// HistorySource supplies the bounded textual history of prior decisions,
// most recent first. The ledger implements it.
type HistorySource interface {
	FormatRecent(ctx context.Context, limit int) (string, error)
}

// Trace records what one RequestDirective call sent and got back, for the
// run log.
type Trace struct {
	ProviderID    string
	System        string
	User          []string
	RawOutput     string
	Attempts      int
	ImageAttached bool
	Err           string
}

// Requester turns an Observation into a Directive through the reasoning
// service, retrying malformed or failed replies up to a fixed budget.
type Requester struct {
	provider     provider.ModelProvider
	instructions *InstructionSource
	history      HistorySource

	historyLimit int
	maxAttempts  int
	retryDelay   time.Duration
	maxTokens    int

	sleepFn func(context.Context, time.Duration) error
}

func NewRequester(p provider.ModelProvider, instructions *InstructionSource, history HistorySource, historyLimit, maxAttempts int, retryDelay time.Duration, maxTokens int) *Requester {
	return &Requester{
		provider:     p,
		instructions: instructions,
		history:      history,
		historyLimit: historyLimit,
		maxAttempts:  maxAttempts,
		retryDelay:   retryDelay,
		maxTokens:    maxTokens,
		sleepFn:      sleepCtx,
	}
}

// RequestDirective returns (nil, trace) when the retry budget is exhausted.
// That is a normal terminal outcome, not an error: the orchestrator skips
// execution and records nothing for the run.
func (r *Requester) RequestDirective(ctx context.Context, obs observe.Observation) (*Directive, Trace) {
	payload := r.buildPayload(ctx, obs)
	trace := Trace{
		ProviderID:    r.provider.ID(),
		System:        payload.System,
		User:          payload.User,
		ImageAttached: len(payload.Images) > 0,
	}

	state := NewRetryState(r.maxAttempts, r.retryDelay)
	for state.Next() {
		trace.Attempts = state.Attempt
		raw, err := r.provider.Call(ctx, payload)
		if err == nil {
			trace.RawOutput = raw
			d, perr := ParseDirective(raw)
			if perr == nil {
				trace.Err = ""
				return d, trace
			}
			err = perr
		}
		trace.Err = err.Error()
		if state.Exhausted() {
			break
		}
		logger.Warnf("requester: attempt %d/%d failed (%v), retrying in %s",
			state.Attempt, state.MaxAttempts, err, state.Delay)
		if serr := r.sleepFn(ctx, state.Delay); serr != nil {
			trace.Err = serr.Error()
			break
		}
	}
	logger.Errorf("requester: no directive after %d attempts: %s", trace.Attempts, trace.Err)
	return nil, trace
}

// buildPayload serializes the observation into ordered content parts,
// mirroring the fixed input order the system instruction documents.
func (r *Requester) buildPayload(ctx context.Context, obs observe.Observation) provider.ChatPayload {
	payload := provider.ChatPayload{
		System:     r.instructions.Get(),
		ExpectJSON: true,
		MaxTokens:  r.maxTokens,
	}

	payload.User = append(payload.User, encodeNews(obs))
	if obs.Timeseries.Degraded {
		payload.User = append(payload.User, "No market data available.")
	} else {
		payload.User = append(payload.User, string(obs.Timeseries.Value.Encoded))
	}
	payload.User = append(payload.User, r.recentHistory(ctx))
	if obs.Sentiment.Degraded || obs.Sentiment.Value == "" {
		payload.User = append(payload.User, "No fear and greed data available.")
	} else {
		payload.User = append(payload.User, obs.Sentiment.Value)
	}
	payload.User = append(payload.User, encodeAccount(obs))

	if !obs.Chart.Degraded {
		if uri := obs.Chart.Value.DataURI(); uri != "" {
			payload.Images = append(payload.Images, provider.ImagePayload{
				DataURI:     uri,
				Description: obs.Chart.Value.Description,
			})
		}
	}
	return payload
}

func (r *Requester) recentHistory(ctx context.Context) string {
	if r.history == nil {
		return "No prior decisions."
	}
	text, err := r.history.FormatRecent(ctx, r.historyLimit)
	if err != nil {
		logger.Warnf("requester: decision history unavailable: %v", err)
		return "No prior decisions."
	}
	if text == "" {
		return "No prior decisions."
	}
	return text
}

func encodeNews(obs observe.Observation) string {
	if obs.News.Degraded || len(obs.News.Value) == 0 {
		return "No news data available."
	}
	raw, err := json.Marshal(obs.News.Value)
	if err != nil {
		return "No news data available."
	}
	return string(raw)
}

func encodeAccount(obs observe.Observation) string {
	snap := obs.Account.Value
	raw, err := json.Marshal(map[string]any{
		"current_time":       obs.TakenAt.UTC().Format(time.RFC3339),
		"orderbook_time":     snap.OrderbookTimestamp,
		"ask_price":          snap.AskPrice,
		"asset_balance":      snap.AssetBalance,
		"quote_balance":      snap.QuoteBalance,
		"asset_avg_buy_price": snap.AssetAvgCost,
	})
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
