package decision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"upbot/internal/logger"
)

// defaultInstructions is the built-in system instruction. An operator can
// point ai.instructions_path at a markdown file to tune it without a
// rebuild; the file is hot-reloaded on change.
const defaultInstructions = `You are an expert Bitcoin trading analyst for the Upbit KRW-BTC market.

You will receive, in order:
1. Recent news headlines as JSON.
2. Daily and hourly OHLCV data with technical indicators (SMA, EMA, RSI,
   Stochastic, MACD, Bollinger Bands) as JSON.
3. Your most recent prior decisions, newest first.
4. The Crypto Fear & Greed Index readings.
5. The current account status: balances, average buy price and best ask.
6. Optionally, a candlestick chart image of the market.

Weigh momentum, sentiment and your own recent decisions. Avoid churning the
account: only trade when the evidence is clear.

Respond with a single JSON object and nothing else:
{"decision": "buy" | "sell" | "hold", "percentage": <number 0-100>, "reason": "<concise rationale>"}

percentage is the share of the available balance to commit (KRW balance for
buy, BTC balance for sell). Omit it only when you mean all-in.`

// InstructionSource serves the current system instruction text.
type InstructionSource struct {
	path string

	mu   sync.RWMutex
	text string

	watcher *fsnotify.Watcher
}

func NewInstructionSource(path string) (*InstructionSource, error) {
	s := &InstructionSource{path: strings.TrimSpace(path), text: defaultInstructions}
	if s.path == "" {
		return s, nil
	}
	if err := s.reload(); err != nil {
		return nil, fmt.Errorf("loading instructions from %s failed: %w", s.path, err)
	}
	return s, nil
}

func (s *InstructionSource) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

func (s *InstructionSource) reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fmt.Errorf("instructions file is empty")
	}
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	return nil
}

// Watch hot-reloads the instructions file. Editors replace files rather
// than writing in place, so the parent directory is watched and events are
// filtered by name.
func (s *InstructionSource) Watch() error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher
	target := filepath.Clean(s.path)
	go func() {
		for {
			select {
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.reload(); err != nil {
					logger.Errorf("instructions reload failed: %v", err)
					continue
				}
				logger.Infof("instructions reloaded from %s", s.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("instructions watcher error: %v", err)
			}
		}
	}()
	return nil
}

func (s *InstructionSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}
