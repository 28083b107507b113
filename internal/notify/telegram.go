// Package notify pushes run summaries to Telegram. Notification failures
// are reported to the caller but must never affect a trading run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"upbot/internal/executor"
	"upbot/internal/pipeline"
)

type Telegram struct {
	BotToken string
	ChatID   string
	Client   *http.Client

	baseURL string
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		Client:   &http.Client{Timeout: 15 * time.Second},
		baseURL:  "https://api.telegram.org",
	}
}

func (t *Telegram) Enabled() bool {
	return t != nil && t.BotToken != "" && t.ChatID != ""
}

// SendText posts a Markdown message, retrying up to 3 times with a linear
// backoff.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	if !t.Enabled() {
		return fmt.Errorf("telegram is not configured")
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.BotToken)
	payload, _ := json.Marshal(map[string]any{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "Markdown",
	})

	var lastErr error
	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := t.Client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode/100 == 2 {
				return nil
			}
			lastErr = fmt.Errorf("telegram status=%d", resp.StatusCode)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * time.Second):
		}
	}
	return lastErr
}

// FormatRunResult renders one pipeline result as a Telegram message.
func FormatRunResult(symbol string, res pipeline.Result) string {
	var b strings.Builder
	if res.State == pipeline.StateAborted {
		fmt.Fprintf(&b, "⚠️ *%s* run aborted", symbol)
		if res.Err != nil {
			fmt.Fprintf(&b, ": %v", res.Err)
		} else {
			b.WriteString(": no directive from the model")
		}
		// A recording abort happens after execution; include what went out.
		if res.Directive != nil {
			fmt.Fprintf(&b, "\n%s %s", strings.ToUpper(string(res.Directive.Action)), res.Report.Detail)
		}
		return b.String()
	}

	icon := "ℹ️"
	switch res.Report.Outcome {
	case executor.OutcomePlaced:
		icon = "🚀"
	case executor.OutcomeFailed:
		icon = "❌"
	}
	fmt.Fprintf(&b, "%s *%s* %s", icon, symbol, strings.ToUpper(string(res.Directive.Action)))
	if res.Directive.Action != "hold" {
		fmt.Fprintf(&b, " %.0f%%", res.Directive.Percentage)
	}
	fmt.Fprintf(&b, "\n%s", res.Report.Detail)
	if res.Directive.Rationale != "" {
		fmt.Fprintf(&b, "\n_%s_", res.Directive.Rationale)
	}
	return b.String()
}
