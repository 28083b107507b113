package chart

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"upbot/internal/market"
)

// Service renders composite market charts to PNG. When disabled, or when no
// headless browser is reachable, callers get an error and treat the image as
// a degraded signal.
type Service struct {
	enabled bool
	timeout time.Duration
}

func NewService(enabled bool, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Service{enabled: enabled, timeout: timeout}
}

func (s *Service) Enabled() bool { return s != nil && s.enabled }

// Capture renders the frames and screenshots them through headless Chrome.
func (s *Service) Capture(ctx context.Context, symbol string, frames []market.Frame) (ImageResult, error) {
	if !s.Enabled() {
		return ImageResult{}, fmt.Errorf("chart capture disabled")
	}
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return ImageResult{}, fmt.Errorf("headless browser unavailable: %w", err)
	}
	html, desc, err := buildCompositeHTML(symbol, frames)
	if err != nil {
		return ImageResult{}, err
	}
	height := len(frames) * (klineHeightPx + volumeHeightPx + macdHeightPx)
	if height < 520 {
		height = 520
	}
	png, err := s.renderHTMLToPNG(ctx, html, chartWidthPx, height)
	if err != nil {
		return ImageResult{}, err
	}
	return ImageResult{
		Bytes:       png,
		Base64:      base64.StdEncoding.EncodeToString(png),
		Description: desc,
	}, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable probes for a usable Chrome once per process.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		target := ctx
		if target == nil {
			target = context.Background()
		}
		probe, cancel := chromedp.NewContext(target)
		defer cancel()
		headlessErr = chromedp.Run(probe)
	})
	return headlessErr
}

func (s *Service) renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()
	timeoutCtx, cancelTimeout := context.WithTimeout(parent, s.timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
