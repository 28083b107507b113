package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"upbot/internal/logger"
)

// Headline is one news item fed to the reasoning service.
type Headline struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// NewsService pulls recent headlines from the SerpAPI Google News engine.
type NewsService struct {
	apiKey string
	query  string
	limit  int
	client *http.Client

	baseURL string
	nowFn   func() time.Time
}

func NewNewsService(apiKey, query string, limit int, timeout time.Duration) *NewsService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NewsService{
		apiKey:  strings.TrimSpace(apiKey),
		query:   query,
		limit:   limit,
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://serpapi.com/search.json",
		nowFn:   time.Now,
	}
}

// Fetch returns up to limit headlines. A missing API key is not an error:
// the observation simply carries no news that run.
func (s *NewsService) Fetch(ctx context.Context) ([]Headline, error) {
	if s.apiKey == "" {
		logger.Warnf("news: SERPAPI key not configured, skipping headlines")
		return nil, nil
	}
	q := url.Values{}
	q.Set("engine", "google_news")
	q.Set("q", s.query)
	q.Set("api_key", s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("news: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return s.parse(body), nil
}

// parse walks news_results, flattening nested story groups. SerpAPI mixes
// grouped and flat items in the same array.
func (s *NewsService) parse(body []byte) []Headline {
	if !gjson.ValidBytes(body) {
		logger.Warnf("news: response is not valid JSON")
		return nil
	}
	results := gjson.GetBytes(body, "news_results")
	if !results.Exists() {
		return nil
	}
	var items []Headline
	results.ForEach(func(_, item gjson.Result) bool {
		if stories := item.Get("stories"); stories.IsArray() {
			stories.ForEach(func(_, story gjson.Result) bool {
				items = append(items, s.headline(story))
				return true
			})
			return true
		}
		items = append(items, s.headline(item))
		return true
	})
	if s.limit > 0 && len(items) > s.limit {
		items = items[:s.limit]
	}
	return items
}

func (s *NewsService) headline(node gjson.Result) Headline {
	title := strings.TrimSpace(node.Get("title").String())
	if title == "" {
		title = "No title"
	}
	source := strings.TrimSpace(node.Get("source.name").String())
	if source == "" {
		source = "Unknown source"
	}
	return Headline{
		Title:     title,
		Source:    source,
		Timestamp: s.parseDate(node.Get("date").String()),
	}
}

// SerpAPI date strings come in a couple of shapes; fall back to now rather
// than dropping the headline.
func (s *NewsService) parseDate(raw string) int64 {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		"01/02/2006, 03:04 PM, -0700 MST",
		"01/02/2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli()
		}
	}
	return s.nowFn().UnixMilli()
}
