package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const fearGreedEndpoint = "https://api.alternative.me/fng/"

// FearGreedPoint is one daily reading of the alternative.me index.
type FearGreedPoint struct {
	Value          int
	Classification string
	Timestamp      time.Time
}

type FearGreedService struct {
	endpoint string
	client   *http.Client
}

func NewFearGreedService(timeout time.Duration) *FearGreedService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FearGreedService{
		endpoint: fearGreedEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type fearGreedResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error any `json:"error"`
	} `json:"metadata"`
}

// Fetch returns up to limit readings, newest first.
func (s *FearGreedService) Fetch(ctx context.Context, limit int) ([]FearGreedPoint, error) {
	if limit <= 0 {
		limit = 1
	}
	url := fmt.Sprintf("%s?limit=%d&format=json", s.endpoint, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fear & greed: unexpected status %s", resp.Status)
	}
	var payload fearGreedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Metadata.Error != nil {
		return nil, fmt.Errorf("fear & greed: api error: %v", payload.Metadata.Error)
	}
	points := make([]FearGreedPoint, 0, len(payload.Data))
	for _, item := range payload.Data {
		value, err := strconv.Atoi(strings.TrimSpace(item.Value))
		if err != nil {
			continue
		}
		var ts time.Time
		if sec, err := strconv.ParseInt(strings.TrimSpace(item.Timestamp), 10, 64); err == nil {
			ts = time.Unix(sec, 0).UTC()
		}
		points = append(points, FearGreedPoint{
			Value:          value,
			Classification: strings.TrimSpace(item.ValueClassification),
			Timestamp:      ts,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("fear & greed: api data empty")
	}
	return points, nil
}

// FormatFearGreed renders readings as the textual block handed to the model.
func FormatFearGreed(points []FearGreedPoint) string {
	var b strings.Builder
	for _, p := range points {
		fmt.Fprintf(&b, "{value: %d, classification: %s, date: %s}\n",
			p.Value, p.Classification, p.Timestamp.Format("2006-01-02"))
	}
	return strings.TrimSpace(b.String())
}
