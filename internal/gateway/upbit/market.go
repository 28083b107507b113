package upbit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"upbot/internal/gateway/exchange"
	"upbot/internal/market"
)

type candleDTO struct {
	Market       string  `json:"market"`
	Timestamp    int64   `json:"timestamp"`
	OpeningPrice float64 `json:"opening_price"`
	HighPrice    float64 `json:"high_price"`
	LowPrice     float64 `json:"low_price"`
	TradePrice   float64 `json:"trade_price"`
	AccVolume    float64 `json:"candle_acc_trade_volume"`
}

type orderbookDTO struct {
	Market    string `json:"market"`
	Timestamp int64  `json:"timestamp"`
	Units     []struct {
		AskPrice float64 `json:"ask_price"`
		BidPrice float64 `json:"bid_price"`
		AskSize  float64 `json:"ask_size"`
		BidSize  float64 `json:"bid_size"`
	} `json:"orderbook_units"`
}

func (c *Client) DayCandles(ctx context.Context, marketCode string, count int) ([]market.Candle, error) {
	return c.candles(ctx, "/v1/candles/days", marketCode, count)
}

func (c *Client) HourCandles(ctx context.Context, marketCode string, count int) ([]market.Candle, error) {
	return c.candles(ctx, "/v1/candles/minutes/60", marketCode, count)
}

// candles fetches public candle data. Upbit returns newest-first; callers
// get oldest-first so indicator math reads naturally.
func (c *Client) candles(ctx context.Context, path, marketCode string, count int) ([]market.Candle, error) {
	if count <= 0 {
		return nil, fmt.Errorf("upbit: candle count must be positive")
	}
	q := url.Values{}
	q.Set("market", marketCode)
	q.Set("count", strconv.Itoa(count))
	var dtos []candleDTO
	if err := c.doRequest(ctx, http.MethodGet, path, q, false, &dtos); err != nil {
		return nil, err
	}
	out := make([]market.Candle, len(dtos))
	for i, dto := range dtos {
		out[len(dtos)-1-i] = market.Candle{
			Timestamp: dto.Timestamp,
			Open:      dto.OpeningPrice,
			High:      dto.HighPrice,
			Low:       dto.LowPrice,
			Close:     dto.TradePrice,
			Volume:    dto.AccVolume,
		}
	}
	return out, nil
}

func (c *Client) Orderbook(ctx context.Context, marketCode string) (exchange.Orderbook, error) {
	q := url.Values{}
	q.Set("markets", marketCode)
	var dtos []orderbookDTO
	if err := c.doRequest(ctx, http.MethodGet, "/v1/orderbook", q, false, &dtos); err != nil {
		return exchange.Orderbook{}, err
	}
	if len(dtos) == 0 || len(dtos[0].Units) == 0 {
		return exchange.Orderbook{}, fmt.Errorf("upbit: empty orderbook for %s", marketCode)
	}
	top := dtos[0].Units[0]
	return exchange.Orderbook{
		Market:    dtos[0].Market,
		Timestamp: dtos[0].Timestamp,
		AskPrice:  top.AskPrice,
		BidPrice:  top.BidPrice,
		AskSize:   top.AskSize,
		BidSize:   top.BidSize,
	}, nil
}
