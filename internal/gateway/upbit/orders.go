package upbit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"upbot/internal/gateway/exchange"
)

type orderDTO struct {
	UUID      string `json:"uuid"`
	Side      string `json:"side"`
	OrdType   string `json:"ord_type"`
	Market    string `json:"market"`
	CreatedAt string `json:"created_at"`
}

// BuyMarket places a market buy spending quoteAmount of the quote currency
// (Upbit ord_type "price": price field carries the spend amount).
func (c *Client) BuyMarket(ctx context.Context, marketCode string, quoteAmount decimal.Decimal) (exchange.OrderResult, error) {
	if quoteAmount.LessThanOrEqual(decimal.Zero) {
		return exchange.OrderResult{}, fmt.Errorf("upbit: buy amount must be positive")
	}
	q := url.Values{}
	q.Set("market", marketCode)
	q.Set("side", "bid")
	q.Set("ord_type", "price")
	q.Set("price", quoteAmount.String())
	return c.placeOrder(ctx, q)
}

// SellMarket places a market sell of assetVolume base currency units
// (ord_type "market": volume field carries the asset amount).
func (c *Client) SellMarket(ctx context.Context, marketCode string, assetVolume decimal.Decimal) (exchange.OrderResult, error) {
	if assetVolume.LessThanOrEqual(decimal.Zero) {
		return exchange.OrderResult{}, fmt.Errorf("upbit: sell volume must be positive")
	}
	q := url.Values{}
	q.Set("market", marketCode)
	q.Set("side", "ask")
	q.Set("ord_type", "market")
	q.Set("volume", assetVolume.String())
	return c.placeOrder(ctx, q)
}

func (c *Client) placeOrder(ctx context.Context, q url.Values) (exchange.OrderResult, error) {
	var dto orderDTO
	if err := c.doRequest(ctx, http.MethodPost, "/v1/orders", q, true, &dto); err != nil {
		return exchange.OrderResult{}, err
	}
	return exchange.OrderResult{
		UUID:      dto.UUID,
		Side:      dto.Side,
		OrdType:   dto.OrdType,
		Market:    dto.Market,
		CreatedAt: dto.CreatedAt,
	}, nil
}
