package upbit

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"upbot/internal/gateway/exchange"
)

type accountDTO struct {
	Currency    string `json:"currency"`
	Balance     string `json:"balance"`
	Locked      string `json:"locked"`
	AvgBuyPrice string `json:"avg_buy_price"`
}

// Balances implements exchange.Exchange. Upbit reports amounts as decimal
// strings; unparseable lines are dropped rather than failing the whole call.
func (c *Client) Balances(ctx context.Context) ([]exchange.Balance, error) {
	var dtos []accountDTO
	if err := c.doRequest(ctx, http.MethodGet, "/v1/accounts", nil, true, &dtos); err != nil {
		return nil, err
	}
	out := make([]exchange.Balance, 0, len(dtos))
	for _, dto := range dtos {
		balance, err := decimal.NewFromString(strings.TrimSpace(dto.Balance))
		if err != nil {
			continue
		}
		locked, _ := decimal.NewFromString(strings.TrimSpace(dto.Locked))
		avg, _ := decimal.NewFromString(strings.TrimSpace(dto.AvgBuyPrice))
		out = append(out, exchange.Balance{
			Currency:    strings.ToUpper(strings.TrimSpace(dto.Currency)),
			Balance:     balance,
			Locked:      locked,
			AvgBuyPrice: avg,
		})
	}
	return out, nil
}
