package upbit

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upbot/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(config.UpbitConfig{
		AccessKey: "access-key",
		SecretKey: "secret-key",
		BaseURL:   srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.UpbitConfig{})
	assert.Error(t, err)
}

func TestAuthTokenCarriesQueryHash(t *testing.T) {
	c, err := NewClient(config.UpbitConfig{
		AccessKey: "access-key",
		SecretKey: "secret-key",
		BaseURL:   "https://api.upbit.com",
	})
	require.NoError(t, err)

	q := url.Values{}
	q.Set("market", "KRW-BTC")
	q.Set("side", "bid")
	signed, err := c.authToken(q)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		assert.Equal(t, "HS256", tok.Method.Alg())
		return []byte("secret-key"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "access-key", claims["access_key"])
	assert.NotEmpty(t, claims["nonce"])
	assert.Equal(t, "SHA512", claims["query_hash_alg"])

	sum := sha512.Sum512([]byte(q.Encode()))
	assert.Equal(t, hex.EncodeToString(sum[:]), claims["query_hash"])
}

func TestAuthTokenOmitsHashForEmptyQuery(t *testing.T) {
	c, err := NewClient(config.UpbitConfig{
		AccessKey: "access-key",
		SecretKey: "secret-key",
		BaseURL:   "https://api.upbit.com",
	})
	require.NoError(t, err)

	signed, err := c.authToken(nil)
	require.NoError(t, err)
	token, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return []byte("secret-key"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	_, hasHash := claims["query_hash"]
	assert.False(t, hasHash)
}

func TestAuthTokenRequiresCredentials(t *testing.T) {
	c, err := NewClient(config.UpbitConfig{BaseURL: "https://api.upbit.com"})
	require.NoError(t, err)
	_, err = c.authToken(nil)
	assert.Error(t, err)
}

func TestBalancesParsesAndDropsBadLines(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		w.Write([]byte(`[
			{"currency":"KRW","balance":"100000.0","locked":"0.0","avg_buy_price":"0"},
			{"currency":"btc","balance":"0.5","locked":"0.1","avg_buy_price":"90000000"},
			{"currency":"DOGE","balance":"not-a-number","locked":"0","avg_buy_price":"0"}
		]`))
	}))

	balances, err := c.Balances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "KRW", balances[0].Currency)
	assert.Equal(t, "BTC", balances[1].Currency, "currency is upper-cased")
	assert.True(t, balances[1].Balance.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, balances[1].AvgBuyPrice.Equal(decimal.NewFromInt(90000000)))
}

func TestDayCandlesReversedToOldestFirst(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/candles/days", r.URL.Path)
		assert.Equal(t, "KRW-BTC", r.URL.Query().Get("market"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		assert.Empty(t, r.Header.Get("Authorization"), "candles are public")
		// Upbit returns newest first.
		w.Write([]byte(`[
			{"timestamp":3000,"opening_price":103,"high_price":104,"low_price":102,"trade_price":103.5,"candle_acc_trade_volume":3},
			{"timestamp":2000,"opening_price":102,"high_price":103,"low_price":101,"trade_price":102.5,"candle_acc_trade_volume":2},
			{"timestamp":1000,"opening_price":101,"high_price":102,"low_price":100,"trade_price":101.5,"candle_acc_trade_volume":1}
		]`))
	}))

	candles, err := c.DayCandles(context.Background(), "KRW-BTC", 3)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, int64(1000), candles[0].Timestamp)
	assert.Equal(t, int64(3000), candles[2].Timestamp)
	assert.Equal(t, 101.5, candles[0].Close)
}

func TestHourCandlesPath(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/candles/minutes/60", r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	_, err := c.HourCandles(context.Background(), "KRW-BTC", 24)
	assert.NoError(t, err)
}

func TestOrderbookTopUnit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orderbook", r.URL.Path)
		assert.Equal(t, "KRW-BTC", r.URL.Query().Get("markets"))
		w.Write([]byte(`[{"market":"KRW-BTC","timestamp":1700000000000,"orderbook_units":[
			{"ask_price":95000000,"bid_price":94990000,"ask_size":0.3,"bid_size":0.4},
			{"ask_price":95010000,"bid_price":94980000,"ask_size":1,"bid_size":1}
		]}]`))
	}))

	book, err := c.Orderbook(context.Background(), "KRW-BTC")
	require.NoError(t, err)
	assert.Equal(t, 95000000.0, book.AskPrice)
	assert.Equal(t, 94990000.0, book.BidPrice)
	assert.Equal(t, int64(1700000000000), book.Timestamp)
}

func TestOrderbookEmptyIsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	_, err := c.Orderbook(context.Background(), "KRW-BTC")
	assert.Error(t, err)
}

func TestBuyMarketPostsSignedJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "KRW-BTC", body["market"])
		assert.Equal(t, "bid", body["side"])
		assert.Equal(t, "price", body["ord_type"])
		assert.Equal(t, "49975", body["price"])

		w.Write([]byte(`{"uuid":"abc-123","side":"bid","ord_type":"price","market":"KRW-BTC","created_at":"2026-08-15T07:04:00+09:00"}`))
	}))

	res, err := c.BuyMarket(context.Background(), "KRW-BTC", decimal.NewFromInt(49975))
	require.NoError(t, err)
	assert.Equal(t, "abc-123", res.UUID)
	assert.Equal(t, "bid", res.Side)
}

func TestSellMarketSendsVolume(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ask", body["side"])
		assert.Equal(t, "market", body["ord_type"])
		assert.Equal(t, "0.2", body["volume"])
		w.Write([]byte(`{"uuid":"def-456","side":"ask","ord_type":"market","market":"KRW-BTC"}`))
	}))

	res, err := c.SellMarket(context.Background(), "KRW-BTC", decimal.NewFromFloat(0.2))
	require.NoError(t, err)
	assert.Equal(t, "def-456", res.UUID)
}

func TestOrderRejectsNonPositiveAmounts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := c.BuyMarket(context.Background(), "KRW-BTC", decimal.Zero)
	assert.Error(t, err)
	_, err = c.SellMarket(context.Background(), "KRW-BTC", decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestAPIErrorMessageSurfaces(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"name":"invalid_access_key","message":"Invalid access key."}}`))
	}))
	_, err := c.Balances(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid access key.")
}
