package dash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/datatypes"

	"upbot/internal/ledger"
)

func newSeededServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.sqlite")
	store, err := ledger.NewStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Append(ctx, ledger.Record{
		Timestamp: 1000, Decision: "buy", Percentage: 30, Reason: "r1",
		QuoteBalance: 70000, AssetBalance: 0.1, AssetQuotePrice: 95000000,
	})
	require.NoError(t, err)
	_, err = store.Append(ctx, ledger.Record{
		Timestamp: 2000, Decision: "hold", Percentage: 100, Reason: "r2",
		QuoteBalance: 70000, AssetBalance: 0.1, AssetQuotePrice: 96000000,
	})
	require.NoError(t, err)
	require.NoError(t, store.AppendRunLog(ctx, ledger.RunLog{
		Timestamp: 2000, Symbol: "KRW-BTC", Outcome: "held", UserPrompt: datatypes.JSON(`[]`),
	}))
	require.NoError(t, store.Close())

	reader, err := ledger.NewReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })

	srv, err := NewServer(ServerConfig{Addr: ":0", Reader: reader, Symbol: "KRW-BTC"})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newSeededServer(t)
	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListDecisions(t *testing.T) {
	srv := newSeededServer(t)
	rec := get(t, srv, "/api/decisions")
	require.Equal(t, http.StatusOK, rec.Code)

	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, "KRW-BTC", body.Get("symbol").String())
	decisions := body.Get("decisions").Array()
	require.Len(t, decisions, 2)
	assert.Equal(t, "hold", decisions[0].Get("decision").String(), "newest first")
	assert.Equal(t, "buy", decisions[1].Get("decision").String())
}

func TestListDecisionsLimit(t *testing.T) {
	srv := newSeededServer(t)
	rec := get(t, srv, "/api/decisions?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Get(rec.Body.String(), "decisions").Array(), 1)
}

func TestListRuns(t *testing.T) {
	srv := newSeededServer(t)
	rec := get(t, srv, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	runs := gjson.Get(rec.Body.String(), "runs").Array()
	require.Len(t, runs, 1)
	assert.Equal(t, "held", runs[0].Get("outcome").String())
}

func TestChartPageRenders(t *testing.T) {
	srv := newSeededServer(t)
	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestRequiresReader(t *testing.T) {
	_, err := NewServer(ServerConfig{Addr: ":0"})
	assert.Error(t, err)
}
