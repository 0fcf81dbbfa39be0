package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradegate/gateway-api/internal/types"
)

type fakeTickStore struct {
	recentLimit      int
	ticksRangeCalled bool
	rangeCalled      bool
	latestCalled     bool
	latestLimit      int
	ticks            []types.MarketTick
	candles          []types.OhlcvCandle
}

func (f *fakeTickStore) RecentTicks(_ context.Context, _ string, limit int) ([]types.MarketTick, error) {
	f.recentLimit = limit
	return f.ticks, nil
}

func (f *fakeTickStore) TicksInRange(_ context.Context, _ string, _, _ time.Time) ([]types.MarketTick, error) {
	f.ticksRangeCalled = true
	return f.ticks, nil
}

func (f *fakeTickStore) CandlesInRange(_ context.Context, _ string, start, end time.Time) ([]types.OhlcvCandle, error) {
	f.rangeCalled = true
	return f.candles, nil
}

func (f *fakeTickStore) LatestCandles(_ context.Context, _ string, limit int) ([]types.OhlcvCandle, error) {
	f.latestCalled = true
	f.latestLimit = limit
	return f.candles, nil
}

type fakePriceSource struct {
	price float64
	ok    bool
	err   error
}

func (f *fakePriceSource) LatestPrice(context.Context, string) (float64, bool, error) {
	return f.price, f.ok, f.err
}

func TestRecentTicksLimitClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "missing limit defaults", limit: 0, want: DefaultTickLimit},
		{name: "negative limit defaults", limit: -5, want: DefaultTickLimit},
		{name: "in-range limit kept", limit: 250, want: 250},
		{name: "oversized limit capped", limit: 50000, want: maxTickLimit},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeTickStore{}
			svc := NewService(store, &fakePriceSource{})

			_, err := svc.RecentTicks(context.Background(), "BTCUSD", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.recentLimit)
		})
	}
}

func TestHistoricalTicksRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	store := &fakeTickStore{}
	svc := NewService(store, &fakePriceSource{})

	end := time.Now()
	start := end.Add(time.Hour)

	_, err := svc.HistoricalTicks(context.Background(), "BTCUSD", start, end)
	assert.ErrorIs(t, err, types.ErrInvalidRange)
	assert.False(t, store.ticksRangeCalled, "no backend call on validation failure")
}

func TestCandlesRequestShapeDispatch(t *testing.T) {
	t.Parallel()

	now := time.Now()
	earlier := now.Add(-time.Hour)

	t.Run("both bounds selects ranged query", func(t *testing.T) {
		t.Parallel()

		store := &fakeTickStore{}
		svc := NewService(store, &fakePriceSource{})

		_, err := svc.Candles(context.Background(), "BTCUSD", &earlier, &now, 50)
		require.NoError(t, err)
		assert.True(t, store.rangeCalled)
		assert.False(t, store.latestCalled)
	})

	t.Run("missing bounds selects latest-N query", func(t *testing.T) {
		t.Parallel()

		store := &fakeTickStore{}
		svc := NewService(store, &fakePriceSource{})

		_, err := svc.Candles(context.Background(), "BTCUSD", nil, nil, 50)
		require.NoError(t, err)
		assert.True(t, store.latestCalled)
		assert.False(t, store.rangeCalled)
		assert.Equal(t, 50, store.latestLimit)
	})

	t.Run("only start selects latest-N query", func(t *testing.T) {
		t.Parallel()

		store := &fakeTickStore{}
		svc := NewService(store, &fakePriceSource{})

		_, err := svc.Candles(context.Background(), "BTCUSD", &earlier, nil, 0)
		require.NoError(t, err)
		assert.True(t, store.latestCalled)
		assert.Equal(t, DefaultTickLimit, store.latestLimit)
	})

	t.Run("inverted range fails before any backend call", func(t *testing.T) {
		t.Parallel()

		store := &fakeTickStore{}
		svc := NewService(store, &fakePriceSource{})

		_, err := svc.Candles(context.Background(), "BTCUSD", &now, &earlier, 0)
		assert.ErrorIs(t, err, types.ErrInvalidRange)
		assert.False(t, store.rangeCalled)
		assert.False(t, store.latestCalled)
	})
}

func TestLatestPrice(t *testing.T) {
	t.Parallel()

	t.Run("known symbol", func(t *testing.T) {
		t.Parallel()

		svc := NewService(&fakeTickStore{}, &fakePriceSource{price: 42000.5, ok: true})

		resp, err := svc.LatestPrice(context.Background(), "BTCUSD")
		require.NoError(t, err)
		require.NotNil(t, resp.Price)
		assert.Equal(t, 42000.5, *resp.Price)
		assert.Equal(t, "BTCUSD", resp.Symbol)
	})

	t.Run("unknown symbol yields null price", func(t *testing.T) {
		t.Parallel()

		svc := NewService(&fakeTickStore{}, &fakePriceSource{ok: false})

		resp, err := svc.LatestPrice(context.Background(), "NOPEUSD")
		require.NoError(t, err)
		assert.Nil(t, resp.Price)
	})
}

func newTestRouter(h *GinHandlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	md := r.Group("/api/market-data")
	md.GET("/ticks/:symbol", h.RecentTicksHandler())
	md.GET("/ticks/:symbol/range", h.HistoricalTicksHandler())
	md.GET("/ohlcv/:symbol", h.CandlesHandler())
	md.GET("/latest/:symbol", h.LatestPriceHandler())
	return r
}

func TestCandlesHandlerDispatch(t *testing.T) {
	store := &fakeTickStore{}
	h := NewGinHandlers(NewService(store, &fakePriceSource{}))
	router := newTestRouter(h)

	// No start/end: the latest-N path must run, never the ranged path.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market-data/ohlcv/BTCUSD?limit=50", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.latestCalled)
	assert.False(t, store.rangeCalled)
	assert.Equal(t, 50, store.latestLimit)
}

func TestHistoricalTicksHandlerValidation(t *testing.T) {
	store := &fakeTickStore{}
	h := NewGinHandlers(NewService(store, &fakePriceSource{}))
	router := newTestRouter(h)

	t.Run("missing timestamps", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/market-data/ticks/BTCUSD/range", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("inverted range", func(t *testing.T) {
		w := httptest.NewRecorder()
		start := time.Now().UTC().Format(time.RFC3339)
		end := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
		req := httptest.NewRequest(http.MethodGet,
			"/api/market-data/ticks/BTCUSD/range?start="+start+"&end="+end, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
	})
}
