package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Side
		wantErr bool
	}{
		{name: "buy", input: "BUY", want: SideBuy},
		{name: "sell lowercase", input: "sell", want: SideSell},
		{name: "mixed case", input: "Buy", want: SideBuy},
		{name: "unknown", input: "HOLD", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSide(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOrderSpec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderType(t *testing.T) {
	t.Parallel()

	got, err := ParseOrderType("market")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeMarket, got)

	got, err = ParseOrderType("LIMIT")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeLimit, got)

	_, err = ParseOrderType("STOP")
	assert.ErrorIs(t, err, ErrInvalidOrderSpec)
}

func TestPlaceOrderRequestValidate(t *testing.T) {
	t.Parallel()

	price := 100.5

	tests := []struct {
		name    string
		req     PlaceOrderRequest
		wantErr bool
	}{
		{
			name: "market order without price is fine",
			req:  PlaceOrderRequest{Symbol: "BTCUSD", Side: "BUY", OrderType: "MARKET", Quantity: 1},
		},
		{
			name: "limit order with price",
			req:  PlaceOrderRequest{Symbol: "BTCUSD", Side: "SELL", OrderType: "LIMIT", Quantity: 1, Price: &price},
		},
		{
			name:    "limit order without price",
			req:     PlaceOrderRequest{Symbol: "BTCUSD", Side: "BUY", OrderType: "LIMIT", Quantity: 1},
			wantErr: true,
		},
		{
			name:    "non-positive quantity",
			req:     PlaceOrderRequest{Symbol: "BTCUSD", Side: "BUY", OrderType: "MARKET", Quantity: 0},
			wantErr: true,
		},
		{
			name:    "unknown side",
			req:     PlaceOrderRequest{Symbol: "BTCUSD", Side: "SHORT", OrderType: "MARKET", Quantity: 1},
			wantErr: true,
		},
		{
			name:    "unknown order type",
			req:     PlaceOrderRequest{Symbol: "BTCUSD", Side: "BUY", OrderType: "ICEBERG", Quantity: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOrderSpec)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTerminalStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, TerminalStatus(StatusExecuted))
	assert.True(t, TerminalStatus(StatusCancelled))
	assert.False(t, TerminalStatus(StatusPending))
	assert.False(t, TerminalStatus(StatusApproved))
	assert.False(t, TerminalStatus(StatusRejected))
}
