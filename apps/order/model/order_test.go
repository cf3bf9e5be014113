package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func lenient() DatePolicy {
	return DatePolicy{Now: func() time.Time { return fixedNow }}
}

func strict() DatePolicy {
	return DatePolicy{Strict: true, Now: func() time.Time { return fixedNow }}
}

func requireValidation(t *testing.T, err error, message string) {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, message, ve.Message)
}

func TestNewHeader(t *testing.T) {
	t.Run("Accepts a positive customer id and defaults the date to now", func(t *testing.T) {
		h, err := NewHeader(Fields{"customer_id": float64(1001)}, lenient())
		require.NoError(t, err)
		assert.Equal(t, int64(1001), h.CustomerID)
		assert.Equal(t, fixedNow, h.OrderDate)
		assert.Zero(t, h.OrderID)
	})

	t.Run("Accepts numeric strings and json.Number", func(t *testing.T) {
		h, err := NewHeader(Fields{"customer_id": "42"}, lenient())
		require.NoError(t, err)
		assert.Equal(t, int64(42), h.CustomerID)

		h, err = NewHeader(Fields{"customer_id": json.Number("43")}, lenient())
		require.NoError(t, err)
		assert.Equal(t, int64(43), h.CustomerID)
	})

	t.Run("Parses an explicit ISO-8601 order date", func(t *testing.T) {
		h, err := NewHeader(Fields{"customer_id": float64(7), "order_date": "2024-01-15T10:30:00"}, lenient())
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), h.OrderDate)
	})

	t.Run("Rejects a missing customer id", func(t *testing.T) {
		_, err := NewHeader(Fields{"order_date": "2024-01-15"}, lenient())
		requireValidation(t, err, "Customer ID is required")
	})

	t.Run("Rejects zero and negative customer ids", func(t *testing.T) {
		for _, v := range []any{float64(0), float64(-5), "-1"} {
			_, err := NewHeader(Fields{"customer_id": v}, lenient())
			requireValidation(t, err, "Customer ID must be a positive integer")
		}
	})

	t.Run("Rejects non-integer customer ids", func(t *testing.T) {
		for _, v := range []any{"abc", 1.5, true, nil, []any{1}, 1e30, -1e30, json.Number("1e30"), json.Number("9223372036854775808")} {
			_, err := NewHeader(Fields{"customer_id": v}, lenient())
			requireValidation(t, err, "Customer ID must be a valid integer")
		}
	})

	t.Run("Treats an unparseable date like an absent one", func(t *testing.T) {
		h, err := NewHeader(Fields{"customer_id": float64(1), "order_date": "not-a-date"}, lenient())
		require.NoError(t, err)
		assert.Equal(t, fixedNow, h.OrderDate)
	})

	t.Run("Rejects an unparseable date under the strict policy", func(t *testing.T) {
		_, err := NewHeader(Fields{"customer_id": float64(1), "order_date": "15/01/2024"}, strict())
		requireValidation(t, err, InvalidDateMessage)
	})
}

func TestNewDetail(t *testing.T) {
	t.Run("Computes row total on creation", func(t *testing.T) {
		d, err := NewDetail(1, Fields{"item_id": float64(5002), "quantity": float64(3), "unit_rate": 15.75})
		require.NoError(t, err)
		assert.Equal(t, uint(1), d.OrderID)
		assert.Equal(t, int64(5002), d.ItemID)
		assert.InDelta(t, 47.25, d.RowTotal, 1e-9)
		assert.Equal(t, d.Quantity*d.UnitRate, d.RowTotal)
	})

	t.Run("Allows a zero unit rate", func(t *testing.T) {
		d, err := NewDetail(1, Fields{"item_id": float64(1), "quantity": 2.5, "unit_rate": float64(0)})
		require.NoError(t, err)
		assert.Equal(t, 0.0, d.RowTotal)
	})

	t.Run("Lists every missing field", func(t *testing.T) {
		_, err := NewDetail(1, Fields{"item_id": float64(1)})
		requireValidation(t, err, "Missing required fields: quantity, unit_rate")
	})

	t.Run("Rejects invalid values", func(t *testing.T) {
		cases := []struct {
			fields  Fields
			message string
		}{
			{Fields{"item_id": float64(0), "quantity": float64(1), "unit_rate": float64(1)}, "Item ID must be a positive integer"},
			{Fields{"item_id": "x", "quantity": float64(1), "unit_rate": float64(1)}, "Item ID must be a valid integer"},
			{Fields{"item_id": float64(1), "quantity": float64(0), "unit_rate": float64(1)}, "Quantity must be positive"},
			{Fields{"item_id": float64(1), "quantity": "many", "unit_rate": float64(1)}, "Quantity must be a valid number"},
			{Fields{"item_id": float64(1), "quantity": float64(1), "unit_rate": -0.01}, "Unit rate cannot be negative"},
			{Fields{"item_id": float64(1), "quantity": float64(1), "unit_rate": nil}, "Unit rate must be a valid number"},
		}
		for _, tc := range cases {
			_, err := NewDetail(1, tc.fields)
			requireValidation(t, err, tc.message)
		}
	})
}

func TestOrderHeaderApplyUpdate(t *testing.T) {
	base := func() *OrderHeader {
		return &OrderHeader{OrderID: 9, CustomerID: 1001, OrderDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	}

	t.Run("Reports no change when no recognized field is present", func(t *testing.T) {
		h := base()
		changed, err := h.ApplyUpdate(Fields{"order_id": float64(77), "unknown": "x"}, lenient())
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, base(), h)
	})

	t.Run("Assigns customer id and date", func(t *testing.T) {
		h := base()
		changed, err := h.ApplyUpdate(Fields{"customer_id": float64(2002), "order_date": "2025-06-01T12:00:00Z"}, lenient())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, int64(2002), h.CustomerID)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), h.OrderDate)
		assert.Equal(t, uint(9), h.OrderID)
	})

	t.Run("Leaves the header untouched when any field is invalid", func(t *testing.T) {
		h := base()
		_, err := h.ApplyUpdate(Fields{"customer_id": float64(-1), "order_date": "2025-06-01"}, lenient())
		requireValidation(t, err, "Customer ID must be a positive integer")
		assert.Equal(t, base(), h)

		_, err = h.ApplyUpdate(Fields{"customer_id": float64(5), "order_date": "garbage"}, strict())
		requireValidation(t, err, InvalidDateMessage)
		assert.Equal(t, base(), h)
	})
}

func TestOrderDetailApplyUpdate(t *testing.T) {
	base := func() *OrderDetail {
		return &OrderDetail{DetailID: 3, OrderID: 1, ItemID: 5001, Quantity: 2, UnitRate: 10.5, RowTotal: 21}
	}

	t.Run("Recomputes row total when quantity and unit rate change", func(t *testing.T) {
		d := base()
		changed, err := d.ApplyUpdate(Fields{"quantity": float64(4), "unit_rate": 12.25})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.InDelta(t, 49.0, d.RowTotal, 1e-9)
	})

	t.Run("Recomputes row total when only one factor changes", func(t *testing.T) {
		d := base()
		_, err := d.ApplyUpdate(Fields{"quantity": float64(3)})
		require.NoError(t, err)
		assert.InDelta(t, 31.5, d.RowTotal, 1e-9)

		d = base()
		_, err = d.ApplyUpdate(Fields{"unit_rate": float64(1)})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, d.RowTotal, 1e-9)
	})

	t.Run("Leaves row total untouched when only item id changes", func(t *testing.T) {
		d := base()
		d.RowTotal = 21.0
		changed, err := d.ApplyUpdate(Fields{"item_id": float64(6000)})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, int64(6000), d.ItemID)
		assert.Equal(t, 2.0, d.Quantity)
		assert.Equal(t, 10.5, d.UnitRate)
		assert.Equal(t, 21.0, d.RowTotal)
	})

	t.Run("Ignores a client supplied row total", func(t *testing.T) {
		d := base()
		_, err := d.ApplyUpdate(Fields{"quantity": float64(5), "row_total": float64(1)})
		require.NoError(t, err)
		assert.InDelta(t, 52.5, d.RowTotal, 1e-9)

		d = base()
		changed, err := d.ApplyUpdate(Fields{"row_total": float64(999), "order_id": float64(2)})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, base(), d)
	})

	t.Run("Rejects invalid values without partial assignment", func(t *testing.T) {
		d := base()
		_, err := d.ApplyUpdate(Fields{"item_id": float64(7), "quantity": float64(-1)})
		requireValidation(t, err, "Quantity must be positive")
		assert.Equal(t, base(), d)
	})
}

func TestBeforeSaveEnforcesRowTotal(t *testing.T) {
	d := &OrderDetail{Quantity: 3, UnitRate: 2.5, RowTotal: 1}
	require.NoError(t, d.BeforeSave(nil))
	assert.Equal(t, 7.5, d.RowTotal)
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2024-01-15T10:30:00":       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		"2024-01-15T10:30:00.5":     time.Date(2024, 1, 15, 10, 30, 0, 500000000, time.UTC),
		"2024-01-15T10:30:00Z":      time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		"2024-01-15T12:30:00+02:00": time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		"2024-01-15 10:30:00":       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		"2024-01-15T10:30":          time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		"2024-01-15":                time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: want %v got %v", in, want, got)
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01", "01/15/2024"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}
