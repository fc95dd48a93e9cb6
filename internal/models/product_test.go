// internal/models/product_test.go
package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func promoWindow(pct string, from, to time.Time) *Promotion {
	return &Promotion{
		Name:            "Test Promotion",
		DiscountPercent: decimal.RequireFromString(pct),
		StartDate:       from,
		EndDate:         to,
		IsActive:        true,
	}
}

func TestEffectivePrice(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan31 := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)

	product := Product{
		Name:      "Mechanical Keyboard",
		Price:     decimal.RequireFromString("100.00"),
		Promotion: promoWindow("20", jan1, jan31),
	}

	t.Run("inside window applies discount", func(t *testing.T) {
		at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
		assert.True(t, decimal.RequireFromString("80.00").Equal(product.EffectivePrice(at)))
	})

	t.Run("after window falls back to list price", func(t *testing.T) {
		at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, decimal.RequireFromString("100.00").Equal(product.EffectivePrice(at)))
	})

	t.Run("before window falls back to list price", func(t *testing.T) {
		at := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
		assert.True(t, decimal.RequireFromString("100.00").Equal(product.EffectivePrice(at)))
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		assert.True(t, decimal.RequireFromString("80.00").Equal(product.EffectivePrice(jan1)))
		assert.True(t, decimal.RequireFromString("80.00").Equal(product.EffectivePrice(jan31)))
	})

	t.Run("same instant always yields same price", func(t *testing.T) {
		at := time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)
		first := product.EffectivePrice(at)
		for i := 0; i < 5; i++ {
			assert.True(t, first.Equal(product.EffectivePrice(at)))
		}
	})
}

func TestEffectivePriceEdgeCases(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dec31 := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no promotion", func(t *testing.T) {
		p := Product{Price: decimal.RequireFromString("49.99")}
		assert.True(t, decimal.RequireFromString("49.99").Equal(p.EffectivePrice(mid)))
	})

	t.Run("inactive promotion is ignored", func(t *testing.T) {
		promo := promoWindow("50", jan1, dec31)
		promo.IsActive = false
		p := Product{Price: decimal.RequireFromString("40.00"), Promotion: promo}
		assert.True(t, decimal.RequireFromString("40.00").Equal(p.EffectivePrice(mid)))
	})

	t.Run("zero percent is ignored", func(t *testing.T) {
		p := Product{
			Price:     decimal.RequireFromString("40.00"),
			Promotion: promoWindow("0", jan1, dec31),
		}
		assert.True(t, decimal.RequireFromString("40.00").Equal(p.EffectivePrice(mid)))
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		// 10.01 * 0.85 = 8.5085, rounds to 8.51
		p := Product{
			Price:     decimal.RequireFromString("10.01"),
			Promotion: promoWindow("15", jan1, dec31),
		}
		assert.True(t, decimal.RequireFromString("8.51").Equal(p.EffectivePrice(mid)))
	})

	t.Run("full discount falls back to list price", func(t *testing.T) {
		p := Product{
			Price:     decimal.RequireFromString("25.00"),
			Promotion: promoWindow("100", jan1, dec31),
		}
		assert.True(t, decimal.RequireFromString("25.00").Equal(p.EffectivePrice(mid)))
	})
}
