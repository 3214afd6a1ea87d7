package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorent/internal/domain/shared/dates"
	"autorent/internal/domain/shared/money"
)

var quoteNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func periodFrom(startOffset, days int) dates.Period {
	start := dates.Today(quoteNow).AddDate(0, 0, startOffset)
	p, err := dates.New(start, start.AddDate(0, 0, days-1))
	if err != nil {
		panic(err)
	}
	return p
}

func TestValidateBookingPeriod(t *testing.T) {
	t.Run("accepts a period starting today", func(t *testing.T) {
		assert.NoError(t, ValidateBookingPeriod(periodFrom(0, 3), quoteNow))
	})

	t.Run("rejects a period starting in the past", func(t *testing.T) {
		err := ValidateBookingPeriod(periodFrom(-1, 3), quoteNow)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("accepts the maximum span", func(t *testing.T) {
		assert.NoError(t, ValidateBookingPeriod(periodFrom(1, MaxRentalDays), quoteNow))
	})

	t.Run("rejects spans above the maximum", func(t *testing.T) {
		err := ValidateBookingPeriod(periodFrom(1, MaxRentalDays+1), quoteNow)
		assert.ErrorIs(t, err, ErrPeriodTooLong)
	})
}

func TestComputeQuote(t *testing.T) {
	pricePerDay := money.Must(100000, "RUB") // 1000.00 per day

	tests := []struct {
		name         string
		days         int
		wantFull     int64
		wantDiscount int64
		wantTotal    int64
		wantMessage  string
	}{
		{"no discount below a week", 6, 600000, 0, 600000, "No discount applicable"},
		{"weekly discount at seven days", 7, 700000, 70000, 630000, "7+ day discount applied"},
		{"weekly discount up to 29 days", 29, 2900000, 290000, 2610000, "7+ day discount applied"},
		{"long-term discount at 30 days", 30, 3000000, 450000, 2550000, "30+ day discount applied"},
		{"long-term discount at the cap", 60, 6000000, 900000, 5100000, "30+ day discount applied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeQuote(pricePerDay, periodFrom(1, tt.days), quoteNow)
			require.NoError(t, err)
			assert.Equal(t, tt.days, quote.Days)
			assert.Equal(t, tt.wantFull, quote.FullCost.Amount)
			assert.Equal(t, tt.wantDiscount, quote.Discount.Amount)
			assert.Equal(t, tt.wantTotal, quote.TotalCost.Amount)
			assert.Equal(t, tt.wantMessage, quote.Message)
		})
	}

	t.Run("rejects periods above the cap", func(t *testing.T) {
		_, err := ComputeQuote(pricePerDay, periodFrom(1, 61), quoteNow)
		assert.ErrorIs(t, err, ErrPeriodTooLong)
	})

	t.Run("discount keeps the price currency", func(t *testing.T) {
		quote, err := ComputeQuote(money.Must(5000, "USD"), periodFrom(1, 10), quoteNow)
		require.NoError(t, err)
		assert.Equal(t, "USD", quote.Discount.Currency)
		assert.Equal(t, "USD", quote.TotalCost.Currency)
	})

	t.Run("single day rents one day", func(t *testing.T) {
		quote, err := ComputeQuote(pricePerDay, periodFrom(1, 1), quoteNow)
		require.NoError(t, err)
		assert.Equal(t, 1, quote.Days)
		assert.Equal(t, int64(100000), quote.TotalCost.Amount)
	})
}
