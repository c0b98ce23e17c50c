package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_MonthlyWithCoupon(t *testing.T) {
	coupons := Coupons{"LUCY10": 0.1}
	assert.Equal(t, 324.00, coupons.Price("mensal", "LUCY10"))
}

func TestPrice_UnknownCouponMatchesNoCoupon(t *testing.T) {
	coupons := Coupons{"LUCY10": 0.1, "TRG20": 0.2}
	for _, plan := range []string{PlanIndividual, PlanMonthly} {
		want := coupons.Price(plan, "")
		for _, code := range []string{"NOPE", "LUCY", "  ", "TRG21"} {
			assert.Equal(t, want, coupons.Price(plan, code), "plan=%s code=%q", plan, code)
		}
	}
}

func TestPrice_CaseInsensitiveCode(t *testing.T) {
	coupons := Coupons{"TRG20": 0.2}
	assert.Equal(t, 96.00, coupons.Price(PlanIndividual, "trg20"))
	assert.Equal(t, 96.00, coupons.Price(PlanIndividual, " Trg20 "))
}

func TestPrice_NonIncreasingInDiscount(t *testing.T) {
	prev := BasePrice(PlanMonthly)
	for _, d := range []float64{0, 0.05, 0.1, 0.333, 0.5, 0.75, 0.99} {
		got := Coupons{"X": d}.Price(PlanMonthly, "X")
		assert.Equal(t, Round2(MonthlyPrice*(1-d)), got)
		assert.LessOrEqual(t, got, prev, "discount %v", d)
		assert.GreaterOrEqual(t, got, 0.0)
		prev = got
	}
}

func TestBasePrice(t *testing.T) {
	tests := []struct {
		plan string
		want float64
	}{
		{"mensal", 360},
		{"monthly", 360},
		{"MENSAL", 360},
		{"individual", 120},
		{"something-else", 120},
	}
	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			assert.Equal(t, tt.want, BasePrice(tt.plan))
		})
	}
}

func TestNilCouponsPriceIsBase(t *testing.T) {
	var coupons Coupons
	assert.Equal(t, 120.0, coupons.Price(PlanIndividual, "LUCY10"))
}

func TestParseCoupons(t *testing.T) {
	coupons, err := ParseCoupons(`{"lucy10":0.1,"TRG20":0.2}`)
	require.NoError(t, err)
	assert.Equal(t, Coupons{"LUCY10": 0.1, "TRG20": 0.2}, coupons)

	empty, err := ParseCoupons("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseCoupons_InvalidJSON(t *testing.T) {
	coupons, err := ParseCoupons(`{"LUCY10":`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCoupons))
	assert.Empty(t, coupons)
}

func TestParseCoupons_DropsOutOfRange(t *testing.T) {
	coupons, err := ParseCoupons(`{"OK":0.15,"FREE":1,"NEG":-0.2}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCoupons))
	assert.Contains(t, err.Error(), "FREE, NEG")
	assert.Equal(t, Coupons{"OK": 0.15}, coupons)
}

func TestParseCoupons_CaseDuplicatesResolveDeterministically(t *testing.T) {
	for i := 0; i < 20; i++ {
		coupons, err := ParseCoupons(`{"lucy10":0.3,"LUCY10":0.1,"Lucy10":0.2}`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidCoupons))
		assert.Contains(t, err.Error(), "duplicate codes ignored: Lucy10, lucy10")
		assert.Equal(t, Coupons{"LUCY10": 0.1}, coupons)
	}
}
