// Package pricing computes session prices from the plan and an optional coupon.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// PlanIndividual is a single 55 minute session.
	PlanIndividual = "individual"
	// PlanMonthly is the four session monthly package. The site posts it as "mensal".
	PlanMonthly = "mensal"

	planMonthlyAlias = "monthly"
)

const (
	IndividualPrice = 120.00
	MonthlyPrice    = 360.00
)

// ErrInvalidCoupons is returned when the coupon table cannot be decoded.
var ErrInvalidCoupons = errors.New("pricing: invalid coupon table")

// Coupons maps an upper-case coupon code to a discount fraction in [0,1).
type Coupons map[string]float64

// ParseCoupons decodes a JSON object such as {"LUCY10":0.1}. Entries whose
// discount falls outside [0,1) are dropped and reported in the returned error,
// as are codes that repeat once upper-cased; the remaining entries are still
// returned.
func ParseCoupons(raw string) (Coupons, error) {
	out := Coupons{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	var decoded map[string]float64
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidCoupons, err)
	}

	keys := make([]string, 0, len(decoded))
	for code := range decoded {
		keys = append(keys, code)
	}
	sort.Strings(keys)

	var rejected, duplicated []string
	for _, key := range keys {
		discount := decoded[key]
		code := strings.ToUpper(strings.TrimSpace(key))
		if code == "" {
			continue
		}
		if discount < 0 || discount >= 1 || math.IsNaN(discount) {
			rejected = append(rejected, code)
			continue
		}
		// Keys are visited in byte order, so "LUCY10" beats "lucy10".
		if _, seen := out[code]; seen {
			duplicated = append(duplicated, key)
			continue
		}
		out[code] = discount
	}

	var problems []string
	if len(rejected) > 0 {
		problems = append(problems, "discount out of range for "+strings.Join(rejected, ", "))
	}
	if len(duplicated) > 0 {
		problems = append(problems, "duplicate codes ignored: "+strings.Join(duplicated, ", "))
	}
	if len(problems) > 0 {
		return out, fmt.Errorf("%w: %s", ErrInvalidCoupons, strings.Join(problems, "; "))
	}
	return out, nil
}

// Discount reports the fraction for code, matching case-insensitively.
func (c Coupons) Discount(code string) (float64, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || c == nil {
		return 0, false
	}
	d, ok := c[code]
	return d, ok
}

// NormalizePlan maps accepted plan spellings onto the canonical wire values.
func NormalizePlan(plan string) string {
	switch p := strings.ToLower(strings.TrimSpace(plan)); p {
	case PlanMonthly, planMonthlyAlias:
		return PlanMonthly
	case PlanIndividual:
		return PlanIndividual
	default:
		return p
	}
}

// IsMonthly reports whether plan is the monthly package.
func IsMonthly(plan string) bool {
	return NormalizePlan(plan) == PlanMonthly
}

// BasePrice returns the list price for plan. Anything that is not the monthly
// package is priced as an individual session.
func BasePrice(plan string) float64 {
	if IsMonthly(plan) {
		return MonthlyPrice
	}
	return IndividualPrice
}

// Price applies the coupon discount to the plan's base price. Unknown or empty
// coupons leave the price unchanged.
func (c Coupons) Price(plan, coupon string) float64 {
	base := BasePrice(plan)
	discount, ok := c.Discount(coupon)
	if !ok {
		return base
	}
	return Round2(base * (1 - discount))
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
