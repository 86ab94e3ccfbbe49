package service

import (
	"github.com/shopspring/decimal"
)

// CostInput is one cutting part with its material resolved to a unit price.
// UnitPrice is zero when the material is unpriced.
type CostInput struct {
	MaterialID  *int64
	Consumption decimal.Decimal
	UnitPrice   decimal.Decimal
}

// MaterialTotal accumulates one material's share of a specification.
type MaterialTotal struct {
	Consumption decimal.Decimal
	Cost        decimal.Decimal
}

// AggregateCosts computes per-material totals and the grand total over the
// full current part list.
//
// cost = consumption x unit price. A missing or zero price contributes zero
// cost but the consumption is still accumulated, so totals stay informative
// for unpriced materials. No rounding happens here - display rounding (two
// decimals) is the caller's concern.
//
// The function is pure: calling it twice on the same input yields identical
// output. Callers must always pass the complete part list, never a delta.
func AggregateCosts(parts []CostInput) (map[int64]MaterialTotal, decimal.Decimal) {
	perMaterial := make(map[int64]MaterialTotal)
	grandTotal := decimal.Zero

	for _, p := range parts {
		cost := p.Consumption.Mul(p.UnitPrice)
		grandTotal = grandTotal.Add(cost)

		if p.MaterialID == nil {
			continue
		}
		t := perMaterial[*p.MaterialID]
		t.Consumption = t.Consumption.Add(p.Consumption)
		t.Cost = t.Cost.Add(cost)
		perMaterial[*p.MaterialID] = t
	}

	return perMaterial, grandTotal
}
