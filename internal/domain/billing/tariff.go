package billing

import (
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Tariff holds the pricing constants for water consumption.
// A flat base fee covers AllowanceLiters; consumption beyond the allowance is
// priced per liter at BaseFee/AllowanceLiters plus SurchargeRate applied to
// the overage cost only.
type Tariff struct {
	BaseFee         decimal.Decimal
	AllowanceLiters decimal.Decimal
	SurchargeRate   decimal.Decimal // applied to overage cost, e.g. 0.10
}

// DefaultTariff returns the canonical tariff table: Q50.00 base covering
// 30,000 liters with a 10% surcharge on overage.
func DefaultTariff() Tariff {
	return Tariff{
		BaseFee:         decimal.NewFromInt(50),
		AllowanceLiters: decimal.NewFromInt(30000),
		SurchargeRate:   decimal.NewFromFloat(0.10),
	}
}

// Validate checks the tariff constants are usable
func (t Tariff) Validate() error {
	if !t.BaseFee.IsPositive() {
		return shared.NewDomainError("INVALID_TARIFF", "Base fee must be positive")
	}
	if !t.AllowanceLiters.IsPositive() {
		return shared.NewDomainError("INVALID_TARIFF", "Allowance must be positive")
	}
	if t.SurchargeRate.IsNegative() {
		return shared.NewDomainError("INVALID_TARIFF", "Surcharge rate cannot be negative")
	}
	return nil
}

// TariffBreakdown is the priced result of a consumption calculation
type TariffBreakdown struct {
	BaseFee       decimal.Decimal `json:"base_fee"`
	OverageLiters decimal.Decimal `json:"overage_liters"`
	OverageCost   decimal.Decimal `json:"overage_cost"` // includes surcharge
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"` // subtotal after tiered rounding
}

// Price computes the tariff breakdown for the given consumption in liters.
// Pure function: no state, no side effects.
func (t Tariff) Price(consumptionLiters decimal.Decimal) (TariffBreakdown, error) {
	if err := t.Validate(); err != nil {
		return TariffBreakdown{}, err
	}
	if consumptionLiters.IsNegative() {
		return TariffBreakdown{}, shared.NewDomainError("INVALID_CONSUMPTION", "Consumption cannot be negative")
	}

	overageLiters := decimal.Zero
	overageCost := decimal.Zero
	if consumptionLiters.GreaterThan(t.AllowanceLiters) {
		overageLiters = consumptionLiters.Sub(t.AllowanceLiters)
		perLiter := t.BaseFee.Div(t.AllowanceLiters)
		raw := overageLiters.Mul(perLiter)
		surcharge := raw.Mul(t.SurchargeRate)
		overageCost = raw.Add(surcharge).Round(2)
	}

	subtotal := t.BaseFee.Add(overageCost)
	return TariffBreakdown{
		BaseFee:       t.BaseFee,
		OverageLiters: overageLiters,
		OverageCost:   overageCost,
		Subtotal:      subtotal,
		Total:         RoundToQuarter(subtotal),
	}, nil
}

// RoundToQuarter applies the tiered rounding rule used for invoice totals:
// a fractional part of 0 is unchanged, up to .25 rounds up to .25, up to .50
// rounds up to .50, up to .75 rounds up to .75, and anything above rounds up
// to the next integer. The result is always a multiple of 0.25.
func RoundToQuarter(amount decimal.Decimal) decimal.Decimal {
	whole := amount.Floor()
	fraction := amount.Sub(whole)

	quarter := decimal.NewFromFloat(0.25)
	half := decimal.NewFromFloat(0.50)
	threeQuarters := decimal.NewFromFloat(0.75)

	switch {
	case fraction.IsZero():
		return whole
	case fraction.LessThanOrEqual(quarter):
		return whole.Add(quarter)
	case fraction.LessThanOrEqual(half):
		return whole.Add(half)
	case fraction.LessThanOrEqual(threeQuarters):
		return whole.Add(threeQuarters)
	default:
		return whole.Add(decimal.NewFromInt(1))
	}
}
