// Package pricing derives the monetary figures of a contract draft. All
// functions are pure so the caller can recompute on every field change and
// publish only when the result actually moved.
package pricing

import (
	"time"

	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/money"
)

// Config carries the pricing defaults that were module-level constants in the
// legacy implementation.
type Config struct {
	// FallbackVATRatio is used when an HT/TTC pair cannot infer a ratio.
	FallbackVATRatio float64
	// DepositRate is the acompte default and floor as a fraction of the due
	// deposit (0.5 = 50%).
	DepositRate float64
}

func DefaultConfig() Config {
	return Config{
		FallbackVATRatio: money.DefaultVATRatio,
		DepositRate:      0.5,
	}
}

// Quote is an externally supplied price for a dress over a date range, e.g.
// from a seasonal rate card. FinalPrice covers the whole quoted duration.
type Quote struct {
	FinalPriceHT  float64
	FinalPriceTTC float64
	DurationDays  int
}

// Input is a snapshot of the draft fields the calculator reads. Entities are
// resolved by the caller; the calculator never touches a data source.
type Input struct {
	Mode    model.RentalMode
	Start   time.Time
	End     time.Time
	Dress   model.Dress
	Package *model.ContractPackage
	Addons  []model.ContractAddon
	Quote   *Quote

	// DepositPaidTTC and CautionPaidTTC are the two user-editable figures;
	// nil means "use the default".
	DepositPaidTTC *float64
	CautionPaidTTC *float64
}

type Totals struct {
	Days                int     `json:"days"`
	BaseHT              float64 `json:"base_ht"`
	BaseTTC             float64 `json:"base_ttc"`
	AddonsChargeableHT  float64 `json:"addons_chargeable_ht"`
	AddonsChargeableTTC float64 `json:"addons_chargeable_ttc"`
	AddonsIncludedHT    float64 `json:"addons_included_ht"`
	AddonsIncludedTTC   float64 `json:"addons_included_ttc"`
	TotalHT             float64 `json:"total_ht"`
	TotalTTC            float64 `json:"total_ttc"`
	DepositDueHT        float64 `json:"deposit_due_ht"`
	DepositDueTTC       float64 `json:"deposit_due_ttc"`
	DepositPaidHT       float64 `json:"deposit_paid_ht"`
	DepositPaidTTC      float64 `json:"deposit_paid_ttc"`
	CautionDueHT        float64 `json:"caution_due_ht"`
	CautionDueTTC       float64 `json:"caution_due_ttc"`
	CautionPaidHT       float64 `json:"caution_paid_ht"`
	CautionPaidTTC      float64 `json:"caution_paid_ttc"`
}

// Equal is the field-by-field recomputation guard: callers re-run
// ComputeTotals on every edit and propagate only when something changed.
func (t Totals) Equal(o Totals) bool { return t == o }

// ComputeTotals derives every monetary figure of the draft. Idempotent and
// side-effect-free.
func ComputeTotals(in Input, cfg Config) Totals {
	days := money.RentalDays(in.Start, in.End)

	var baseHT, baseTTC float64
	switch in.Mode {
	case model.ModePackage:
		if in.Package != nil {
			baseHT = in.Package.PriceHT
			baseTTC = in.Package.PriceTTC
		}
	default:
		perDayHT, perDayTTC := dailyRate(in)
		baseHT = perDayHT * float64(days)
		baseTTC = perDayTTC * float64(days)
	}

	var chargeableHT, chargeableTTC, includedHT, includedTTC float64
	for _, addon := range in.Addons {
		if in.Mode == model.ModePackage && in.Package != nil && in.Package.IncludesAddon(addon.ID) {
			includedHT += addon.PriceHT
			includedTTC += addon.PriceTTC
			continue
		}
		chargeableHT += addon.PriceHT
		chargeableTTC += addon.PriceTTC
	}

	totalHT := baseHT + chargeableHT
	totalTTC := baseTTC + chargeableTTC

	ratio := money.VATRatio(baseHT, baseTTC, cfg.FallbackVATRatio)

	// Observed legacy behavior: the due acompte equals the full total.
	depositDueTTC := totalTTC
	depositDueHT := depositDueTTC * ratio

	depositPaidTTC := depositPaid(in, cfg, depositDueTTC, totalTTC)
	depositPaidHT := depositPaidTTC * ratio

	var cautionDueHT, cautionDueTTC float64
	if in.Mode == model.ModePackage {
		if in.Package != nil {
			cautionDueHT = in.Package.PriceHT
			cautionDueTTC = in.Package.PriceTTC
		}
	} else {
		cautionDueHT = in.Dress.PriceHT
		cautionDueTTC = in.Dress.PriceTTC
	}

	var cautionPaidTTC float64
	if in.CautionPaidTTC != nil {
		cautionPaidTTC = ClampCautionPaid(*in.CautionPaidTTC, cautionDueTTC)
	}
	cautionPaidHT := cautionPaidTTC * ratio

	return Totals{
		Days:                days,
		BaseHT:              baseHT,
		BaseTTC:             baseTTC,
		AddonsChargeableHT:  chargeableHT,
		AddonsChargeableTTC: chargeableTTC,
		AddonsIncludedHT:    includedHT,
		AddonsIncludedTTC:   includedTTC,
		TotalHT:             totalHT,
		TotalTTC:            totalTTC,
		DepositDueHT:        depositDueHT,
		DepositDueTTC:       depositDueTTC,
		DepositPaidHT:       depositPaidHT,
		DepositPaidTTC:      depositPaidTTC,
		CautionDueHT:        cautionDueHT,
		CautionDueTTC:       cautionDueTTC,
		CautionPaidHT:       cautionPaidHT,
		CautionPaidTTC:      cautionPaidTTC,
	}
}

// dailyRate picks the per-day price: quote first (quoted total over its own
// day count), then the dress's daily rate fields, then its sale price.
func dailyRate(in Input) (ht, ttc float64) {
	if q := in.Quote; q != nil && q.DurationDays > 0 && q.FinalPriceTTC > 0 {
		return q.FinalPriceHT / float64(q.DurationDays), q.FinalPriceTTC / float64(q.DurationDays)
	}
	if in.Dress.DailyPriceTTC > 0 {
		return in.Dress.DailyPriceHT, in.Dress.DailyPriceTTC
	}
	return in.Dress.PriceHT, in.Dress.PriceTTC
}

func depositPaid(in Input, cfg Config, depositDueTTC, totalTTC float64) float64 {
	defaultPaid := money.Round2(cfg.DepositRate * depositDueTTC)
	if in.DepositPaidTTC == nil {
		return defaultPaid
	}
	return ClampDepositPaid(in.Mode, *in.DepositPaidTTC, totalTTC, cfg.DepositRate)
}

// ClampDepositPaid applies the on-blur bounds of the acompte field: package
// mode floors at rate*totalTTC (never auto-decreased), daily mode floors at
// zero. The result is rounded because the field is a terminal input.
func ClampDepositPaid(mode model.RentalMode, value, totalTTC, rate float64) float64 {
	floor := 0.0
	if mode == model.ModePackage {
		floor = rate * totalTTC
	}
	if value < floor {
		value = floor
	}
	return money.Round2(value)
}

// ClampCautionPaid bounds the paid caution to [0, due], rounded on blur.
func ClampCautionPaid(value, dueTTC float64) float64 {
	if value < 0 {
		value = 0
	}
	if value > dueTTC {
		value = dueTTC
	}
	return money.Round2(value)
}
