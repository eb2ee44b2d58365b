package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/pricing"
)

var testNow = time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC)

func testRef() (ReferenceData, uuid.UUID, uuid.UUID, uuid.UUID) {
	dressA := model.Dress{ID: uuid.New(), Name: "Robe A", PriceHT: 1000, PriceTTC: 1200, DailyPriceHT: 80, DailyPriceTTC: 100}
	dressB := model.Dress{ID: uuid.New(), Name: "Robe B", PriceHT: 800, PriceTTC: 960, DailyPriceHT: 60, DailyPriceTTC: 72}
	bundledAddon := model.ContractAddon{ID: uuid.New(), Name: "Retouches", PriceHT: 25, PriceTTC: 30}
	pkg := model.ContractPackage{
		ID: uuid.New(), Name: "Forfait duo", PriceHT: 400, PriceTTC: 500,
		NumDresses: 2, AddonIDs: []uuid.UUID{bundledAddon.ID},
	}
	ref := ReferenceData{
		Dresses:  map[uuid.UUID]model.Dress{dressA.ID: dressA, dressB.ID: dressB},
		Packages: map[uuid.UUID]model.ContractPackage{pkg.ID: pkg},
		Addons:   map[uuid.UUID]model.ContractAddon{bundledAddon.ID: bundledAddon},
		Types: []model.ContractType{
			{ID: uuid.New(), Name: "Location à la journée"},
			{ID: uuid.New(), Name: "Forfait mariage"},
		},
	}
	return ref, dressA.ID, dressB.ID, pkg.ID
}

func configured(t *testing.T, mode model.RentalMode) (*Draft, ReferenceData, uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()
	ref, dressA, dressB, pkgID := testRef()
	d, err := New(mode, dressA, ref, Config{Pricing: pricing.DefaultConfig()})
	if err != nil {
		t.Fatalf("new draft: %v", err)
	}
	if err := d.Configure(testNow); err != nil {
		t.Fatalf("configure: %v", err)
	}
	return d, ref, dressA, dressB, pkgID
}

func TestConfigureInitializesDraft(t *testing.T) {
	d, ref, _, _, _ := configured(t, model.ModeDaily)
	if d.State() != StateConfiguring {
		t.Fatalf("state = %s", d.State())
	}
	if d.Number() == "" {
		t.Fatalf("contract number not generated")
	}
	if d.TypeID() != ref.Types[0].ID {
		t.Fatalf("daily type not resolved by keyword")
	}
	if d.Totals().Days != 1 {
		t.Fatalf("initial days = %d, want 1", d.Totals().Days)
	}
}

func TestPackageCapacityInvariant(t *testing.T) {
	d, _, _, dressB, pkgID := configured(t, model.ModePackage)
	if err := d.SelectPackage(pkgID); err != nil {
		t.Fatalf("select package: %v", err)
	}
	d.SetCustomer(uuid.New())
	d.SetDates(testNow, testNow.Add(24*time.Hour))

	// One dress against a capacity of two.
	if err := d.MarkReady(); err == nil {
		t.Fatalf("capacity 2 with 1 dress must not reach ready")
	}

	if err := d.AddDress(dressB); err != nil {
		t.Fatalf("add dress: %v", err)
	}
	if err := d.MarkReady(); err != nil {
		t.Fatalf("capacity satisfied but not ready: %v", err)
	}

	// A third dress cannot even be added once the package is chosen.
	d2, ref2, _, dressB2, pkgID2 := configured(t, model.ModePackage)
	dressC := model.Dress{ID: uuid.New(), Name: "Robe C", PriceHT: 500, PriceTTC: 600}
	ref2.Dresses[dressC.ID] = dressC
	if err := d2.SelectPackage(pkgID2); err != nil {
		t.Fatalf("select package: %v", err)
	}
	if err := d2.AddDress(dressB2); err != nil {
		t.Fatalf("add second dress: %v", err)
	}
	if !errors.Is(d2.AddDress(dressC.ID), ErrInvalidDraft) {
		t.Fatalf("adding beyond package capacity must be rejected")
	}
}

func TestModeSwitchPreservesCustomer(t *testing.T) {
	d, _, _, dressB, pkgID := configured(t, model.ModePackage)
	customer := uuid.New()
	d.SetCustomer(customer)
	if err := d.SelectPackage(pkgID); err != nil {
		t.Fatalf("select package: %v", err)
	}
	if err := d.AddDress(dressB); err != nil {
		t.Fatalf("add dress: %v", err)
	}

	if err := d.SetMode(model.ModeDaily); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if d.PackageID() != nil {
		t.Fatalf("package id must be cleared on mode switch")
	}
	if got := d.DressIDs(); len(got) != 1 {
		t.Fatalf("daily mode keeps only the base dress, got %d", len(got))
	}
	if d.CustomerID() == nil || *d.CustomerID() != customer {
		t.Fatalf("customer must survive the mode switch")
	}
}

func TestPackageAddonsForcedAndUnforced(t *testing.T) {
	d, ref, _, _, pkgID := configured(t, model.ModePackage)
	addonID := ref.Packages[pkgID].AddonIDs[0]

	if err := d.SelectPackage(pkgID); err != nil {
		t.Fatalf("select package: %v", err)
	}
	if !errors.Is(d.SetAddon(addonID, false), ErrAddonLocked) {
		t.Fatalf("package-bundled addon must be non-removable")
	}
	if got := d.Totals().AddonsIncludedTTC; got != 30 {
		t.Fatalf("includedTTC = %v, want 30", got)
	}

	d.ClearPackage()
	for _, id := range d.SelectedAddonIDs() {
		if id == addonID {
			t.Fatalf("clearing the package must un-force its own defaults")
		}
	}
}

func TestDateAutoCorrection(t *testing.T) {
	d, _, _, _, _ := configured(t, model.ModeDaily)
	d.SetDates(testNow, testNow.Add(-time.Hour))
	start, end := d.Dates()
	if !end.Equal(start.Add(24 * time.Hour)) {
		t.Fatalf("reversed range must auto-correct to start+24h, got %v", end)
	}
}

func TestDepositFloorOnBlur(t *testing.T) {
	d, _, _, dressB, pkgID := configured(t, model.ModePackage)
	if err := d.SelectPackage(pkgID); err != nil {
		t.Fatalf("select package: %v", err)
	}
	if err := d.AddDress(dressB); err != nil {
		t.Fatalf("add dress: %v", err)
	}
	// totalTTC = 500 + included 0 chargeable = 500; floor at 250.
	d.EnterDepositPaid(100)
	if got := d.Totals().DepositPaidTTC; got != 250 {
		t.Fatalf("depositPaidTTC = %v, want clamped 250", got)
	}
	d.EnterDepositPaid(400)
	if got := d.Totals().DepositPaidTTC; got != 400 {
		t.Fatalf("depositPaidTTC = %v, want 400", got)
	}
}

func TestQuoteStalenessChecks(t *testing.T) {
	d, _, dressA, _, _ := configured(t, model.ModeDaily)
	start, end := d.Dates()
	q := pricing.Quote{FinalPriceHT: 90, FinalPriceTTC: 108, DurationDays: 1}

	if d.ApplyQuote(q, uuid.New(), start, end) {
		t.Fatalf("quote for another dress must be discarded")
	}
	if d.ApplyQuote(q, dressA, start.Add(time.Hour), end) {
		t.Fatalf("quote for stale dates must be discarded")
	}
	if !d.ApplyQuote(q, dressA, start, end) {
		t.Fatalf("matching quote must apply")
	}
	if got := d.Totals().BaseTTC; got != 108 {
		t.Fatalf("baseTTC = %v, want quoted 108", got)
	}

	if err := d.SetMode(model.ModePackage); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if d.ApplyQuote(q, dressA, start, end) {
		t.Fatalf("quote must be discarded after leaving daily mode")
	}
}

func TestRecomputeDiffGuard(t *testing.T) {
	d, _, _, _, _ := configured(t, model.ModeDaily)
	if d.Recompute() {
		t.Fatalf("recompute without changes must report no diff")
	}
	d.SetDates(testNow, testNow.Add(72*time.Hour))
	if d.Totals().Days != 3 {
		t.Fatalf("days = %d after date change", d.Totals().Days)
	}
}

type stubCreator struct {
	err    error
	called int
	last   Payload
}

func (s *stubCreator) CreateContract(_ context.Context, p Payload) (*model.Contract, error) {
	s.called++
	s.last = p
	if s.err != nil {
		return nil, s.err
	}
	return &model.Contract{ID: uuid.New(), Number: p.Number}, nil
}

func TestSubmitLifecycle(t *testing.T) {
	d, _, dressA, _, _ := configured(t, model.ModeDaily)
	d.SetCustomer(uuid.New())
	d.SetDates(testNow, testNow.Add(72*time.Hour))
	if err := d.MarkReady(); err != nil {
		t.Fatalf("mark ready: %v", err)
	}

	failing := &stubCreator{err: errors.New("endpoint unreachable")}
	if _, err := d.Submit(context.Background(), failing); err == nil {
		t.Fatalf("submit must surface the creator error")
	}
	if d.State() != StateReady {
		t.Fatalf("failed submit must return to ready, state = %s", d.State())
	}

	ok := &stubCreator{}
	record, err := d.Submit(context.Background(), ok)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if d.State() != StateSubmitted {
		t.Fatalf("state = %s, want submitted", d.State())
	}
	if record.Number != d.Number() {
		t.Fatalf("record number mismatch")
	}
	if len(ok.last.DressIDs) != 1 || ok.last.DressIDs[0] != dressA {
		t.Fatalf("payload dress ids = %v", ok.last.DressIDs)
	}
	if ok.last.PaymentMethod != "CARD" {
		t.Fatalf("payment method default = %q", ok.last.PaymentMethod)
	}
	if ok.last.Totals.TotalTTC != 300 {
		t.Fatalf("payload totalTTC = %v, want 300", ok.last.Totals.TotalTTC)
	}
}

func TestIncludedAddonSeeding(t *testing.T) {
	ref, dressA, _, _ := testRef()
	styling := model.ContractAddon{ID: uuid.New(), Name: "Conseil en image", PriceHT: 40, PriceTTC: 48, Included: true}
	ref.Addons[styling.ID] = styling

	d, err := New(model.ModeDaily, dressA, ref, Config{Pricing: pricing.DefaultConfig()})
	if err != nil {
		t.Fatalf("new draft: %v", err)
	}
	if err := d.Configure(testNow); err != nil {
		t.Fatalf("configure: %v", err)
	}

	selected := func() bool {
		for _, id := range d.SelectedAddonIDs() {
			if id == styling.ID {
				return true
			}
		}
		return false
	}

	if !selected() {
		t.Fatalf("included addon must be pre-selected after configure")
	}
	if got := d.Totals().AddonsChargeableTTC; got != 48 {
		t.Fatalf("chargeableTTC = %v, want 48 in daily mode", got)
	}

	// A seeded default is still a manual selection, so it can be removed.
	if err := d.SetAddon(styling.ID, false); err != nil {
		t.Fatalf("remove included addon: %v", err)
	}
	if selected() {
		t.Fatalf("included addon must stay removable")
	}
	if got := d.Totals().AddonsChargeableTTC; got != 0 {
		t.Fatalf("chargeableTTC = %v after removal, want 0", got)
	}

	if err := d.SetMode(model.ModePackage); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if !selected() {
		t.Fatalf("mode switch must re-seed the included defaults")
	}
}

func TestCancelDiscardsDraft(t *testing.T) {
	d, _, _, _, _ := configured(t, model.ModeDaily)
	d.SetCustomer(uuid.New())
	d.Cancel()
	if d.State() != StateCancelled {
		t.Fatalf("state = %s, want cancelled", d.State())
	}
	if err := d.MarkReady(); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("cancelled draft must not reach ready, err = %v", err)
	}
}

func TestValidateMissingCustomer(t *testing.T) {
	d, _, _, _, _ := configured(t, model.ModeDaily)
	d.SetDates(testNow, testNow.Add(24*time.Hour))
	if err := d.MarkReady(); !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("missing customer: err = %v", err)
	}
}

func TestResolveContractTypeFallback(t *testing.T) {
	fallback := uuid.New()
	types := []model.ContractType{{ID: uuid.New(), Name: "Vente"}}
	if got := ResolveContractType(types, model.ModeDaily, fallback); got != fallback {
		t.Fatalf("daily fallback not used, got %s", got)
	}
	if got := ResolveContractType(types, model.ModePackage, fallback); got != uuid.Nil {
		t.Fatalf("package mode has no fallback, got %s", got)
	}
}
