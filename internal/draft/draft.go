// Package draft owns the in-progress contract: mode and dress selection,
// dates, add-on provenance, customer, and the derived totals. It is an
// explicit state machine so the HTTP layer (or any caller) can drive it
// without a reactivity framework; totals are recomputed on every relevant
// edit and published only when they changed.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/pricing"
)

type State string

const (
	StateSelecting   State = "selecting"
	StateConfiguring State = "configuring"
	StateReady       State = "ready"
	StateSubmitting  State = "submitting"
	StateSubmitted   State = "submitted"
	StateCancelled   State = "cancelled"
)

var (
	ErrBadTransition = errors.New("invalid draft transition")
	ErrInvalidDraft  = errors.New("invalid draft")
	ErrAddonLocked   = errors.New("addon is bundled with the package")
	ErrUnknownEntity = errors.New("unknown reference entity")
)

// ReferenceData is the read-only catalogue the draft resolves against.
type ReferenceData struct {
	Dresses  map[uuid.UUID]model.Dress
	Packages map[uuid.UUID]model.ContractPackage
	Addons   map[uuid.UUID]model.ContractAddon
	Types    []model.ContractType
}

// Config extends the pricing defaults with the draft's own knobs.
type Config struct {
	Pricing pricing.Config
	// DailyTypeFallbackID is used when no contract type name matches the
	// daily keywords. uuid.Nil disables the fallback.
	DailyTypeFallbackID uuid.UUID
}

// Draft is the mutable aggregate. Not safe for concurrent use; the engine is
// single-flow per draft, async completions come back through ApplyQuote and
// are dropped when stale.
type Draft struct {
	state State
	mode  model.RentalMode

	number string
	typeID uuid.UUID

	dressIDs  []uuid.UUID // base dress first
	packageID *uuid.UUID

	start time.Time
	end   time.Time

	customerID    *uuid.UUID
	paymentMethod string

	// Two provenance sets: manual toggles survive package changes, package
	// defaults are forced and removed only with their package.
	manualAddons  map[uuid.UUID]bool
	packageAddons map[uuid.UUID]bool

	depositPaidTTC *float64
	cautionPaidTTC *float64

	quote *pricing.Quote

	totals pricing.Totals

	ref ReferenceData
	cfg Config
}

// New opens a draft for a base dress in the given mode. The draft starts in
// the selecting state; Configure moves it on once the selection is settled.
func New(mode model.RentalMode, baseDressID uuid.UUID, ref ReferenceData, cfg Config) (*Draft, error) {
	if _, ok := ref.Dresses[baseDressID]; !ok {
		return nil, fmt.Errorf("%w: dress %s", ErrUnknownEntity, baseDressID)
	}
	return &Draft{
		state:         StateSelecting,
		mode:          mode,
		dressIDs:      []uuid.UUID{baseDressID},
		manualAddons:  make(map[uuid.UUID]bool),
		packageAddons: make(map[uuid.UUID]bool),
		ref:           ref,
		cfg:           cfg,
	}, nil
}

// Configure enters the configuring state: contract number, resolved type,
// default add-on selection from the global included flags, initial totals.
func (d *Draft) Configure(now time.Time) error {
	if d.state != StateSelecting {
		return fmt.Errorf("%w: %s -> configuring", ErrBadTransition, d.state)
	}
	d.number = generateNumber(now)
	d.typeID = ResolveContractType(d.ref.Types, d.mode, d.cfg.DailyTypeFallbackID)
	d.seedAddonDefaults()
	if d.start.IsZero() {
		d.start = now
		d.end = now.Add(24 * time.Hour)
	}
	d.state = StateConfiguring
	d.Recompute()
	return nil
}

// SetMode switches daily/package while configuring. The type is re-resolved,
// package fields are cleared and add-on defaults re-seeded; the customer and
// still-legal dresses are preserved.
func (d *Draft) SetMode(mode model.RentalMode) error {
	if d.state != StateConfiguring {
		return fmt.Errorf("%w: set mode in %s", ErrBadTransition, d.state)
	}
	if mode == d.mode {
		return nil
	}
	d.mode = mode
	d.packageID = nil
	d.packageAddons = make(map[uuid.UUID]bool)
	if mode == model.ModeDaily && len(d.dressIDs) > 1 {
		// Daily contracts price a single dress; keep the base one.
		d.dressIDs = d.dressIDs[:1]
	}
	d.typeID = ResolveContractType(d.ref.Types, mode, d.cfg.DailyTypeFallbackID)
	d.seedAddonDefaults()
	d.depositPaidTTC = nil
	d.quote = nil
	d.Recompute()
	return nil
}

// SetDates applies the requested range, auto-correcting end <= start to a
// 24h rental.
func (d *Draft) SetDates(start, end time.Time) {
	if !end.After(start) {
		end = start.Add(24 * time.Hour)
	}
	if !start.Equal(d.start) || !end.Equal(d.end) {
		d.quote = nil // quoted for the old range
	}
	d.start, d.end = start, end
	d.Recompute()
}

func (d *Draft) SetCustomer(id uuid.UUID) {
	d.customerID = &id
}

func (d *Draft) SetPaymentMethod(method string) {
	d.paymentMethod = method
}

// SelectPackage binds the draft to a package and forces its bundled add-ons
// as a separate provenance set.
func (d *Draft) SelectPackage(id uuid.UUID) error {
	if d.mode != model.ModePackage {
		return fmt.Errorf("%w: package selection in %s mode", ErrInvalidDraft, d.mode)
	}
	pkg, ok := d.ref.Packages[id]
	if !ok {
		return fmt.Errorf("%w: package %s", ErrUnknownEntity, id)
	}
	d.packageID = &id
	d.packageAddons = make(map[uuid.UUID]bool, len(pkg.AddonIDs))
	for _, addonID := range pkg.AddonIDs {
		d.packageAddons[addonID] = true
	}
	d.Recompute()
	return nil
}

// ClearPackage un-forces only the package's own defaults; manual selections
// stay.
func (d *Draft) ClearPackage() {
	d.packageID = nil
	d.packageAddons = make(map[uuid.UUID]bool)
	d.Recompute()
}

func (d *Draft) AddDress(id uuid.UUID) error {
	if _, ok := d.ref.Dresses[id]; !ok {
		return fmt.Errorf("%w: dress %s", ErrUnknownEntity, id)
	}
	for _, existing := range d.dressIDs {
		if existing == id {
			return nil
		}
	}
	if d.mode == model.ModePackage && d.packageID != nil {
		pkg := d.ref.Packages[*d.packageID]
		if len(d.dressIDs) >= pkg.NumDresses {
			return fmt.Errorf("%w: package holds %d dresses", ErrInvalidDraft, pkg.NumDresses)
		}
	}
	d.dressIDs = append(d.dressIDs, id)
	d.Recompute()
	return nil
}

func (d *Draft) RemoveDress(id uuid.UUID) error {
	if len(d.dressIDs) > 0 && d.dressIDs[0] == id {
		return fmt.Errorf("%w: base dress cannot be removed", ErrInvalidDraft)
	}
	for i, existing := range d.dressIDs {
		if existing == id {
			d.dressIDs = append(d.dressIDs[:i], d.dressIDs[i+1:]...)
			d.Recompute()
			return nil
		}
	}
	return nil
}

// SetAddon toggles a manual add-on. Package-bundled add-ons are forced and
// cannot be removed while the package is selected.
func (d *Draft) SetAddon(id uuid.UUID, selected bool) error {
	if _, ok := d.ref.Addons[id]; !ok {
		return fmt.Errorf("%w: addon %s", ErrUnknownEntity, id)
	}
	if !selected && d.packageAddons[id] {
		return ErrAddonLocked
	}
	if selected {
		d.manualAddons[id] = true
	} else {
		delete(d.manualAddons, id)
	}
	d.Recompute()
	return nil
}

// EnterDepositPaid records the acompte field on blur; the clamp and rounding
// happen inside the calculator.
func (d *Draft) EnterDepositPaid(value float64) {
	d.depositPaidTTC = &value
	d.Recompute()
}

func (d *Draft) EnterCautionPaid(value float64) {
	d.cautionPaidTTC = &value
	d.Recompute()
}

// ApplyQuote applies an async price-quote result. The quote is dropped
// silently when the draft moved on: mode no longer daily, or the quoted
// dress/range no longer match.
func (d *Draft) ApplyQuote(q pricing.Quote, dressID uuid.UUID, start, end time.Time) bool {
	if d.mode != model.ModeDaily {
		return false
	}
	if len(d.dressIDs) == 0 || d.dressIDs[0] != dressID {
		return false
	}
	if !start.Equal(d.start) || !end.Equal(d.end) {
		return false
	}
	d.quote = &q
	d.Recompute()
	return true
}

// Recompute re-derives the totals from the current fields and reports
// whether anything changed, so callers can skip redundant notifications.
func (d *Draft) Recompute() bool {
	next := pricing.ComputeTotals(d.pricingInput(), d.cfg.Pricing)
	if next.Equal(d.totals) {
		return false
	}
	d.totals = next
	return true
}

func (d *Draft) pricingInput() pricing.Input {
	in := pricing.Input{
		Mode:           d.mode,
		Start:          d.start,
		End:            d.end,
		Quote:          d.quote,
		DepositPaidTTC: d.depositPaidTTC,
		CautionPaidTTC: d.cautionPaidTTC,
	}
	if len(d.dressIDs) > 0 {
		in.Dress = d.ref.Dresses[d.dressIDs[0]]
	}
	if d.packageID != nil {
		if pkg, ok := d.ref.Packages[*d.packageID]; ok {
			in.Package = &pkg
		}
	}
	for _, id := range d.SelectedAddonIDs() {
		if addon, ok := d.ref.Addons[id]; ok {
			in.Addons = append(in.Addons, addon)
		}
	}
	return in
}

// Validate reports the first blocking reason, wrapped in ErrInvalidDraft.
func (d *Draft) Validate() error {
	if d.customerID == nil {
		return fmt.Errorf("%w: customer is required", ErrInvalidDraft)
	}
	if d.typeID == uuid.Nil {
		return fmt.Errorf("%w: contract type could not be resolved", ErrInvalidDraft)
	}
	if !d.end.After(d.start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidDraft)
	}
	if len(d.dressIDs) == 0 {
		return fmt.Errorf("%w: at least one dress is required", ErrInvalidDraft)
	}
	if d.mode == model.ModePackage {
		if d.packageID == nil {
			return fmt.Errorf("%w: package is required in package mode", ErrInvalidDraft)
		}
		pkg := d.ref.Packages[*d.packageID]
		if len(d.dressIDs) != pkg.NumDresses {
			return fmt.Errorf("%w: package requires %d dresses, have %d", ErrInvalidDraft, pkg.NumDresses, len(d.dressIDs))
		}
	}
	return nil
}

// MarkReady moves configuring -> ready when validation passes.
func (d *Draft) MarkReady() error {
	if d.state != StateConfiguring {
		return fmt.Errorf("%w: %s -> ready", ErrBadTransition, d.state)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	d.state = StateReady
	return nil
}

// Creator is the external contract-persistence endpoint.
type Creator interface {
	CreateContract(ctx context.Context, payload Payload) (*model.Contract, error)
}

// Submit builds the creation payload and hands it to the creator. On failure
// the draft returns to ready with every field intact so the user can retry.
func (d *Draft) Submit(ctx context.Context, creator Creator) (*model.Contract, error) {
	if d.state != StateReady {
		return nil, fmt.Errorf("%w: %s -> submitting", ErrBadTransition, d.state)
	}
	d.state = StateSubmitting
	record, err := creator.CreateContract(ctx, d.Payload())
	if err != nil {
		d.state = StateReady
		return nil, err
	}
	d.state = StateSubmitted
	return record, nil
}

// Cancel discards the draft from any state.
func (d *Draft) Cancel() {
	d.state = StateCancelled
}

// Payload is the normalized creation payload handed to the persistence
// endpoint on submit.
type Payload struct {
	Number         string
	CustomerID     uuid.UUID
	ContractTypeID uuid.UUID
	PackageID      *uuid.UUID
	StartAt        time.Time
	EndAt          time.Time
	PaymentMethod  string
	Totals         pricing.Totals
	DressIDs       []uuid.UUID
	AddonIDs       []uuid.UUID
}

func (d *Draft) Payload() Payload {
	p := Payload{
		Number:         d.number,
		ContractTypeID: d.typeID,
		PackageID:      d.packageID,
		StartAt:        d.start,
		EndAt:          d.end,
		PaymentMethod:  d.paymentMethod,
		Totals:         d.totals,
		DressIDs:       append([]uuid.UUID(nil), d.dressIDs...),
		AddonIDs:       d.SelectedAddonIDs(),
	}
	if d.customerID != nil {
		p.CustomerID = *d.customerID
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = "CARD"
	}
	return p
}

// SelectedAddonIDs is the union of manual and package-forced add-ons, sorted
// for a stable payload.
func (d *Draft) SelectedAddonIDs() []uuid.UUID {
	set := make(map[uuid.UUID]bool, len(d.manualAddons)+len(d.packageAddons))
	for id := range d.manualAddons {
		set[id] = true
	}
	for id := range d.packageAddons {
		set[id] = true
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (d *Draft) State() State                   { return d.state }
func (d *Draft) Mode() model.RentalMode         { return d.mode }
func (d *Draft) Number() string                 { return d.number }
func (d *Draft) TypeID() uuid.UUID              { return d.typeID }
func (d *Draft) PackageID() *uuid.UUID          { return d.packageID }
func (d *Draft) CustomerID() *uuid.UUID         { return d.customerID }
func (d *Draft) DressIDs() []uuid.UUID          { return append([]uuid.UUID(nil), d.dressIDs...) }
func (d *Draft) Dates() (time.Time, time.Time)  { return d.start, d.end }
func (d *Draft) Totals() pricing.Totals         { return d.totals }

func (d *Draft) seedAddonDefaults() {
	d.manualAddons = make(map[uuid.UUID]bool)
	for id, addon := range d.ref.Addons {
		if addon.Included {
			d.manualAddons[id] = true
		}
	}
}

// ResolveContractType matches the mode against existing type names by
// keyword; the daily case falls back to a configured identifier.
func ResolveContractType(types []model.ContractType, mode model.RentalMode, dailyFallback uuid.UUID) uuid.UUID {
	var keywords []string
	if mode == model.ModePackage {
		keywords = []string{"forfait", "package", "pack"}
	} else {
		keywords = []string{"jour", "daily", "day"}
	}
	for _, t := range types {
		name := strings.ToLower(t.Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return t.ID
			}
		}
	}
	if mode == model.ModeDaily {
		return dailyFallback
	}
	return uuid.Nil
}

// generateNumber builds a human-readable contract number, unique enough for
// the back office; the database carries a unique index as the real guard.
func generateNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("LOC-%s-%s", now.Format("20060102"), suffix)
}
