package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmarchal/robeo-contracts/internal/availability"
	"github.com/lmarchal/robeo-contracts/internal/config"
	"github.com/lmarchal/robeo-contracts/internal/draft"
	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/pricing"
	"github.com/lmarchal/robeo-contracts/internal/repository"
)

type PDFGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(periodStart, periodEnd time.Time, contracts []model.Contract) ([]byte, error)
}

// ContractService drives the draft state machine server-side: it resolves
// reference data, replays the caller's edits onto a fresh draft, and either
// previews the totals or validates and persists the contract.
type ContractService struct {
	catalog        *repository.CatalogRepository
	contracts      *repository.ContractRepository
	resolver       *availability.Resolver
	quotes         *QuoteService
	pdf            PDFGenerator
	excel          ExcelGenerator
	draftCfg       draft.Config
	paymentMethods []string
}

func NewContractService(
	catalog *repository.CatalogRepository,
	contracts *repository.ContractRepository,
	resolver *availability.Resolver,
	quotes *QuoteService,
	pdf PDFGenerator,
	excel ExcelGenerator,
	cfg *config.Config,
) *ContractService {
	return &ContractService{
		catalog:   catalog,
		contracts: contracts,
		resolver:  resolver,
		quotes:    quotes,
		pdf:       pdf,
		excel:     excel,
		draftCfg: draft.Config{
			Pricing: pricing.Config{
				FallbackVATRatio: cfg.Pricing.FallbackVATRatio,
				DepositRate:      cfg.Pricing.DepositRate,
			},
			DailyTypeFallbackID: cfg.Pricing.DailyTypeID,
		},
		paymentMethods: cfg.Pricing.PaymentMethods,
	}
}

// DraftInput carries the draft fields as edited by the back-office UI.
type DraftInput struct {
	Mode           model.RentalMode
	DressIDs       []uuid.UUID
	PackageID      *uuid.UUID
	Start          time.Time
	End            time.Time
	CustomerID     *uuid.UUID
	AddonIDs       []uuid.UUID
	PaymentMethod  string
	DepositPaidTTC *float64
	CautionPaidTTC *float64
	Principal      model.Principal
}

type PreviewResult struct {
	Number            string              `json:"number"`
	Totals            pricing.Totals      `json:"totals"`
	Availability      availability.Result `json:"availability"`
	AvailabilityState availability.State  `json:"availability_state"`
	ValidationError   string              `json:"validation_error,omitempty"`
}

// Preview replays the input onto a draft and reports totals, availability
// and the first blocking validation reason without persisting anything.
func (s *ContractService) Preview(ctx context.Context, input DraftInput) (*PreviewResult, error) {
	d, err := s.replay(ctx, input)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{Number: d.Number(), Totals: d.Totals()}

	tracker := availability.NewTracker()
	start, end := d.Dates()
	if ids := d.DressIDs(); len(ids) > 0 && !start.IsZero() {
		token := tracker.Begin()
		res, checkErr := s.resolver.Check(ctx, ids, start, end)
		result.AvailabilityState = tracker.Resolve(token, res, checkErr)
		result.Availability = res
	} else {
		result.AvailabilityState = tracker.State()
	}

	if err := d.Validate(); err != nil {
		result.ValidationError = err.Error()
	}
	return result, nil
}

// Create validates the draft and persists it through the contract
// repository; the repository also blocks the dresses with bookings.
func (s *ContractService) Create(ctx context.Context, input DraftInput) (*model.Contract, error) {
	if !input.Principal.CanManageContracts() {
		return nil, ErrPermissionDenied
	}
	d, err := s.replay(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := d.MarkReady(); err != nil {
		if errors.Is(err, draft.ErrInvalidDraft) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}
	return d.Submit(ctx, s.contracts)
}

// CheckAvailability runs the range check and the reserved-today badge query.
func (s *ContractService) CheckAvailability(ctx context.Context, dressIDs []uuid.UUID, start, end time.Time) (availability.Result, availability.Result, error) {
	if len(dressIDs) == 0 {
		return availability.Result{}, availability.Result{}, fmt.Errorf("%w: dress ids are required", ErrInvalidInput)
	}
	if !end.After(start) {
		return availability.Result{}, availability.Result{}, fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}
	forRange, err := s.resolver.Check(ctx, dressIDs, start, end)
	if err != nil {
		return availability.Result{}, availability.Result{}, err
	}
	today, err := s.resolver.ReservedToday(ctx, dressIDs, time.Now())
	if err != nil {
		return availability.Result{}, availability.Result{}, err
	}
	return forRange, today, nil
}

// Document renders the contract PDF.
func (s *ContractService) Document(ctx context.Context, id uuid.UUID) (string, []byte, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}

	doc := model.ContractDocument{Contract: *contract, Customer: contract.Customer}

	if dresses, err := s.catalog.ListDresses(ctx, contract.DressIDs); err == nil {
		doc.Dresses = dresses
	}
	if addons, err := s.catalog.ListAddons(ctx); err == nil {
		selected := make(map[uuid.UUID]bool, len(contract.AddonIDs))
		for _, addonID := range contract.AddonIDs {
			selected[addonID] = true
		}
		for _, addon := range addons {
			if selected[addon.ID] {
				doc.Addons = append(doc.Addons, addon)
			}
		}
	}
	if contract.PackageID != nil {
		if packages, err := s.catalog.ListPackages(ctx); err == nil {
			for i := range packages {
				if packages[i].ID == *contract.PackageID {
					doc.Package = &packages[i]
					break
				}
			}
		}
	}
	if types, err := s.catalog.ListContractTypes(ctx); err == nil {
		for _, t := range types {
			if t.ID == contract.ContractTypeID {
				doc.TypeName = t.Name
				break
			}
		}
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("contrat-%s.pdf", sanitizeFileName(contract.Number)), content, nil
}

// Export builds the contracts-per-period workbook.
func (s *ContractService) Export(ctx context.Context, principal model.Principal, start, end time.Time) (string, []byte, error) {
	if !principal.CanManageContracts() {
		return "", nil, ErrPermissionDenied
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return "", nil, fmt.Errorf("%w: a valid period is required", ErrInvalidInput)
	}
	contracts, err := s.contracts.ListForPeriod(ctx, start, end)
	if err != nil {
		return "", nil, err
	}
	content, err := s.excel.Generate(start, end, contracts)
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("contrats-%s-%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	return name, content, nil
}

func (s *ContractService) ListPackages(ctx context.Context) ([]model.ContractPackage, error) {
	return s.catalog.ListPackages(ctx)
}

func (s *ContractService) ListAddons(ctx context.Context) ([]model.ContractAddon, error) {
	return s.catalog.ListAddons(ctx)
}

func (s *ContractService) ListContractTypes(ctx context.Context) ([]model.ContractType, error) {
	return s.catalog.ListContractTypes(ctx)
}

// replay rebuilds a draft from scratch and applies the caller's edits in the
// order the state machine expects.
func (s *ContractService) replay(ctx context.Context, input DraftInput) (*draft.Draft, error) {
	if len(input.DressIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one dress is required", ErrInvalidInput)
	}
	paymentMethod, err := s.normalizePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	ref, err := s.loadReference(ctx, input.DressIDs)
	if err != nil {
		return nil, err
	}

	d, err := draft.New(input.Mode, input.DressIDs[0], ref, s.draftCfg)
	if err != nil {
		if errors.Is(err, draft.ErrUnknownEntity) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	if err := d.Configure(time.Now()); err != nil {
		return nil, err
	}

	if !input.Start.IsZero() {
		d.SetDates(input.Start, input.End)
	}
	if input.Mode == model.ModePackage && input.PackageID != nil {
		if err := d.SelectPackage(*input.PackageID); err != nil {
			return nil, mapDraftErr(err)
		}
	}
	for _, dressID := range input.DressIDs[1:] {
		if err := d.AddDress(dressID); err != nil {
			return nil, mapDraftErr(err)
		}
	}
	if err := s.applyAddons(d, ref, input.AddonIDs); err != nil {
		return nil, err
	}
	if input.CustomerID != nil {
		d.SetCustomer(*input.CustomerID)
	}
	d.SetPaymentMethod(paymentMethod)
	if input.DepositPaidTTC != nil {
		d.EnterDepositPaid(*input.DepositPaidTTC)
	}
	if input.CautionPaidTTC != nil {
		d.EnterCautionPaid(*input.CautionPaidTTC)
	}

	// Daily pricing prefers a rate-card quote; its absence is a normal
	// fallback to the dress's static fields.
	if input.Mode == model.ModeDaily {
		start, end := d.Dates()
		quote, err := s.quotes.QuotePrice(ctx, input.DressIDs[0], start, end)
		if err == nil {
			d.ApplyQuote(*quote, input.DressIDs[0], start, end)
		} else if !errors.Is(err, ErrQuoteUnavailable) && !errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
	}
	return d, nil
}

// applyAddons reconciles the caller's add-on list with the seeded defaults.
// Package-forced add-ons stay selected even when omitted by the caller.
func (s *ContractService) applyAddons(d *draft.Draft, ref draft.ReferenceData, wanted []uuid.UUID) error {
	want := make(map[uuid.UUID]bool, len(wanted))
	for _, id := range wanted {
		if _, ok := ref.Addons[id]; !ok {
			return fmt.Errorf("%w: addon %s", ErrNotFound, id)
		}
		want[id] = true
	}
	for id := range ref.Addons {
		err := d.SetAddon(id, want[id])
		if err != nil && !errors.Is(err, draft.ErrAddonLocked) {
			return mapDraftErr(err)
		}
	}
	return nil
}

func (s *ContractService) loadReference(ctx context.Context, dressIDs []uuid.UUID) (draft.ReferenceData, error) {
	ref := draft.ReferenceData{
		Dresses:  make(map[uuid.UUID]model.Dress, len(dressIDs)),
		Packages: make(map[uuid.UUID]model.ContractPackage),
		Addons:   make(map[uuid.UUID]model.ContractAddon),
	}

	dresses, err := s.catalog.ListDresses(ctx, dressIDs)
	if err != nil {
		return ref, err
	}
	for _, dress := range dresses {
		ref.Dresses[dress.ID] = dress
	}

	packages, err := s.catalog.ListPackages(ctx)
	if err != nil {
		return ref, err
	}
	for _, pkg := range packages {
		ref.Packages[pkg.ID] = pkg
	}

	addons, err := s.catalog.ListAddons(ctx)
	if err != nil {
		return ref, err
	}
	for _, addon := range addons {
		ref.Addons[addon.ID] = addon
	}

	ref.Types, err = s.catalog.ListContractTypes(ctx)
	if err != nil {
		return ref, err
	}
	return ref, nil
}

// normalizePaymentMethod matches the caller's value against the configured
// list, case-insensitively, and returns the canonical form. Empty means "use
// the default"; an empty configured list accepts anything.
func (s *ContractService) normalizePaymentMethod(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(s.paymentMethods) == 0 {
		return raw, nil
	}
	for _, method := range s.paymentMethods {
		if strings.EqualFold(method, raw) {
			return method, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, raw)
}

func mapDraftErr(err error) error {
	switch {
	case errors.Is(err, draft.ErrUnknownEntity):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, draft.ErrInvalidDraft), errors.Is(err, draft.ErrAddonLocked):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
