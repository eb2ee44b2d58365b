package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lmarchal/robeo-contracts/internal/draft"
	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/pricing"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&model.Dress{},
		&model.DressRate{},
		&model.Customer{},
		&model.Booking{},
		&model.ContractType{},
		&model.ContractPackage{},
		&model.ContractAddon{},
		&model.PackageAddon{},
		&model.Contract{},
		&model.ContractDress{},
		&model.ContractAddonLink{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestListBookedOverlap(t *testing.T) {
	db := setupTestDB(t, t.Name())
	repo := NewBookingRepository(db)
	ctx := context.Background()

	busy := uuid.New()
	free := uuid.New()
	cancelled := uuid.New()
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	seed := []model.Booking{
		{ID: uuid.New(), DressID: busy, StartAt: base, EndAt: base.Add(72 * time.Hour), Status: model.BookingStatusConfirmed},
		{ID: uuid.New(), DressID: free, StartAt: base.Add(240 * time.Hour), EndAt: base.Add(264 * time.Hour), Status: model.BookingStatusConfirmed},
		{ID: uuid.New(), DressID: cancelled, StartAt: base, EndAt: base.Add(72 * time.Hour), Status: model.BookingStatusCancelled},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	booked, err := repo.ListBooked(ctx, base.Add(48*time.Hour), base.Add(96*time.Hour))
	if err != nil {
		t.Fatalf("list booked: %v", err)
	}
	if !booked[busy] {
		t.Fatalf("overlapping booking not reported")
	}
	if booked[free] {
		t.Fatalf("distant booking must not block the range")
	}
	if booked[cancelled] {
		t.Fatalf("cancelled booking must not block the range")
	}
}

func TestListPackagesLoadsAddonLinks(t *testing.T) {
	db := setupTestDB(t, t.Name())
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	addon := model.ContractAddon{ID: uuid.New(), Name: "Retouches", PriceHT: 25, PriceTTC: 30}
	pkg := model.ContractPackage{ID: uuid.New(), Name: "Forfait duo", PriceHT: 400, PriceTTC: 500, NumDresses: 2}
	if err := db.Create(&addon).Error; err != nil {
		t.Fatalf("seed addon: %v", err)
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}
	if err := db.Create(&model.PackageAddon{PackageID: pkg.ID, AddonID: addon.ID}).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}

	packages, err := repo.ListPackages(ctx)
	if err != nil {
		t.Fatalf("list packages: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("got %d packages", len(packages))
	}
	if len(packages[0].AddonIDs) != 1 || packages[0].AddonIDs[0] != addon.ID {
		t.Fatalf("bundled addon not loaded: %v", packages[0].AddonIDs)
	}
}

func TestFindRatePicksCoveringRow(t *testing.T) {
	db := setupTestDB(t, t.Name())
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	dressID := uuid.New()
	year := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rates := []model.DressRate{
		{ID: uuid.New(), DressID: dressID, ValidFrom: year, ValidTo: year.AddDate(1, 0, 0), DailyPriceHT: 80, DailyPriceTTC: 100},
		{ID: uuid.New(), DressID: dressID, ValidFrom: year.AddDate(0, 5, 0), ValidTo: year.AddDate(0, 8, 0), DailyPriceHT: 100, DailyPriceTTC: 120},
	}
	for i := range rates {
		if err := db.Create(&rates[i]).Error; err != nil {
			t.Fatalf("seed rate: %v", err)
		}
	}

	// Mid-summer range is covered by both rows; the later ValidFrom wins.
	rate, err := repo.FindRate(ctx, dressID, year.AddDate(0, 6, 0), year.AddDate(0, 6, 3))
	if err != nil {
		t.Fatalf("find rate: %v", err)
	}
	if rate.DailyPriceTTC != 120 {
		t.Fatalf("got rate %v, want the summer row", rate.DailyPriceTTC)
	}

	if _, err := repo.FindRate(ctx, uuid.New(), year, year.AddDate(0, 0, 3)); err == nil {
		t.Fatalf("unknown dress must yield not found")
	}
}

func TestCreateContractRoundTrip(t *testing.T) {
	db := setupTestDB(t, t.Name())
	bookings := NewBookingRepository(db)
	repo := NewContractRepository(db, bookings)
	ctx := context.Background()

	customer := model.Customer{ID: uuid.New(), FirstName: "Claire", LastName: "Morel"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	dressA, dressB := uuid.New(), uuid.New()
	addon := uuid.New()
	start := time.Date(2026, 7, 10, 10, 0, 0, 0, time.UTC)

	payload := draft.Payload{
		Number:         "LOC-20260710-AB12CD",
		CustomerID:     customer.ID,
		ContractTypeID: uuid.New(),
		StartAt:        start,
		EndAt:          start.Add(48 * time.Hour),
		PaymentMethod:  "CARD",
		Totals:         pricing.Totals{Days: 2, TotalHT: 160, TotalTTC: 200, DepositDueTTC: 200, DepositPaidTTC: 100},
		DressIDs:       []uuid.UUID{dressA, dressB},
		AddonIDs:       []uuid.UUID{addon},
	}

	created, err := repo.CreateContract(ctx, payload)
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	loaded, err := repo.GetContract(ctx, created.ID)
	if err != nil {
		t.Fatalf("get contract: %v", err)
	}
	if loaded.Number != payload.Number {
		t.Fatalf("number = %q", loaded.Number)
	}
	if len(loaded.DressIDs) != 2 || loaded.DressIDs[0] != dressA {
		t.Fatalf("dress order not preserved: %v", loaded.DressIDs)
	}
	if len(loaded.AddonIDs) != 1 || loaded.AddonIDs[0] != addon {
		t.Fatalf("addons not persisted: %v", loaded.AddonIDs)
	}
	if loaded.Customer.LastName != "Morel" {
		t.Fatalf("customer not joined: %+v", loaded.Customer)
	}

	// The contract's dresses are blocked for its period.
	booked, err := bookings.ListBooked(ctx, start.Add(time.Hour), start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list booked: %v", err)
	}
	if !booked[dressA] || !booked[dressB] {
		t.Fatalf("contract dresses not blocked: %v", booked)
	}

	contracts, err := repo.ListForPeriod(ctx, start.Add(-24*time.Hour), start.Add(time.Hour))
	if err != nil {
		t.Fatalf("list for period: %v", err)
	}
	if len(contracts) != 1 {
		t.Fatalf("period listing returned %d contracts", len(contracts))
	}
}
