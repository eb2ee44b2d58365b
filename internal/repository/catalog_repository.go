package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmarchal/robeo-contracts/internal/model"
)

// CatalogRepository serves the read-only reference data the draft resolves
// against: dresses, packages with their bundled add-ons, add-ons, types.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetDress(ctx context.Context, id uuid.UUID) (*model.Dress, error) {
	var dress model.Dress
	if err := r.db.WithContext(ctx).First(&dress, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dress, nil
}

func (r *CatalogRepository) ListDresses(ctx context.Context, ids []uuid.UUID) ([]model.Dress, error) {
	var dresses []model.Dress
	query := r.db.WithContext(ctx).Order("name ASC")
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if err := query.Find(&dresses).Error; err != nil {
		return nil, err
	}
	return dresses, nil
}

func (r *CatalogRepository) ListPackages(ctx context.Context) ([]model.ContractPackage, error) {
	var packages []model.ContractPackage
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&packages).Error; err != nil {
		return nil, err
	}

	var links []model.PackageAddon
	if err := r.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, err
	}
	byPackage := make(map[uuid.UUID][]uuid.UUID, len(packages))
	for _, link := range links {
		byPackage[link.PackageID] = append(byPackage[link.PackageID], link.AddonID)
	}
	for i := range packages {
		packages[i].AddonIDs = byPackage[packages[i].ID]
	}
	return packages, nil
}

func (r *CatalogRepository) ListAddons(ctx context.Context) ([]model.ContractAddon, error) {
	var addons []model.ContractAddon
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&addons).Error; err != nil {
		return nil, err
	}
	return addons, nil
}

func (r *CatalogRepository) ListContractTypes(ctx context.Context) ([]model.ContractType, error) {
	var types []model.ContractType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// FindRate returns the rate card row covering the whole requested range for
// the dress, most recent first when several apply.
func (r *CatalogRepository) FindRate(ctx context.Context, dressID uuid.UUID, start, end time.Time) (*model.DressRate, error) {
	var rate model.DressRate
	err := r.db.WithContext(ctx).
		Where("dress_id = ?", dressID).
		Where("valid_from <= ? AND valid_to >= ?", start, end).
		Order("valid_from DESC").
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
