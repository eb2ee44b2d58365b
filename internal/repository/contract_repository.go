package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmarchal/robeo-contracts/internal/draft"
	"github.com/lmarchal/robeo-contracts/internal/model"
)

type ContractRepository struct {
	db       *gorm.DB
	bookings *BookingRepository
}

func NewContractRepository(db *gorm.DB, bookings *BookingRepository) *ContractRepository {
	return &ContractRepository{db: db, bookings: bookings}
}

// CreateContract persists a submitted draft payload: the contract row, its
// ordered dress list, its add-on links and the blocking bookings, all in one
// transaction. Implements draft.Creator.
func (r *ContractRepository) CreateContract(ctx context.Context, payload draft.Payload) (*model.Contract, error) {
	contract := &model.Contract{
		ID:             uuid.New(),
		Number:         payload.Number,
		CustomerID:     payload.CustomerID,
		ContractTypeID: payload.ContractTypeID,
		PackageID:      payload.PackageID,
		StartAt:        payload.StartAt,
		EndAt:          payload.EndAt,
		PaymentMethod:  payload.PaymentMethod,
		TotalHT:        payload.Totals.TotalHT,
		TotalTTC:       payload.Totals.TotalTTC,
		DepositDueHT:   payload.Totals.DepositDueHT,
		DepositDueTTC:  payload.Totals.DepositDueTTC,
		DepositPaidHT:  payload.Totals.DepositPaidHT,
		DepositPaidTTC: payload.Totals.DepositPaidTTC,
		CautionDueHT:   payload.Totals.CautionDueHT,
		CautionDueTTC:  payload.Totals.CautionDueTTC,
		CautionPaidHT:  payload.Totals.CautionPaidHT,
		CautionPaidTTC: payload.Totals.CautionPaidTTC,
		Status:         model.ContractStatusCreated,
		CreatedAt:      time.Now().UTC(),
		DressIDs:       payload.DressIDs,
		AddonIDs:       payload.AddonIDs,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contract).Error; err != nil {
			return err
		}
		for i, dressID := range payload.DressIDs {
			link := model.ContractDress{ContractID: contract.ID, DressID: dressID, Position: i}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		for _, addonID := range payload.AddonIDs {
			link := model.ContractAddonLink{ContractID: contract.ID, AddonID: addonID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return r.bookings.CreateForContract(ctx, tx, contract)
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// GetContract loads a contract with its customer, dress order and add-ons.
func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", contract.CustomerID).Error; err == nil {
		contract.Customer = customer
	}

	var dressLinks []model.ContractDress
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", id).
		Order("position ASC").
		Find(&dressLinks).Error; err != nil {
		return nil, err
	}
	for _, link := range dressLinks {
		contract.DressIDs = append(contract.DressIDs, link.DressID)
	}

	var addonLinks []model.ContractAddonLink
	if err := r.db.WithContext(ctx).Where("contract_id = ?", id).Find(&addonLinks).Error; err != nil {
		return nil, err
	}
	for _, link := range addonLinks {
		contract.AddonIDs = append(contract.AddonIDs, link.AddonID)
	}
	return &contract, nil
}

// ListForPeriod returns contracts whose rental period overlaps [start, end),
// newest first. Used by the period export.
func (r *ContractRepository) ListForPeriod(ctx context.Context, start, end time.Time) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("start_at < ? AND end_at > ?", end, start).
		Where("status <> ?", model.ContractStatusCancelled).
		Order("start_at DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		var customer model.Customer
		if err := r.db.WithContext(ctx).First(&customer, "id = ?", contracts[i].CustomerID).Error; err == nil {
			contracts[i].Customer = customer
		}
	}
	return contracts, nil
}

func (r *ContractRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
