package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusCreated   ContractStatus = "CREATED"
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusClosed    ContractStatus = "CLOSED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// Contract is the persisted record produced from a submitted draft. The
// acompte (deposit) and caution (security deposit) figures are stored in both
// tax bases exactly as computed at submission time.
type Contract struct {
	ID             uuid.UUID      `gorm:"primaryKey" json:"id"`
	Number         string         `gorm:"uniqueIndex" json:"number"`
	CustomerID     uuid.UUID      `gorm:"index" json:"customer_id"`
	ContractTypeID uuid.UUID      `json:"contract_type_id"`
	PackageID      *uuid.UUID     `json:"package_id,omitempty"`
	StartAt        time.Time      `json:"start_at"`
	EndAt          time.Time      `json:"end_at"`
	PaymentMethod  string         `json:"payment_method"`
	TotalHT        float64        `json:"total_ht"`
	TotalTTC       float64        `json:"total_ttc"`
	DepositDueHT   float64        `json:"deposit_due_ht"`
	DepositDueTTC  float64        `json:"deposit_due_ttc"`
	DepositPaidHT  float64        `json:"deposit_paid_ht"`
	DepositPaidTTC float64        `json:"deposit_paid_ttc"`
	CautionDueHT   float64        `json:"caution_due_ht"`
	CautionDueTTC  float64        `json:"caution_due_ttc"`
	CautionPaidHT  float64        `json:"caution_paid_ht"`
	CautionPaidTTC float64        `json:"caution_paid_ttc"`
	Status         ContractStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`

	Customer Customer    `gorm:"-" json:"customer,omitempty"`
	DressIDs []uuid.UUID `gorm:"-" json:"dress_ids,omitempty"`
	AddonIDs []uuid.UUID `gorm:"-" json:"addon_ids,omitempty"`
}

// ContractDress keeps the ordered dress list of a contract; position 0 is the
// base dress the flow was opened from.
type ContractDress struct {
	ContractID uuid.UUID `gorm:"primaryKey" json:"contract_id"`
	DressID    uuid.UUID `gorm:"primaryKey" json:"dress_id"`
	Position   int       `json:"position"`
}

type ContractAddonLink struct {
	ContractID uuid.UUID `gorm:"primaryKey" json:"contract_id"`
	AddonID    uuid.UUID `gorm:"primaryKey" json:"addon_id"`
}

func (ContractAddonLink) TableName() string { return "contract_addon_links" }

// ContractDocument bundles everything the PDF generator needs.
type ContractDocument struct {
	Contract Contract
	Customer Customer
	Dresses  []Dress
	Addons   []ContractAddon
	Package  *ContractPackage
	TypeName string
}
