package model

import "github.com/google/uuid"

// RentalMode selects how a contract is priced: metered per day, or a flat
// package covering a fixed number of dresses.
type RentalMode string

const (
	ModeDaily   RentalMode = "DAILY"
	ModePackage RentalMode = "PACKAGE"
)

// ContractPackage is a flat-rate offer. AddonIDs lists the add-ons bundled
// "included" with the package; it is loaded from the package_addons join
// table, not a column.
type ContractPackage struct {
	ID         uuid.UUID   `gorm:"primaryKey" json:"id"`
	Name       string      `json:"name"`
	PriceHT    float64     `json:"price_ht"`
	PriceTTC   float64     `json:"price_ttc"`
	NumDresses int         `json:"num_dresses"`
	AddonIDs   []uuid.UUID `gorm:"-" json:"addon_ids"`
}

// IncludesAddon reports whether the add-on is bundled with the package.
func (p ContractPackage) IncludesAddon(id uuid.UUID) bool {
	for _, a := range p.AddonIDs {
		if a == id {
			return true
		}
	}
	return false
}

// ContractAddon is an optional priced service. Included marks add-ons that
// are pre-selected on every new draft unless the user removes them.
type ContractAddon struct {
	ID       uuid.UUID `gorm:"primaryKey" json:"id"`
	Name     string    `json:"name"`
	PriceHT  float64   `json:"price_ht"`
	PriceTTC float64   `json:"price_ttc"`
	Included bool      `json:"included"`
}

type ContractType struct {
	ID   uuid.UUID `gorm:"primaryKey" json:"id"`
	Name string    `json:"name"`
}

// PackageAddon is the join row binding an add-on to a package.
type PackageAddon struct {
	PackageID uuid.UUID `gorm:"primaryKey" json:"package_id"`
	AddonID   uuid.UUID `gorm:"primaryKey" json:"addon_id"`
}
