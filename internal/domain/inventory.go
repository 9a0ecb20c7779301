package domain

import (
	"time"

	id "bloodlink/pkg/domain"
)

// InventoryStatus is the state of a batch of units at a blood bank.
type InventoryStatus string

const (
	InventoryAvailable InventoryStatus = "available"
	InventoryReserved  InventoryStatus = "reserved"
	InventoryUsed      InventoryStatus = "used"
	InventoryExpired   InventoryStatus = "expired"
)

// BloodBank is a facility that stores blood units.
type BloodBank struct {
	ID       id.BankID `json:"id"`
	Name     string    `json:"name"`
	Contact  string    `json:"contact"`
	Location Location  `json:"location"`
}

// InventoryRecord is one batch of units of a single blood type.
type InventoryRecord struct {
	BankID         id.BankID       `json:"bank_id"`
	BloodType      id.BloodType    `json:"blood_type"`
	Units          int             `json:"units"`
	Status         InventoryStatus `json:"status"`
	ExpirationDate time.Time       `json:"expiration_date"`
}

// IsUsable reports whether the batch counts toward available stock at now.
// A zero expiration date means the batch does not expire.
func (r InventoryRecord) IsUsable(now time.Time) bool {
	if r.Status != InventoryAvailable {
		return false
	}
	return r.ExpirationDate.IsZero() || r.ExpirationDate.After(now)
}
