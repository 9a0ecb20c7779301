// Package inventory classifies blood bank stock levels and derives alerts.
// It is pure: it reads a stock snapshot and never mutates inventory.
package inventory

import (
	"fmt"
	"time"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

type StockStatus string

const (
	StockCritical StockStatus = "critical"
	StockLow      StockStatus = "low"
	StockAdequate StockStatus = "adequate"
	StockGood     StockStatus = "good"
)

type AlertType string

const (
	AlertCriticalStock AlertType = "critical_stock"
	AlertLowStock      AlertType = "low_stock"
	AlertExpiringSoon  AlertType = "expiring_soon"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Thresholds are inclusive unit counts: at or below Critical is critical, at
// or below Low is low, at or above Good is good.
type Thresholds struct {
	Critical       int
	Low            int
	Good           int
	ExpiringWithin time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical:       2,
		Low:            5,
		Good:           20,
		ExpiringWithin: 7 * 24 * time.Hour,
	}
}

// Alert is one stock condition worth notifying about.
type Alert struct {
	BankID    id.BankID    `json:"bank_id"`
	BloodType id.BloodType `json:"blood_type"`
	Type      AlertType    `json:"type"`
	Priority  Priority     `json:"priority"`
	Units     int          `json:"units"`
	Message   string       `json:"message"`
}

// Evaluation is the classified stock of one blood type at one bank.
type Evaluation struct {
	BankID         id.BankID    `json:"bank_id"`
	BloodType      id.BloodType `json:"blood_type"`
	AvailableUnits int          `json:"available_units"`
	ExpiringUnits  int          `json:"expiring_units"`
	Status         StockStatus  `json:"status"`
	Alerts         []Alert      `json:"alerts"`
}

// IsCritical reports whether stock is at or below the critical threshold.
func (e Evaluation) IsCritical() bool {
	return e.Status == StockCritical
}

type Evaluator struct {
	thresholds Thresholds
}

func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Classify maps a unit count to a stock status.
func (e *Evaluator) Classify(units int) StockStatus {
	switch {
	case units <= e.thresholds.Critical:
		return StockCritical
	case units <= e.thresholds.Low:
		return StockLow
	case units >= e.thresholds.Good:
		return StockGood
	default:
		return StockAdequate
	}
}

// Evaluate classifies bloodType at bankID from rows. Only usable rows of
// that type count; rows of other types are ignored.
func (e *Evaluator) Evaluate(bankID id.BankID, bloodType id.BloodType, rows []domain.InventoryRecord, now time.Time) Evaluation {
	ev := Evaluation{BankID: bankID, BloodType: bloodType}
	horizon := now.Add(e.thresholds.ExpiringWithin)
	for _, r := range rows {
		if r.BloodType != bloodType || !r.IsUsable(now) {
			continue
		}
		ev.AvailableUnits += r.Units
		if !r.ExpirationDate.IsZero() && !r.ExpirationDate.After(horizon) {
			ev.ExpiringUnits += r.Units
		}
	}
	ev.Status = e.Classify(ev.AvailableUnits)
	ev.Alerts = e.alerts(ev)
	return ev
}

// Summarize evaluates every blood type that has rows at the bank, in
// canonical blood type order.
func (e *Evaluator) Summarize(bankID id.BankID, rows []domain.InventoryRecord, now time.Time) []Evaluation {
	present := make(map[id.BloodType]bool)
	for _, r := range rows {
		present[r.BloodType] = true
	}
	out := make([]Evaluation, 0, len(present))
	for _, bt := range id.AllBloodTypes {
		if present[bt] {
			out = append(out, e.Evaluate(bankID, bt, rows, now))
		}
	}
	return out
}

func (e *Evaluator) alerts(ev Evaluation) []Alert {
	var alerts []Alert
	switch ev.Status {
	case StockCritical:
		alerts = append(alerts, Alert{
			BankID: ev.BankID, BloodType: ev.BloodType, Type: AlertCriticalStock, Priority: PriorityHigh,
			Units:   ev.AvailableUnits,
			Message: fmt.Sprintf("%s stock critical: %d unit(s) available", ev.BloodType, ev.AvailableUnits),
		})
	case StockLow:
		alerts = append(alerts, Alert{
			BankID: ev.BankID, BloodType: ev.BloodType, Type: AlertLowStock, Priority: PriorityMedium,
			Units:   ev.AvailableUnits,
			Message: fmt.Sprintf("%s stock low: %d unit(s) available", ev.BloodType, ev.AvailableUnits),
		})
	}
	if ev.ExpiringUnits > 0 {
		alerts = append(alerts, Alert{
			BankID: ev.BankID, BloodType: ev.BloodType, Type: AlertExpiringSoon, Priority: PriorityMedium,
			Units:   ev.ExpiringUnits,
			Message: fmt.Sprintf("%d unit(s) of %s expire within %s", ev.ExpiringUnits, ev.BloodType, e.thresholds.ExpiringWithin),
		})
	}
	return alerts
}
