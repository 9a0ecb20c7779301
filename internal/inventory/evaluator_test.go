package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluator_Classify(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	tests := []struct {
		units int
		want  StockStatus
	}{
		{0, StockCritical},
		{2, StockCritical},
		{3, StockLow},
		{5, StockLow},
		{6, StockAdequate},
		{19, StockAdequate},
		{20, StockGood},
		{150, StockGood},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Classify(tt.units), "units=%d", tt.units)
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	bank := id.BankID(uuid.New())

	t.Run("one O- unit is critical with a single high alert", func(t *testing.T) {
		rows := []domain.InventoryRecord{
			{BankID: bank, BloodType: id.BloodTypeONeg, Units: 1, Status: domain.InventoryAvailable},
			{BankID: bank, BloodType: id.BloodTypeONeg, Units: 9, Status: domain.InventoryReserved},
			{BankID: bank, BloodType: id.BloodTypeAPos, Units: 30, Status: domain.InventoryAvailable},
		}
		ev := e.Evaluate(bank, id.BloodTypeONeg, rows, now)

		assert.Equal(t, 1, ev.AvailableUnits)
		assert.Equal(t, StockCritical, ev.Status)
		require.Len(t, ev.Alerts, 1)
		assert.Equal(t, AlertCriticalStock, ev.Alerts[0].Type)
		assert.Equal(t, PriorityHigh, ev.Alerts[0].Priority)
	})

	t.Run("expired rows do not count", func(t *testing.T) {
		rows := []domain.InventoryRecord{
			{BloodType: id.BloodTypeBPos, Units: 10, Status: domain.InventoryAvailable, ExpirationDate: now.Add(-time.Hour)},
			{BloodType: id.BloodTypeBPos, Units: 4, Status: domain.InventoryAvailable},
		}
		ev := e.Evaluate(bank, id.BloodTypeBPos, rows, now)
		assert.Equal(t, 4, ev.AvailableUnits)
		assert.Equal(t, StockLow, ev.Status)
		require.Len(t, ev.Alerts, 1)
		assert.Equal(t, AlertLowStock, ev.Alerts[0].Type)
		assert.Equal(t, PriorityMedium, ev.Alerts[0].Priority)
	})

	t.Run("units expiring within seven days raise expiring_soon", func(t *testing.T) {
		rows := []domain.InventoryRecord{
			{BloodType: id.BloodTypeAPos, Units: 15, Status: domain.InventoryAvailable, ExpirationDate: now.Add(30 * 24 * time.Hour)},
			{BloodType: id.BloodTypeAPos, Units: 6, Status: domain.InventoryAvailable, ExpirationDate: now.Add(3 * 24 * time.Hour)},
		}
		ev := e.Evaluate(bank, id.BloodTypeAPos, rows, now)
		assert.Equal(t, StockGood, ev.Status)
		assert.Equal(t, 6, ev.ExpiringUnits)
		require.Len(t, ev.Alerts, 1)
		assert.Equal(t, AlertExpiringSoon, ev.Alerts[0].Type)
		assert.Equal(t, 6, ev.Alerts[0].Units)
	})

	t.Run("adequate stock raises nothing", func(t *testing.T) {
		rows := []domain.InventoryRecord{{BloodType: id.BloodTypeABNeg, Units: 10, Status: domain.InventoryAvailable}}
		ev := e.Evaluate(bank, id.BloodTypeABNeg, rows, now)
		assert.Equal(t, StockAdequate, ev.Status)
		assert.Empty(t, ev.Alerts)
	})
}

func TestEvaluator_Summarize(t *testing.T) {
	e := NewEvaluator(DefaultThresholds())
	bank := id.BankID(uuid.New())
	rows := []domain.InventoryRecord{
		{BloodType: id.BloodTypeAPos, Units: 3, Status: domain.InventoryAvailable},
		{BloodType: id.BloodTypeONeg, Units: 1, Status: domain.InventoryAvailable},
		{BloodType: id.BloodTypeAPos, Units: 3, Status: domain.InventoryAvailable},
	}

	got := e.Summarize(bank, rows, now)
	require.Len(t, got, 2)
	assert.Equal(t, id.BloodTypeONeg, got[0].BloodType)
	assert.True(t, got[0].IsCritical())
	assert.Equal(t, id.BloodTypeAPos, got[1].BloodType)
	assert.Equal(t, 6, got[1].AvailableUnits)
	assert.Equal(t, StockAdequate, got[1].Status)
}
