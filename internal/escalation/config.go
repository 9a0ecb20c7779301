package escalation

import (
	"time"

	"bloodlink/internal/inventory"
	"bloodlink/internal/platform/config"
)

// Config holds the monitor's timing and bounds.
type Config struct {
	SweepInterval         time.Duration
	CriticalResponseTime  time.Duration
	EscalationTime        time.Duration
	EmergencyRadiusKm     float64
	LowStockDonorRadiusKm float64
	RetryBatchSize        int
	MaxProactiveDonors    int
	Thresholds            inventory.Thresholds
}

func DefaultConfig() Config {
	return Config{
		SweepInterval:         5 * time.Minute,
		CriticalResponseTime:  30 * time.Minute,
		EscalationTime:        60 * time.Minute,
		EmergencyRadiusKm:     200,
		LowStockDonorRadiusKm: 50,
		RetryBatchSize:        20,
		MaxProactiveDonors:    10,
		Thresholds:            inventory.DefaultThresholds(),
	}
}

// ConfigFrom maps the environment configuration onto the monitor config.
func ConfigFrom(c config.EscalationConfig) Config {
	cfg := DefaultConfig()
	cfg.SweepInterval = c.SweepInterval
	cfg.CriticalResponseTime = c.CriticalResponseTime
	cfg.EscalationTime = c.EscalationTime
	cfg.EmergencyRadiusKm = c.EmergencyRadiusKm
	cfg.LowStockDonorRadiusKm = c.LowStockDonorRadiusKm
	cfg.RetryBatchSize = c.RetryBatchSize
	cfg.MaxProactiveDonors = c.MaxProactiveDonors
	return cfg
}
