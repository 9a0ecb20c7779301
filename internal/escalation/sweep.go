package escalation

import (
	"context"
	"fmt"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/inventory"
	"bloodlink/internal/matching"
	"bloodlink/internal/notify"
	"bloodlink/internal/ports"
	id "bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/requestcontext"
)

// Run sweeps every SweepInterval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	m.logInfo(ctx, "escalation monitor started", "interval", m.cfg.SweepInterval.String())
	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx)
		case <-ctx.Done():
			m.logInfo(ctx, "escalation monitor stopped")
			return nil
		}
	}
}

// Sweep runs the overdue, low inventory and retry checks once. Each check is
// isolated: an error or panic in one is recorded in the report and the
// remaining checks still run. Concurrent calls run one at a time.
func (m *Monitor) Sweep(ctx context.Context) SweepReport {
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()

	ctx, span := m.tracer.Start(ctx, "escalation.Sweep")
	defer span.End()

	start := time.Now()
	report := SweepReport{StartedAt: requestcontext.Now(ctx)}
	report.Overdue = m.runCheck(ctx, CheckOverdue, m.checkOverdueRequests)
	report.Inventory = m.runCheck(ctx, CheckInventory, m.checkLowInventory)
	report.Retry = m.runCheck(ctx, CheckRetry, m.retryNotifications)
	report.FinishedAt = requestcontext.Now(ctx)
	m.metrics.ObserveSweep(time.Since(start))

	m.logInfo(ctx, "escalation sweep finished",
		"escalated", report.Overdue.Actions,
		"stock_alerts", report.Inventory.Actions,
		"redelivered", report.Retry.Actions,
		"failed_checks", failedChecks(report),
	)
	return report
}

func (m *Monitor) runCheck(ctx context.Context, name string, check func(context.Context, *CheckReport) error) (rep CheckReport) {
	rep.Name = name
	defer func() {
		if r := recover(); r != nil {
			rep.Error = fmt.Sprintf("panic: %v", r)
			m.metrics.IncrementCheckFailure(name)
			m.logError(ctx, "sweep check panicked", "check", name, "panic", r)
		}
	}()
	if err := check(ctx, &rep); err != nil {
		rep.Error = err.Error()
		m.metrics.IncrementCheckFailure(name)
		m.logError(ctx, "sweep check failed", "check", name, "error", err)
	}
	return rep
}

// checkOverdueRequests escalates critical pending requests older than the
// escalation time that have not been escalated yet.
func (m *Monitor) checkOverdueRequests(ctx context.Context, rep *CheckReport) error {
	cutoff := requestcontext.Now(ctx).Add(-m.cfg.EscalationTime)
	requests, err := m.store.GetOverdueCriticalRequests(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("load overdue critical requests: %w", err)
	}
	for _, req := range requests {
		rep.Processed++
		if req.IsEscalated() {
			continue
		}
		out, err := m.EscalateEmergencyRequest(ctx, req, domain.ReasonOverdueResponse)
		if err != nil {
			rep.Failures++
			m.logWarn(ctx, "overdue escalation failed",
				"request_id", req.ID.String(),
				"error", err,
			)
			continue
		}
		if out.Escalated {
			rep.Actions++
		}
	}
	return nil
}

// checkLowInventory alerts banks whose stock of a blood type is critical and
// appeals to nearby donors of that type.
func (m *Monitor) checkLowInventory(ctx context.Context, rep *CheckReport) error {
	banks, err := m.store.GetAllBloodBanks(ctx)
	if err != nil {
		return fmt.Errorf("load blood banks: %w", err)
	}
	now := requestcontext.Now(ctx)
	for _, bank := range banks {
		rep.Processed++
		rows, err := m.store.GetBloodInventory(ctx, bank.ID, nil)
		if err != nil {
			rep.Failures++
			m.logWarn(ctx, "inventory lookup failed",
				"bank_id", bank.ID.String(),
				"error", err,
			)
			continue
		}
		for _, ev := range m.evaluator.Summarize(bank.ID, rows, now) {
			if !ev.IsCritical() {
				continue
			}
			rep.Actions++
			m.alertCriticalStock(ctx, bank, ev.BloodType, ev.AvailableUnits)
		}
	}
	return nil
}

func (m *Monitor) alertCriticalStock(ctx context.Context, bank *domain.BloodBank, bloodType id.BloodType, units int) {
	m.metrics.IncrementCriticalStock(string(bloodType))
	m.logWarn(ctx, "critical blood stock",
		"bank_id", bank.ID.String(),
		"blood_type", bloodType,
		"units", units,
	)

	alert := m.newNotification(ctx, nil, domain.RecipientBloodBank, bank.ID.String(), bank.Contact,
		notify.LowStockBankMessage(bank.Name, bloodType, units))
	m.send(ctx, alert, ports.KindLowStock, nil)

	lookup := m.matcher.FindDonorsByBloodType(ctx, bloodType, matching.DonorFilters{
		Location: bank.Location,
		RadiusKm: m.cfg.LowStockDonorRadiusKm,
		Limit:    m.cfg.MaxProactiveDonors,
	})
	donors := lookup.Donors
	if len(donors) > m.cfg.MaxProactiveDonors {
		donors = donors[:m.cfg.MaxProactiveDonors]
	}
	appeal := notify.LowStockDonorAppeal(bank.Name, bloodType)
	for _, d := range donors {
		n := m.newNotification(ctx, nil, domain.RecipientDonor, d.ID.String(), d.Contact, appeal)
		m.send(ctx, n, ports.KindLowStockAppeal, nil)
	}
}

// retryNotifications redelivers a bounded batch of pending notifications.
// Delivery failures are recorded on each notification and never abort the
// batch.
func (m *Monitor) retryNotifications(ctx context.Context, rep *CheckReport) error {
	pending, err := m.store.GetPendingNotifications(ctx, m.cfg.RetryBatchSize)
	if err != nil {
		return fmt.Errorf("load pending notifications: %w", err)
	}
	for _, n := range pending {
		if !n.IsRetryable() {
			continue
		}
		rep.Processed++
		if m.attempt(ctx, n, payloadFor(n, ports.KindRedelivery)) {
			rep.Actions++
		} else {
			rep.Failures++
		}
		m.saveStatus(ctx, n)
	}
	return nil
}

func failedChecks(r SweepReport) int {
	n := 0
	for _, c := range []CheckReport{r.Overdue, r.Inventory, r.Retry} {
		if c.Error != "" {
			n++
		}
	}
	return n
}

// InventoryReport classifies every blood type stocked at bankID.
func (m *Monitor) InventoryReport(ctx context.Context, bankID id.BankID) ([]inventory.Evaluation, error) {
	rows, err := m.store.GetBloodInventory(ctx, bankID, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load inventory")
	}
	return m.evaluator.Summarize(bankID, rows, requestcontext.Now(ctx)), nil
}
