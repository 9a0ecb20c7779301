package escalation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"bloodlink/internal/domain"
	"bloodlink/internal/notify"
	"bloodlink/internal/ports"
	id "bloodlink/pkg/domain"
	"bloodlink/pkg/platform/circuit"
)

func (s *MonitorSuite) seedNotification(attempts int) *domain.EmergencyNotification {
	n := &domain.EmergencyNotification{
		ID:            id.NotificationID(uuid.New()),
		RecipientType: domain.RecipientDonor,
		RecipientID:   uuid.NewString(),
		Message:       "please donate",
		Status:        domain.NotificationPending,
		Attempts:      attempts,
		CreatedAt:     s.now.Add(-time.Duration(10-attempts) * time.Minute),
	}
	s.Require().NoError(s.store.CreateEmergencyNotification(s.ctx, n))
	return n
}

func (s *MonitorSuite) notification(nid id.NotificationID) *domain.EmergencyNotification {
	for _, n := range s.store.Notifications() {
		if n.ID == nid {
			return n
		}
	}
	s.FailNow("notification not found")
	return nil
}

func (s *MonitorSuite) TestSweepLowInventory() {
	s.Run("critical O- stock alerts the bank and at most ten nearby O- donors", func() {
		bank := s.addBank("north")
		s.store.AddInventory(domain.InventoryRecord{BankID: bank.ID, BloodType: id.BloodTypeONeg, Units: 1, Status: domain.InventoryAvailable})
		s.store.AddInventory(domain.InventoryRecord{BankID: bank.ID, BloodType: id.BloodTypeAPos, Units: 40, Status: domain.InventoryAvailable})
		for i := range 15 {
			s.addDonor(id.BloodTypeONeg, float64(i+1))
		}
		s.addDonor(id.BloodTypeOPos, 1)
		s.addDonor(id.BloodTypeONeg, 80)

		s.dispatcher.EXPECT().
			Broadcast(gomock.Any(), domain.RecipientBloodBank, []string{bank.ID.String()}, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.RecipientType, _ []string, p ports.Payload) error {
				s.Equal(ports.KindLowStock, p.Kind)
				s.Contains(p.Message, "1 unit(s) of O-")
				return nil
			})
		s.dispatcher.EXPECT().
			SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			Times(10)

		report := s.monitor.Sweep(s.ctx)
		s.False(report.Failed())
		s.Equal(1, report.Inventory.Processed)
		s.Equal(1, report.Inventory.Actions)
	})

	s.Run("healthy stock raises nothing", func() {
		s.SetupTest()
		bank := s.addBank("south")
		s.store.AddInventory(domain.InventoryRecord{BankID: bank.ID, BloodType: id.BloodTypeONeg, Units: 12, Status: domain.InventoryAvailable})
		s.addDonor(id.BloodTypeONeg, 1)

		report := s.monitor.Sweep(s.ctx)
		s.Equal(0, report.Inventory.Actions)
		s.Empty(s.store.Notifications())
	})
}

func (s *MonitorSuite) TestSweepRetry() {
	s.Run("third failure marks the notification failed", func() {
		n := s.seedNotification(2)
		s.dispatcher.EXPECT().
			SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("gateway down"))

		report := s.monitor.Sweep(s.ctx)
		s.Equal(1, report.Retry.Processed)
		s.Equal(1, report.Retry.Failures)

		got := s.notification(n.ID)
		s.Equal(domain.NotificationFailed, got.Status)
		s.Equal(3, got.Attempts)
		s.Equal("gateway down", got.LastError)
	})

	s.Run("failed notifications are not retried again", func() {
		report := s.monitor.Sweep(s.ctx)
		s.Equal(0, report.Retry.Processed)
	})

	s.Run("first successful attempt marks the notification sent", func() {
		s.SetupTest()
		n := s.seedNotification(0)
		s.dispatcher.EXPECT().
			SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.DonorID, p ports.Payload) error {
				s.Equal(ports.KindRedelivery, p.Kind)
				s.Equal(n.ID.String(), p.NotificationID)
				return nil
			})

		report := s.monitor.Sweep(s.ctx)
		s.Equal(1, report.Retry.Actions)

		got := s.notification(n.ID)
		s.Equal(domain.NotificationSent, got.Status)
		s.Equal(0, got.Attempts)
	})

	s.Run("batch is bounded and failures do not stop it", func() {
		s.SetupTest()
		cfg := DefaultConfig()
		cfg.RetryBatchSize = 3
		s.monitor = New(s.store, s.matcher, s.dispatcher, s.followUps, WithConfig(cfg))
		for range 5 {
			s.seedNotification(1)
		}
		gomock.InOrder(
			s.dispatcher.EXPECT().SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("boom")),
			s.dispatcher.EXPECT().SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
			s.dispatcher.EXPECT().SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		)

		report := s.monitor.Sweep(s.ctx)
		s.Equal(3, report.Retry.Processed)
		s.Equal(2, report.Retry.Actions)
		s.Equal(1, report.Retry.Failures)
	})
}

func (s *MonitorSuite) TestSweepOverdue() {
	overdue := s.addRequest(id.BloodTypeAPos, id.UrgencyCritical, s.now.Add(-2*time.Hour))
	fresh := s.addRequest(id.BloodTypeAPos, id.UrgencyCritical, s.now.Add(-10*time.Minute))
	high := s.addRequest(id.BloodTypeAPos, id.UrgencyHigh, s.now.Add(-3*time.Hour))

	s.dispatcher.EXPECT().
		Broadcast(gomock.Any(), domain.RecipientHospital, []string{overdue.HospitalID.String()}, gomock.Any()).
		Return(nil)

	report := s.monitor.Sweep(s.ctx)
	s.Equal(1, report.Overdue.Processed)
	s.Equal(1, report.Overdue.Actions)

	s.Equal(domain.ReasonOverdueResponse, s.stored(overdue.ID).EscalationReason)
	s.False(s.stored(fresh.ID).IsEscalated())
	s.False(s.stored(high.ID).IsEscalated())

	again := s.monitor.Sweep(s.ctx)
	s.Equal(0, again.Overdue.Processed)
}

func (s *MonitorSuite) TestSweepIsolatesFailingChecks() {
	s.store.banksErr = errors.New("connection reset")
	s.store.panicOverdue = true
	n := s.seedNotification(0)
	s.dispatcher.EXPECT().SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	report := s.monitor.Sweep(s.ctx)

	s.True(report.Failed())
	s.Contains(report.Overdue.Error, "panic")
	s.Contains(report.Inventory.Error, "connection reset")
	s.Empty(report.Retry.Error)
	s.Equal(1, report.Retry.Actions)
	s.Equal(domain.NotificationSent, s.notification(n.ID).Status)
}

func (s *MonitorSuite) TestRunStopsOnCancel() {
	cfg := DefaultConfig()
	cfg.SweepInterval = 5 * time.Millisecond
	monitor := New(s.store, s.matcher, s.dispatcher, s.followUps, WithConfig(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("monitor did not stop")
	}
}

func (s *MonitorSuite) TestInventoryReport() {
	bank := s.addBank("east")
	s.store.AddInventory(domain.InventoryRecord{BankID: bank.ID, BloodType: id.BloodTypeBNeg, Units: 4, Status: domain.InventoryAvailable})
	s.store.AddInventory(domain.InventoryRecord{BankID: bank.ID, BloodType: id.BloodTypeOPos, Units: 25, Status: domain.InventoryAvailable})

	evals, err := s.monitor.InventoryReport(s.ctx, bank.ID)
	s.Require().NoError(err)
	s.Require().Len(evals, 2)
	s.Equal(id.BloodTypeOPos, evals[0].BloodType)
	s.Equal("good", string(evals[0].Status))
	s.Equal(id.BloodTypeBNeg, evals[1].BloodType)
	s.Equal("low", string(evals[1].Status))
}

func (s *MonitorSuite) TestOpenCircuitDoesNotSpendAttempts() {
	breaker := circuit.New("dispatch", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
	s.monitor = New(s.store, s.matcher, notify.NewGuarded(s.dispatcher, breaker), s.followUps)
	req := s.addRequest(id.BloodTypeONeg, id.UrgencyCritical, s.now)
	for i := range 3 {
		s.addDonor(id.BloodTypeONeg, float64(i+1))
	}
	s.dispatcher.EXPECT().
		SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("gateway down")).
		Times(1)

	out, err := s.monitor.HandleCriticalRequest(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(0, out.DonorsNotified)
	s.True(breaker.IsOpen())

	for range 2 {
		report := s.monitor.Sweep(s.ctx)
		s.Equal(3, report.Retry.Processed)
		s.Equal(0, report.Retry.Actions)
	}

	notifications := s.store.Notifications()
	s.Require().Len(notifications, 3)
	attempts := 0
	for _, n := range notifications {
		s.Equal(domain.NotificationPending, n.Status)
		s.True(n.IsRetryable())
		s.NotEmpty(n.LastError)
		attempts += n.Attempts
	}
	s.Equal(1, attempts)
}

func (s *MonitorSuite) TestSweepSkipsDeliveryInFlight() {
	req := s.addRequest(id.BloodTypeONeg, id.UrgencyCritical, s.now)
	s.addDonor(id.BloodTypeONeg, 2)

	started := make(chan struct{})
	release := make(chan struct{})
	s.dispatcher.EXPECT().
		SendToDonor(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, id.DonorID, ports.Payload) error {
			close(started)
			<-release
			return nil
		}).
		Times(1)

	done := make(chan error, 1)
	go func() {
		_, err := s.monitor.HandleCriticalRequest(s.ctx, req)
		done <- err
	}()

	<-started
	report := s.monitor.Sweep(s.ctx)
	s.Equal(0, report.Retry.Processed)
	close(release)
	s.Require().NoError(<-done)

	notifications := s.store.Notifications()
	s.Require().Len(notifications, 1)
	s.Equal(domain.NotificationSent, notifications[0].Status)
	s.Equal(0, notifications[0].Attempts)
}
