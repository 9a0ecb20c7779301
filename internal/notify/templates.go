package notify

import (
	"fmt"
	"strings"

	"bloodlink/internal/domain"
	id "bloodlink/pkg/domain"
)

// Message templates for donor, bank and hospital recipients. Recipients get
// human-readable text, not error codes.

func DonorEmergencyMessage(req *domain.BloodRequest, distanceKm float64) string {
	return fmt.Sprintf("%s: %s blood needed %.1f km from you, %d unit(s). Reply to request %s if you can donate.",
		urgencyLabel(req.Urgency), req.BloodType, distanceKm, req.UnitsNeeded, shortID(req.ID.String()))
}

func EscalationBroadcastMessage(req *domain.BloodRequest, reason domain.EscalationReason) string {
	return fmt.Sprintf("ESCALATED: %s request for %d unit(s) of %s (%s). Please check stock and respond.",
		req.Urgency, req.UnitsNeeded, req.BloodType, reasonText(reason))
}

func HospitalEscalationMessage(req *domain.BloodRequest, reason domain.EscalationReason, donorsFound int) string {
	return fmt.Sprintf("Request %s for %s has been escalated (%s). %d donor(s) found within the emergency radius; nearby blood banks alerted.",
		shortID(req.ID.String()), req.BloodType, reasonText(reason), donorsFound)
}

func LowStockBankMessage(bankName string, bloodType id.BloodType, units int) string {
	return fmt.Sprintf("CRITICAL STOCK at %s: %d unit(s) of %s available.", bankName, units, bloodType)
}

func LowStockDonorAppeal(bankName string, bloodType id.BloodType) string {
	return fmt.Sprintf("%s is critically low on %s blood. If you are able to donate, please visit soon.", bankName, bloodType)
}

func urgencyLabel(u id.Urgency) string {
	if u == id.UrgencyCritical {
		return "EMERGENCY"
	}
	return "URGENT"
}

func reasonText(reason domain.EscalationReason) string {
	switch reason {
	case domain.ReasonNoCompatibleDonors:
		return "no compatible donors found"
	case domain.ReasonOverdueResponse:
		return "no match within the response window"
	case domain.ReasonNoDonorResponse:
		return "no donor responded"
	default:
		return strings.ReplaceAll(string(reason), "_", " ")
	}
}

func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
