package domain

import dErrors "bloodlink/pkg/domain-errors"

// Urgency is the categorical severity of a blood request. It governs search
// radius, score weighting, and response-time targets.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// urgencyRank orders urgencies; higher is more severe.
var urgencyRank = map[Urgency]int{
	UrgencyLow:      1,
	UrgencyMedium:   2,
	UrgencyHigh:     3,
	UrgencyCritical: 4,
}

func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(s)
	if !u.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid urgency")
	}
	return u, nil
}

func (u Urgency) IsValid() bool {
	_, ok := urgencyRank[u]
	return ok
}

// Rank returns the severity order of u; unknown urgencies rank 0.
func (u Urgency) Rank() int {
	return urgencyRank[u]
}

func (u Urgency) String() string {
	return string(u)
}
