package domain

import (
	"github.com/google/uuid"

	dErrors "bloodlink/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a donor id can never be passed where
// a request id is expected.
type (
	DonorID        uuid.UUID
	RequestID      uuid.UUID
	HospitalID     uuid.UUID
	BankID         uuid.UUID
	MatchID        uuid.UUID
	NotificationID uuid.UUID
)

func (id DonorID) String() string        { return uuid.UUID(id).String() }
func (id RequestID) String() string      { return uuid.UUID(id).String() }
func (id HospitalID) String() string     { return uuid.UUID(id).String() }
func (id BankID) String() string         { return uuid.UUID(id).String() }
func (id MatchID) String() string        { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id DonorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id HospitalID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id BankID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id MatchID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text encoding keeps ids as canonical UUID strings in JSON.

func (id DonorID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id RequestID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id HospitalID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id BankID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id MatchID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id NotificationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *DonorID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RequestID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *HospitalID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BankID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MatchID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NotificationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func ParseDonorID(s string) (DonorID, error) {
	u, err := parseUUID(s, "donor_id")
	return DonorID(u), err
}

func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s, "request_id")
	return RequestID(u), err
}

func ParseHospitalID(s string) (HospitalID, error) {
	u, err := parseUUID(s, "hospital_id")
	return HospitalID(u), err
}

func ParseBankID(s string) (BankID, error) {
	u, err := parseUUID(s, "bank_id")
	return BankID(u), err
}

func ParseMatchID(s string) (MatchID, error) {
	u, err := parseUUID(s, "match_id")
	return MatchID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification_id")
	return NotificationID(u), err
}

// parseUUID rejects empty, malformed, and nil UUIDs.
func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
