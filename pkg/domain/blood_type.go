package domain

import dErrors "bloodlink/pkg/domain-errors"

// BloodType is one of the eight ABO/Rh groups.
//
// Usage: construct via ParseBloodType at trust boundaries; direct casting
// bypasses validation.
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// AllBloodTypes lists every blood type in a fixed order. Iteration over this
// slice is the canonical order used wherever blood types are enumerated.
var AllBloodTypes = []BloodType{
	BloodTypeONeg,
	BloodTypeOPos,
	BloodTypeANeg,
	BloodTypeAPos,
	BloodTypeBNeg,
	BloodTypeBPos,
	BloodTypeABNeg,
	BloodTypeABPos,
}

// ParseBloodType validates external input.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "blood type cannot be empty")
	}
	bt := BloodType(s)
	if !bt.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid blood type")
	}
	return bt, nil
}

// IsValid checks if the blood type is one of the eight supported groups.
func (b BloodType) IsValid() bool {
	for _, bt := range AllBloodTypes {
		if bt == b {
			return true
		}
	}
	return false
}

func (b BloodType) String() string {
	return string(b)
}
