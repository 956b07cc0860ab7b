package constants

import "strings"

// DisputeType selects the letter template on the drafting service.
type DisputeType string

const (
	DepositRefund  DisputeType = "deposit_refund"
	SalaryArrears  DisputeType = "salary_arrears"
	ConsumerRights DisputeType = "consumer_rights"
)

var allDisputeTypes = []DisputeType{
	DepositRefund,
	SalaryArrears,
	ConsumerRights,
}

func DisputeTypesAsStrings() []string {
	result := make([]string, len(allDisputeTypes))
	for i, d := range allDisputeTypes {
		result[i] = string(d)
	}
	return result
}

// ParseDisputeType accepts the exact wire value, case-insensitively.
func ParseDisputeType(input string) (DisputeType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, d := range allDisputeTypes {
		if normalized == string(d) {
			return d, true
		}
	}
	return "", false
}

// Valid reports whether d is one of the supported dispute types.
func (d DisputeType) Valid() bool {
	for _, known := range allDisputeTypes {
		if d == known {
			return true
		}
	}
	return false
}

// Description is a short human label for the dispute type.
func (d DisputeType) Description() string {
	switch d {
	case DepositRefund:
		return "Deposit refund (rental)"
	case SalaryArrears:
		return "Unpaid wages (freelance)"
	case ConsumerRights:
		return "Consumer rights"
	default:
		return string(d)
	}
}
