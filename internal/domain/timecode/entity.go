package timecode

import (
	"strings"
	"time"
)

// ApprovalType governs when a deviation with this code may be registered.
type ApprovalType string

const (
	ApprovalTypePreApproval  ApprovalType = "pre_approval"
	ApprovalTypePostApproval ApprovalType = "post_approval"
	ApprovalTypeAttestation  ApprovalType = "attestation"
	ApprovalTypeFlexible     ApprovalType = "flexible"
)

// OvertimePrefix marks overtime codes in the Kontek code plan.
const OvertimePrefix = "2"

type TimeCode struct {
	Code         string
	NameSv       string
	NameEn       string
	ApprovalType ApprovalType
	// RequiresManagerApproval follows ApprovalType; New and the repository set it.
	RequiresManagerApproval bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// New builds a time code with the approval flag taken from its type's rules.
func New(code, nameSv, nameEn string, approvalType ApprovalType) TimeCode {
	return TimeCode{
		Code:                    code,
		NameSv:                  nameSv,
		NameEn:                  nameEn,
		ApprovalType:            approvalType,
		RequiresManagerApproval: Rules(approvalType).RequiresManagerApproval,
	}
}

// ApprovalRules is the workflow row for one approval type.
type ApprovalRules struct {
	AllowAdvance            bool
	AllowRetroactive        bool
	RequiresManagerApproval bool
}

var approvalRules = map[ApprovalType]ApprovalRules{
	ApprovalTypePreApproval:  {AllowAdvance: true, AllowRetroactive: false, RequiresManagerApproval: true},
	ApprovalTypePostApproval: {AllowAdvance: false, AllowRetroactive: true, RequiresManagerApproval: true},
	ApprovalTypeAttestation:  {AllowAdvance: false, AllowRetroactive: true, RequiresManagerApproval: true},
	ApprovalTypeFlexible:     {AllowAdvance: true, AllowRetroactive: true, RequiresManagerApproval: true},
}

// ParseApprovalType falls back to attestation for unknown values.
func ParseApprovalType(s string) ApprovalType {
	t := ApprovalType(strings.TrimSpace(s))
	if _, ok := approvalRules[t]; ok {
		return t
	}
	return ApprovalTypeAttestation
}

func (t ApprovalType) IsValid() bool {
	_, ok := approvalRules[t]
	return ok
}

// Rules returns the workflow rules for t, attestation rules if t is unknown.
func Rules(t ApprovalType) ApprovalRules {
	if r, ok := approvalRules[t]; ok {
		return r
	}
	return approvalRules[ApprovalTypeAttestation]
}

func (c TimeCode) Rules() ApprovalRules {
	return Rules(c.ApprovalType)
}

// IsOvertimeCode reports whether code follows the overtime numbering convention.
func IsOvertimeCode(code string) bool {
	return strings.HasPrefix(code, OvertimePrefix)
}
