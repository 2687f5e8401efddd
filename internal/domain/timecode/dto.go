package timecode

import (
	"strings"

	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

type CreateTimeCodeRequest struct {
	Code         string `json:"code"`
	NameSv       string `json:"name_sv"`
	NameEn       string `json:"name_en"`
	ApprovalType string `json:"approval_type,omitempty"`
}

func (r *CreateTimeCodeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.TrimSpace(r.Code)
	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code is required"})
	} else if !validator.IsValidTimeCode(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: ErrInvalidTimeCodeValue.Error()})
	}
	if validator.IsEmpty(r.NameSv) {
		errs = append(errs, validator.ValidationError{Field: "name_sv", Message: "name_sv is required"})
	}
	if r.ApprovalType != "" && !ApprovalType(r.ApprovalType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "approval_type", Message: ErrInvalidApprovalType.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateTimeCodeRequest struct {
	Code         string  `json:"-"`
	NameSv       *string `json:"name_sv,omitempty"`
	NameEn       *string `json:"name_en,omitempty"`
	ApprovalType *string `json:"approval_type,omitempty"`
}

func (r *UpdateTimeCodeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code is required"})
	}
	if r.NameSv != nil && validator.IsEmpty(*r.NameSv) {
		errs = append(errs, validator.ValidationError{Field: "name_sv", Message: "name_sv must not be empty"})
	}
	if r.ApprovalType != nil && !ApprovalType(*r.ApprovalType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "approval_type", Message: ErrInvalidApprovalType.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TimeCodeResponse struct {
	Code                    string `json:"code"`
	NameSv                  string `json:"name_sv"`
	NameEn                  string `json:"name_en"`
	ApprovalType            string `json:"approval_type"`
	AllowAdvance            bool   `json:"allow_advance"`
	AllowRetroactive        bool   `json:"allow_retroactive"`
	RequiresManagerApproval bool   `json:"requires_manager_approval"`
	IsOvertime              bool   `json:"is_overtime"`
}

func NewTimeCodeResponse(tc TimeCode) TimeCodeResponse {
	rules := tc.Rules()
	return TimeCodeResponse{
		Code:                    tc.Code,
		NameSv:                  tc.NameSv,
		NameEn:                  tc.NameEn,
		ApprovalType:            string(tc.ApprovalType),
		AllowAdvance:            rules.AllowAdvance,
		AllowRetroactive:        rules.AllowRetroactive,
		RequiresManagerApproval: tc.RequiresManagerApproval,
		IsOvertime:              IsOvertimeCode(tc.Code),
	}
}
