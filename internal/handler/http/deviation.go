package http

import (
	"net/http"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/handler/http/response"
)

type DeviationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
}

type deviationHandlerImpl struct {
	deviationService deviation.DeviationService
}

func NewDeviationHandler(deviationService deviation.DeviationService) DeviationHandler {
	return &deviationHandlerImpl{deviationService: deviationService}
}

func deviationFilterFrom(r *http.Request) deviation.DeviationFilter {
	return deviation.DeviationFilter{
		EmployeeID: queryPtr(r, "employee_id"),
		Status:     queryPtr(r, "status"),
		TimeCode:   queryPtr(r, "time_code"),
		DateFrom:   queryPtr(r, "date_from"),
		DateTo:     queryPtr(r, "date_to"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
}

func writeDeviationList(w http.ResponseWriter, list deviation.ListDeviationResponse) {
	response.SuccessWithMeta(w, list.Deviations, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// List implements DeviationHandler.
func (h *deviationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.deviationService.ListDeviations(r.Context(), deviationFilterFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeDeviationList(w, list)
}

// ListMine implements DeviationHandler.
func (h *deviationHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.deviationService.ListMyDeviations(r.Context(), deviationFilterFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeDeviationList(w, list)
}

// Get implements DeviationHandler.
func (h *deviationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	resp, err := h.deviationService.GetDeviation(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Create implements DeviationHandler.
func (h *deviationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req deviation.CreateDeviationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.deviationService.CreateDeviation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Deviation created successfully", resp)
}

// Update implements DeviationHandler.
func (h *deviationHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var req deviation.UpdateDeviationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	resp, err := h.deviationService.UpdateDeviation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deviation updated successfully", resp)
}

// Delete implements DeviationHandler.
func (h *deviationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	if err := h.deviationService.DeleteDeviation(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deviation deleted successfully", nil)
}

// Submit implements DeviationHandler.
func (h *deviationHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	resp, err := h.deviationService.SubmitDeviation(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deviation submitted for approval", resp)
}

func (h *deviationHandlerImpl) decision(w http.ResponseWriter, r *http.Request) (deviation.DecisionRequest, bool) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return deviation.DecisionRequest{}, false
	}
	var req deviation.DecisionRequest
	if !decodeOptionalJSON(w, r, &req) {
		return deviation.DecisionRequest{}, false
	}
	req.ID = id
	return req, true
}

// Approve implements DeviationHandler.
func (h *deviationHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decision(w, r)
	if !ok {
		return
	}
	resp, err := h.deviationService.ApproveDeviation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deviation approved", resp)
}

// Reject implements DeviationHandler.
func (h *deviationHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decision(w, r)
	if !ok {
		return
	}
	resp, err := h.deviationService.RejectDeviation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deviation rejected", resp)
}

// Return implements DeviationHandler.
func (h *deviationHandlerImpl) Return(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decision(w, r)
	if !ok {
		return
	}
	resp, err := h.deviationService.ReturnDeviation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deviation returned to employee", resp)
}
