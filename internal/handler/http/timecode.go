package http

import (
	"net/http"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/avvikelse/avvikelse-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimeCodeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type timeCodeHandlerImpl struct {
	timeCodeService timecode.TimeCodeService
}

func NewTimeCodeHandler(timeCodeService timecode.TimeCodeService) TimeCodeHandler {
	return &timeCodeHandlerImpl{timeCodeService: timeCodeService}
}

// List implements TimeCodeHandler.
func (h *timeCodeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.timeCodeService.ListTimeCodes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, codes)
}

// Get implements TimeCodeHandler.
func (h *timeCodeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.timeCodeService.GetTimeCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Create implements TimeCodeHandler.
func (h *timeCodeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req timecode.CreateTimeCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.timeCodeService.CreateTimeCode(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Time code created successfully", resp)
}

// Update implements TimeCodeHandler.
func (h *timeCodeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req timecode.UpdateTimeCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Code = chi.URLParam(r, "code")

	resp, err := h.timeCodeService.UpdateTimeCode(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Time code updated successfully", resp)
}
