package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ptl2504/text-vending/internal/core/domain"
	"github.com/ptl2504/text-vending/internal/core/service"
)

// maxRequestBytes bounds the plain-text request body.
const maxRequestBytes = 1 << 16

type VendService interface {
	Vend(ctx context.Context, text string) (domain.Receipt, error)
}

type HTTPHandler struct {
	vendService VendService
}

type VendHTTPResponse struct {
	Status  string `json:"status"`
	Product string `json:"product,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewHTTPHandler(vendService VendService) *HTTPHandler {
	return &HTTPHandler{vendService: vendService}
}

// Extract accepts a plain-text purchase request and answers with the
// transaction outcome.
func (h *HTTPHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, VendHTTPResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}
	if len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, VendHTTPResponse{
			Status:  "error",
			Message: "empty request",
		})
		return
	}

	receipt, err := h.vendService.Vend(r.Context(), string(body))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientFunds):
			// A funds rejection is a normal outcome, not an error status.
			writeJSON(w, http.StatusOK, VendHTTPResponse{Status: "insufficient_funds"})
		case errors.Is(err, service.ErrInvalidProduct):
			writeJSON(w, http.StatusBadRequest, VendHTTPResponse{
				Status:  "error",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrNotFound):
			writeJSON(w, http.StatusNotFound, VendHTTPResponse{
				Status:  "error",
				Message: err.Error(),
			})
		default:
			writeJSON(w, http.StatusInternalServerError, VendHTTPResponse{
				Status:  "error",
				Message: "internal error",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, VendHTTPResponse{
		Status:  "success",
		Product: receipt.Product,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
