package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-gateway/internal/middleware"
	"chat-gateway/internal/models"
	"chat-gateway/internal/services"
)

// ─── JSON Response Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]interface{}{"message": "Success"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "Success" {
		t.Errorf("Expected message 'Success', got %v", result["message"])
	}
}

func TestErrorResp_CarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")

	resp := errorRespWithFields("VALIDATION_ERROR", "Validation failed", map[string]string{"prompt": "Prompt is required"}, req)

	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request_id 'req-123', got %q", resp.Error.RequestID)
	}
	if resp.Error.Fields["prompt"] != "Prompt is required" {
		t.Errorf("Expected prompt field error, got %v", resp.Error.Fields)
	}
}

// ─── Service Error Mapping Tests ───

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"prompt": "Prompt is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped upstream", fmt.Errorf("start: %w", &services.UpstreamError{Err: errors.New("throttled")}), http.StatusInternalServerError, "UPSTREAM_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handleServiceError(rr, httptest.NewRequest(http.MethodPost, "/chat", nil), tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleServiceError_HidesUpstreamDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	handleServiceError(rr, httptest.NewRequest(http.MethodPost, "/chat", nil), &services.UpstreamError{Err: errors.New("AccessDeniedException: secret-arn")})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error.Message != "Failed to get AI response" {
		t.Errorf("Expected generic message, got %q", resp.Error.Message)
	}
}
