package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBodies(t *testing.T) {
	cases := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		body   string
	}{
		{"error", func(w http.ResponseWriter) { RespondError(w, http.StatusNotFound, "intent not found") }, http.StatusNotFound, `{"error":"intent not found"}`},
		{"invalid body", RespondInvalidBody, http.StatusBadRequest, `{"error":"invalid request body"}`},
		{"missing field", func(w http.ResponseWriter) { RespondMissingField(w, "intent") }, http.StatusBadRequest, `{"error":"Missing required field: intent"}`},
		{"success", RespondSuccess, http.StatusOK, `{"success":true}`},
		{"data", func(w http.ResponseWriter) { RespondData(w, []string{"a", "b"}) }, http.StatusOK, `{"data":["a","b"]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			tc.write(resp)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("unexpected content type %q", ct)
			}
			if got := strings.TrimSpace(resp.Body.String()); got != tc.body {
				t.Fatalf("body = %s, want %s", got, tc.body)
			}
		})
	}
}
