package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestHTMXResponseBuilderTriggers(t *testing.T) {
	rr := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTransactionCreated(2025, 11).
		TriggerFormReset().
		BodyHTML(`<div class="success">ok</div>`).
		Write(rr)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rr.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if _, ok := triggers["transaction:created"]; !ok {
		t.Error("missing transaction:created trigger")
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Error("missing form:reset trigger")
	}

	var data map[string]int
	if err := json.Unmarshal(triggers["transaction:created"], &data); err != nil {
		t.Fatalf("trigger payload: %v", err)
	}
	if data["year"] != 2025 || data["month"] != 11 {
		t.Errorf("trigger data = %v", data)
	}
}

func TestHTMXResponseBuilderNoTriggers(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().BodyString("plain").Write(rr)

	if rr.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should be absent when no triggers are set")
	}
	if rr.Body.String() != "plain" {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestErrorResponseEscapesHTML(t *testing.T) {
	rr := httptest.NewRecorder()
	UnprocessableEntityError(`<script>alert("x")</script>`).Write(rr)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<script>") {
		t.Error("error message was not escaped")
	}
}

func TestMethodNotAllowedSetsAllow(t *testing.T) {
	rr := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(rr)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("Allow") != "POST" {
		t.Errorf("Allow = %q", rr.Header().Get("Allow"))
	}
}

func TestNotificationTriggers(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().TriggerErrorNotification("falló").Write(rr)

	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "show-notification") {
		t.Fatalf("missing show-notification trigger: %s", trigger)
	}
	if !strings.Contains(trigger, `"type":"error"`) {
		t.Errorf("notification type missing: %s", trigger)
	}
}

func TestParseMonthParams(t *testing.T) {
	params := ParseMonthParams(url.Values{"year": {"2025"}, "month": {"3"}})
	if params.Year != 2025 || params.Month != 3 {
		t.Errorf("params = %+v", params)
	}

	// Out-of-range month falls back to the current month
	params = ParseMonthParams(url.Values{"year": {"2025"}, "month": {"13"}})
	if params.Month < 1 || params.Month > 12 {
		t.Errorf("month not corrected: %+v", params)
	}

	// Garbage values keep the defaults
	params = ParseMonthParams(url.Values{"year": {"abc"}, "month": {"xyz"}})
	if params.Year < 2020 {
		t.Errorf("year default broken: %+v", params)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hola  ", "hola"},
		{"con\x00control", "concontrol"},
		{"tab\tok", "tab\tok"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5000, "$50.00"},
		{105000, "$1050.00"},
		{250, "$2.50"},
		{-1234, "-$12.34"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.cents); got != tt.want {
			t.Errorf("formatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
