package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseRequestBody_Form(t *testing.T) {
	form := url.Values{}
	form.Set("name", "  standup  ")
	form.Set("minutes", "30")

	r := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser, err := ParseRequestBody(r)
	if err != nil {
		t.Fatalf("ParseRequestBody() error = %v", err)
	}
	if got := parser.Get("name"); got != "standup" {
		t.Errorf("Get(name) = %q, want %q", got, "standup")
	}
	if got := parser.Get("minutes"); got != "30" {
		t.Errorf("Get(minutes) = %q, want %q", got, "30")
	}
	if parser.Has("missing") {
		t.Error("Has(missing) = true, want false")
	}
}

func TestParseRequestBody_JSON(t *testing.T) {
	body := `{"name":"review","timeSpent":1.5,"pinned":true}`
	r := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	parser, err := ParseRequestBody(r)
	if err != nil {
		t.Fatalf("ParseRequestBody() error = %v", err)
	}
	if got := parser.Get("name"); got != "review" {
		t.Errorf("Get(name) = %q, want %q", got, "review")
	}
	if got := parser.Get("timeSpent"); got != "1.5" {
		t.Errorf("Get(timeSpent) = %q, want %q", got, "1.5")
	}
	if got := parser.Get("pinned"); got != "true" {
		t.Errorf("Get(pinned) = %q, want %q", got, "true")
	}
}

func TestParseRequestBody_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("{not json"))
	r.Header.Set("Content-Type", "application/json")

	if _, err := ParseRequestBody(r); err == nil {
		t.Error("ParseRequestBody() error = nil, want parse error")
	}
}

func TestParserGet_Sanitizes(t *testing.T) {
	body := "{\"name\":\"bad\\u0000input\"}"
	r := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	parser, err := ParseRequestBody(r)
	if err != nil {
		t.Fatalf("ParseRequestBody() error = %v", err)
	}
	if got := parser.Get("name"); got != "badinput" {
		t.Errorf("Get(name) = %q, want control characters stripped", got)
	}
	if got := parser.GetRaw("name"); !strings.Contains(got, "\x00") {
		t.Errorf("GetRaw(name) = %q, want raw value preserved", got)
	}
}

func TestRequireMethod(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/tasks", nil)

	if RequireMethod(w, r, http.MethodPost) {
		t.Error("RequireMethod() = true for disallowed method")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if got := w.Header().Get("Allow"); got != "POST" {
		t.Errorf("Allow = %q, want %q", got, "POST")
	}
}

func TestRequireDeleteOrPOST(t *testing.T) {
	for _, method := range []string{http.MethodDelete, http.MethodPost} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(method, "/tasks/delete", nil)
		if !RequireDeleteOrPOST(w, r) {
			t.Errorf("RequireDeleteOrPOST() = false for %s", method)
		}
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/tasks/delete", nil)
	if RequireDeleteOrPOST(w, r) {
		t.Error("RequireDeleteOrPOST() = true for PUT")
	}
}

func TestParseFormOrFail_BadBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("{"))
	r.Header.Set("Content-Type", "application/json")

	if parser := ParseFormOrFail(w, r); parser != nil {
		t.Error("ParseFormOrFail() returned parser for invalid body")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		name    string
		hours   string
		minutes string
		want    float64
		wantErr bool
	}{
		{"hours and minutes", "1", "30", 1.5, false},
		{"minutes only", "", "45", 0.75, false},
		{"hours only", "2", "", 2, false},
		{"snaps minutes to step", "0", "32", 0.5, false},
		{"clamps hours", "99", "0", 12, false},
		{"bad hours", "abc", "0", 0, true},
		{"bad minutes", "1", "xx", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDuration(tc.hours, tc.minutes)
			if tc.wantErr {
				if err == nil {
					t.Fatal("parseDuration() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDuration() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("parseDuration(%q, %q) = %v, want %v", tc.hours, tc.minutes, got, tc.want)
			}
		})
	}
}

func TestParseTimeSpent_DecimalWithComma(t *testing.T) {
	form := url.Values{}
	form.Set("timeSpent", "1,25")

	r := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser, err := ParseRequestBody(r)
	if err != nil {
		t.Fatalf("ParseRequestBody() error = %v", err)
	}
	got, err := parseTimeSpent(parser)
	if err != nil {
		t.Fatalf("parseTimeSpent() error = %v", err)
	}
	if got != 1.25 {
		t.Errorf("parseTimeSpent() = %v, want 1.25", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"keep\ttabs", "keep\ttabs"},
		{"strip\x00null", "stripnull"},
		{"strip\x1bescape", "stripescape"},
	}
	for _, tc := range cases {
		if got := sanitizeInput(tc.in); got != tc.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
