package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	m.FormSubmissionsTotal.WithLabelValues("demo_booking").Inc()
	m.NotificationsSentTotal.Inc()
	m.LogEntriesTotal.WithLabelValues("error").Add(3)

	if got := testutil.ToFloat64(m.FormSubmissionsTotal.WithLabelValues("demo_booking")); got != 1 {
		t.Errorf("form submissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.NotificationsSentTotal); got != 1 {
		t.Errorf("notifications sent = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LogEntriesTotal.WithLabelValues("error")); got != 3 {
		t.Errorf("log entries = %v, want 3", got)
	}
}

func TestMiddleware_RecordsRequests(t *testing.T) {
	m := New()

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/careers/nope", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/careers/nope", "404")); got != 1 {
		t.Errorf("request counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("not_found")); got != 1 {
		t.Errorf("error counter = %v, want 1", got)
	}
}

func TestNormalizePath_UUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/positions/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	got := normalizePath(req)
	if !strings.HasSuffix(got, "/{id}") {
		t.Errorf("normalizePath = %q, want UUID collapsed to {id}", got)
	}
}

func TestCategorizeStatus(t *testing.T) {
	cases := map[int]string{
		500: "server_error",
		429: "rate_limited",
		403: "auth_error",
		404: "not_found",
		400: "bad_request",
		418: "client_error",
	}
	for status, want := range cases {
		if got := categorizeStatus(status); got != want {
			t.Errorf("categorizeStatus(%d) = %q, want %q", status, got, want)
		}
	}
}
