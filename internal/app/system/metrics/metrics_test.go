package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation_CountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(AnnouncementOperations.WithLabelValues("create", OutcomeUnauthorized))

	ObserveOperation("create", OutcomeUnauthorized, 10*time.Millisecond)

	after := testutil.ToFloat64(AnnouncementOperations.WithLabelValues("create", OutcomeUnauthorized))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestObserveOperation_DefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(AnnouncementOperations.WithLabelValues("unknown", OutcomeOK))

	ObserveOperation("  ", "", time.Millisecond)

	after := testutil.ToFloat64(AnnouncementOperations.WithLabelValues("unknown", OutcomeOK))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestSetActiveAnnouncements(t *testing.T) {
	SetActiveAnnouncements(3)
	if got := testutil.ToFloat64(ActiveAnnouncements); got != 3 {
		t.Errorf("gauge = %v, want 3", got)
	}
	SetActiveAnnouncements(-1)
	if got := testutil.ToFloat64(ActiveAnnouncements); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	ObserveOperation("list_active", OutcomeOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hsms_announcement_operations_total") {
		t.Error("metrics output missing hsms_announcement_operations_total")
	}
}
