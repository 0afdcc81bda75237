package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/v1/test", "GET", "200"))
	ObserveRequest("/v1/test", "GET", 200, 20*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("/v1/test", "GET", "200"))
	if after-before != 1 {
		t.Fatalf("counter delta = %v, want 1", after-before)
	}
}

func TestObserveJob(t *testing.T) {
	ObserveJob("email.send", "done")
	if got := testutil.ToFloat64(JobsProcessed.WithLabelValues("email.send", "done")); got < 1 {
		t.Fatalf("jobs processed = %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ApplicationsSubmitted.Inc()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ims_applications_submitted_total") {
		t.Fatalf("missing collector in output")
	}
}
