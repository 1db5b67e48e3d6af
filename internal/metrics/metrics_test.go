package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOutbound(t *testing.T) {
	before := testutil.ToFloat64(OutboundRequests.WithLabelValues("find", "500"))
	RecordOutbound("find", 500)
	if got := testutil.ToFloat64(OutboundRequests.WithLabelValues("find", "500")); got != before+1 {
		t.Errorf("find/500 = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(OutboundRequests.WithLabelValues("find", "error"))
	RecordOutbound("find", 0)
	if got := testutil.ToFloat64(OutboundRequests.WithLabelValues("find", "error")); got != before+1 {
		t.Errorf("find/error = %v, want %v", got, before+1)
	}
}

func TestObserveRecommend(t *testing.T) {
	ObserveRecommend("similar", time.Now().Add(-10*time.Millisecond))
	if n := testutil.CollectAndCount(RecommendDuration); n == 0 {
		t.Error("expected recommend histogram to have samples")
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/movies/:id", "404"))
	RecordAPIRequest("GET", "/api/v1/movies/:id", 404, 5*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/movies/:id", "404")); got != before+1 {
		t.Errorf("requests = %v, want %v", got, before+1)
	}
}
