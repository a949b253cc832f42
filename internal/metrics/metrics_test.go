package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("test", "GET", "/x", "200"))
	RecordAPIRequest("test", "GET", "/x", 200, 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("test", "GET", "/x", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by one, got %v -> %v", before, after)
	}
}

func TestObserveStoreCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(StoreOperationErrors.WithLabelValues("tests", "find"))

	ok := error(nil)
	ObserveStore("tests", "find", time.Now(), &ok)
	failed := errors.New("boom")
	ObserveStore("tests", "find", time.Now(), &failed)

	after := testutil.ToFloat64(StoreOperationErrors.WithLabelValues("tests", "find"))
	if after != before+1 {
		t.Fatalf("expected one error recorded, got %v -> %v", before, after)
	}
}
