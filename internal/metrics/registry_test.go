package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDispatch(t *testing.T) {
	r := NewRegistry()

	r.RecordDispatch("MESSAGE_DELETE", 0, StatusDispatched, time.Millisecond)
	r.RecordDispatch("MESSAGE_DELETE", 0, StatusDispatched, time.Millisecond)
	r.RecordDispatch("MESSAGE_DELETE", 1, StatusSkipped, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.dispatchTotal.WithLabelValues("MESSAGE_DELETE", "0", StatusDispatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatchTotal.WithLabelValues("MESSAGE_DELETE", "1", StatusSkipped)))

	r.RecordSubscriberFailure("MESSAGE_DELETE")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.subscriberFailures.WithLabelValues("MESSAGE_DELETE")))

	r.ShardOpened()
	r.ShardOpened()
	r.ShardClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.shardsOpen))
}

func TestRecordDispatchFoldsUnknownEvents(t *testing.T) {
	r := NewRegistry()

	r.RecordDispatch("TYPING_START", 0, StatusUnknown, 0)
	r.RecordDispatch("PRESENCE_UPDATE", 0, StatusUnknown, 0)
	r.RecordDispatch("", 0, StatusMalformed, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.dispatchTotal.WithLabelValues(EventOther, "0", StatusUnknown)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatchTotal.WithLabelValues(EventOther, "0", StatusMalformed)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.dispatchTotal, "relay_dispatch_total"))
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordDispatch("GUILD_EMOJIS_UPDATE", 3, StatusDispatched, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `relay_dispatch_total{event="GUILD_EMOJIS_UPDATE",shard="3",status="dispatched"} 1`))
}
