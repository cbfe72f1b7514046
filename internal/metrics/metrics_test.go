package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/filmorate/internal/model"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/films/{id}", "404"))

	RecordHTTPRequest("GET", "/films/{id}", 404, 15*time.Millisecond)
	RecordHTTPRequest("GET", "/films/{id}", 404, 5*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/films/{id}", "404"))
	assert.Equal(t, before+2, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(HTTPActiveRequests))
}

func TestRecordFeedEvent(t *testing.T) {
	c := FeedEventsTotal.WithLabelValues("LIKE", "ADD")
	before := testutil.ToFloat64(c)
	RecordFeedEvent(model.EventLike, model.OpAdd)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordRecommendation(t *testing.T) {
	hit := RecommendationsTotal.WithLabelValues("hit")
	empty := RecommendationsTotal.WithLabelValues("empty")
	hitBefore, emptyBefore := testutil.ToFloat64(hit), testutil.ToFloat64(empty)

	RecordRecommendation(3)
	RecordRecommendation(0)

	assert.Equal(t, hitBefore+1, testutil.ToFloat64(hit))
	assert.Equal(t, emptyBefore+1, testutil.ToFloat64(empty))
}
