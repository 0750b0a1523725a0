package mock

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/live"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/upstream"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*CampaignServer, *httptest.Server) {
	cs := NewCampaignServer(NewVisitStore())
	ts := httptest.NewServer(cs.Router())
	t.Cleanup(ts.Close)
	return cs, ts
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	resp, err := http.Post(ts.URL+"/api/v1/locations/", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateLocation(t *testing.T) {
	cs, ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"inside bounds", `{"latitude":25.85,"longitude":85.15,"user_id":1,"stay_duration":130}`, http.StatusOK},
		{"outside bounds", `{"latitude":25.95,"longitude":85.15,"user_id":1}`, http.StatusBadRequest},
		{"missing user", `{"latitude":25.85,"longitude":85.15}`, http.StatusUnprocessableEntity},
		{"bad json", `{`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, post(t, ts, tt.body).StatusCode)
		})
	}
	assert.Equal(t, 1, cs.store.Len())
}

func TestUpstreamClientAgainstMock(t *testing.T) {
	cs, ts := newTestServer(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		_, err := cs.Record(visitAt(25.86, 85.16, 120, now))
		require.NoError(t, err)
	}

	client, err := upstream.NewClient(ts.URL, 2*time.Second)
	require.NoError(t, err)

	points, err := client.FetchHeatmap(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 0.7, points[0].Intensity, 1e-9)

	stats, err := client.FetchCoverageStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalVisits)
	assert.Equal(t, int64(3), stats.ProductiveVisits)
	assert.Equal(t, 100.0, stats.CoverageEfficiency)
}

func TestRecordBroadcastsLocationUpdate(t *testing.T) {
	cs, ts := newTestServer(t)

	feed, err := live.NewClient(ts.URL, live.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.LocationUpdate, 1)
	go feed.Subscribe(ctx, func(u domain.LocationUpdate) { got <- u })

	require.Eventually(t, func() bool { return cs.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	post(t, ts, `{"latitude":25.8738,"longitude":85.1797,"user_id":4}`)

	select {
	case u := <-got:
		assert.Equal(t, 25.8738, u.Latitude)
		assert.Equal(t, 85.1797, u.Longitude)
		assert.Nil(t, u.Intensity)
		assert.Equal(t, domain.DefaultIntensity, u.Point().Intensity)
	case <-time.After(2 * time.Second):
		t.Fatal("no location_update received")
	}
}

func TestRawFeedFrame(t *testing.T) {
	cs, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return cs.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = cs.Record(visitAt(25.85, 85.15, 0, time.Time{}))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"location_update","payload":{"latitude":25.85,"longitude":85.15}}`, string(frame))
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
