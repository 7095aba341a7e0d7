package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *FPLClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewFPLClient(srv.URL, 6000, 5*time.Second, 3, logger)
}

func TestGetBootstrap(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bootstrap-static/", r.URL.Path)
		w.Write([]byte(`{
			"events": [
				{"id": 6, "finished": true, "is_current": false, "average_entry_score": 54},
				{"id": 7, "finished": false, "is_current": true, "average_entry_score": 0}
			],
			"teams": [{"id": 1, "name": "Arsenal", "short_name": "ARS"}],
			"elements": [{
				"id": 427, "web_name": "Haaland", "team": 13, "element_type": 4,
				"now_cost": 151, "status": "a", "selected_by_percent": "84.3",
				"form": "9.2", "points_per_game": "8.1", "total_points": 57,
				"minutes": 630, "starts": 7, "goals_scored": 9, "assists": 1,
				"clean_sheets": 3, "bonus": 10,
				"expected_goals": "7.91", "expected_assists": "1.02",
				"chance_of_playing_next_round": 75
			}]
		}`))
	}))

	bootstrap, err := client.GetBootstrap(context.Background())
	require.NoError(t, err)

	require.Len(t, bootstrap.Elements, 1)
	el := bootstrap.Elements[0]
	assert.Equal(t, uint(427), el.ID)
	assert.Equal(t, "Haaland", el.WebName)
	assert.Equal(t, 151, el.NowCost)
	assert.Equal(t, "9.2", el.Form, "string numerics stay raw until ingestion")
	assert.Equal(t, "7.91", el.ExpectedGoals)
	require.NotNil(t, el.ChanceOfPlayingNextRound)
	assert.Equal(t, 75, *el.ChanceOfPlayingNextRound)

	assert.Equal(t, 7, bootstrap.CurrentGameweek())
}

func TestCurrentGameweek(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   int
	}{
		{
			"current round still running",
			[]Event{{ID: 6, Finished: true}, {ID: 7, IsCurrent: true}, {ID: 8, IsNext: true}},
			7,
		},
		{
			"current finished, plan for next",
			[]Event{{ID: 7, IsCurrent: true, Finished: true}, {ID: 8, IsNext: true}},
			8,
		},
		{
			"season over, fall back to current",
			[]Event{{ID: 37, Finished: true}, {ID: 38, IsCurrent: true, Finished: true}},
			38,
		},
		{
			"no markers, latest finished round",
			[]Event{{ID: 3, Finished: true}, {ID: 5, Finished: true}, {ID: 4, Finished: true}},
			5,
		},
		{
			"empty events",
			nil,
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bootstrap{Events: tt.events}
			assert.Equal(t, tt.want, b.CurrentGameweek())
		})
	}
}

func TestGetPicks(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/entry/12345/event/7/picks/", r.URL.Path)
		w.Write([]byte(`{
			"picks": [
				{"element": 427, "position": 1, "multiplier": 2, "is_captain": true, "selling_price": 148}
			],
			"entry_history": {"event": 7, "points": 61, "total_points": 412, "bank": 23, "overall_rank": 150431}
		}`))
	}))

	picks, err := client.GetPicks(context.Background(), 12345, 7)
	require.NoError(t, err)

	require.Len(t, picks.Picks, 1)
	assert.Equal(t, uint(427), picks.Picks[0].Element)
	assert.True(t, picks.Picks[0].IsCaptain)
	assert.Equal(t, 148, picks.Picks[0].SellingPrice)
	assert.Equal(t, 23, picks.EntryHistory.Bank)
}

func TestGet_UpstreamError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.GetFixtures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code 503")
}

func TestGet_CircuitBreakerOpens(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.GetBootstrap(ctx)
		require.Error(t, err)
	}

	// Threshold reached: the breaker now rejects without touching the wire.
	_, err := client.GetBootstrap(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
