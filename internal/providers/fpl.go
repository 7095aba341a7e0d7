package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// FPLClient talks to the official Fantasy Premier League API. The API is
// unauthenticated but unforgiving: calls go through a shared rate limiter and
// a circuit breaker so a wobbly upstream cannot stall every request path.
type FPLClient struct {
	httpClient  *http.Client
	baseURL     string
	logger      *logrus.Logger
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
}

// NewFPLClient creates a client for the given API root, e.g.
// https://fantasy.premierleague.com/api.
func NewFPLClient(baseURL string, requestsPerMinute int, timeout time.Duration, breakerThreshold int, logger *logrus.Logger) *FPLClient {
	if requestsPerMinute < 1 {
		requestsPerMinute = 30
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fpl-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(breakerThreshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &FPLClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		breaker:     breaker,
	}
}

// FPL API response structures. Several numeric fields arrive as strings
// ("form":"4.5"); they are kept raw here and parsed by the ingestion layer.

type Bootstrap struct {
	Events   []Event   `json:"events"`
	Teams    []Team    `json:"teams"`
	Elements []Element `json:"elements"`
}

type Event struct {
	ID                int  `json:"id"`
	Finished          bool `json:"finished"`
	IsCurrent         bool `json:"is_current"`
	IsNext            bool `json:"is_next"`
	AverageEntryScore int  `json:"average_entry_score"`
	HighestScore      int  `json:"highest_score"`
}

type Team struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type Element struct {
	ID                       uint   `json:"id"`
	WebName                  string `json:"web_name"`
	Team                     uint   `json:"team"`
	ElementType              int    `json:"element_type"`
	NowCost                  int    `json:"now_cost"`
	Status                   string `json:"status"`
	SelectedByPercent        string `json:"selected_by_percent"`
	Form                     string `json:"form"`
	PointsPerGame            string `json:"points_per_game"`
	TotalPoints              int    `json:"total_points"`
	Minutes                  int    `json:"minutes"`
	Starts                   int    `json:"starts"`
	GoalsScored              int    `json:"goals_scored"`
	Assists                  int    `json:"assists"`
	CleanSheets              int    `json:"clean_sheets"`
	GoalsConceded            int    `json:"goals_conceded"`
	Bonus                    int    `json:"bonus"`
	ExpectedGoals            string `json:"expected_goals"`
	ExpectedAssists          string `json:"expected_assists"`
	ChanceOfPlayingNextRound *int   `json:"chance_of_playing_next_round"`
}

type APIFixture struct {
	ID              uint       `json:"id"`
	Event           *int       `json:"event"` // nil when unscheduled
	TeamH           uint       `json:"team_h"`
	TeamA           uint       `json:"team_a"`
	TeamHDifficulty int        `json:"team_h_difficulty"`
	TeamADifficulty int        `json:"team_a_difficulty"`
	Started         bool       `json:"started"`
	Finished        bool       `json:"finished"`
	KickoffTime     *time.Time `json:"kickoff_time"`
}

type Entry struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	PlayerFirstName    string `json:"player_first_name"`
	PlayerLastName     string `json:"player_last_name"`
	SummaryOverallRank int    `json:"summary_overall_rank"`
}

type EntryPicks struct {
	Picks        []EntryPick  `json:"picks"`
	EntryHistory EntryHistory `json:"entry_history"`
}

type EntryPick struct {
	Element       uint `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
	SellingPrice  int  `json:"selling_price"`
}

type EntryHistory struct {
	Event       int `json:"event"`
	Points      int `json:"points"`
	TotalPoints int `json:"total_points"`
	Bank        int `json:"bank"`
	OverallRank int `json:"overall_rank"`
}

type SeasonHistory struct {
	Current []EntryHistory `json:"current"`
}

type LiveEvent struct {
	Elements []LiveElement `json:"elements"`
}

type LiveElement struct {
	ID    uint      `json:"id"`
	Stats LiveStats `json:"stats"`
}

type LiveStats struct {
	Minutes     int `json:"minutes"`
	TotalPoints int `json:"total_points"`
}

// CurrentGameweek picks the round to plan for: the in-progress round if it has
// not finished, otherwise the next one, falling back to the latest finished
// round for end-of-season requests.
func (b *Bootstrap) CurrentGameweek() int {
	var current, next *Event
	for i := range b.Events {
		switch {
		case b.Events[i].IsCurrent:
			current = &b.Events[i]
		case b.Events[i].IsNext:
			next = &b.Events[i]
		}
	}

	if current != nil && !current.Finished {
		return current.ID
	}
	if next != nil {
		return next.ID
	}
	if current != nil {
		return current.ID
	}

	last := 1
	for _, e := range b.Events {
		if e.Finished && e.ID > last {
			last = e.ID
		}
	}
	return last
}

// GetBootstrap fetches the bootstrap-static payload (elements, teams, events).
func (c *FPLClient) GetBootstrap(ctx context.Context) (*Bootstrap, error) {
	var bootstrap Bootstrap
	if err := c.get(ctx, "/bootstrap-static/", &bootstrap); err != nil {
		return nil, err
	}
	return &bootstrap, nil
}

// GetFixtures fetches the full season fixture list.
func (c *FPLClient) GetFixtures(ctx context.Context) ([]APIFixture, error) {
	var fixtures []APIFixture
	if err := c.get(ctx, "/fixtures/", &fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// GetEntry fetches a manager's entry metadata.
func (c *FPLClient) GetEntry(ctx context.Context, entryID int) (*Entry, error) {
	var entry Entry
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/", entryID), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetPicks fetches a manager's roster for one gameweek, including selling
// prices and the bank balance at that round.
func (c *FPLClient) GetPicks(ctx context.Context, entryID, gameweek int) (*EntryPicks, error) {
	var picks EntryPicks
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gameweek), &picks); err != nil {
		return nil, err
	}
	return &picks, nil
}

// GetHistory fetches a manager's round-by-round season history.
func (c *FPLClient) GetHistory(ctx context.Context, entryID int) (*SeasonHistory, error) {
	var history SeasonHistory
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/history/", entryID), &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// GetEventLive fetches per-player live minutes and points for a round.
func (c *FPLClient) GetEventLive(ctx context.Context, gameweek int) (*LiveEvent, error) {
	var live LiveEvent
	if err := c.get(ctx, fmt.Sprintf("/event/%d/live/", gameweek), &live); err != nil {
		return nil, err
	}
	return &live, nil
}

func (c *FPLClient) get(ctx context.Context, path string, dest interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "fpl-advisor")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, path)
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return nil, fmt.Errorf("decode failed: %w", err)
		}
		return nil, nil
	})
	return err
}
