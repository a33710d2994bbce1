package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/db"
	"github.com/AdamBeresnev/tablecup/internal/lock"
	"github.com/AdamBeresnev/tablecup/internal/store"
	"github.com/AdamBeresnev/tablecup/internal/utils"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(entry bracket.LogEntry) {
	m.Called(entry)
}

type testEnv struct {
	tournaments *TournamentService
	matches     *MatchService
	notifier    *mockNotifier
	clock       *clock.Mock
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Open("sqlite3", dsn)
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database, "sqlite3"))

	notifier := &mockNotifier{}
	notifier.On("Publish", mock.Anything).Return()

	mockClock := clock.NewMock()
	mockClock.Set(testNow)

	deps := Deps{
		DB:       database,
		Events:   store.NewEventStore(database),
		Matches:  store.NewMatchStore(database),
		Log:      store.NewLogStore(database),
		Locker:   lock.NewLocal(),
		Notifier: notifier,
		Clock:    mockClock,
	}
	return &testEnv{
		tournaments: NewTournamentService(deps),
		matches:     NewMatchService(deps),
		notifier:    notifier,
		clock:       mockClock,
	}
}

// createEvent makes an event with seeded teams named T1..Tn.
func (env *testEnv) createEvent(t *testing.T, in EventInput, teamCount int) (*bracket.Event, []*bracket.Team) {
	t.Helper()
	ctx := context.Background()

	event, err := env.tournaments.CreateEvent(ctx, in)
	require.NoError(t, err)

	teams := make([]*bracket.Team, 0, teamCount)
	for i := 1; i <= teamCount; i++ {
		team, err := env.tournaments.AddTeam(ctx, event.ID, TeamInput{
			Name:    fmt.Sprintf("T%d", i),
			Members: []string{fmt.Sprintf("P%da", i), fmt.Sprintf("P%db", i)},
			Seed:    utils.Ptr(i),
		})
		require.NoError(t, err)
		teams = append(teams, team)
	}
	return event, teams
}

func (env *testEnv) data(t *testing.T, eventID uuid.UUID) *EventData {
	t.Helper()
	data, err := env.tournaments.GetEventData(context.Background(), eventID)
	require.NoError(t, err)
	return data
}

// playAll records a 10-5 win for team 1 in every ready match until none is
// left and returns how many results it recorded.
func (env *testEnv) playAll(t *testing.T, eventID uuid.UUID) int {
	t.Helper()
	played := 0
	for {
		var ready *bracket.Match
		for _, m := range env.data(t, eventID).Matches {
			if !m.Completed() && !m.IsBye && m.Full() {
				ready = &m
				break
			}
		}
		if ready == nil {
			return played
		}
		require.NoError(t, env.matches.RecordResult(context.Background(), eventID, ready.ID, ResultInput{Team1Score: 10, Team2Score: 5}))
		played++
		require.Less(t, played, 200, "bracket never finished")
	}
}

func (env *testEnv) published(action string) bool {
	for _, c := range env.notifier.Calls {
		if e, ok := c.Arguments.Get(0).(bracket.LogEntry); ok && e.Action == action {
			return true
		}
	}
	return false
}

func singleElimination(tables int) EventInput {
	return EventInput{Name: "Friday Cup", Mode: bracket.ModeSingleElimination, TableCount: tables}
}

func readyMatches(matches []bracket.Match) []bracket.Match {
	var out []bracket.Match
	for _, m := range matches {
		if !m.Completed() && !m.IsBye && m.Full() {
			out = append(out, m)
		}
	}
	return out
}
