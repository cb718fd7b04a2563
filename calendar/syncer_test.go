package calendar_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/web3tea/fixture-sentinel/calendar"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/store"
)

func TestSyncerSuite(t *testing.T) {
	suite.Run(t, new(syncerSuite))
}

type syncerSuite struct {
	suite.Suite
	api *calendar.MemoryAPI
	ctx context.Context
}

func (s *syncerSuite) SetupTest() {
	s.api = calendar.NewMemoryAPI()
	s.ctx = context.Background()
}

func (s *syncerSuite) R() *require.Assertions {
	return s.Require()
}

func (s *syncerSuite) Equal(e, a interface{}, args ...interface{}) {
	s.R().Equal(e, a, args...)
}

func (s *syncerSuite) NoError(err error) {
	s.R().NoError(err)
}

// newSyncer builds a syncer tuned for tests: no pacing, millisecond backoff.
func (s *syncerSuite) newSyncer(api calendar.API, options ...calendar.Option) *calendar.Syncer {
	base := []calendar.Option{
		calendar.WithPacing(0),
		calendar.WithRetryPolicy(3, time.Millisecond),
	}
	return calendar.NewSyncer(api, append(base, options...)...)
}

func testFixture(id, home, away, venue string, kickoff time.Time) models.Fixture {
	return models.Fixture{
		ID:          id,
		HomeTeam:    home,
		AwayTeam:    away,
		Venue:       venue,
		Kickoff:     models.NewWireTime(kickoff),
		Competition: "Division 1",
	}
}

func (s *syncerSuite) TestCreateUnchangedUpdate() {
	kickoff := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Millisecond)
	f := testFixture("1001", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff)
	sync := s.newSyncer(s.api)

	res := sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Created)
	s.Equal(0, res.Failed)
	s.R().True(res.OK())

	ev, err := s.api.FindEvent(s.ctx, "1001", kickoff.Add(-time.Hour))
	s.NoError(err)
	s.R().NotNil(ev)
	s.Equal("Hamlet IF - Kronan BK", ev.Summary)
	s.Equal("Gamla Vallen", ev.Location)
	s.Equal("1001", ev.FixtureID())
	s.Equal("fixture-sentinel", ev.Private[calendar.PropSyncTag])
	s.R().NotEmpty(ev.ContentHash())
	s.R().True(ev.Start.Equal(kickoff))
	s.R().True(ev.End.Equal(kickoff.Add(2 * time.Hour)))

	// Replaying the same batch must not write anything.
	res = sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Unchanged)
	s.Equal(0, res.Created)
	s.Equal(0, res.Updated)
	s.Equal(1, s.api.Len())

	f.Venue = "Nya Vallen"
	res = sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Updated)

	moved, err := s.api.FindEvent(s.ctx, "1001", kickoff.Add(-time.Hour))
	s.NoError(err)
	s.R().NotNil(moved)
	s.Equal(ev.ID, moved.ID)
	s.Equal("Nya Vallen", moved.Location)
	s.R().NotEqual(ev.ContentHash(), moved.ContentHash())
	s.Equal(1, s.api.Len())
}

func (s *syncerSuite) TestEventContent() {
	kickoff := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Millisecond)
	f := testFixture("1001", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff)
	f.MatchNumber = "000123045"
	f.Officials = []models.Official{
		{Role: "Referee", Name: "Anna Svensson", Phone: "+46701234567", Email: "anna@example.com"},
		{Role: "AR1", Name: "Bo Berg"},
	}
	f.TeamContacts = []models.TeamContact{
		{Team: "Hamlet IF", Name: "Carl Carlsson", Phone: "+4687771111", Mobile: "+46709999999", Email: "carl@example.com"},
	}

	sync := s.newSyncer(s.api,
		calendar.WithSyncTag("matches-test"),
		calendar.WithEventDuration(90*time.Minute),
		calendar.WithReminderMinutes(60),
		calendar.WithDetailsURL("https://fixtures.example.com/match/%s"),
	)
	res := sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Created)

	ev, err := s.api.FindEvent(s.ctx, "1001", kickoff.Add(-time.Hour))
	s.NoError(err)
	s.R().NotNil(ev)
	s.Equal("matches-test", ev.Private[calendar.PropSyncTag])
	s.R().True(ev.End.Equal(kickoff.Add(90 * time.Minute)))
	s.Equal([]calendar.Reminder{{Method: "popup", Minutes: 60}}, ev.Reminders)

	desc := ev.Description
	s.R().Contains(desc, "Match 000123045")
	s.R().Contains(desc, "Division 1")
	s.R().Contains(desc, "Referee: Anna Svensson")
	s.R().Contains(desc, "Phone: +46701234567, Email: anna@example.com")
	s.R().Contains(desc, "AR1: Bo Berg")
	s.R().Contains(desc, "Hamlet IF: Carl Carlsson")
	// Mobile wins over the landline when both are present.
	s.R().Contains(desc, "Phone: +46709999999")
	s.R().NotContains(desc, "+4687771111")
	s.R().Contains(desc, "Details: https://fixtures.example.com/match/1001")
	s.R().False(strings.HasSuffix(desc, "\n"))
}

func (s *syncerSuite) TestOrphanSweep() {
	kickoff := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	keep := testFixture("1", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff)
	drop := testFixture("2", "Vargen SK", "Falken IK", "Skogsvallen", kickoff)
	sync := s.newSyncer(s.api)

	res := sync.Sync(s.ctx, []models.Fixture{keep, drop})
	s.Equal(2, res.Created)

	// Starts before the retention window, so the sweep must not touch it.
	stale := &calendar.Event{
		Summary: "Gamla IF - Veteranerna BK",
		Start:   time.Now().UTC().AddDate(0, 0, -30),
		Private: map[string]string{
			calendar.PropSyncTag:   "fixture-sentinel",
			calendar.PropFixtureID: "9",
		},
	}
	_, err := s.api.InsertEvent(s.ctx, stale)
	s.NoError(err)

	// Not ours: no sync tag.
	foreign := &calendar.Event{Summary: "Dentist", Start: kickoff}
	_, err = s.api.InsertEvent(s.ctx, foreign)
	s.NoError(err)

	// Tagged but never stamped with a fixture id.
	unstamped := &calendar.Event{
		Summary: "Draft",
		Start:   kickoff,
		Private: map[string]string{calendar.PropSyncTag: "fixture-sentinel"},
	}
	_, err = s.api.InsertEvent(s.ctx, unstamped)
	s.NoError(err)

	// Fixture 2 left the feed: its event and the unstamped one go.
	res = sync.Sync(s.ctx, []models.Fixture{keep})
	s.Equal(2, res.Deleted)
	s.Equal(1, res.Unchanged)

	gone, err := s.api.FindEvent(s.ctx, "2", kickoff.Add(-time.Hour))
	s.NoError(err)
	s.R().Nil(gone)

	kept, err := s.api.FindEvent(s.ctx, "1", kickoff.Add(-time.Hour))
	s.NoError(err)
	s.R().NotNil(kept)

	s.Equal(3, s.api.Len())
}

func (s *syncerSuite) TestRemove() {
	kickoff := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	f1 := testFixture("1", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff)
	f2 := testFixture("2", "Vargen SK", "Falken IK", "Skogsvallen", kickoff)
	sync := s.newSyncer(s.api)

	res := sync.Sync(s.ctx, []models.Fixture{f1, f2})
	s.Equal(2, res.Created)

	res = sync.Remove(s.ctx, []models.Fixture{f1})
	s.Equal(1, res.Deleted)
	s.Equal(0, res.Failed)

	// Remove names what goes; everything else stays.
	s.Equal(1, s.api.Len())
	left, err := s.api.FindEvent(s.ctx, "2", kickoff.Add(-time.Hour))
	s.NoError(err)
	s.R().NotNil(left)

	// Removing an absent fixture is quiet.
	res = sync.Remove(s.ctx, []models.Fixture{f1})
	s.Equal(0, res.Deleted)
	s.Equal(0, res.Failed)
	s.R().True(res.OK())
}

type failingAPI struct {
	calendar.API
	failID string
}

func (a *failingAPI) InsertEvent(ctx context.Context, ev *calendar.Event) (*calendar.Event, error) {
	if ev.FixtureID() == a.failID {
		return nil, errors.New("destination rejected event")
	}
	return a.API.InsertEvent(ctx, ev)
}

func (s *syncerSuite) TestPartialBatchFailure() {
	kickoff := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	batch := []models.Fixture{
		testFixture("1", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff),
		testFixture("2", "Vargen SK", "Falken IK", "Skogsvallen", kickoff),
		testFixture("3", "Delfinen IF", "Svanen BK", "Sjövallen", kickoff),
	}

	api := &failingAPI{API: s.api, failID: "2"}
	sync := s.newSyncer(api)

	res := sync.Sync(s.ctx, batch)
	s.Equal(2, res.Created)
	s.Equal(1, res.Failed)
	s.R().True(res.OK())
	s.Equal(2, s.api.Len())

	// The next run heals the failed fixture.
	api.failID = ""
	res = sync.Sync(s.ctx, batch)
	s.Equal(1, res.Created)
	s.Equal(2, res.Unchanged)
	s.Equal(0, res.Failed)
	s.Equal(3, s.api.Len())
}

func (s *syncerSuite) TestSkipsUndecodableKickoff() {
	bad := models.Fixture{
		ID:       "7",
		HomeTeam: "Hamlet IF",
		AwayTeam: "Kronan BK",
		Kickoff:  models.WireTime("tomorrow at noon"),
	}
	sync := s.newSyncer(s.api)

	res := sync.Sync(s.ctx, []models.Fixture{bad})
	s.Equal(1, res.Skipped)
	s.Equal(0, res.Failed)
	s.R().True(res.OK())
	s.Equal(0, s.api.Len())
}

type rateLimitedAPI struct {
	calendar.API
	rejections int
	attempts   int
}

func (a *rateLimitedAPI) InsertEvent(ctx context.Context, ev *calendar.Event) (*calendar.Event, error) {
	a.attempts++
	if a.attempts <= a.rejections {
		return nil, calendar.ErrRateLimited
	}
	return a.API.InsertEvent(ctx, ev)
}

func (s *syncerSuite) TestRateLimitRetry() {
	kickoff := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	f := testFixture("1", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff)

	api := &rateLimitedAPI{API: s.api, rejections: 2}
	sync := calendar.NewSyncer(api,
		calendar.WithPacing(0),
		calendar.WithRetryPolicy(5, time.Millisecond),
	)

	res := sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Created)
	s.Equal(0, res.Failed)
	s.Equal(3, api.attempts)
	s.Equal(1, s.api.Len())
}

func (s *syncerSuite) TestRateLimitExhausted() {
	kickoff := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	f := testFixture("1", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff)

	api := &rateLimitedAPI{API: s.api, rejections: 10}
	sync := calendar.NewSyncer(api,
		calendar.WithPacing(0),
		calendar.WithRetryPolicy(2, time.Millisecond),
	)

	res := sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(0, res.Created)
	s.Equal(1, res.Failed)
	s.Equal(2, api.attempts)
	s.Equal(0, s.api.Len())
}

type countingAPI struct {
	calendar.API
	finds int
}

func (a *countingAPI) FindEvent(ctx context.Context, fixtureID string, timeMin time.Time) (*calendar.Event, error) {
	a.finds++
	return a.API.FindEvent(ctx, fixtureID, timeMin)
}

func (s *syncerSuite) TestHashCacheShortCircuits() {
	st, err := store.OpenFileStore(filepath.Join(s.T().TempDir(), "state.json"))
	s.NoError(err)

	kickoff := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	f := testFixture("1", "Hamlet IF", "Kronan BK", "Gamla Vallen", kickoff)

	api := &countingAPI{API: s.api}
	sync := s.newSyncer(api, calendar.WithHashCache(st))

	res := sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Created)
	s.Equal(1, api.finds)

	// The second run never reaches the destination.
	res = sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Unchanged)
	s.Equal(1, api.finds)

	// A content change busts the cache.
	f.Venue = "Nya Vallen"
	res = sync.Sync(s.ctx, []models.Fixture{f})
	s.Equal(1, res.Updated)
	s.Equal(2, api.finds)
}
