package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3tea/fixture-sentinel/calendar"
	"github.com/web3tea/fixture-sentinel/models"
)

func hashFixture() models.Fixture {
	return models.Fixture{
		ID:          "1001",
		HomeTeam:    "Hamlet IF",
		AwayTeam:    "Kronan BK",
		Venue:       "Gamla Vallen",
		Kickoff:     models.NewWireTime(time.Date(2026, 5, 17, 14, 0, 0, 0, time.UTC)),
		Competition: "Division 1",
		Officials: []models.Official{
			{Role: "Referee", Name: "Anna Svensson", Phone: "+46701234567", Email: "anna@example.com"},
			{Role: "AR1", Name: "Bo Berg", Email: "bo@example.com"},
		},
		TeamContacts: []models.TeamContact{
			{Team: "Hamlet IF", Name: "Carl Carlsson", Mobile: "+46709999999"},
		},
	}
}

func TestContentHashStable(t *testing.T) {
	f := hashFixture()
	h1, err := calendar.ContentHash(&f)
	require.NoError(t, err)
	require.NotEmpty(t, h1)

	g := hashFixture()
	h2, err := calendar.ContentHash(&g)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestContentHashTracksContent(t *testing.T) {
	f := hashFixture()
	base, err := calendar.ContentHash(&f)
	require.NoError(t, err)

	moved := hashFixture()
	moved.Venue = "Nya Vallen"
	h, err := calendar.ContentHash(&moved)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)

	rescheduled := hashFixture()
	rescheduled.Kickoff = models.NewWireTime(time.Date(2026, 5, 18, 14, 0, 0, 0, time.UTC))
	h, err = calendar.ContentHash(&rescheduled)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)

	reassigned := hashFixture()
	reassigned.Officials[0].Phone = "+46700000000"
	h, err = calendar.ContentHash(&reassigned)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)
}

func TestContentHashIgnoresStatus(t *testing.T) {
	// Status is lifecycle, not calendar content; the cancelled filter and
	// the orphan sweep handle it.
	f := hashFixture()
	base, err := calendar.ContentHash(&f)
	require.NoError(t, err)

	f.Status = models.StatusPostponed
	h, err := calendar.ContentHash(&f)
	require.NoError(t, err)
	assert.Equal(t, base, h)
}

func TestContentHashIgnoresOfficialOrder(t *testing.T) {
	f := hashFixture()
	base, err := calendar.ContentHash(&f)
	require.NoError(t, err)

	g := hashFixture()
	g.Officials[0], g.Officials[1] = g.Officials[1], g.Officials[0]
	h, err := calendar.ContentHash(&g)
	require.NoError(t, err)
	assert.Equal(t, base, h)
}
