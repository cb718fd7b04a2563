package calendar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/web3tea/fixture-sentinel/models"
)

// hashDoc is the canonical form a fixture is digested over. Struct encoding
// keeps field order fixed; officials are sorted before encoding so that the
// feed reordering an unchanged appointment list never moves the hash. The
// kickoff is hashed in its raw wire form, keeping the digest independent of
// timestamp parsing.
type hashDoc struct {
	HomeTeam     string               `json:"home_team"`
	AwayTeam     string               `json:"away_team"`
	Venue        string               `json:"venue"`
	Kickoff      string               `json:"kickoff"`
	Competition  string               `json:"competition"`
	TeamContacts []models.TeamContact `json:"team_contacts"`
	Officials    []models.Official    `json:"officials"`
}

// ContentHash digests the mutable fixture fields that drive the calendar
// payload. Equal hash means the destination event needs no write.
func ContentHash(f *models.Fixture) (string, error) {
	officials := make([]models.Official, len(f.Officials))
	copy(officials, f.Officials)
	sort.Slice(officials, func(i, j int) bool {
		a, b := officials[i], officials[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Email != b.Email {
			return a.Email < b.Email
		}
		if a.Phone != b.Phone {
			return a.Phone < b.Phone
		}
		return a.Address < b.Address
	})

	doc := hashDoc{
		HomeTeam:     f.HomeTeam,
		AwayTeam:     f.AwayTeam,
		Venue:        f.Venue,
		Kickoff:      string(f.Kickoff),
		Competition:  f.Competition,
		TeamContacts: f.TeamContacts,
		Officials:    officials,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode fixture for hashing: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
