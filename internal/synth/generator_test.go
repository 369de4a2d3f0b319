package synth

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictriage/ticketsynth/internal/ticketnumber"
)

var (
	hexHash   = regexp.MustCompile(`^[0-9a-f]{16}$`)
	photoURI  = regexp.MustCompile(`^gs://bucket/photo_\d+_[0-2]\.jpg$`)
	fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.Local)
)

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)), WithClock(func() time.Time { return fixedTime }))
}

func generateN(g *Generator, n int) []Ticket {
	out := make([]Ticket, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, g.Generate(int64(i)))
	}
	return out
}

func TestGenerateDeterministicSeed(t *testing.T) {
	a := generateN(newTestGenerator(42), 200)
	b := generateN(newTestGenerator(42), 200)
	assert.Equal(t, a, b)

	c := generateN(newTestGenerator(43), 200)
	assert.NotEqual(t, a, c)
}

func TestGenerateFieldProperties(t *testing.T) {
	tickets := generateN(newTestGenerator(7), 5000)
	seen := make(map[string]struct{}, len(tickets))
	earliest := fixedTime.AddDate(0, 0, -submissionWindowDays)

	for i, tk := range tickets {
		seq := i + 1
		assert.Equal(t, fmt.Sprintf("TICKET-2024-%06d", seq), tk.TicketID)
		_, dup := seen[tk.TicketID]
		require.False(t, dup, "duplicate ticket id %s", tk.TicketID)
		seen[tk.TicketID] = struct{}{}

		assert.Regexp(t, hexHash, tk.CitizenIDHash)
		assert.Regexp(t, hexHash, tk.PhoneHash)

		submitted, err := time.ParseInLocation(TimestampLayout, tk.SubmittedAt, time.Local)
		require.NoError(t, err)
		assert.False(t, submitted.After(fixedTime), "submitted_at in the future: %s", tk.SubmittedAt)
		assert.False(t, submitted.Before(earliest), "submitted_at too old: %s", tk.SubmittedAt)

		assert.Contains(t, Wards, tk.Location.Ward)
		assert.Regexp(t, `^4000[1-9][0-9]$`, tk.Location.Pincode)
		assert.InDelta(t, baseLat, tk.Location.Lat, coordinateJitter+1e-9)
		assert.InDelta(t, baseLon, tk.Location.Lon, coordinateJitter+1e-9)

		assert.Contains(t, Categories, tk.Category)
		assert.Regexp(t, `^`+regexp.QuoteMeta(string(tk.Category))+`_sub_[1-3]$`, tk.Subcategory)
		assert.Equal(t,
			fmt.Sprintf("Issue with %s in %s. Urgent attention needed.", strings.ToLower(string(tk.Category)), tk.Location.Ward),
			tk.Description)

		assert.NotNil(t, tk.Photos)
		assert.LessOrEqual(t, len(tk.Photos), maxPhotos)
		for j, p := range tk.Photos {
			assert.Regexp(t, photoURI, p)
			assert.Equal(t, fmt.Sprintf("gs://bucket/photo_%d_%d.jpg", seq, j), p)
		}

		assert.Contains(t, Priorities, tk.PriorityClaimed)
		assert.Contains(t, Languages, tk.Language)
		assert.Contains(t, Channels, tk.Channel)

		if tk.WillEscalate {
			assert.True(t, tk.Category.EscalationProne(), "escalated ticket %s has category %s", tk.TicketID, tk.Category)
			assert.True(t, tk.Location.Ward.HighDensity(), "escalated ticket %s in ward %s", tk.TicketID, tk.Location.Ward)
			assert.GreaterOrEqual(t, tk.PriorityScore, EscalatedScoreMin)
			assert.LessOrEqual(t, tk.PriorityScore, EscalatedScoreMax)
		} else {
			assert.GreaterOrEqual(t, tk.PriorityScore, RoutineScoreMin)
			assert.LessOrEqual(t, tk.PriorityScore, RoutineScoreMax)
		}
	}
}

func TestGenerateKeepsTimeOfDayAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// DST began on 2025-03-09, so most of the window lies on the other side of a transition.
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, ny)
	g := NewGenerator(rand.New(rand.NewSource(3)), WithClock(func() time.Time { return now }))

	for _, tk := range generateN(g, 2000) {
		require.Equal(t, "12:00:00", tk.SubmittedAt[11:19], "ticket %s submitted at %s", tk.TicketID, tk.SubmittedAt)
	}
}

func TestGenerateDistribution(t *testing.T) {
	tickets := generateN(newTestGenerator(2024), 20000)
	var escalated, highDensity int
	for _, tk := range tickets {
		if tk.WillEscalate {
			escalated++
		}
		if tk.Location.Ward.HighDensity() {
			highDensity++
		}
	}
	// P(escalate) = 2/8 * P(ward == chosen high-density ward) * 0.25
	//             = 0.25 * (0.3 + 0.7*0.1) * 0.25 ≈ 0.023
	rate := float64(escalated) / float64(len(tickets))
	assert.InDelta(t, 0.023, rate, 0.006)

	// 0.3 bias plus 0.7 * 2/10 from the uniform draw.
	share := float64(highDensity) / float64(len(tickets))
	assert.InDelta(t, 0.44, share, 0.02)
}

func TestGenerateJSONShape(t *testing.T) {
	tk := newTestGenerator(1).Generate(1)
	raw, err := json.Marshal(tk)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{
		"ticket_id", "citizen_id_hash", "phone_hash", "submitted_at", "location",
		"category", "subcategory", "description", "photos", "priority_claimed",
		"language", "channel", "_label_will_escalate", "_label_priority_score",
	} {
		assert.Contains(t, m, key)
	}
	loc, ok := m["location"].(map[string]any)
	require.True(t, ok)
	assert.IsType(t, "", loc["ward"])
	assert.IsType(t, "", loc["pincode"])
	assert.IsType(t, float64(0), loc["lat"])
	assert.IsType(t, float64(0), loc["lon"])
	assert.IsType(t, []any{}, m["photos"])
	assert.IsType(t, true, m["_label_will_escalate"])

	assert.True(t, strings.HasPrefix(string(raw), `{"ticket_id":"TICKET-2024-000001","citizen_id_hash":`))
}

func TestGenerateCustomTicketNumbers(t *testing.T) {
	ids := ticketnumber.NewSequential(ticketnumber.Config{Prefix: "SR", MinCounterSize: 3})
	g := NewGenerator(rand.New(rand.NewSource(1)), WithTicketNumbers(ids))
	assert.Equal(t, "SR-007", g.Generate(7).TicketID)
}

func TestNewRand(t *testing.T) {
	t.Run("explicit seed is kept", func(t *testing.T) {
		r1, s1 := NewRand(99)
		r2, s2 := NewRand(99)
		assert.Equal(t, int64(99), s1)
		assert.Equal(t, s1, s2)
		assert.Equal(t, r1.Int63(), r2.Int63())
	})

	t.Run("zero seed draws a positive seed", func(t *testing.T) {
		_, s := NewRand(0)
		assert.Positive(t, s)
	})
}

func TestLanguageTags(t *testing.T) {
	for _, l := range Languages {
		tag, err := l.Tag()
		require.NoError(t, err)
		base, _ := tag.Base()
		assert.Equal(t, string(l), base.String())
	}
}

func TestEnumHelpers(t *testing.T) {
	assert.True(t, CategorySanitation.EscalationProne())
	assert.True(t, CategoryWaterSupply.EscalationProne())
	assert.False(t, CategoryDrainage.EscalationProne())
	assert.True(t, WardKurla.HighDensity())
	assert.False(t, WardColaba.HighDensity())
}
