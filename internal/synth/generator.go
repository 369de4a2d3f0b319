package synth

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/civictriage/ticketsynth/internal/ticketnumber"
)

// TimestampLayout renders submitted_at as a zone-less ISO 8601 local time.
const TimestampLayout = "2006-01-02T15:04:05.000000"

const (
	submissionWindowDays = 365
	highDensityBias      = 0.3
	escalationChance     = 0.25
	coordinateJitter     = 0.3
	baseLat              = 19.0
	baseLon              = 72.8
	maxPhotos            = 3
)

// Score ranges for the priority label, conditioned on escalation.
const (
	EscalatedScoreMin = 0.3
	EscalatedScoreMax = 0.95
	RoutineScoreMin   = 0.1
	RoutineScoreMax   = 0.6
)

// Generator produces tickets from an explicitly owned random source.
// It is not safe for concurrent use.
type Generator struct {
	rng   *mrand.Rand
	now   func() time.Time
	ids   ticketnumber.Generator
	lower cases.Caser
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock used to anchor submitted_at.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithTicketNumbers replaces the default TICKET-2024-NNNNNN scheme.
func WithTicketNumbers(ids ticketnumber.Generator) Option {
	return func(g *Generator) { g.ids = ids }
}

func NewGenerator(rng *mrand.Rand, opts ...Option) *Generator {
	g := &Generator{
		rng:   rng,
		now:   time.Now,
		ids:   ticketnumber.NewYearly(ticketnumber.Config{}),
		lower: cases.Lower(language.Und),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewRand returns a seeded source and the seed it used. A zero seed draws one from crypto/rand.
func NewRand(seed int64) (*mrand.Rand, int64) {
	if seed == 0 {
		var b [8]byte
		_, _ = rand.Read(b[:])
		seed = int64(binary.LittleEndian.Uint64(b[:]) >> 1)
		if seed == 0 {
			seed = 1
		}
	}
	return mrand.New(mrand.NewSource(seed)), seed
}

// Generate builds the ticket for sequence number seq (1-based).
// The order of random draws is fixed; changing it changes every seeded corpus.
func (g *Generator) Generate(seq int64) Ticket {
	days := g.intn(0, submissionWindowDays)
	submitted := g.now().AddDate(0, 0, -days)
	category := pick(g.rng, Categories)

	highDensity := pick(g.rng, HighDensityWards)
	ward := highDensity
	if g.rng.Float64() >= highDensityBias {
		ward = pick(g.rng, Wards)
	}

	escalate := category.EscalationProne() &&
		ward == highDensity &&
		g.rng.Float64() < escalationChance

	citizen := HashPII(fmt.Sprintf("citizen_%d", g.intn(1000, 9999)))
	phone := HashPII(fmt.Sprintf("+91%d", g.int64n(7000000000, 9999999999)))

	loc := Location{
		Ward:    ward,
		Pincode: fmt.Sprintf("4000%d", g.intn(10, 99)),
		Lat:     baseLat + g.uniform(-coordinateJitter, coordinateJitter),
		Lon:     baseLon + g.uniform(-coordinateJitter, coordinateJitter),
	}

	subcategory := fmt.Sprintf("%s_sub_%d", category, g.intn(1, 3))
	description := fmt.Sprintf("Issue with %s in %s. Urgent attention needed.", g.lower.String(string(category)), ward)

	n := g.intn(0, maxPhotos)
	photos := make([]string, 0, n)
	for i := 0; i < n; i++ {
		photos = append(photos, fmt.Sprintf("gs://bucket/photo_%d_%d.jpg", seq, i))
	}

	priority := pick(g.rng, Priorities)
	lang := pick(g.rng, Languages)
	channel := pick(g.rng, Channels)

	var score float64
	if escalate {
		score = g.uniform(EscalatedScoreMin, EscalatedScoreMax)
	} else {
		score = g.uniform(RoutineScoreMin, RoutineScoreMax)
	}

	return Ticket{
		TicketID:        g.ids.Format(seq),
		CitizenIDHash:   citizen,
		PhoneHash:       phone,
		SubmittedAt:     submitted.Format(TimestampLayout),
		Location:        loc,
		Category:        category,
		Subcategory:     subcategory,
		Description:     description,
		Photos:          photos,
		PriorityClaimed: priority,
		Language:        lang,
		Channel:         channel,
		WillEscalate:    escalate,
		PriorityScore:   score,
	}
}

// intn returns a uniform integer in [lo, hi].
func (g *Generator) intn(lo, hi int) int { return lo + g.rng.Intn(hi-lo+1) }

func (g *Generator) int64n(lo, hi int64) int64 { return lo + g.rng.Int63n(hi-lo+1) }

// uniform returns a uniform real in [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 { return lo + (hi-lo)*g.rng.Float64() }

func pick[T any](rng *mrand.Rand, xs []T) T { return xs[rng.Intn(len(xs))] }
