package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/footprint/internal/achievement"
	"github.com/rshade/footprint/internal/activitylog"
	"github.com/rshade/footprint/internal/emission"
	"github.com/rshade/footprint/internal/factors"
	"github.com/rshade/footprint/internal/parser"
)

//nolint:gochecknoglobals // Fixed clock for tests.
var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *activitylog.Repository) {
	t.Helper()
	db, err := activitylog.Open(activitylog.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = activitylog.Close(db) })

	repo := activitylog.NewRepository(db)
	clock := achievement.NewEvaluator(achievement.WithClock(func() time.Time { return now }))
	return New(repo, append([]Option{WithEvaluator(clock)}, opts...)...), repo
}

func TestService_Parse(t *testing.T) {
	svc := New(nil)

	res, err := svc.Parse(context.Background(), "I drove 10 km to work today")
	require.NoError(t, err)
	assert.Equal(t, factors.CategoryTransportation, res.Category)
	assert.Equal(t, "driving", res.Activity)
	assert.InDelta(t, 10.0, res.Amount, 1e-9)
	assert.Equal(t, "km", res.Unit)
	assert.InDelta(t, 2.1, res.TotalEmission, 1e-9)
	assert.False(t, res.IsSaving)
	assert.Equal(t, factors.TierHigh, res.ImpactTier)
	assert.GreaterOrEqual(t, res.Confidence, 0.7)
	assert.Equal(t, parser.SourceRules, res.Source)
}

func TestService_Parse_NormalizesUnits(t *testing.T) {
	svc := New(nil)

	res, err := svc.Parse(context.Background(), "I drove 10 miles")
	require.NoError(t, err)
	assert.InDelta(t, 16.0934, res.Amount, 1e-9)
	assert.Equal(t, "km", res.Unit)
	assert.InDelta(t, 16.0934*0.21, res.TotalEmission, 1e-9)

	res, err = svc.Parse(context.Background(), "I ate 200g of beef")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, res.Amount, 1e-9)
	assert.InDelta(t, 5.4, res.TotalEmission, 1e-9)
}

func TestService_Parse_Walking(t *testing.T) {
	res, err := New(nil).Parse(context.Background(), "I walked 3 km this morning")
	require.NoError(t, err)
	assert.Equal(t, "walking", res.Activity)
	assert.Zero(t, res.TotalEmission)
	assert.Equal(t, factors.TierLow, res.ImpactTier)
	assert.NotContains(t, res.SuggestionText, "instead")
}

func TestService_Parse_NoMatch(t *testing.T) {
	_, err := New(nil).Parse(context.Background(), "had a lovely day")
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestService_Parse_UnknownActivity(t *testing.T) {
	// A table without beef: the rule still fires, but there is no factor.
	table, err := factors.Parse([]byte(`
version: 1.0.0
categories: {transportation: km, energy: kWh, food: kg, waste: kg}
factors:
  - {category: transportation, activity: driving, factor: 0.21}
`))
	require.NoError(t, err)

	_, err = New(nil, WithTable(table)).Parse(context.Background(), "I ate 200g of beef")
	require.ErrorIs(t, err, emission.ErrUnknownActivity)
}

type fakeEnhancer struct {
	result *parser.ParsedActivity
	err    error
	calls  int
}

func (f *fakeEnhancer) Enhance(_ context.Context, _ string, _ *parser.ParsedActivity) (*parser.ParsedActivity, error) {
	f.calls++
	return f.result, f.err
}

func TestService_Parse_Enhancer(t *testing.T) {
	ai := &parser.ParsedActivity{
		Category: factors.CategoryTransportation, Activity: "train", Amount: 40, Unit: "km",
		Confidence: 0.9, Source: parser.SourceAI,
	}

	t.Run("used when no rule matches", func(t *testing.T) {
		enh := &fakeEnhancer{result: ai}
		res, err := New(nil, WithEnhancer(enh, 0.6)).Parse(context.Background(), "commuted by rail forty km")
		require.NoError(t, err)
		assert.Equal(t, "train", res.Activity)
		assert.Equal(t, parser.SourceAI, res.Source)
		assert.Equal(t, 1, enh.calls)
	})

	t.Run("skipped for confident rule matches", func(t *testing.T) {
		enh := &fakeEnhancer{result: ai}
		res, err := New(nil, WithEnhancer(enh, 0.6)).Parse(context.Background(), "drove 10 km")
		require.NoError(t, err)
		assert.Equal(t, "driving", res.Activity)
		assert.Zero(t, enh.calls)
	})

	t.Run("consulted for low confidence matches", func(t *testing.T) {
		enh := &fakeEnhancer{result: ai}
		res, err := New(nil, WithEnhancer(enh, 0.99)).Parse(context.Background(),
			"after a long and tiring meeting downtown I drove 10 km")
		require.NoError(t, err)
		assert.Equal(t, "train", res.Activity)
		assert.Equal(t, 1, enh.calls)
	})

	t.Run("errors fall back to rules", func(t *testing.T) {
		enh := &fakeEnhancer{err: errors.New("quota exceeded")}
		res, err := New(nil, WithEnhancer(enh, 0.99)).Parse(context.Background(),
			"after a long and tiring meeting downtown I drove 10 km")
		require.NoError(t, err)
		assert.Equal(t, "driving", res.Activity)
	})

	t.Run("results outside the table are ignored", func(t *testing.T) {
		enh := &fakeEnhancer{result: &parser.ParsedActivity{
			Category: factors.CategoryTransportation, Activity: "hoverboard", Amount: 1,
		}}
		_, err := New(nil, WithEnhancer(enh, 0.6)).Parse(context.Background(), "rode my hoverboard")
		require.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestService_Parse_EnhancerUnits(t *testing.T) {
	crossFamily := []*parser.ParsedActivity{
		{Category: factors.CategoryFood, Activity: "beef", Amount: 1, Unit: "miles"},
		{Category: factors.CategoryEnergy, Activity: "heating_oil", Amount: 10, Unit: "kWh"},
		{Category: factors.CategoryTransportation, Activity: "driving", Amount: 10, Unit: "kg"},
	}

	for _, ai := range crossFamily {
		t.Run(ai.Activity+" in "+ai.Unit, func(t *testing.T) {
			enh := &fakeEnhancer{result: ai}
			svc := New(nil, WithEnhancer(enh, 0.99))

			_, err := svc.Parse(context.Background(), "something the rules cannot read")
			require.ErrorIs(t, err, ErrNoMatch)
			assert.Equal(t, 1, enh.calls)

			res, err := svc.Parse(context.Background(), "after a long and tiring meeting downtown I drove 10 km")
			require.NoError(t, err)
			assert.Equal(t, "driving", res.Activity, "the rule result is kept")
			assert.InDelta(t, 2.1, res.TotalEmission, 1e-9)
		})
	}

	t.Run("convertible units are scaled", func(t *testing.T) {
		enh := &fakeEnhancer{result: &parser.ParsedActivity{
			Category: factors.CategoryEnergy, Activity: "heating_oil", Amount: 2, Unit: "gallons",
			Source: parser.SourceAI,
		}}
		res, err := New(nil, WithEnhancer(enh, 0.6)).Parse(context.Background(), "filled the oil tank")
		require.NoError(t, err)
		assert.Equal(t, "liter", res.Unit)
		assert.InDelta(t, 7.57082, res.Amount, 1e-9)
	})

	t.Run("unknown units are taken as the factor unit", func(t *testing.T) {
		enh := &fakeEnhancer{result: &parser.ParsedActivity{
			Category: factors.CategoryEnergy, Activity: "heating_oil", Amount: 10, Unit: "tanks",
			Source: parser.SourceAI,
		}}
		res, err := New(nil, WithEnhancer(enh, 0.6)).Parse(context.Background(), "filled the oil tank")
		require.NoError(t, err)
		assert.Equal(t, "liter", res.Unit)
		assert.InDelta(t, 25.2, res.TotalEmission, 1e-9)
	})
}

func TestService_Log_RejectsCrossFamilyUnits(t *testing.T) {
	enh := &fakeEnhancer{result: &parser.ParsedActivity{
		Category: factors.CategoryFood, Activity: "beef", Amount: 1, Unit: "miles",
	}}
	svc, repo := newTestService(t, WithEnhancer(enh, 0.6))

	_, err := svc.Log(context.Background(), "alice", "a mile of beef", time.Time{})
	require.ErrorIs(t, err, ErrNoMatch)

	entries, err := repo.ListByUser(context.Background(), "alice", activitylog.Range{})
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written for a rejected unit")
}

func TestService_Log(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	out, err := svc.Log(ctx, "alice", "I walked 3 km this morning", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "walking", out.Entry.Activity)
	assert.NotEmpty(t, out.Entry.ID)

	ids := make([]string, 0, len(out.Unlocked))
	for _, b := range out.Unlocked {
		ids = append(ids, b.ID)
	}
	assert.Contains(t, ids, "first_step")

	again, err := svc.Log(ctx, "alice", "I walked 2 km", now.Add(-30*time.Minute))
	require.NoError(t, err)
	for _, b := range again.Unlocked {
		assert.NotEqual(t, "first_step", b.ID, "a badge is only newly unlocked once")
	}

	entries, err := repo.ListByUser(ctx, "alice", activitylog.Range{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	stored, err := repo.LoadProgress(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, stored, len(svc.Catalogue().Badges()))
	assert.True(t, stored["first_step"].Unlocked)
	assert.InDelta(t, 2.0, stored["green_commuter"].Current, 1e-9)
}

func TestService_Log_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Log(ctx, "", "I walked 3 km", time.Time{})
	require.Error(t, err)

	_, err = svc.Log(ctx, "alice", "nothing to see", time.Time{})
	require.ErrorIs(t, err, ErrNoMatch)

	_, err = New(nil).Log(ctx, "alice", "I walked 3 km", time.Time{})
	require.Error(t, err)
}

func TestService_Recompute_Streak(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := range 7 {
		_, err := svc.Log(ctx, "alice", "I cycled 5 km", now.AddDate(0, 0, -i))
		require.NoError(t, err)
	}

	statuses, err := svc.Recompute(ctx, "alice")
	require.NoError(t, err)

	byID := map[string]BadgeStatus{}
	for _, st := range statuses {
		byID[st.Badge.ID] = st
	}
	assert.True(t, byID["week_streak"].Progress.Unlocked)
	assert.True(t, byID["car_free_week"].Progress.Unlocked)
	assert.Equal(t, 7, byID["week_streak"].Progress.Longest)
	assert.InDelta(t, 35.0, byID["pedal_power"].Progress.Current, 1e-9)
	assert.False(t, byID["week_streak"].NewlyUnlocked, "already unlocked by the last log call")
}

func TestService_RecomputeAll(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	for i, user := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.Append(ctx, &activitylog.Entry{
			UserID: user, Category: "waste", Activity: "recycling", Quantity: float64(10 * (i + 1)),
			Unit: "kg", SignedEmission: -5 * float64(i+1), Timestamp: now.Add(-time.Hour),
		}))
	}

	unlocked, err := svc.RecomputeAll(ctx)
	require.NoError(t, err)
	require.Len(t, unlocked, 3)

	has := func(badges []achievement.Badge, id string) bool {
		for _, b := range badges {
			if b.ID == id {
				return true
			}
		}
		return false
	}
	assert.False(t, has(unlocked["alice"], "carbon_saver"), "5 kg saved is below 10")
	assert.True(t, has(unlocked["bob"], "carbon_saver"))
	assert.True(t, has(unlocked["carol"], "carbon_saver"))

	again, err := svc.RecomputeAll(ctx)
	require.NoError(t, err)
	for user, badges := range again {
		assert.Empty(t, badges, "nothing new for %s", user)
	}
}

func TestService_ConcurrentLogs(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Log(ctx, "alice", fmt.Sprintf("I walked %d km", i+1), now.Add(-time.Duration(i)*time.Minute))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.LoadProgress(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, float64(n), stored["habit_builder"].Current, 1e-9,
		"the last recompute must see every entry")
}
