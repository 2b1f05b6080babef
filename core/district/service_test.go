package district_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/dashboard"
	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	testutil "github.com/trezcool/kipimo/tests"
)

var ctx = context.Background()

func TestService_Create(t *testing.T) {
	env := testutil.NewInmemEnv()

	d, err := env.Districts.Create(ctx, district.NewDistrict{Name: "Lincoln Public Schools", AdminEmail: "admin@lincoln.cd"})
	require.NoError(t, err)
	assert.Equal(t, "lincoln-public-schools", d.Slug)
	assert.NotEmpty(t, d.ID)

	t.Run("slug taken", func(t *testing.T) {
		_, err := env.Districts.Create(ctx, district.NewDistrict{Name: "Lincoln Public Schools", AdminEmail: "x@lincoln.cd"})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("explicit slug", func(t *testing.T) {
		d, err := env.Districts.Create(ctx, district.NewDistrict{Name: "Lincoln", Slug: "lincoln", AdminEmail: "x@lincoln.cd"})
		require.NoError(t, err)
		assert.Equal(t, "lincoln", d.Slug)
	})

	t.Run("invalid slug", func(t *testing.T) {
		for _, slug := range []string{"admin", "Not A Slug", "café"} {
			_, err := env.Districts.Create(ctx, district.NewDistrict{Name: "Other", Slug: slug, AdminEmail: "x@other.cd"})
			assert.Truef(t, core.IsValidationError(err), "slug %q", slug)
		}
	})
}

func TestService_Update(t *testing.T) {
	env := testutil.NewInmemEnv()
	d := testutil.CreateDistrict(t, env.Districts, "Lincoln")
	other := testutil.CreateDistrict(t, env.Districts, "Jefferson")

	name, color, public := "Lincoln County", "#0055aa", true
	updated, err := env.Districts.Update(ctx, d.ID, district.UpdateDistrict{Name: &name, PrimaryColor: &color, IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "lincoln", updated.Slug) // slugs only change on request
	assert.Equal(t, color, updated.PrimaryColor)
	assert.True(t, updated.IsPublic)

	_, err = env.Districts.Update(ctx, d.ID, district.UpdateDistrict{Slug: &other.Slug})
	assert.True(t, core.IsValidationError(err))

	same := d.Slug
	_, err = env.Districts.Update(ctx, d.ID, district.UpdateDistrict{Slug: &same})
	assert.NoError(t, err)

	_, err = env.Districts.Update(ctx, "ghost", district.UpdateDistrict{Name: &name})
	assert.Equal(t, district.ErrNotFound, errors.Cause(err))
}

func TestService_GetBySlug(t *testing.T) {
	env := testutil.NewInmemEnv()
	d := testutil.CreateDistrict(t, env.Districts, "Lincoln")
	g1 := testutil.CreateGoal(t, env.Goals, d.ID, nil, "Academic excellence")
	g2 := testutil.CreateGoal(t, env.Goals, d.ID, nil, "Safe schools")
	g21 := testutil.CreateGoal(t, env.Goals, d.ID, &g2, "Reduce incidents")
	testutil.CreateGoal(t, env.Goals, d.ID, &g21, "Train staff")
	testutil.CreateMetric(t, env.Metrics, g1, "Reading", testutil.Float(40), testutil.Float(50))
	last := testutil.CreateMetric(t, env.Metrics, g1, "Math", testutil.Float(90), testutil.Float(100))
	_, err := env.Goals.SetOverride(ctx, g2.ID, goal.ProgressOverride{Value: testutil.Float(30), Reason: "Board decision"})
	require.NoError(t, err)

	s, err := env.Districts.GetBySlug(ctx, " LINCOLN ")
	require.NoError(t, err)
	assert.Equal(t, d.ID, s.ID)
	assert.Equal(t, 2, s.StrategyCount)
	assert.Equal(t, 1, s.GoalCount)
	assert.Equal(t, 1, s.SubGoalCount)
	assert.Equal(t, 2, s.MetricCount)
	require.NotNil(t, s.LastActivity)
	assert.False(t, s.LastActivity.Before(last.UpdatedAt))
	assert.Equal(t, dashboard.Counts{dashboard.BucketOnTrack: 1, dashboard.BucketCritical: 1}, s.Buckets)

	_, err = env.Districts.GetBySlug(ctx, "ghost")
	assert.Equal(t, district.ErrNotFound, errors.Cause(err))
}

func TestSummarize_empty(t *testing.T) {
	s := district.Summarize(district.District{Name: "Empty"}, nil)
	assert.Nil(t, s.LastActivity)
	assert.Zero(t, s.Buckets.Total())
	assert.Zero(t, s.StrategyCount+s.GoalCount+s.SubGoalCount+s.MetricCount)
}

func TestSummarize_lastActivity(t *testing.T) {
	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	goals := []goal.Goal{
		{ID: "g1", Level: goal.LevelObjective, UpdatedAt: base},
		{ID: "g2", Level: goal.LevelObjective, UpdatedAt: base.Add(time.Hour)},
	}
	s := district.Summarize(district.District{}, goals)
	require.NotNil(t, s.LastActivity)
	assert.Equal(t, base.Add(time.Hour), *s.LastActivity)
}

func TestService_Delete(t *testing.T) {
	env := testutil.NewInmemEnv()
	d := testutil.CreateDistrict(t, env.Districts, "Lincoln")
	kept := testutil.CreateDistrict(t, env.Districts, "Jefferson")
	root := testutil.CreateGoal(t, env.Goals, d.ID, nil, "Objective")
	child := testutil.CreateGoal(t, env.Goals, d.ID, &root, "Goal")
	testutil.CreateMetric(t, env.Metrics, child, "Attendance", nil, nil)
	keptGoal := testutil.CreateGoal(t, env.Goals, kept.ID, nil, "Kept")

	require.NoError(t, env.Districts.Delete(ctx, d.ID))

	_, err := env.DistrictRepo.GetByID(ctx, d.ID)
	assert.Equal(t, district.ErrNotFound, errors.Cause(err))
	goals, err := env.GoalRepo.QueryByDistrict(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)
	metrics, err := env.MetricRepo.QueryByDistrict(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, metrics)

	_, err = env.GoalRepo.GetByID(ctx, keptGoal.ID)
	assert.NoError(t, err)

	assert.Equal(t, district.ErrNotFound, errors.Cause(env.Districts.Delete(ctx, d.ID)))
}

func TestService_NotifyProgressOverride(t *testing.T) {
	env := testutil.NewInmemEnv()
	require.NoError(t, core.ParseEmailTemplates())
	d := testutil.CreateDistrict(t, env.Districts, "Lincoln")
	g := testutil.CreateGoal(t, env.Goals, d.ID, nil, "Academic excellence")

	require.NoError(t, env.Districts.NotifyProgressOverride(ctx, g))
	assert.Empty(t, env.Mail.SentMessages(), "no override, no email")

	g, err := env.Goals.SetOverride(ctx, g.ID, goal.ProgressOverride{Value: testutil.Float(85), Reason: "Board review of Q3"})
	require.NoError(t, err)
	require.NoError(t, env.Districts.NotifyProgressOverride(ctx, g))

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, d.AdminEmail, sent[0].To[0].Address)
	assert.Equal(t, "Progress override on goal 1", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "Reason: Board review of Q3")
	assert.Contains(t, sent[0].TextContent, "Calculated progress: n/a")
	assert.Contains(t, sent[0].HTMLContent, "Board review of Q3")
}
