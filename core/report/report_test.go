package report_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/dashboard"
	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
	"github.com/trezcool/kipimo/core/report"
	testutil "github.com/trezcool/kipimo/tests"
)

var ctx = context.Background()

type archived struct {
	key, contentType string
	content          []byte
}

type memArchiver struct {
	files []archived
}

func (a *memArchiver) Archive(_ context.Context, key string, content []byte, contentType string) (string, error) {
	a.files = append(a.files, archived{key: key, content: content, contentType: contentType})
	return "mem://" + key, nil
}

// lincoln seeds the district used across the report tests.
func lincoln(t *testing.T) (*testutil.Env, district.District) {
	env := testutil.NewInmemEnv()
	d := testutil.CreateDistrict(t, env.Districts, "Lincoln")
	g1 := testutil.CreateGoal(t, env.Goals, d.ID, nil, "Academic excellence")
	g2 := testutil.CreateGoal(t, env.Goals, d.ID, nil, "Safe schools")
	testutil.CreateGoal(t, env.Goals, d.ID, &g2, "Reduce incidents")
	testutil.CreateMetric(t, env.Metrics, g1, "Reading", testutil.Float(40), testutil.Float(50))
	testutil.CreateMetric(t, env.Metrics, g1, "Math", testutil.Float(90), testutil.Float(100))
	_, err := env.Goals.SetOverride(ctx, g2.ID, goal.ProgressOverride{
		Value:       testutil.Float(60),
		DisplayMode: goal.DisplayScore,
		Reason:      "Survey results pending",
	})
	require.NoError(t, err)
	return env, d
}

func newService(env *testutil.Env, archiver report.Archiver) *report.Service {
	return report.NewService(env.Districts, env.Goals, env.Metrics.DefaultThresholds(), env.Mail, archiver, env.Logger)
}

func TestGoalRows(t *testing.T) {
	env, d := lincoln(t)
	goals, err := env.Goals.List(ctx, d.ID)
	require.NoError(t, err)

	rows := report.GoalRows(goals)
	require.Len(t, rows, 3)

	assert.Equal(t, "1", rows[0].GoalNumber)
	assert.Equal(t, "Strategic Objective", rows[0].Level)
	assert.Equal(t, 85, rows[0].Progress)
	assert.Equal(t, goal.StatusOnTrack, rows[0].Status)
	assert.Equal(t, dashboard.BucketOnTrack, rows[0].Bucket)
	assert.Equal(t, 2, rows[0].MetricCount)
	assert.Nil(t, rows[0].Override)

	assert.Equal(t, "2", rows[1].GoalNumber)
	assert.Equal(t, 0, rows[1].Progress)
	assert.Equal(t, goal.StatusCritical, rows[1].Status)
	require.NotNil(t, rows[1].Override)
	assert.Equal(t, 60.0, *rows[1].Override)
	assert.Equal(t, "3.00/5.00", rows[1].Display)
	assert.Equal(t, dashboard.BucketAtRisk, rows[1].Bucket)

	assert.Equal(t, "2.1", rows[2].GoalNumber)
	assert.Equal(t, "Goal", rows[2].Level)
	assert.Empty(t, rows[2].Bucket, "no override and no metrics")
}

func TestBuild_bucketsAgree(t *testing.T) {
	env, d := lincoln(t)
	goals, err := env.Goals.List(ctx, d.ID)
	require.NoError(t, err)

	r := report.Build(d, goals, metric.DefaultThresholds, time.Now())
	counts := make(dashboard.Counts)
	for _, row := range r.Goals {
		if row.Bucket != "" {
			counts.Add(row.Bucket)
		}
	}
	assert.Equal(t, r.Summary.Buckets, counts)
	assert.Equal(t, 2, r.Summary.Buckets.Total())
}

func TestMetricRows(t *testing.T) {
	env, d := lincoln(t)
	goals, err := env.Goals.List(ctx, d.ID)
	require.NoError(t, err)

	rows := report.MetricRows(goals, metric.DefaultThresholds)
	require.Len(t, rows, 2)
	assert.Equal(t, "Reading", rows[0].Name)
	assert.Equal(t, "1", rows[0].GoalNumber)
	assert.Equal(t, metric.StatusOffTarget, rows[0].Status)
	assert.Equal(t, "Math", rows[1].Name)
	assert.Equal(t, metric.StatusOffTarget, rows[1].Status)
	assert.Equal(t, dashboard.BucketOnTrack, rows[1].Bucket)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    report.Format
		wantErr bool
	}{
		{in: "", want: report.FormatCSV},
		{in: "CSV", want: report.FormatCSV},
		{in: " json ", want: report.FormatJSON},
		{in: "yml", want: report.FormatYAML},
		{in: "yaml", want: report.FormatYAML},
		{in: "xlsx", wantErr: true},
	}
	for _, tt := range tests {
		got, err := report.ParseFormat(tt.in)
		if tt.wantErr {
			assert.Equal(t, report.ErrUnknownFormat, errors.Cause(err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestWrite(t *testing.T) {
	env, d := lincoln(t)
	goals, err := env.Goals.List(ctx, d.ID)
	require.NoError(t, err)
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	r := report.Build(d, goals, metric.DefaultThresholds, now)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, r, report.FormatCSV))

		sections := strings.Split(buf.String(), "\n\n")
		require.Len(t, sections, 2)

		goalRecords, err := csv.NewReader(strings.NewReader(sections[0])).ReadAll()
		require.NoError(t, err)
		require.Len(t, goalRecords, 4)
		assert.Equal(t, "Goal Number", goalRecords[0][0])
		assert.Equal(t, []string{"1", "Strategic Objective", "Academic excellence", "not-started", "85", "on-track", "", "", "85%", "on-track", "2"}, goalRecords[1])

		metricRecords, err := csv.NewReader(strings.NewReader(sections[1])).ReadAll()
		require.NoError(t, err)
		require.Len(t, metricRecords, 3)
		assert.Equal(t, []string{"1", "Reading", "number", "40", "50", "", "off-target", "on-track"}, metricRecords[1])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, r, report.FormatJSON))

		var decoded report.Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, r.Summary.StrategyCount, decoded.Summary.StrategyCount)
		assert.Len(t, decoded.Goals, 3)
		assert.Len(t, decoded.Metrics, 2)
		assert.True(t, now.Equal(decoded.GeneratedAt))
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, r, report.FormatYAML))

		var decoded struct {
			Summary struct {
				District     string `yaml:"district"`
				SubGoalCount int    `yaml:"sub_goal_count"`
			} `yaml:"summary"`
			Goals []map[string]interface{} `yaml:"goals"`
		}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "Lincoln", decoded.Summary.District)
		assert.Equal(t, 0, decoded.Summary.SubGoalCount)
		assert.Len(t, decoded.Goals, 3)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, report.Write(new(bytes.Buffer), r, "xlsx"))
	})
}

func TestService_Export(t *testing.T) {
	env, d := lincoln(t)
	svc := newService(env, new(memArchiver))

	f, err := svc.Export(ctx, d.Slug, report.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", f.ContentType)
	assert.True(t, strings.HasPrefix(f.Name, "lincoln-report-"))
	assert.True(t, strings.HasSuffix(f.Name, ".json"))
	assert.True(t, json.Valid(f.Content))

	_, err = svc.Export(ctx, "ghost", report.FormatCSV)
	assert.Equal(t, district.ErrNotFound, errors.Cause(err))
}

func TestService_Email(t *testing.T) {
	env, d := lincoln(t)
	require.NoError(t, core.ParseEmailTemplates())
	svc := newService(env, new(memArchiver))

	require.NoError(t, svc.Email(ctx, d.Slug, report.FormatCSV))

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, d.AdminEmail, msg.To[0].Address)
	assert.Contains(t, msg.TextContent, "csv report for Lincoln")
	assert.Contains(t, msg.TextContent, "Strategic objectives: 2")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "text/csv", msg.Attachments[0].ContentType)

	content, err := base64.StdEncoding.DecodeString(msg.Attachments[0].Content.String())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Goal Number,"))
}

func TestService_Archive(t *testing.T) {
	env, d := lincoln(t)
	archiver := new(memArchiver)
	svc := newService(env, archiver)

	loc, err := svc.Archive(ctx, d.Slug, report.FormatYAML)
	require.NoError(t, err)
	require.Len(t, archiver.files, 1)
	assert.Equal(t, "mem://"+archiver.files[0].key, loc)
	assert.True(t, strings.HasPrefix(archiver.files[0].key, "lincoln/lincoln-report-"))
	assert.Equal(t, "application/yaml", archiver.files[0].contentType)
}
