package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kipimo/core/dashboard"
	"github.com/trezcool/kipimo/core/metric"
	testutil "github.com/trezcool/kipimo/tests"
)

type metricResponse struct {
	metric.Metric
	CurrentStatus metric.Status `json:"current_status"`
}

func Test_metricApi_retrieve(t *testing.T) {
	a := setup(t)
	d := testutil.CreateDistrict(t, a.env.Districts, "Lincoln")
	g := testutil.CreateGoal(t, a.env.Goals, d.ID, nil, "Academic excellence")
	m := testutil.CreateMetric(t, a.env.Metrics, g, "Reading", testutil.Float(20), testutil.Float(50))

	runHTTPTests(t, a, []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/v1/metrics/" + m.ID,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "not found", method: http.MethodGet, path: "/v1/metrics/ghost", token: a.token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	})

	var got metricResponse
	rec := a.do(t, http.MethodGet, "/v1/metrics/"+m.ID, nil, &got)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, metric.StatusCritical, got.CurrentStatus)
}

func Test_metricApi_updateValue(t *testing.T) {
	a := setup(t)
	d := testutil.CreateDistrict(t, a.env.Districts, "Lincoln")
	g := testutil.CreateGoal(t, a.env.Goals, d.ID, nil, "Academic excellence")
	m := testutil.CreateMetric(t, a.env.Metrics, g, "Reading", testutil.Float(20), testutil.Float(50))
	path := "/v1/metrics/" + m.ID + "/value"

	runHTTPTests(t, a, []httpTest{
		{
			name: "value required", method: http.MethodPut, path: path, token: a.token,
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"value": "this field is required"}),
		},
		{
			name: "not found", method: http.MethodPut, path: "/v1/metrics/ghost/value", token: a.token,
			body:     []byte(`{"value":10}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	})

	var got metricResponse
	rec := a.do(t, http.MethodPut, path, metric.UpdateValue{Value: testutil.Float(50)}, &got)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, got.CurrentValue)
	assert.Equal(t, 50.0, *got.CurrentValue)
	assert.Equal(t, dashboard.BucketComplete, got.Status)
	assert.Equal(t, metric.StatusOnTarget, got.CurrentStatus)

	gg, err := a.env.Goals.GetByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, gg.OverallProgress)
	assert.Equal(t, 100.0, *gg.OverallProgress)
}

func Test_metricApi_update(t *testing.T) {
	a := setup(t)
	d := testutil.CreateDistrict(t, a.env.Districts, "Lincoln")
	g := testutil.CreateGoal(t, a.env.Goals, d.ID, nil, "Academic excellence")
	m := testutil.CreateMetric(t, a.env.Metrics, g, "Reading", testutil.Float(20), testutil.Float(50))
	path := "/v1/metrics/" + m.ID

	runHTTPTests(t, a, []httpTest{
		{
			name: "invalid", method: http.MethodPut, path: path, token: a.token,
			body:     []byte(`{"collection_frequency":"daily"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"collection_frequency": "collection_frequency must be one of [weekly monthly quarterly yearly]",
			}),
		},
	})

	var got metricResponse
	rec := a.do(t, http.MethodPut, path, map[string]interface{}{
		"name":         "Reading proficiency",
		"target_value": 40,
	}, &got)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Reading proficiency", got.Name)
	require.NotNil(t, got.TargetValue)
	assert.Equal(t, 40.0, *got.TargetValue)

	gg, err := a.env.Goals.GetByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, gg.OverallProgress)
	assert.Equal(t, 50.0, *gg.OverallProgress)
}

func Test_metricApi_destroy(t *testing.T) {
	a := setup(t)
	d := testutil.CreateDistrict(t, a.env.Districts, "Lincoln")
	g := testutil.CreateGoal(t, a.env.Goals, d.ID, nil, "Academic excellence")
	m1 := testutil.CreateMetric(t, a.env.Metrics, g, "Reading", testutil.Float(20), testutil.Float(50))
	testutil.CreateMetric(t, a.env.Metrics, g, "Math", testutil.Float(30), testutil.Float(50))

	rec := a.do(t, http.MethodDelete, "/v1/metrics/"+m1.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/v1/metrics/"+m1.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	gg, err := a.env.Goals.GetByID(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, gg.Metrics, 1)
	require.NotNil(t, gg.OverallProgress)
	assert.Equal(t, 60.0, *gg.OverallProgress)
}

func Test_metricApi_reorder(t *testing.T) {
	a := setup(t)
	d := testutil.CreateDistrict(t, a.env.Districts, "Lincoln")
	g := testutil.CreateGoal(t, a.env.Goals, d.ID, nil, "Academic excellence")
	m1 := testutil.CreateMetric(t, a.env.Metrics, g, "Reading", nil, nil)
	m2 := testutil.CreateMetric(t, a.env.Metrics, g, "Math", nil, nil)
	assert.Equal(t, []int{0, 1}, []int{m1.DisplayOrder, m2.DisplayOrder})

	runHTTPTests(t, a, []httpTest{
		{
			name: "duplicates", method: http.MethodPut, path: "/v1/metrics/reorder", token: a.token,
			body: marchallObj(t, map[string][]metric.Order{"orders": {
				{ID: m1.ID, DisplayOrder: 1},
				{ID: m1.ID, DisplayOrder: 0},
			}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"orders": "metric " + m1.ID + " listed more than once"}),
		},
		{
			name: "unknown metric", method: http.MethodPut, path: "/v1/metrics/reorder", token: a.token,
			body: marchallObj(t, map[string][]metric.Order{"orders": {
				{ID: m1.ID, DisplayOrder: 1},
				{ID: "ghost", DisplayOrder: 0},
			}}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	})

	rec := a.do(t, http.MethodPut, "/v1/metrics/reorder", map[string][]metric.Order{"orders": {
		{ID: m1.ID, DisplayOrder: 1},
		{ID: m2.ID, DisplayOrder: 0},
	}}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	var metrics []metric.Metric
	rec = a.do(t, http.MethodGet, "/v1/goals/"+g.ID+"/metrics", nil, &metrics)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, metrics, 2)
	assert.Equal(t, []string{m2.ID, m1.ID}, []string{metrics[0].ID, metrics[1].ID})
}
