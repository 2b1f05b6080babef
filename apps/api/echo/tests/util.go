package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/kipimo/apps/api/echo"
	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/auth"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
	"github.com/trezcool/kipimo/core/report"
	archivesvc "github.com/trezcool/kipimo/services/archive"
	testutil "github.com/trezcool/kipimo/tests"
)

const adminPassword = "S3cret!pwd"

var ctx = context.Background()

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotFound     = httpErr{Error: "not found"}
)

// adminPasswordHash is computed once: bcrypt is slow on purpose.
var adminPasswordHash = func() string {
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		panic(err)
	}
	return hash
}()

type app struct {
	*Server
	env   *testutil.Env
	token string
}

func setup(t *testing.T) *app {
	env := testutil.NewEnv(t)
	env.Conf.Auth.AdminPasswordHash = adminPasswordHash
	env.Conf.Archive.LocalDir = t.TempDir()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	goal.InitValidators(validate, translator)
	metric.InitValidators(validate, translator)
	if err := core.ParseEmailTemplates(); err != nil {
		t.Fatalf("ParseEmailTemplates() failed: %v", err)
	}

	archiver, err := archivesvc.NewArchiver(context.Background(), env.Conf)
	if err != nil {
		t.Fatalf("NewArchiver() failed: %v", err)
	}
	reportSvc := report.NewService(env.Districts, env.Goals, env.Metrics.DefaultThresholds(), env.Mail, archiver, env.Logger)

	server := NewServer(
		ServerDeps{
			Conf:        env.Conf,
			Logger:      env.Logger,
			DistrictSvc: env.Districts,
			GoalSvc:     env.Goals,
			MetricSvc:   env.Metrics,
			ReportSvc:   reportSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)
	return &app{Server: server, env: env, token: getToken(t, env.Conf)}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do runs an authenticated request and decodes the JSON response into `out`, when given.
func (a *app) do(t *testing.T, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		data = marchallObj(t, body)
	}
	req, rec := newAuthRequest(method, path, a.token, data)
	a.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func getToken(t *testing.T, conf *core.Config) string {
	token, err := GenerateToken(conf, GetAdminClaims(conf, auth.AdminFrom(conf)))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, a *app, tests []httpTest) {
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
