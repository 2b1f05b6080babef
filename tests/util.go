// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
	emailsvc "github.com/trezcool/kipimo/services/email"
	logsvc "github.com/trezcool/kipimo/services/logger"
	"github.com/trezcool/kipimo/storage/database"
	inmemdb "github.com/trezcool/kipimo/storage/database/inmem"
	sqlxrepos "github.com/trezcool/kipimo/storage/database/sqlx"
)

// NewLogger returns a logger that neither prints nor reports.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// PrepareDB opens a migrated SQLite database in a temporary directory, closed with the test.
func PrepareDB(t *testing.T) (*core.Config, *sqlx.DB) {
	t.Helper()
	conf := core.NewTestConfig(filepath.Join(t.TempDir(), "kipimo.db"))
	db, err := database.Setup(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return conf, db
}

// Env is a fully wired set of services.
type Env struct {
	Conf      *core.Config
	Logger    core.Logger
	Mail      *emailsvc.ConsoleServiceMock
	Districts *district.Service
	Goals     *goal.Service
	Metrics   *metric.Service

	DistrictRepo district.Repository
	GoalRepo     goal.Repository
	MetricRepo   metric.Repository
}

func newEnv(conf *core.Config, dRepo district.Repository, gRepo goal.Repository, mRepo metric.Repository) *Env {
	logger := NewLogger(conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	goalSvc := goal.NewService(gRepo, mRepo, logger)
	return &Env{
		Conf:         conf,
		Logger:       logger,
		Mail:         mailSvc,
		Districts:    district.NewService(dRepo, goalSvc, mailSvc, logger),
		Goals:        goalSvc,
		Metrics:      metric.NewService(mRepo, conf),
		DistrictRepo: dRepo,
		GoalRepo:     gRepo,
		MetricRepo:   mRepo,
	}
}

// NewEnv wires the services over a migrated SQLite database.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	conf, db := PrepareDB(t)
	return newEnv(conf,
		sqlxrepos.NewDistrictRepository(db),
		sqlxrepos.NewGoalRepository(db),
		sqlxrepos.NewMetricRepository(db),
	)
}

// NewInmemEnv wires the services over in-memory repositories.
func NewInmemEnv() *Env {
	db := inmemdb.Open()
	return newEnv(core.NewTestConfig(""),
		inmemdb.NewDistrictRepository(db),
		inmemdb.NewGoalRepository(db),
		inmemdb.NewMetricRepository(db),
	)
}

func CreateDistrict(t *testing.T, svc *district.Service, name string) district.District {
	t.Helper()
	d, err := svc.Create(context.Background(), district.NewDistrict{
		Name:       name,
		AdminEmail: "admin@" + district.GenerateSlug(name) + ".cd",
	})
	if err != nil {
		t.Fatalf("CreateDistrict() failed: %v", err)
	}
	return d
}

func CreateGoal(t *testing.T, svc *goal.Service, districtID string, parent *goal.Goal, title string) goal.Goal {
	t.Helper()
	ng := goal.NewGoal{DistrictID: districtID, Title: title}
	if parent != nil {
		ng.ParentID = &parent.ID
	}
	g, err := svc.Create(context.Background(), ng)
	if err != nil {
		t.Fatalf("CreateGoal() failed: %v", err)
	}
	return g
}

func CreateMetric(t *testing.T, svc *metric.Service, g goal.Goal, name string, current, target *float64) metric.Metric {
	t.Helper()
	m, err := svc.Create(context.Background(), metric.NewMetric{
		GoalID:       g.ID,
		DistrictID:   g.DistrictID,
		Name:         name,
		MetricType:   metric.TypeNumber,
		CurrentValue: current,
		TargetValue:  target,
	})
	if err != nil {
		t.Fatalf("CreateMetric() failed: %v", err)
	}
	return m
}

func Float(f float64) *float64 { return &f }
