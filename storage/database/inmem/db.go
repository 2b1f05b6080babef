// Package inmemdb implements the repositories in memory, for tests and quick demos.
package inmemdb

import (
	"sync"

	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
)

type (
	DB struct {
		district *districtTable
		goal     *goalTable
		metric   *metricTable
	}

	districtTable struct {
		sync.RWMutex
		table map[string]*district.District
	}

	goalTable struct {
		sync.RWMutex
		table map[string]*goal.Goal
	}

	metricTable struct {
		sync.RWMutex
		table map[string]*metric.Metric
	}
)

func Open() *DB {
	return &DB{
		district: &districtTable{table: make(map[string]*district.District)},
		goal:     &goalTable{table: make(map[string]*goal.Goal)},
		metric:   &metricTable{table: make(map[string]*metric.Metric)},
	}
}
