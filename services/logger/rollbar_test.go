package logsvc

import (
	"bytes"
	"fmt"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kipimo/core"
)

func newTestLogger(level string) (*RollbarLogger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	conf := core.NewTestConfig("")
	conf.RollbarLevel = level
	logger := NewRollbarLogger(log.New(buf, "", 0), conf)
	logger.Enable(true) // no token: stays off
	return logger, buf
}

func TestRollbarLogger_print(t *testing.T) {
	logger, buf := newTestLogger("")

	logger.Error("saving goal", fmt.Errorf("boom"), core.Person{ID: "1", Email: "admin@test.cd"})
	assert.Equal(t, "saving goal\nboom\n", buf.String(), "persons are not printed")
}

func TestRollbarLogger_reports(t *testing.T) {
	tests := []struct {
		level string
		want  map[string]bool
	}{
		{
			level: "",
			want:  map[string]bool{"debug": false, "info": false, "warning": true, "error": true, "critical": true},
		},
		{
			level: "lol",
			want:  map[string]bool{"debug": false, "info": false, "warning": true, "error": true, "critical": true},
		},
		{
			level: "DEBUG",
			want:  map[string]bool{"debug": true, "info": true, "warning": true, "error": true, "critical": true},
		},
		{
			level: "error",
			want:  map[string]bool{"debug": false, "info": false, "warning": false, "error": true, "critical": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, _ := newTestLogger(tt.level)
			for lvl, want := range tt.want {
				assert.Equalf(t, want, logger.reports(lvl), "reports(%q)", lvl)
			}
		})
	}
}
