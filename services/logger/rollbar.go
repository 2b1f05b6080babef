// Package logsvc logs to a std *log.Logger and reports to Rollbar.
package logsvc

import (
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/kipimo/core"
)

var levelRanks = map[string]int{
	rollbar.DEBUG: 0,
	rollbar.INFO:  1,
	rollbar.WARN:  2,
	rollbar.ERR:   3,
	rollbar.CRIT:  4,
}

// RollbarLogger prints every entry locally and reports those at or above the configured level
// (warnings by default) to Rollbar. A core.Person among the args tags the report with the
// signed-in admin and is never printed. Without a token nothing is reported.
type RollbarLogger struct {
	std      *log.Logger
	token    string
	minLevel string
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")

	lvl := strings.ToLower(conf.RollbarLevel)
	if _, ok := levelRanks[lvl]; !ok {
		lvl = rollbar.WARN
	}
	return &RollbarLogger{std: std, token: conf.RollbarToken, minLevel: lvl}
}

// Enable switches Rollbar reporting; it stays off without a token.
func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled && l.token != "")
}

func (l RollbarLogger) reports(level string) bool {
	return levelRanks[level] >= levelRanks[l.minLevel]
}

// expected fmt: msg | error, map[string]interface{}, core.Person
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var personSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if p, ok := arg.(core.Person); ok {
			if !personSet { // only the first Person counts
				rollbar.SetPerson(p.ID, p.Username, p.Email)
				personSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l RollbarLogger) log(level, msg string, args []interface{}) {
	if l.reports(level) {
		rollbar.Log(level, l.prepare(msg, args)...)
	}

	l.std.Println(msg)
	for _, arg := range args {
		if _, ok := arg.(core.Person); ok {
			continue
		}
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

// Fatal reports, waits for pending Rollbar items to be sent, then exits.
func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
