package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown report format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatCSV, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	}
	return "text/csv"
}

func (f Format) Ext() string { return "." + string(f) }

// Write encodes `r` to `w`.
// CSV holds the goal table, an empty line, then the metric table.
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", f)
}

var (
	goalHeader   = []string{"Goal Number", "Level", "Title", "Status Detail", "Progress", "Status", "Override", "Override Reason", "Display", "Bucket", "Metrics"}
	metricHeader = []string{"Goal Number", "Metric", "Type", "Current Value", "Target Value", "Unit", "Status", "Bucket"}
)

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	records := make([][]string, 0, len(r.Goals)+len(r.Metrics)+3)
	records = append(records, goalHeader)
	for _, g := range r.Goals {
		records = append(records, []string{
			g.GoalNumber,
			g.Level,
			g.Title,
			g.StatusDetail,
			strconv.Itoa(g.Progress),
			string(g.Status),
			formatFloat(g.Override),
			g.OverrideReason,
			g.Display,
			string(g.Bucket),
			strconv.Itoa(g.MetricCount),
		})
	}
	records = append(records, []string{}, metricHeader)
	for _, m := range r.Metrics {
		records = append(records, []string{
			m.GoalNumber,
			m.Name,
			string(m.MetricType),
			formatFloat(m.CurrentValue),
			formatFloat(m.TargetValue),
			m.Unit,
			string(m.Status),
			string(m.Bucket),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return nil
}
