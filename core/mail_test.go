package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmailTemplates(t *testing.T) {
	require.NoError(t, ParseEmailTemplates())
	assert.Equal(t, []string{"district_report", "progress_override"}, EmailTemplateNames())

	// one data set covering the fields of every template
	data := map[string]interface{}{
		"Format":        "csv",
		"DistrictName":  "Lincoln",
		"StrategyCount": 2,
		"GoalCount":     3,
		"SubGoalCount":  1,
		"MetricCount":   4,
		"GoalNumber":    "1.2",
		"Title":         "Reading",
		"Calculated":    "80%",
		"Override":      "85%",
		"DisplayMode":   "percentage",
		"Reason":        "Board review of Q3",
	}
	conf := NewTestConfig("")

	for _, name := range EmailTemplateNames() {
		t.Run(name, func(t *testing.T) {
			msg := EmailMessage{TemplateName: name, TemplateData: data}
			require.NoError(t, msg.Render(conf))
			assert.True(t, msg.HasContent())
			assert.Contains(t, msg.TextContent, "Lincoln")
			assert.True(t, strings.HasSuffix(strings.TrimSpace(msg.TextContent), conf.AppName), "text layout applied")
			assert.Contains(t, msg.HTMLContent, "<strong>")
			assert.Contains(t, msg.HTMLContent, conf.AppName, "html layout applied")
		})
	}
}

func TestEmailMessage_Render(t *testing.T) {
	require.NoError(t, ParseEmailTemplates())
	conf := NewTestConfig("")

	t.Run("body string", func(t *testing.T) {
		msg := EmailMessage{BodyStr: "plain body"}
		require.NoError(t, msg.Render(conf))
		assert.Equal(t, "plain body", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "lol"}
		err := msg.Render(conf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"lol"`)
		assert.False(t, msg.HasContent())
	})

	t.Run("missing data", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "district_report", TemplateData: map[string]interface{}{}}
		assert.Error(t, msg.Render(conf))
	})
}
