package view

import (
	"bytes"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nara/internal/i18n"
	"nara/internal/model"
	"nara/internal/service"
)

func baseData(t *testing.T, lang string) map[string]any {
	t.Helper()
	b, err := i18n.NewBundle("en", []string{"en", "es", "fr"})
	require.NoError(t, err)
	tag, _ := b.Parse(lang)
	return map[string]any{
		"Tr":        b.Translator(tag),
		"Lang":      tag.String(),
		"Languages": []string{"en", "es", "fr"},
		"Theme":     "dark",
		"Themes":    []string{"light", "dark", "system"},
		"Path":      "/",
		"Title":     "NARA",
		"Flags":     service.FlagSet{service.FlagShowcaseVoting: true, service.FlagDashboardCharts: true},
		"Errors":    map[string]string{},
	}
}

func TestEngineRendersEmbeddedPages(t *testing.T) {
	e := New()
	require.NoError(t, e.Load())

	pages := []string{"home", "about", "login", "register", "showcase_list", "showcase_form", "blog_list", "error"}
	for _, name := range pages {
		t.Run(name, func(t *testing.T) {
			data := baseData(t, "en")
			data["Result"] = &service.ShowcaseListResult{}
			data["Form"] = service.ShowcaseInput{}
			data["Query"] = service.ShowcaseQuery{}

			var buf bytes.Buffer
			require.NoError(t, e.Render(&buf, name, data, Layout))
			assert.Contains(t, buf.String(), `<html lang="en" data-theme="dark">`)
			assert.Contains(t, buf.String(), "<title>NARA</title>")
			assert.Contains(t, buf.String(), "</html>")
		})
	}
}

func TestEngineTranslatesAndEscapes(t *testing.T) {
	e := New()
	require.NoError(t, e.Load())

	data := baseData(t, "en")
	data["User"] = &model.User{ID: "u1", Name: "Ada"}
	data["Showcase"] = &model.Showcase{
		ID:        "s1",
		Title:     "<script>alert(1)</script>",
		URL:       "https://example.com",
		Published: true,
		VoteCount: 3,
	}

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf, "showcase_detail", data, Layout))

	out := buf.String()
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "3 votes")
	assert.Contains(t, out, `action="/showcase/s1/vote"`)
}

func TestEngineHonoursFlags(t *testing.T) {
	e := New()
	require.NoError(t, e.Load())

	t.Run("vote form hidden when voting is off", func(t *testing.T) {
		data := baseData(t, "en")
		data["Flags"] = service.FlagSet{}
		data["User"] = &model.User{ID: "u1", Name: "Ada"}
		data["Showcase"] = &model.Showcase{ID: "s1", Title: "Demo", Published: true}

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "showcase_detail", data, Layout))
		assert.NotContains(t, buf.String(), `action="/showcase/s1/vote"`)
	})

	t.Run("daily list hidden when charts are off", func(t *testing.T) {
		data := baseData(t, "en")
		data["Flags"] = service.FlagSet{service.FlagDashboardCharts: false}
		data["User"] = &model.User{ID: "u1", Name: "Ada"}
		data["Presets"] = []string{"7d"}
		data["Overview"] = &service.DashboardOverview{
			Daily: []model.DailyCount{{Day: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Count: 3}},
		}
		data["Mine"] = &service.ShowcaseListResult{}

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "dashboard", data, Layout))
		assert.NotContains(t, buf.String(), "2026-03-01")
	})
}

func TestEngineDashboard(t *testing.T) {
	e := New()
	require.NoError(t, e.Load())

	data := baseData(t, "en")
	data["User"] = &model.User{ID: "u1", Name: "Ada"}
	data["Presets"] = []string{"7d", "30d"}
	data["Overview"] = &service.DashboardOverview{
		Current:  model.Stats{ShowcasesCreated: 3},
		Previous: model.Stats{ShowcasesCreated: 2},
		Daily:    []model.DailyCount{{Day: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Count: 3}},
	}
	data["Mine"] = &service.ShowcaseListResult{}

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf, "dashboard", data, Layout))
	assert.Contains(t, buf.String(), "Hello, Ada")
	assert.Contains(t, buf.String(), "+50%")
	assert.Contains(t, buf.String(), "2026-03-01")
}

func TestEngineUnknownPage(t *testing.T) {
	e := New()
	require.NoError(t, e.Load())

	err := e.Render(&bytes.Buffer{}, "nope", nil, Layout)
	assert.Error(t, err)
}

func TestEngineCustomFS(t *testing.T) {
	t.Run("missing layout", func(t *testing.T) {
		e := newEngine(fstest.MapFS{
			"templates/home.html": {Data: []byte(`hi`)},
		})
		require.NoError(t, e.Load())
		assert.Error(t, e.Render(&bytes.Buffer{}, "home", nil, Layout))
	})

	t.Run("broken page", func(t *testing.T) {
		e := newEngine(fstest.MapFS{
			"templates/layout.html": {Data: []byte(`[{{ embed }}]`)},
			"templates/home.html":   {Data: []byte(`{{ .Missing{{ end }}`)},
		})
		assert.Error(t, e.Load())
	})

	t.Run("page inside layout", func(t *testing.T) {
		e := newEngine(fstest.MapFS{
			"templates/layout.html": {Data: []byte(`[{{ embed }}]`)},
			"templates/home.html":   {Data: []byte(`{{ .Name }} {{ delta 3 2 }}`)},
		})
		require.NoError(t, e.Load())

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "home", map[string]any{"Name": "x"}, Layout))
		assert.Equal(t, "[x +50%]", buf.String())
	})
}

func TestDelta(t *testing.T) {
	tests := []struct {
		cur, prev int
		want      string
	}{
		{0, 0, "0%"},
		{5, 0, "new"},
		{3, 2, "+50%"},
		{1, 4, "-75%"},
		{4, 4, "+0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Delta(tt.cur, tt.prev))
	}
}
