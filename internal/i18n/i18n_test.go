package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := NewBundle("en", []string{"en", "es", "fr"})
	require.NoError(t, err)
	return b
}

func TestNewBundle(t *testing.T) {
	b := newTestBundle(t)

	assert.Equal(t, language.English, b.Default())
	assert.Equal(t, []language.Tag{language.English, language.Spanish, language.French}, b.Supported())
	assert.Contains(t, b.Keys(), "nav.home")
	assert.Contains(t, b.Keys(), "auth.continue_with")
}

func TestNewBundleErrors(t *testing.T) {
	_, err := NewBundle("??", nil)
	assert.Error(t, err)

	_, err = NewBundle("en", []string{"not a tag!"})
	assert.Error(t, err)

	fsys := fstest.MapFS{"l/es.yaml": {Data: []byte("a: b")}}
	_, err = newBundle(fsys, "l", "en", []string{"es"})
	assert.Error(t, err, "default language needs a table")

	fsys = fstest.MapFS{"l/en.yaml": {Data: []byte("a: [unclosed")}}
	_, err = newBundle(fsys, "l", "en", nil)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	b := newTestBundle(t)

	tests := []struct {
		in   string
		want language.Tag
		ok   bool
	}{
		{"es", language.Spanish, true},
		{"es-MX", language.Spanish, true},
		{" fr ", language.French, true},
		{"de", language.English, false},
		{"", language.English, false},
		{"%%%", language.English, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := b.Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	b := newTestBundle(t)

	tests := []struct {
		name    string
		query   string
		cookie  string
		accept  string
		want    language.Tag
		persist bool
	}{
		{"query wins", "fr", "es", "es", language.French, true},
		{"cookie next", "", "es", "fr", language.Spanish, false},
		{"invalid query falls through", "xx", "es", "", language.Spanish, false},
		{"accept language", "", "", "fr-CA,fr;q=0.9,en;q=0.5", language.French, false},
		{"accept language weights", "", "", "de-DE,es;q=0.8,en;q=0.3", language.Spanish, false},
		{"unsupported accept", "", "", "de-DE", language.English, false},
		{"malformed accept", "", "", ";;;", language.English, false},
		{"nothing", "", "", "", language.English, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, persist := b.Resolve(tt.query, tt.cookie, tt.accept)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.persist, persist)
		})
	}
}

func TestTranslatorFallback(t *testing.T) {
	b := newTestBundle(t)

	es := b.Translator(language.Spanish)
	assert.Equal(t, "es", es.Lang())
	assert.Equal(t, "Inicio", es.T("nav.home"))
	// Missing in es, present in en.
	assert.Equal(t, "NARA", es.T("app.name"))
	// Missing everywhere.
	assert.Equal(t, "does.not.exist", es.T("does.not.exist"))

	fr := b.Translator(language.French)
	assert.Equal(t, "Accueil", fr.T("nav.home"))
	assert.Equal(t, "Welcome back", fr.T("auth.login_title"))
}

func TestTranslatorInterpolation(t *testing.T) {
	b := newTestBundle(t)
	en := b.Translator(language.English)

	assert.Equal(t, "Continue with GitHub", en.T("auth.continue_with", "provider", "GitHub"))
	assert.Equal(t, "3 votes", en.T("showcase.votes", "count", 3))
	assert.Equal(t, "by {name}", en.T("showcase.by"))
	// A dangling key without value is ignored.
	assert.Equal(t, "by {name}", en.T("showcase.by", "name"))
}

func TestTranslatorNil(t *testing.T) {
	var tr *Translator
	assert.Equal(t, "", tr.Lang())
	assert.Equal(t, "nav.home", tr.T("nav.home"))
}

func TestTranslatorUnsupportedTagUsesDefault(t *testing.T) {
	b := newTestBundle(t)
	tr := b.Translator(language.German)

	assert.Equal(t, "Home", tr.T("nav.home"))
}
