package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "nara_lang"
)

//go:embed locales/*.yaml
var locales embed.FS

// Bundle holds the translation tables of every supported language.
type Bundle struct {
	def       language.Tag
	supported []language.Tag
	matcher   language.Matcher
	tables    map[string]map[string]string
}

// NewBundle loads the embedded tables for langs. The default language must be
// one of langs and must have a table.
func NewBundle(defaultLang string, langs []string) (*Bundle, error) {
	return newBundle(locales, "locales", defaultLang, langs)
}

func newBundle(fsys fs.FS, dir, defaultLang string, langs []string) (*Bundle, error) {
	def, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parse default language %q: %w", defaultLang, err)
	}

	// The default language is always first so the matcher falls back to it.
	supported := []language.Tag{def}
	for _, l := range langs {
		tag, err := language.Parse(strings.TrimSpace(l))
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", l, err)
		}
		if tag != def {
			supported = append(supported, tag)
		}
	}

	b := &Bundle{
		def:       def,
		supported: supported,
		matcher:   language.NewMatcher(supported),
		tables:    make(map[string]map[string]string, len(supported)),
	}

	for _, tag := range supported {
		raw, err := fs.ReadFile(fsys, path.Join(dir, tag.String()+".yaml"))
		if err != nil {
			if tag == def {
				return nil, fmt.Errorf("missing translations for default language %s: %w", tag, err)
			}
			continue
		}
		table, err := parseTable(raw)
		if err != nil {
			return nil, fmt.Errorf("parse translations %s: %w", tag, err)
		}
		b.tables[tag.String()] = table
	}

	return b, nil
}

func parseTable(raw []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Default returns the default language.
func (b *Bundle) Default() language.Tag {
	return b.def
}

// Supported returns the supported languages, default first.
func (b *Bundle) Supported() []language.Tag {
	out := make([]language.Tag, len(b.supported))
	copy(out, b.supported)
	return out
}

// Parse maps value to a supported language by its base language ("es-MX" → es).
func (b *Bundle) Parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return b.def, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return b.def, false
	}
	base, _ := tag.Base()
	for _, s := range b.supported {
		if s == tag {
			return s, true
		}
	}
	for _, s := range b.supported {
		if sb, _ := s.Base(); sb == base {
			return s, true
		}
	}
	return b.def, false
}

// Resolve picks the request language from the query value, then the cookie,
// then the Accept-Language header. The bool reports whether the query value
// was used and should be persisted.
func (b *Bundle) Resolve(query, cookie, acceptLanguage string) (language.Tag, bool) {
	if tag, ok := b.Parse(query); ok {
		return tag, true
	}
	if tag, ok := b.Parse(cookie); ok {
		return tag, false
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := b.matcher.Match(tags...)
			if conf != language.No {
				return b.supported[idx], false
			}
		}
	}
	return b.def, false
}

// Translator returns a translator for tag.
func (b *Bundle) Translator(tag language.Tag) *Translator {
	return &Translator{
		lang:     tag.String(),
		table:    b.tables[tag.String()],
		fallback: b.tables[b.def.String()],
	}
}

// Keys returns every key of the default table, sorted.
func (b *Bundle) Keys() []string {
	table := b.tables[b.def.String()]
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Translator looks up messages for one language.
type Translator struct {
	lang     string
	table    map[string]string
	fallback map[string]string
}

// Lang returns the BCP 47 tag of the translator.
func (t *Translator) Lang() string {
	if t == nil {
		return ""
	}
	return t.lang
}

// T returns the message for key in the translator's language, falling back to
// the default language and finally to the key itself. args are key/value pairs
// substituted into {key} placeholders.
func (t *Translator) T(key string, args ...any) string {
	msg := key
	if t != nil {
		if m, ok := t.table[key]; ok {
			msg = m
		} else if m, ok := t.fallback[key]; ok {
			msg = m
		}
	}
	if len(args) < 2 {
		return msg
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(args[i])+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
