// Package language maps a locale and a key to user-facing text.
package language

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"GoCommando/core"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed locales/*.toml
var builtin embed.FS

// builtinLocale is the one embedded table that has every framework string.
var builtinLocale = language.MustParse("en-US")

// Registry holds one table of format templates per locale. Templates use
// Printf verbs and are rendered with the number formatting of their locale.
type Registry struct {
	mu      sync.RWMutex
	def     language.Tag
	tags    []language.Tag // loaded locales, in load order
	tables  map[language.Tag]map[string]string
	matcher language.Matcher
	// fallback is the loaded locale closest to def.
	fallback language.Tag
	// base is consulted last, when set.
	base *language.Tag
}

// New creates an empty registry falling back to defaultLocale.
func New(defaultLocale string) (*Registry, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("default locale %q: %w", defaultLocale, err)
	}
	return &Registry{
		def:      def,
		tables:   map[language.Tag]map[string]string{},
		fallback: def,
	}, nil
}

// Default creates a registry preloaded with the framework's own strings.
func Default(defaultLocale string) (*Registry, error) {
	r, err := New(defaultLocale)
	if err != nil {
		return nil, err
	}
	if err := r.LoadFS(builtin, "locales"); err != nil {
		return nil, err
	}
	r.base = &builtinLocale
	return r, nil
}

// Add merges entries into the table for locale. Existing keys are replaced.
func (r *Registry) Add(locale string, entries map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("locale %q: %w", locale, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[tag]
	if !ok {
		table = make(map[string]string, len(entries))
		r.tables[tag] = table
		r.tags = append(r.tags, tag)
		r.matcher = language.NewMatcher(r.tags)
		r.fallback = r.closest(r.def, r.def)
	}
	for k, v := range entries {
		table[k] = v
	}
	core.LogDebugF("Loaded %d strings for %s", len(entries), tag)
	return nil
}

// LoadTOML reads a table for locale. Nested tables become dotted keys, so
//
//	[help]
//	header = "Commands:"
//
// defines help.header.
func (r *Registry) LoadTOML(locale string, rd io.Reader) error {
	var doc map[string]any
	if _, err := toml.NewDecoder(rd).Decode(&doc); err != nil {
		return fmt.Errorf("couldn't decode %s strings: %w", locale, err)
	}
	entries := map[string]string{}
	if err := flatten(entries, "", doc); err != nil {
		return fmt.Errorf("%s strings: %w", locale, err)
	}
	return r.Add(locale, entries)
}

func flatten(dst map[string]string, prefix string, doc map[string]any) error {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case string:
			dst[key] = v
		case map[string]any:
			if err := flatten(dst, key, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: expected a string, got %T", key, v)
		}
	}
	return nil
}

// LoadFS loads every <locale>.toml file in dir.
func (r *Registry) LoadFS(fsys fs.FS, dir string) error {
	files, err := fs.Glob(fsys, path.Join(dir, "*.toml"))
	if err != nil {
		return err
	}
	for _, name := range files {
		f, err := fsys.Open(name)
		if err != nil {
			return err
		}
		err = r.LoadTOML(strings.TrimSuffix(path.Base(name), ".toml"), f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// match returns the loaded locale closest to locale, or the fallback.
func (r *Registry) match(locale string) language.Tag {
	if locale == "" {
		return r.fallback
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return r.fallback
	}
	return r.closest(tag, r.fallback)
}

func (r *Registry) closest(tag, otherwise language.Tag) language.Tag {
	if r.matcher == nil {
		return otherwise
	}
	_, i, conf := r.matcher.Match(tag)
	if conf == language.No {
		return otherwise
	}
	return r.tags[i]
}

// Translate renders key for the best match of locale. A key missing from
// that table is taken from the default locale, then from the built-in
// strings of a Default registry. Only a key missing from all of them is an
// error.
func (r *Registry) Translate(locale, key string, args ...any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := []language.Tag{r.match(locale), r.fallback}
	if r.base != nil {
		candidates = append(candidates, *r.base)
	}
	for _, tag := range candidates {
		if tmpl, ok := r.tables[tag][key]; ok {
			return message.NewPrinter(tag).Sprintf(tmpl, args...), nil
		}
	}
	return "", &core.MissingLocaleKeyError{Locale: locale, Key: key}
}

// T is Translate for display: a missing key renders as the key itself.
func (r *Registry) T(locale, key string, args ...any) string {
	s, err := r.Translate(locale, key, args...)
	if err != nil {
		core.LogDebug(err)
		return key
	}
	return s
}

// Locales returns the loaded locales, sorted.
func (r *Registry) Locales() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tables))
	for tag := range r.tables {
		out = append(out, tag.String())
	}
	sort.Strings(out)
	return out
}
