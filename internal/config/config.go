// Package config loads examslot settings from the embedded defaults and an
// optional user YAML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/examslot/internal/formatter"
	"github.com/oakwood-commons/examslot/pkg/settings"
)

// SourceEnv supplies source.url when the config file leaves it empty.
const SourceEnv = "EXAMSLOT_SOURCE"

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// ErrUnknownTheme is returned when ui.theme names a theme that is not defined.
var ErrUnknownTheme = errors.New("unknown theme")

// File is the on-disk configuration schema.
type File struct {
	Source SourceConfig           `yaml:"source"`
	UI     UIConfig               `yaml:"ui"`
	Themes map[string]ThemeConfig `yaml:"themes"`
}

// SourceConfig describes where the schedule is read from.
type SourceConfig struct {
	URL       string        `yaml:"url"`
	Delimiter string        `yaml:"delimiter"`
	Timeout   time.Duration `yaml:"timeout"`
}

// UIConfig holds rendering defaults.
type UIConfig struct {
	Theme     string `yaml:"theme"`
	CellWidth int    `yaml:"cell_width"`
	NoColor   bool   `yaml:"no_color"`
}

// ColorValue is a color token (ANSI number, name or hex). Numbers are
// written back as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig maps slot classes to colors.
type ThemeConfig struct {
	Neutral ColorValue `yaml:"neutral"`
	Past    ColorValue `yaml:"past"`
	Next    ColorValue `yaml:"next"`
	NextBG  ColorValue `yaml:"next_bg"`
	Future  ColorValue `yaml:"future"`
	Current ColorValue `yaml:"current"`
	Marker  ColorValue `yaml:"marker"`
	Subject ColorValue `yaml:"subject"`
}

// Palette converts the theme to formatter colors. Empty entries stay nil and
// fall back to the formatter defaults.
func (t ThemeConfig) Palette() formatter.Palette {
	toColor := func(v ColorValue) color.Color {
		if v == "" {
			return nil
		}
		return lipgloss.Color(string(v))
	}
	return formatter.Palette{
		Neutral: toColor(t.Neutral),
		Past:    toColor(t.Past),
		Next:    toColor(t.Next),
		NextBG:  toColor(t.NextBG),
		Future:  toColor(t.Future),
		Current: toColor(t.Current),
		Marker:  toColor(t.Marker),
		Subject: toColor(t.Subject),
	}
}

func (t ThemeConfig) merge(override ThemeConfig) ThemeConfig {
	apply := func(src ColorValue, dst *ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	out := t
	apply(override.Neutral, &out.Neutral)
	apply(override.Past, &out.Past)
	apply(override.Next, &out.Next)
	apply(override.NextBG, &out.NextBG)
	apply(override.Future, &out.Future)
	apply(override.Current, &out.Current)
	apply(override.Marker, &out.Marker)
	apply(override.Subject, &out.Subject)
	return out
}

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded defaults.
func Default() (File, error) {
	var f File
	if len(embeddedDefaultConfig) == 0 {
		return f, fmt.Errorf("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &f); err != nil {
		return f, fmt.Errorf("decode default config: %w", err)
	}
	if f.UI.Theme == "" || len(f.Themes) == 0 {
		return f, fmt.Errorf("default config is missing theme defaults")
	}
	return f, nil
}

// Load returns the defaults with the file at path merged on top. An empty
// path yields the defaults alone.
func Load(path string) (File, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	var user File
	if err := yaml.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg.merge(user), nil
}

// merge overlays non-zero fields of override onto f. Themes merge per name
// and per color.
func (f File) merge(override File) File {
	out := f
	if override.Source.URL != "" {
		out.Source.URL = override.Source.URL
	}
	if override.Source.Delimiter != "" {
		out.Source.Delimiter = override.Source.Delimiter
	}
	if override.Source.Timeout > 0 {
		out.Source.Timeout = override.Source.Timeout
	}
	if override.UI.Theme != "" {
		out.UI.Theme = override.UI.Theme
	}
	if override.UI.CellWidth > 0 {
		out.UI.CellWidth = override.UI.CellWidth
	}
	if override.UI.NoColor {
		out.UI.NoColor = true
	}
	if len(override.Themes) > 0 {
		themes := make(map[string]ThemeConfig, len(f.Themes)+len(override.Themes))
		for name, th := range f.Themes {
			themes[name] = th
		}
		for name, th := range override.Themes {
			themes[name] = themes[name].merge(th)
		}
		out.Themes = themes
	}
	return out
}

// ApplyEnv fills unset values from the environment using getenv.
func (f *File) ApplyEnv(getenv func(string) string) {
	if f.Source.URL != "" {
		return
	}
	if v := strings.TrimSpace(getenv(SourceEnv)); v != "" {
		f.Source.URL = v
	}
}

// Palette resolves the named theme, or ui.theme when name is empty.
func (f File) Palette(name string) (formatter.Palette, error) {
	if name == "" {
		name = f.UI.Theme
	}
	th, ok := f.Themes[name]
	if !ok {
		return formatter.Palette{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownTheme, name, strings.Join(f.ThemeNames(), ", "))
	}
	return th.Palette(), nil
}

// ThemeNames lists the configured themes in sorted order.
func (f File) ThemeNames() []string {
	out := make([]string, 0, len(f.Themes))
	for k := range f.Themes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DelimiterRune returns source.delimiter as a rune. "tab" and "\t" select a tab.
func (s SourceConfig) DelimiterRune() (rune, error) {
	return ParseDelimiter(s.Delimiter)
}

// ParseDelimiter turns a user supplied delimiter into a rune. The empty
// string selects the default comma.
func ParseDelimiter(raw string) (rune, error) {
	switch raw {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(raw) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", raw)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r == '\n' || r == '\r' {
		return 0, fmt.Errorf("delimiter cannot be a line break")
	}
	return r, nil
}

// Apply copies config values into run settings. Flags are applied after.
func (f File) Apply(run *settings.Run) error {
	delim, err := f.Source.DelimiterRune()
	if err != nil {
		return fmt.Errorf("source.delimiter: %w", err)
	}
	run.Source.Location = f.Source.URL
	run.Source.Delimiter = delim
	if f.Source.Timeout > 0 {
		run.Source.Timeout = f.Source.Timeout
	}
	if f.UI.Theme != "" {
		run.Theme = f.UI.Theme
	}
	if f.UI.CellWidth > 0 {
		run.CellWidth = f.UI.CellWidth
	}
	run.NoColor = run.NoColor || f.UI.NoColor
	return nil
}

// Marshal renders f as YAML.
func Marshal(f File) ([]byte, error) {
	return yaml.Marshal(f)
}

// ResolvePath returns explicit when set, otherwise the first existing
// config file under XDG_CONFIG_HOME or ~/.config. It returns "" when none
// exists.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
