// Package vocab holds the keyword vocabularies that drive every analyzer.
//
// A Vocabulary is immutable configuration data: it is parsed once, validated,
// and then shared read-only by concurrent analysis runs. The built-in
// vocabulary is embedded from default.yaml; users may replace it with their
// own file of the same shape.
package vocab

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/ppiankov/appscope/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Vocabulary is the complete keyword configuration
type Vocabulary struct {
	Categories []Category `yaml:"categories" json:"categories"`
	Forces     []ForceDef `yaml:"forces" json:"forces"`
	Outcomes   Outcomes   `yaml:"outcomes" json:"outcomes"`
	JTBD       JTBD       `yaml:"jtbd" json:"jtbd"`
}

// Category is one domain bucket shared by complaint and praise analysis.
// Keywords select candidate reviews; the theme lists cluster the extracted
// sentences for each polarity.
type Category struct {
	ID              string     `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	Icon            string     `yaml:"icon,omitempty" json:"icon,omitempty"`
	Keywords        []string   `yaml:"keywords" json:"keywords"`
	ComplaintThemes []ThemeDef `yaml:"complaint_themes" json:"complaint_themes"`
	PraiseThemes    []ThemeDef `yaml:"praise_themes" json:"praise_themes"`
}

// Themes returns the theme list for a polarity
func (c Category) Themes(p model.Polarity) []ThemeDef {
	if p == model.PolarityPositive {
		return c.PraiseThemes
	}
	return c.ComplaintThemes
}

// ThemeDef names a cluster and the sub-keywords that place a sentence in it
type ThemeDef struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// ForceDef configures one adoption force pass
type ForceDef struct {
	Kind     model.ForceKind `yaml:"kind" json:"kind"`
	Label    string          `yaml:"label" json:"label"`
	Icon     string          `yaml:"icon,omitempty" json:"icon,omitempty"`
	Pool     model.Polarity  `yaml:"pool" json:"pool"`
	Insight  string          `yaml:"insight" json:"insight"` // Appended to the count, e.g. "12 mentions of ..."
	Keywords []string        `yaml:"keywords" json:"keywords"`
}

// DimensionDef is a pain or win bucket
type DimensionDef struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Outcomes holds the pain (negative pool) and win (positive pool) dimensions
type Outcomes struct {
	Pains []DimensionDef `yaml:"pains" json:"pains"`
	Wins  []DimensionDef `yaml:"wins" json:"wins"`
}

// JTBD holds the job statement templates and the situation/outcome signals.
// Patterns are RE2 expressions; they are matched case-insensitively.
type JTBD struct {
	Patterns   []string `yaml:"patterns" json:"patterns"`
	Situations []string `yaml:"situations" json:"situations"`
	Outcomes   []string `yaml:"outcomes" json:"outcomes"`
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
	defaultErr   error
)

// Default returns the built-in vocabulary. The returned value is shared and
// must not be modified.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		defaultVocab, defaultErr = Parse(defaultYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("vocab: embedded vocabulary is invalid: %v", defaultErr))
	}
	return defaultVocab
}

// DefaultYAML returns the embedded vocabulary source, comments included
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Parse decodes and validates a vocabulary document
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Load reads a vocabulary file. An empty path returns the built-in vocabulary.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Validate checks structural invariants. All problems are reported together.
func (v *Vocabulary) Validate() error {
	var errs []error

	if len(v.Categories) == 0 {
		errs = append(errs, errors.New("at least one category is required"))
	}
	ids := make(map[string]bool, len(v.Categories))
	for i, c := range v.Categories {
		where := fmt.Sprintf("categories[%d]", i)
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		case ids[c.ID]:
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", where, c.ID))
		}
		ids[c.ID] = true
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		}
		if !hasKeyword(c.Keywords) {
			errs = append(errs, fmt.Errorf("%s (%s): keywords are required", where, c.ID))
		}
		errs = append(errs, validateThemes(where+".complaint_themes", c.ComplaintThemes)...)
		errs = append(errs, validateThemes(where+".praise_themes", c.PraiseThemes)...)
	}

	kinds := make(map[model.ForceKind]bool, len(v.Forces))
	owner := make(map[string]model.ForceKind)
	for i, f := range v.Forces {
		where := fmt.Sprintf("forces[%d]", i)
		if !isForceKind(f.Kind) {
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", where, f.Kind))
		} else if kinds[f.Kind] {
			errs = append(errs, fmt.Errorf("%s: duplicate kind %q", where, f.Kind))
		}
		kinds[f.Kind] = true
		switch f.Pool {
		case model.PolarityNegative, model.PolarityPositive, model.PolarityAll:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown pool %q", where, f.Pool))
		}
		if !hasKeyword(f.Keywords) {
			errs = append(errs, fmt.Errorf("%s (%s): keywords are required", where, f.Kind))
		}
		// Force vocabularies are disjoint
		for _, kw := range f.Keywords {
			key := strings.ToLower(kw)
			if prev, ok := owner[key]; ok && prev != f.Kind {
				errs = append(errs, fmt.Errorf("%s: keyword %q already used by force %q", where, kw, prev))
				continue
			}
			owner[key] = f.Kind
		}
	}

	errs = append(errs, validateDimensions("outcomes.pains", v.Outcomes.Pains)...)
	errs = append(errs, validateDimensions("outcomes.wins", v.Outcomes.Wins)...)

	errs = append(errs, validatePatterns("jtbd.patterns", v.JTBD.Patterns)...)
	errs = append(errs, validatePatterns("jtbd.situations", v.JTBD.Situations)...)
	errs = append(errs, validatePatterns("jtbd.outcomes", v.JTBD.Outcomes)...)

	if len(errs) > 0 {
		return fmt.Errorf("invalid vocabulary: %w", errors.Join(errs...))
	}
	return nil
}

// Category returns the category with the given id
func (v *Vocabulary) Category(id string) (Category, bool) {
	for _, c := range v.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Force returns the definition of the given force
func (v *Vocabulary) Force(kind model.ForceKind) (ForceDef, bool) {
	for _, f := range v.Forces {
		if f.Kind == kind {
			return f, true
		}
	}
	return ForceDef{}, false
}

// Marshal encodes the vocabulary as YAML
func (v *Vocabulary) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode vocabulary: %w", err)
	}
	return data, nil
}

// CompilePattern compiles a vocabulary regex with case-insensitive matching
func CompilePattern(expr string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + expr)
}

func validateThemes(where string, themes []ThemeDef) []error {
	var errs []error
	for i, t := range themes {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: name is required", where, i))
		}
		if !hasKeyword(t.Keywords) {
			errs = append(errs, fmt.Errorf("%s[%d] (%s): keywords are required", where, i, t.Name))
		}
	}
	return errs
}

func validateDimensions(where string, dims []DimensionDef) []error {
	var errs []error
	names := make(map[string]bool, len(dims))
	for i, d := range dims {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: name is required", where, i))
		} else if names[d.Name] {
			errs = append(errs, fmt.Errorf("%s[%d]: duplicate name %q", where, i, d.Name))
		}
		names[d.Name] = true
		if !hasKeyword(d.Keywords) {
			errs = append(errs, fmt.Errorf("%s[%d] (%s): keywords are required", where, i, d.Name))
		}
	}
	return errs
}

func validatePatterns(where string, patterns []string) []error {
	var errs []error
	for i, p := range patterns {
		if _, err := CompilePattern(p); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", where, i, err))
		}
	}
	return errs
}

func hasKeyword(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}

func isForceKind(k model.ForceKind) bool {
	for _, known := range model.ForceKinds {
		if k == known {
			return true
		}
	}
	return false
}
