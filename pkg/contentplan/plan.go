package contentplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// CTASectionID is the id given to the synthesized call-to-action section.
	CTASectionID = "cta"
	// CTAVisualQuery is the fixed visual search intent for the CTA section.
	CTAVisualQuery = "abstract background"
)

// Plan is the structured content plan produced by the planning step.
type Plan struct {
	Title               string    `json:"title" yaml:"title"`
	BackgroundMusicHint string    `json:"background_music_hint,omitempty" yaml:"background_music_hint,omitempty"`
	Sections            []Section `json:"sections" yaml:"sections"`
	CTAScript           string    `json:"cta_script,omitempty" yaml:"cta_script,omitempty"`
}

// Section is one narrative beat of the plan.
type Section struct {
	ID                string   `json:"id" yaml:"id"`
	Title             string   `json:"title" yaml:"title"`
	NarrativeScript   string   `json:"narrative_script" yaml:"narrative_script"`
	VisualSearchQuery string   `json:"visual_search_query" yaml:"visual_search_query"`
	HighlightKeywords []string `json:"highlight_keywords,omitempty" yaml:"highlight_keywords,omitempty"`
	CTA               bool     `json:"-" yaml:"-"`
}

// Load reads a plan document. JSON is the upstream format; .yaml and .yml
// files are decoded with yaml.v3 and .csv or .tsv exports one row per section.
func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Plan{}, errors.New("plan file is empty")
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a plan from raw bytes. ext selects the decoder.
func Parse(data []byte, ext string) (Plan, error) {
	var plan Plan
	switch strings.ToLower(ext) {
	case ".csv", ".tsv":
		return parseTable(data)
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return Plan{}, fmt.Errorf("parse YAML plan: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &plan); err != nil {
			return Plan{}, fmt.Errorf("parse JSON plan: %w", err)
		}
	}
	return plan, nil
}

// OrderedSections returns the plan's sections in timeline order with the CTA section
// appended when a CTA script is present. Keywords are de-duplicated.
func (p Plan) OrderedSections() []Section {
	out := make([]Section, 0, len(p.Sections)+1)
	for _, s := range p.Sections {
		s.HighlightKeywords = uniqueKeywords(s.HighlightKeywords)
		out = append(out, s)
	}
	if cta := strings.TrimSpace(p.CTAScript); cta != "" {
		out = append(out, Section{
			ID:                CTASectionID,
			Title:             "Call to action",
			NarrativeScript:   cta,
			VisualSearchQuery: CTAVisualQuery,
			CTA:               true,
		})
	}
	return out
}

// Validate checks the invariants required before any asset processing:
// sections are present, and every id (including the synthesized CTA) is
// non-empty and unique.
func (p Plan) Validate() error {
	var errs ValidationErrors

	if len(p.Sections) == 0 {
		errs = append(errs, ValidationError{Field: "sections", Message: "must contain at least one section"})
		return errs
	}

	seen := make(map[string]int, len(p.Sections))
	for i, s := range p.Sections {
		pos := i + 1
		id := strings.TrimSpace(s.ID)
		if id == "" {
			errs = append(errs, ValidationError{Section: pos, Field: "id", Message: "is required"})
			continue
		}
		if id != s.ID {
			errs = append(errs, ValidationError{Section: pos, Field: "id", Message: fmt.Sprintf("%q has surrounding whitespace", s.ID)})
		}
		if first, ok := seen[id]; ok {
			errs = append(errs, ValidationError{Section: pos, Field: "id", Message: fmt.Sprintf("%q duplicates section %d", id, first)})
			continue
		}
		seen[id] = pos
	}

	if strings.TrimSpace(p.CTAScript) != "" {
		if first, ok := seen[CTASectionID]; ok {
			errs = append(errs, ValidationError{Section: first, Field: "id", Message: fmt.Sprintf("%q is reserved for the call-to-action section", CTASectionID)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func uniqueKeywords(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
