package contentplan

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var requiredColumns = []string{"id", "narrative_script"}

// parseTable decodes a spreadsheet export with one section per row. A row
// whose id is "cta" supplies the call-to-action script instead of a section.
// Keywords are separated by ';' or '|'.
func parseTable(data []byte) (Plan, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	comma, err := detectDelimiter(data)
	if err != nil {
		return Plan{}, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	var (
		plan    Plan
		columns map[string]int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Plan{}, fmt.Errorf("parse plan table: %w", err)
		}

		if columns == nil {
			if columns, err = buildColumnMap(record); err != nil {
				return Plan{}, err
			}
			continue
		}
		if isEmptyRecord(record) {
			continue
		}

		get := func(name string) string {
			pos, ok := columns[name]
			if !ok || pos >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[pos])
		}

		if get("id") == CTASectionID {
			plan.CTAScript = get("narrative_script")
			continue
		}
		plan.Sections = append(plan.Sections, Section{
			ID:                get("id"),
			Title:             get("title"),
			NarrativeScript:   get("narrative_script"),
			VisualSearchQuery: get("visual_search_query"),
			HighlightKeywords: splitKeywords(get("highlight_keywords")),
		})
	}

	if columns == nil {
		return Plan{}, errors.New("plan table has no header row")
	}
	return plan, nil
}

func detectDelimiter(data []byte) (rune, error) {
	header := string(data)
	if i := strings.IndexAny(header, "\r\n"); i >= 0 {
		header = header[:i]
	}
	switch {
	case strings.Contains(header, "\t"):
		return '\t', nil
	case strings.Contains(header, ","):
		return ',', nil
	}
	return 0, errors.New("unable to detect delimiter (expected comma or tab)")
}

func buildColumnMap(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if _, dup := columns[name]; dup {
			return nil, fmt.Errorf("duplicate column: %s", name)
		}
		columns[name] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}
	return columns, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' })
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
