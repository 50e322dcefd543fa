package planparse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// field is the body cursor of a module block: which labelled field the
// current line belongs to.
type field int

const (
	fieldNone field = iota
	fieldObjectives
	fieldTime
	fieldPrerequisites
)

func (f field) String() string {
	switch f {
	case fieldObjectives:
		return "objectives"
	case fieldTime:
		return "time"
	case fieldPrerequisites:
		return "prerequisites"
	default:
		return "none"
	}
}

const (
	// minInferredObjectiveLen is the length an unlabelled line must exceed to
	// be adopted as objectives.
	minInferredObjectiveLen = 10

	// minObjectiveLetters is the number of letters objectives text needs to
	// be kept. Fewer letters means filler such as "-", "TBD" or "N/A".
	minObjectiveLetters = 5
)

var (
	objectivesHeader    = regexp.MustCompile(`(?i)^objectives?\**\s*:`)
	timeHeader          = regexp.MustCompile(`(?i)^(?:estimated\s+time|time)\**\s*:`)
	prerequisitesHeader = regexp.MustCompile(`(?i)^prerequisites?\**\s*:`)

	// An integer glued to a neighbouring digit, dot or dash belongs to a
	// range or a decimal and is rejected.
	headerHours       = regexp.MustCompile(`(?i)(?:^|[^\d.\-–])(\d+)\s*(?:hour|h\b)`)
	continuationHours = regexp.MustCompile(`(?i)(?:^|[^\d.\-–])(\d+)\s*hour`)
)

// blockFields accumulates the labelled values found in one module block.
type blockFields struct {
	objectives    []string
	hours         int // 0 means no usable value
	prerequisites []string
}

func (f *blockFields) objectivesText() string {
	return strings.TrimSpace(strings.Join(f.objectives, " "))
}

func (f *blockFields) prerequisitesText() string {
	text := strings.TrimSpace(strings.Join(f.prerequisites, " "))
	if isNone(text) {
		return ""
	}
	return text
}

// fieldScanner walks the body lines of a block, one transition per line.
type fieldScanner struct {
	cursor field
	fields blockFields
}

// step consumes one trimmed, non-empty body line.
func (s *fieldScanner) step(line string) {
	if next, value, ok := matchFieldHeader(line); ok {
		s.enter(next, line, value)
		return
	}

	switch s.cursor {
	case fieldObjectives:
		s.fields.objectives = append(s.fields.objectives, line)
	case fieldPrerequisites:
		if !isNone(line) {
			s.fields.prerequisites = append(s.fields.prerequisites, line)
		}
	case fieldTime:
		if h, ok := extractHours(continuationHours, line); ok {
			s.fields.hours = h
		}
	case fieldNone:
		if len(s.fields.objectives) == 0 && utf8.RuneCountInString(line) > minInferredObjectiveLen {
			s.fields.objectives = []string{line}
		}
	}
}

// enter moves the cursor onto a field header and records its same-line value.
func (s *fieldScanner) enter(next field, line, value string) {
	s.cursor = next
	switch next {
	case fieldObjectives:
		s.fields.objectives = s.fields.objectives[:0]
		if value != "" {
			s.fields.objectives = append(s.fields.objectives, value)
		}
	case fieldTime:
		if h, ok := extractHours(headerHours, line); ok {
			s.fields.hours = h
		}
	case fieldPrerequisites:
		if value != "" && !isNone(value) {
			s.fields.prerequisites = append(s.fields.prerequisites, value)
		}
	}
}

// matchFieldHeader reports whether line opens a labelled field, returning the
// field and the text after the first colon.
func matchFieldHeader(line string) (field, string, bool) {
	key := strings.TrimLeft(line, "*-•#> \t")
	var f field
	switch {
	case objectivesHeader.MatchString(key):
		f = fieldObjectives
	case timeHeader.MatchString(key):
		f = fieldTime
	case prerequisitesHeader.MatchString(key):
		f = fieldPrerequisites
	default:
		return fieldNone, "", false
	}
	_, after, _ := strings.Cut(key, ":")
	return f, cleanMarkup(after), true
}

// extractHours returns the first positive whole-hour value matched by re.
func extractHours(re *regexp.Regexp, line string) (int, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h <= 0 {
		return 0, false
	}
	return h, true
}

func cleanMarkup(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*"))
}

func isNone(s string) bool {
	return strings.EqualFold(strings.TrimRight(strings.TrimSpace(s), "."), "none")
}

// usableObjectives reports whether s says something about the module rather
// than standing in for a missing value.
func usableObjectives(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if letters >= minObjectiveLetters {
				return true
			}
		}
	}
	return false
}
