// Package planparse turns free-form learning-plan text produced by a language
// model into an ordered, normalized list of modules.
//
// Parsing is pure and deterministic: the same text and Context always yield
// the same modules, and malformed input is repaired rather than rejected.
package planparse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// minTitleLen is the length a bare module title must exceed to be kept.
const minTitleLen = 3

var (
	blockStart  = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?\*{0,2}\s*module\s+\d+`)
	blockHeader = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?\*{0,2}\s*module\s+(\d+)\s*[:\-–]?\s*(.*)$`)
	titlePrefix = regexp.MustCompile(`(?i)^module\s+\d+\s*[:\-–]?\s*`)
	lineBreaks  = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Options selects parser policies that call sites must state explicitly.
type Options struct {
	// BackfillMissing pads an under-generated plan with placeholder modules
	// until it holds exactly Context.ExpectedModules entries.
	BackfillMissing bool
}

// Module is one normalized unit of a learning plan.
type Module struct {
	Number         int // module number from the source header; 0 for placeholders
	Title          string
	Objectives     string
	EstimatedHours float64
	Prerequisites  string // empty means no prerequisite
	OrderIndex     int    // 1-based position, the persisted sequence key
	Placeholder    bool
}

// rawBlock is the text span of one module header and its body lines.
type rawBlock struct {
	header string
	body   []string
}

// parsedBlock is a block whose header was accepted.
type parsedBlock struct {
	number int
	title  string // bare title, without any "Module N:" prefix
	fields blockFields
}

// Parse decomposes text into modules according to ctx and opts.
//
// Empty or whitespace-only text yields an empty slice. Any other text yields
// at least one module: when no block can be parsed, ctx.ExpectedModules
// placeholders are returned instead.
func Parse(text string, ctx Context, opts Options) []Module {
	if strings.TrimSpace(text) == "" || ctx.ExpectedModules < 1 {
		return []Module{}
	}

	accepted := acceptBlocks(segment(text))

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].number < accepted[j].number
	})
	if limit := ctx.workingSetCap(); len(accepted) > limit {
		accepted = accepted[:limit]
	}
	if len(accepted) > ctx.ExpectedModules {
		accepted = accepted[:ctx.ExpectedModules]
	}

	if len(accepted) == 0 {
		return placeholders(ctx, 1, ctx.ExpectedModules)
	}

	modules := make([]Module, 0, ctx.ExpectedModules)
	for i, b := range accepted {
		modules = append(modules, b.normalize(ctx, i+1))
	}
	if opts.BackfillMissing && len(modules) < ctx.ExpectedModules {
		modules = append(modules, placeholders(ctx, len(modules)+1, ctx.ExpectedModules)...)
	}
	return modules
}

// segment splits text into blocks, each starting at a module header line.
// Text before the first header belongs to no block.
func segment(text string) []rawBlock {
	var blocks []rawBlock
	for _, line := range strings.Split(lineBreaks.Replace(text), "\n") {
		trimmed := strings.TrimSpace(line)
		if blockStart.MatchString(trimmed) {
			blocks = append(blocks, rawBlock{header: trimmed})
			continue
		}
		if len(blocks) == 0 || trimmed == "" {
			continue
		}
		last := &blocks[len(blocks)-1]
		last.body = append(last.body, trimmed)
	}
	return blocks
}

// acceptBlocks parses headers and bodies, keeping the first block seen for
// each module number.
func acceptBlocks(blocks []rawBlock) []parsedBlock {
	seen := make(map[int]bool, len(blocks))
	accepted := make([]parsedBlock, 0, len(blocks))
	for _, raw := range blocks {
		number, title, ok := parseHeader(raw.header)
		if !ok || seen[number] {
			continue
		}
		seen[number] = true

		var scanner fieldScanner
		for _, line := range raw.body {
			scanner.step(line)
		}
		accepted = append(accepted, parsedBlock{number: number, title: title, fields: scanner.fields})
	}
	return accepted
}

// parseHeader extracts the module number and bare title from a header line.
func parseHeader(line string) (int, string, bool) {
	m := blockHeader.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	title := bareTitle(m[2])
	if utf8.RuneCountInString(title) <= minTitleLen {
		return 0, "", false
	}
	return number, title, true
}

// bareTitle strips bold markers and any repeated "Module N:" prefix.
func bareTitle(s string) string {
	title := cleanMarkup(s)
	for titlePrefix.MatchString(title) {
		title = cleanMarkup(titlePrefix.ReplaceAllString(title, ""))
	}
	return title
}

func (b parsedBlock) normalize(ctx Context, order int) Module {
	hours := ctx.AverageHours()
	if b.fields.hours > 0 {
		hours = ctx.clamp(float64(b.fields.hours))
	}

	objectives := b.fields.objectivesText()
	if !usableObjectives(objectives) {
		objectives = "Learn and master the concepts covered in " + b.title
	}

	return Module{
		Number:         b.number,
		Title:          fmt.Sprintf("Module %d: %s", order, b.title),
		Objectives:     objectives,
		EstimatedHours: hours,
		Prerequisites:  b.fields.prerequisitesText(),
		OrderIndex:     order,
	}
}

// placeholders synthesizes modules for order positions from..to inclusive.
func placeholders(ctx Context, from, to int) []Module {
	if to < from {
		return nil
	}
	hours := ctx.AverageHours()
	out := make([]Module, 0, to-from+1)
	for i := from; i <= to; i++ {
		m := Module{
			Title:          fmt.Sprintf("Module %d: Learning Objectives", i),
			Objectives:     fmt.Sprintf("Complete the learning objectives for module %d", i),
			EstimatedHours: hours,
			OrderIndex:     i,
			Placeholder:    true,
		}
		if i > 1 {
			m.Prerequisites = fmt.Sprintf("Completion of Module %d", i-1)
		}
		out = append(out, m)
	}
	return out
}
