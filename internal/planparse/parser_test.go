package planparse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoModulePlan = "**Module 1: Intro**\nObjectives: Learn basics\nEstimated Time: 3 hours\nPrerequisites: None\n\n" +
	"**Module 2: Advanced**\nObjectives: Go deeper\nEstimated Time: 5 hours"

func twoModuleCtx() Context {
	return Context{ExpectedModules: 2, HoursPerWeek: 10, TotalHours: 20}
}

func moduleBlocks(numbers ...int) string {
	var b strings.Builder
	for _, n := range numbers {
		fmt.Fprintf(&b, "**Module %d: Topic number %d**\n", n, n)
		fmt.Fprintf(&b, "Objectives: Understand the material of topic %d\n", n)
		b.WriteString("Estimated Time: 4 hours\n")
		b.WriteString("Prerequisites: None\n\n")
	}
	return b.String()
}

func TestParse_WellFormedPlan(t *testing.T) {
	got := Parse(twoModulePlan, twoModuleCtx(), Options{})

	require.Len(t, got, 2)
	assert.Equal(t, Module{
		Number:         1,
		Title:          "Module 1: Intro",
		Objectives:     "Learn basics",
		EstimatedHours: 3,
		Prerequisites:  "",
		OrderIndex:     1,
	}, got[0])
	assert.Equal(t, Module{
		Number:         2,
		Title:          "Module 2: Advanced",
		Objectives:     "Go deeper",
		EstimatedHours: 5,
		Prerequisites:  "",
		OrderIndex:     2,
	}, got[1])
}

func TestParse_ClampsTimeToWeeklyBudget(t *testing.T) {
	text := strings.Replace(twoModulePlan, "Estimated Time: 3 hours", "Estimated Time: 15 hours", 1)

	got := Parse(text, twoModuleCtx(), Options{})

	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].EstimatedHours)
	assert.Equal(t, 5.0, got[1].EstimatedHours)
}

func TestParse_DegenerateTextFabricatesPlaceholders(t *testing.T) {
	ctx := Context{ExpectedModules: 3, HoursPerWeek: 5, TotalHours: 15}

	got := Parse("This plan has no structure at all.", ctx, Options{})

	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, fmt.Sprintf("Module %d: Learning Objectives", i+1), m.Title)
		assert.Equal(t, i+1, m.OrderIndex)
		assert.True(t, m.Placeholder)
		assert.Equal(t, 5.0, m.EstimatedHours)
		assert.NotEmpty(t, m.Objectives)
	}
	assert.Empty(t, got[0].Prerequisites)
	assert.Equal(t, "Completion of Module 1", got[1].Prerequisites)
	assert.Equal(t, "Completion of Module 2", got[2].Prerequisites)
}

func TestParse_DuplicateModuleNumberFirstWins(t *testing.T) {
	text := "Module 1: Foundations\nObjectives: Set up the toolchain properly\n\n" +
		"Module 2: First Take\nObjectives: The first description of module two\n\n" +
		"Module 2: Second Take\nObjectives: A competing description of module two\n"
	ctx := Context{ExpectedModules: 3, HoursPerWeek: 6, TotalHours: 18}

	got := Parse(text, ctx, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "Module 2: First Take", got[1].Title)
	assert.Equal(t, "The first description of module two", got[1].Objectives)
}

func TestParse_OverGenerationKeepsLowestNumbers(t *testing.T) {
	text := moduleBlocks(7, 3, 10, 1, 9, 2, 5, 8, 4, 6)
	ctx := Context{ExpectedModules: 4, HoursPerWeek: 8, TotalHours: 32}

	got := Parse(text, ctx, Options{})

	require.Len(t, got, 4)
	for i, m := range got {
		assert.Equal(t, i+1, m.Number)
		assert.Equal(t, i+1, m.OrderIndex)
		assert.Equal(t, fmt.Sprintf("Module %d: Topic number %d", i+1, i+1), m.Title)
	}
}

func TestParse_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		got := Parse(text, twoModuleCtx(), Options{BackfillMissing: true})
		assert.NotNil(t, got)
		assert.Empty(t, got, "text=%q", text)
	}
}

func TestParse_NonPositiveExpectedCountYieldsNothing(t *testing.T) {
	got := Parse(twoModulePlan, Context{ExpectedModules: 0, HoursPerWeek: 5}, Options{BackfillMissing: true})
	assert.Empty(t, got)
}

func TestParse_HeaderForms(t *testing.T) {
	cases := []struct {
		name   string
		header string
		title  string
	}{
		{"bold colon", "**Module 1: Go Basics**", "Module 1: Go Basics"},
		{"bare dash", "Module 1 - Go Basics", "Module 1: Go Basics"},
		{"bold closes early", "**Module 1:** Go Basics", "Module 1: Go Basics"},
		{"lower case", "module 1: Go Basics", "Module 1: Go Basics"},
		{"single star", "*Module 1: Go Basics*", "Module 1: Go Basics"},
		{"no separator", "Module 1 Go Basics", "Module 1: Go Basics"},
		{"markdown heading", "### Module 1: Go Basics", "Module 1: Go Basics"},
		{"repeated prefix", "**Module 1: Module 1 - Go Basics**", "Module 1: Go Basics"},
	}
	ctx := Context{ExpectedModules: 1, HoursPerWeek: 4, TotalHours: 4}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.header+"\nObjectives: Write small programs in Go\n", ctx, Options{})
			require.Len(t, got, 1)
			assert.Equal(t, tc.title, got[0].Title)
			assert.False(t, got[0].Placeholder)
		})
	}
}

func TestParse_ShortTitleIsDiscarded(t *testing.T) {
	text := "**Module 1: Go**\nObjectives: Too short a title to keep\n\n**Module 2: Concurrency**\nObjectives: Goroutines and channels\n"
	ctx := Context{ExpectedModules: 2, HoursPerWeek: 4, TotalHours: 8}

	got := Parse(text, ctx, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Number)
	assert.Equal(t, "Module 1: Concurrency", got[0].Title, "title follows the final order index")
}

func TestParse_ShortTitleDoesNotReserveNumber(t *testing.T) {
	text := "Module 2: Go\n\nModule 2: Generics in depth\nObjectives: Type parameters and constraints\n"
	ctx := Context{ExpectedModules: 2, HoursPerWeek: 4, TotalHours: 8}

	got := Parse(text, ctx, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "Module 1: Generics in depth", got[0].Title)
}

func TestParse_PreambleIsIgnored(t *testing.T) {
	text := "Here is your personalised plan. It covers a lot of ground.\n\n" + twoModulePlan

	got := Parse(text, twoModuleCtx(), Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "Learn basics", got[0].Objectives)
}

func TestParse_TimeEdgeCases(t *testing.T) {
	ctx := Context{ExpectedModules: 2, HoursPerWeek: 10, TotalHours: 14}
	cases := []struct {
		name string
		body string
		want float64
	}{
		{"range falls back", "Estimated Time: 2-3 hours", 7},
		{"en dash range falls back", "Estimated Time: 2–3 hours", 7},
		{"decimal falls back", "Estimated Time: 2.5 hours", 7},
		{"short unit", "Time: 4h", 4},
		{"value on next line", "Estimated Time:\n6 hours", 6},
		{"last match wins", "Estimated Time: 3 hours\nAbout 5 hours once exercises are included", 5},
		{"zero falls back", "Estimated Time: 0 hours", 7},
		{"missing falls back", "Objectives: Something substantial to learn", 7},
		{"unit-less number ignored", "Estimated Time: 4", 7},
		{"bold label", "**Estimated Time:** 8 hours", 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse("**Module 1: Timing test**\n"+tc.body, ctx, Options{})
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].EstimatedHours)
		})
	}
}

func TestParse_AverageFallbackWithoutBudget(t *testing.T) {
	ctx := Context{ExpectedModules: 4, HoursPerWeek: 10, TotalHours: 0}

	got := Parse("Module 1: Something to learn\n", ctx, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].EstimatedHours)
}

func TestParse_AverageFallbackIsClamped(t *testing.T) {
	ctx := Context{ExpectedModules: 1, HoursPerWeek: 1.5, TotalHours: 0}

	got := Parse("Module 1: Something to learn\n", ctx, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, 1.5, got[0].EstimatedHours)
}

func TestParse_ObjectivesRules(t *testing.T) {
	ctx := Context{ExpectedModules: 1, HoursPerWeek: 5, TotalHours: 5}
	cases := []struct {
		name string
		body string
		want string
	}{
		{"labelled same line", "Objectives: Build a CLI", "Build a CLI"},
		{"labelled next lines", "Objectives:\nBuild a CLI\nPublish it", "Build a CLI Publish it"},
		{"unlabelled long line", "Build a command line tool from scratch", "Build a command line tool from scratch"},
		{"unlabelled short line", "Build it", "Learn and master the concepts covered in Tooling week"},
		{"missing", "Estimated Time: 3 hours", "Learn and master the concepts covered in Tooling week"},
		{"empty label", "Objectives:\nEstimated Time: 2 hours", "Learn and master the concepts covered in Tooling week"},
		{"label replaces inferred", "A rather long introduction line\nObjectives: Ship the tool", "Ship the tool"},
		{"bold label", "**Objectives:** Ship the tool", "Ship the tool"},
		{"bulleted label", "- Objectives: Ship the tool", "Ship the tool"},
		{"labelled dash", "Objectives: -", "Learn and master the concepts covered in Tooling week"},
		{"labelled TBD", "Objectives: TBD", "Learn and master the concepts covered in Tooling week"},
		{"labelled N/A", "**Objectives:** N/A", "Learn and master the concepts covered in Tooling week"},
		{"labelled short but real", "Objectives: Go deeper", "Go deeper"},
		{"unlabelled separator line", "==============", "Learn and master the concepts covered in Tooling week"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse("**Module 1: Tooling week**\n"+tc.body, ctx, Options{})
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].Objectives)
		})
	}
}

func TestParse_PrerequisitesRules(t *testing.T) {
	ctx := Context{ExpectedModules: 1, HoursPerWeek: 5, TotalHours: 5}
	cases := []struct {
		name string
		body string
		want string
	}{
		{"none", "Prerequisites: None", ""},
		{"none with period", "Prerequisites: none.", ""},
		{"none on next line", "Prerequisites:\nNONE", ""},
		{"value", "Prerequisites: Basic Go syntax", "Basic Go syntax"},
		{"continued", "Prerequisites: Basic Go syntax\nand a working editor", "Basic Go syntax and a working editor"},
		{"singular label", "Prerequisite: Git", "Git"},
		{"absent", "Objectives: Write tests for everything", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse("**Module 1: Testing in Go**\n"+tc.body, ctx, Options{})
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].Prerequisites)
		})
	}
}

func TestParse_BackfillPadsToExpectedCount(t *testing.T) {
	ctx := Context{ExpectedModules: 4, HoursPerWeek: 6, TotalHours: 24}

	got := Parse(twoModulePlan, ctx, Options{BackfillMissing: true})

	require.Len(t, got, 4)
	assert.False(t, got[0].Placeholder)
	assert.False(t, got[1].Placeholder)
	assert.Equal(t, "Module 3: Learning Objectives", got[2].Title)
	assert.Equal(t, "Completion of Module 2", got[2].Prerequisites)
	assert.Equal(t, 3, got[2].OrderIndex)
	assert.Equal(t, "Module 4: Learning Objectives", got[3].Title)
	assert.True(t, got[3].Placeholder)
	assert.Equal(t, 6.0, got[3].EstimatedHours)
}

func TestParse_WithoutBackfillAcceptsShortList(t *testing.T) {
	ctx := Context{ExpectedModules: 4, HoursPerWeek: 6, TotalHours: 24}

	got := Parse(twoModulePlan, ctx, Options{BackfillMissing: false})

	assert.Len(t, got, 2)
}

func TestParse_OrderIndexIsIndependentOfSourceNumbers(t *testing.T) {
	text := moduleBlocks(12, 5, 40)
	ctx := Context{ExpectedModules: 3, HoursPerWeek: 4, TotalHours: 12}

	got := Parse(text, ctx, Options{})

	require.Len(t, got, 3)
	assert.Equal(t, []int{5, 12, 40}, []int{got[0].Number, got[1].Number, got[2].Number})
	assert.Equal(t, "Module 1: Topic number 5", got[0].Title)
	assert.Equal(t, "Module 3: Topic number 40", got[2].Title)
}

func TestParse_WindowsLineEndings(t *testing.T) {
	text := strings.ReplaceAll(twoModulePlan, "\n", "\r\n")

	got := Parse(text, twoModuleCtx(), Options{})

	require.Len(t, got, 2)
	assert.Equal(t, "Learn basics", got[0].Objectives)
	assert.Equal(t, 5.0, got[1].EstimatedHours)
}

func TestParse_Idempotent(t *testing.T) {
	text := moduleBlocks(3, 1, 2) + "Module 2: again\n" + twoModulePlan
	ctx := Context{ExpectedModules: 5, HoursPerWeek: 7, TotalHours: 35}

	first := Parse(text, ctx, Options{BackfillMissing: true})
	second := Parse(text, ctx, Options{BackfillMissing: true})

	assert.Equal(t, first, second)
}
