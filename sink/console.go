package sink

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/web3tea/fixture-sentinel/models"
)

// ConsoleSink implements the Sink interface to output envelopes to the
// console in a pretty table format
type ConsoleSink struct {
	// whether to use colored output
	colorEnabled bool
	// unified table style
	tableStyle table.Style
	// max column width for truncation
	maxColumnWidth int
}

// ConsoleSinkOption defines functional options for ConsoleSink
type ConsoleSinkOption func(*ConsoleSink)

// WithColorOutput enables or disables colored output
func WithColorOutput(enabled bool) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		s.colorEnabled = enabled
	}
}

// WithMaxColumnWidth sets the maximum column width for truncation
func WithMaxColumnWidth(width int) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		s.maxColumnWidth = width
	}
}

// NewConsoleSink creates a new console sink
func NewConsoleSink(options ...ConsoleSinkOption) *ConsoleSink {
	// Create a custom table style for consistent appearance
	customStyle := table.Style{
		Name: "Fixture-Custom",
		Box: table.BoxStyle{
			BottomLeft:       "└",
			BottomRight:      "┘",
			BottomSeparator:  "┴",
			Left:             "│",
			LeftSeparator:    "├",
			MiddleHorizontal: "─",
			MiddleSeparator:  "┼",
			MiddleVertical:   "│",
			PaddingLeft:      " ",
			PaddingRight:     " ",
			Right:            "│",
			RightSeparator:   "┤",
			TopLeft:          "┌",
			TopRight:         "┐",
			TopSeparator:     "┬",
			UnfinishedRow:    "...",
		},
		Options: table.Options{
			DrawBorder:      true,
			SeparateColumns: true,
			SeparateFooter:  true,
			SeparateHeader:  true,
			SeparateRows:    false,
		},
		Title: table.TitleOptions{
			Align:  text.AlignCenter,
			Colors: text.Colors{text.FgHiWhite, text.Bold},
		},
		Color: table.ColorOptions{
			Header: text.Colors{text.FgHiWhite, text.Bold},
			Row:    text.Colors{},
			Footer: text.Colors{text.FgHiWhite, text.Bold},
		},
	}

	sink := &ConsoleSink{
		colorEnabled:   true,
		tableStyle:     customStyle,
		maxColumnWidth: 60,
	}

	for _, option := range options {
		option(sink)
	}

	return sink
}

func (s *ConsoleSink) Init(ctx context.Context, config map[string]any) error {
	if enabled, ok := config["color"].(bool); ok {
		s.colorEnabled = enabled
	}
	return nil
}

// Write outputs envelopes to the console
func (s *ConsoleSink) Write(ctx context.Context, envelopes []*models.Envelope) error {
	for _, env := range envelopes {
		s.writeEnvelopeTable(env)
	}
	return nil
}

// writeEnvelopeTable outputs one envelope as a nicely formatted table
func (s *ConsoleSink) writeEnvelopeTable(env *models.Envelope) {
	highColor := color.New(color.FgRed, color.Bold).SprintFunc()
	mediumColor := color.New(color.FgYellow).SprintFunc()
	cancelledColor := color.New(color.FgRed).SprintFunc()
	postponedColor := color.New(color.FgYellow).SprintFunc()
	scheduledColor := color.New(color.FgGreen).SprintFunc()

	if !s.colorEnabled {
		highColor = fmt.Sprint
		mediumColor = fmt.Sprint
		cancelledColor = fmt.Sprint
		postponedColor = fmt.Sprint
		scheduledColor = fmt.Sprint
	}

	// One outer table holds the whole envelope
	envTable := table.NewWriter()
	envTable.SetOutputMirror(os.Stdout)

	summaryRows := []table.Row{
		{"Batch", env.BatchID},
		{"Channel", env.Channel},
		{"Schema", fmt.Sprintf("%s (%s)", env.SchemaVersion, env.Class)},
		{"Received", env.ReceivedAt.Format(time.RFC3339)},
		{"Fixtures", len(env.Matches)},
	}
	if env.HighPriority {
		summaryRows = append(summaryRows, table.Row{"Priority", highColor("HIGH")})
	}

	summaryTable := table.NewWriter()
	for _, row := range summaryRows {
		summaryTable.AppendRow(row)
	}
	summaryTable.SetStyle(s.tableStyle)
	summaryTable.Style().Options.DrawBorder = false
	summaryTable.Style().Options.SeparateRows = false

	envTable.AppendRow(table.Row{summaryTable.Render()})

	if len(env.Matches) > 0 {
		envTable.AppendRow(table.Row{""})
		envTable.AppendRow(table.Row{text.Bold.Sprint("Fixtures")})
		envTable.AppendRow(table.Row{s.createFixturesTable(env.Matches, cancelledColor, postponedColor, scheduledColor).Render()})
	}

	if len(env.DetailedChanges) > 0 {
		envTable.AppendRow(table.Row{""})
		envTable.AppendRow(table.Row{text.Bold.Sprint("Detailed Changes")})
		envTable.AppendRow(table.Row{s.createChangesTable(env.DetailedChanges, highColor, mediumColor).Render()})
	}

	envTable.SetStyle(s.tableStyle)
	envTable.SetTitle(fmt.Sprintf("FIXTURE UPDATES %s", env.BatchID))

	// Clear separator before each envelope
	fmt.Println()
	fmt.Println(strings.Repeat("─", 100))

	envTable.Render()
	fmt.Println()
}

// createFixturesTable creates a table listing the fixtures of an envelope
func (s *ConsoleSink) createFixturesTable(
	fixtures []models.Fixture,
	cancelledColor func(a ...interface{}) string,
	postponedColor func(a ...interface{}) string,
	scheduledColor func(a ...interface{}) string,
) table.Writer {
	fixtureTable := table.NewWriter()
	fixtureTable.AppendHeader(table.Row{"ID", "Kickoff", "Match", "Venue", "Competition", "Status"})

	for i := range fixtures {
		f := &fixtures[i]

		var status string
		switch f.Status {
		case models.StatusCancelled:
			status = cancelledColor(string(f.Status))
		case models.StatusPostponed:
			status = postponedColor(string(f.Status))
		default:
			status = scheduledColor(string(f.Status))
		}

		fixtureTable.AppendRow(table.Row{
			f.ID,
			formatKickoff(f.Kickoff),
			s.truncateString(f.Title()),
			s.truncateString(f.Venue),
			s.truncateString(f.Competition),
			status,
		})
	}

	fixtureTable.SetStyle(s.tableStyle)
	return fixtureTable
}

// createChangesTable creates a table for the per-field change list of an
// enhanced envelope
func (s *ConsoleSink) createChangesTable(
	changes []models.DetailedChange,
	highColor func(a ...interface{}) string,
	mediumColor func(a ...interface{}) string,
) table.Writer {
	changeTable := table.NewWriter()
	changeTable.AppendHeader(table.Row{"Match", "Field", "Category", "Priority", "Previous", "Current"})

	for _, ch := range changes {
		priority := ch.Priority
		switch ch.Priority {
		case models.PriorityHigh:
			priority = highColor(ch.Priority)
		case models.PriorityMedium:
			priority = mediumColor(ch.Priority)
		}

		changeTable.AppendRow(table.Row{
			ch.MatchID,
			ch.Field,
			ch.Category,
			priority,
			s.truncateString(ch.Previous),
			s.truncateString(ch.Current),
		})
	}

	changeTable.SetStyle(s.tableStyle)
	return changeTable
}

// formatKickoff renders the wire timestamp for display, falling back to the
// raw value when it does not decode
func formatKickoff(ts models.WireTime) string {
	t, err := ts.Time()
	if err != nil {
		return string(ts)
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// truncateString truncates a string if it's longer than maxColumnWidth
func (s *ConsoleSink) truncateString(str string) string {
	if len(str) <= s.maxColumnWidth {
		return str
	}
	return str[:s.maxColumnWidth-3] + "..."
}

// Flush implements the Sink interface, no buffering for console output
func (s *ConsoleSink) Flush(ctx context.Context) error {
	return nil
}

// Close implements the Sink interface
func (s *ConsoleSink) Close() error {
	return nil
}

// Type returns the type of this sink
func (s *ConsoleSink) Type() string {
	return "console"
}

var _ Sink = (*ConsoleSink)(nil)
