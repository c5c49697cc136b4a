package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haivivi/netbuf/pkg/buffer"
)

// Theme defines the color scheme for terminal rendering.
type Theme struct {
	Primary     lipgloss.Color // Main accent color
	Dim         lipgloss.Color // Dimmed/help text color
	Prependable lipgloss.Color
	Readable    lipgloss.Color
	Writable    lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary:     lipgloss.Color("#00ff9f"),
	Dim:         lipgloss.Color("#6e7681"),
	Prependable: lipgloss.Color("#d29922"),
	Readable:    lipgloss.Color("#00ff9f"),
	Writable:    lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style

	Prependable lipgloss.Style
	Readable    lipgloss.Style
	Writable    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:       lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border:      lipgloss.NewStyle().Foreground(t.Primary),
		Help:        lipgloss.NewStyle().Foreground(t.Dim),
		Prependable: lipgloss.NewStyle().Foreground(t.Prependable),
		Readable:    lipgloss.NewStyle().Foreground(t.Readable),
		Writable:    lipgloss.NewStyle().Foreground(t.Writable),
	}
}

// Section is a labeled block of lines inside a Frame.
type Section struct {
	Label string
	Lines []string
}

// Frame renders a bordered box with a title line and labeled sections.
type Frame struct {
	Styles   Styles
	Title    string
	Status   string
	Sections []Section
	Help     string
}

// Render renders the frame width columns wide. Each section is as tall as
// its content.
func (f Frame) Render(width int) string {
	width = max(width, 20)
	bc := f.Styles.Border
	maxContentWidth := width - 4

	var lines []string
	lines = append(lines, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))

	title := f.Styles.Title.Render(f.Title)
	status := f.Styles.Help.Render("[" + f.Status + "]")
	padding := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	lines = append(lines, bc.Render("│")+" "+title+" "+status+
		strings.Repeat(" ", padding)+" "+bc.Render("│"))

	for _, sec := range f.Sections {
		lines = append(lines, f.renderSection(bc, sec, width, maxContentWidth)...)
	}

	lines = append(lines, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	if f.Help != "" {
		lines = append(lines, f.Styles.Help.Render(f.Help))
	}
	return strings.Join(lines, "\n")
}

func (f Frame) renderSection(bc lipgloss.Style, sec Section, width, maxContentWidth int) []string {
	labelText := f.Styles.Label.Render(sec.Label)
	padding := max(0, width-3-lipgloss.Width(labelText))
	lines := []string{
		bc.Render("├") + bc.Render("─") + labelText + bc.Render(strings.Repeat("─", padding)) + bc.Render("┤"),
	}

	for _, text := range sec.Lines {
		if maxContentWidth > 1 && lipgloss.Width(text) > maxContentWidth {
			text = truncateString(text, maxContentWidth-1) + "…"
		}
		lines = append(lines, bc.Render("│")+" "+text+
			strings.Repeat(" ", max(0, maxContentWidth-lipgloss.Width(text)))+" "+bc.Render("│"))
	}
	return lines
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}

// MaxDumpLines limits the hex dump in RenderLayout.
const MaxDumpLines = 8

// RenderLayout draws b's storage as a bar split into the prependable,
// readable and writable regions, followed by the region sizes and a hex
// dump of the start of the readable region.
func RenderLayout(b *buffer.Buffer, width int) string {
	styles := NewStyles(DefaultTheme)
	width = max(width, 40)

	r, w := b.ReaderIndex(), b.WriterIndex()
	size := w + b.WritableBytes()

	regions := []string{
		regionBar(styles, width-4, b.PrependableBytes(), b.ReadableBytes(), b.WritableBytes()),
		"",
		styles.Prependable.Render("▒ prependable") + fmt.Sprintf(" %-10s [0, %d)", FormatBytesInt(b.PrependableBytes()), r),
		styles.Readable.Render("█ readable   ") + fmt.Sprintf(" %-10s [%d, %d)", FormatBytesInt(b.ReadableBytes()), r, w),
		styles.Writable.Render("░ writable   ") + fmt.Sprintf(" %-10s [%d, %d)", FormatBytesInt(b.WritableBytes()), w, size),
	}

	frame := Frame{
		Styles: styles,
		Title:  "buffer",
		Status: fmt.Sprintf("capacity %s, margin %d", FormatBytesInt(b.InternalCapacity()), b.Prepend()),
		Sections: []Section{
			{Label: " regions ", Lines: regions},
			{Label: " readable ", Lines: dumpLines(b.Peek())},
		},
	}
	return frame.Render(width)
}

// regionBar renders a bar of width cells with each region proportional to
// its size. Non-empty regions get at least one cell.
func regionBar(styles Styles, width, prependable, readable, writable int) string {
	sizes := []int{prependable, readable, writable}
	cells := proportion(sizes, width)
	return styles.Prependable.Render(strings.Repeat("▒", cells[0])) +
		styles.Readable.Render(strings.Repeat("█", cells[1])) +
		styles.Writable.Render(strings.Repeat("░", cells[2]))
}

func proportion(sizes []int, width int) []int {
	total := 0
	for _, s := range sizes {
		total += s
	}
	cells := make([]int, len(sizes))
	if total == 0 || width <= 0 {
		return cells
	}

	used, largest := 0, 0
	for i, s := range sizes {
		if s > 0 {
			cells[i] = max(1, s*width/total)
		}
		used += cells[i]
		if cells[i] > cells[largest] {
			largest = i
		}
	}
	// Rounding slack goes to, or comes from, the largest region.
	cells[largest] = max(1, cells[largest]+width-used)
	return cells
}

func dumpLines(p []byte) []string {
	if len(p) == 0 {
		return []string{"(empty)"}
	}
	dump := strings.Split(strings.TrimRight(hex.Dump(p), "\n"), "\n")
	if len(dump) <= MaxDumpLines {
		return dump
	}
	rest := len(p) - MaxDumpLines*16
	return append(dump[:MaxDumpLines], fmt.Sprintf("… %s more", FormatBytesInt(rest)))
}
