package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/queryprism/prism/internal/transcript"
)

// pageLayout derives every per-widget dimension from the terminal size, so
// one WindowSizeMsg resizes the whole screen consistently.
type pageLayout struct {
	windowWidth  int
	windowHeight int
	chatWidth    int
	chatHeight   int
	inputWidth   int
	formWidth    int
	docRows      int
}

func newPageLayout() pageLayout {
	return pageLayout{
		chatWidth:  80,
		chatHeight: 12,
		inputWidth: 70,
		formWidth:  48,
		docRows:    documentRowLimit,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height

	inner := width - horizontalMargin
	if inner < minContentWidth {
		inner = minContentWidth
	}
	l.chatWidth = inner

	input := inner - 2
	if input > 72 {
		input = 72
	}
	if input < 24 {
		input = 24
	}
	l.inputWidth = input

	form := input
	if form > 48 {
		form = 48
	}
	l.formWidth = form

	rows := documentRowLimit
	if height < 32 {
		rows = 4
	}
	l.docRows = rows

	// Logo, status bar, panel headers, composer, and hints claim a fixed
	// band; the conversation viewport gets the remainder.
	const chrome = 26
	chatHeight := height - chrome - rows
	if chatHeight < 6 {
		chatHeight = 6
	}
	l.chatHeight = chatHeight
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

// buildChatContent renders the transcript for the conversation viewport.
// Turns alternate between the user and the assistant; each gets a label and
// is wrapped to the viewport width.
func (m *model) buildChatContent() string {
	cb := &contentBuilder{}
	if m.chatLog.Len() == 0 {
		cb.WriteString(helperStyle.Render("Ask a question below. Answers draw only on your uploaded documents."))
		cb.WriteRune('\n')
		return cb.String()
	}
	wrap := m.wrapWidth(4)
	turns := m.chatLog.Turns()
	for idx, turn := range turns {
		cb.WriteString(transcriptLabel(turn.Role))
		cb.WriteRune('\n')
		cb.WriteString(indentMultiline(wordwrap.String(turn.Content, wrap), "  "))
		if idx < len(turns)-1 {
			cb.WriteRune('\n')
			cb.WriteRune('\n')
		} else {
			cb.WriteRune('\n')
		}
	}
	return cb.String()
}

func transcriptLabel(role transcript.Role) string {
	switch role {
	case transcript.RoleUser:
		return userLabelStyle.Render("You")
	case transcript.RoleAssistant:
		return assistantLabelStyle.Render("Prism")
	default:
		return string(role)
	}
}

// documentsPanel lists the knowledge base with the browse cursor, per-file
// deletion state, and the delete confirmation prompt. An empty list shows
// the onboarding steps instead.
func (m *model) documentsPanel() string {
	cb := &contentBuilder{}
	cb.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Knowledge Base (%d)", len(m.documents))))
	cb.WriteRune('\n')
	if m.busy(cmdList) {
		cb.WriteString(helperStyle.Render(fmt.Sprintf("%s Loading documents…", m.spinner.View())))
		cb.WriteRune('\n')
	}
	if lastErr := m.ops[cmdList].lastErr; lastErr != "" {
		cb.WriteString(errorStyle.Render(lastErr))
		cb.WriteRune('\n')
	}
	if len(m.documents) == 0 {
		if !m.busy(cmdList) {
			m.writeOnboarding(cb)
		}
		return strings.TrimRight(cb.String(), "\n")
	}

	limit := m.layout.docRows
	if limit <= 0 {
		limit = documentRowLimit
	}
	start := 0
	if m.docCursor >= limit {
		start = m.docCursor - limit + 1
	}
	end := start + limit
	if end > len(m.documents) {
		end = len(m.documents)
	}
	if start > 0 {
		cb.WriteString(helperStyle.Render(fmt.Sprintf("   … %d above", start)))
		cb.WriteRune('\n')
	}
	for idx := start; idx < end; idx++ {
		name := m.documents[idx]
		marker := " "
		if idx == m.docCursor {
			marker = ">"
		}
		row := fmt.Sprintf(" %s %s", marker, name)
		switch {
		case m.deleting[name]:
			row = deletingStyle.Render(row + "  (deleting…)")
		case idx == m.docCursor:
			row = selectedRowStyle.Render(row)
		}
		cb.WriteString(row)
		cb.WriteRune('\n')
	}
	if remaining := len(m.documents) - end; remaining > 0 {
		cb.WriteString(helperStyle.Render(fmt.Sprintf("   … and %d more", remaining)))
		cb.WriteRune('\n')
	}
	if m.pendingDelete != "" {
		cb.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q? Press y to confirm, n to keep it.", m.pendingDelete)))
		cb.WriteRune('\n')
	}
	return strings.TrimRight(cb.String(), "\n")
}

func (m *model) writeOnboarding(cb *contentBuilder) {
	cb.WriteString(helperStyle.Render("No documents yet. Three steps to a useful session:"))
	cb.WriteRune('\n')
	for i, step := range m.onboarding {
		cb.WriteString(fmt.Sprintf(" %d. %s", i+1, step.Title))
		cb.WriteRune('\n')
		cb.WriteString(indentMultiline(wordwrap.String(step.Description, m.wrapWidth(6)), "    "))
		cb.WriteRune('\n')
	}
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.chat.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}
