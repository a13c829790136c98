package tui

import (
	"strings"
	"testing"
)

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name       string
		width      int
		height     int
		chatWidth  int
		chatHeight int
		inputWidth int
		formWidth  int
		docRows    int
	}{
		{name: "narrow", width: 80, height: 24, chatWidth: 76, chatHeight: 6, inputWidth: 72, formWidth: 48, docRows: 4},
		{name: "tiny", width: 30, height: 20, chatWidth: 40, chatHeight: 6, inputWidth: 38, formWidth: 38, docRows: 4},
		{name: "wide", width: 200, height: 48, chatWidth: 196, chatHeight: 14, inputWidth: 72, formWidth: 48, docRows: 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.chatWidth != tc.chatWidth {
				t.Fatalf("chat width mismatch: got %d want %d", layout.chatWidth, tc.chatWidth)
			}
			if layout.chatHeight != tc.chatHeight {
				t.Fatalf("chat height mismatch: got %d want %d", layout.chatHeight, tc.chatHeight)
			}
			if layout.inputWidth != tc.inputWidth {
				t.Fatalf("input width mismatch: got %d want %d", layout.inputWidth, tc.inputWidth)
			}
			if layout.formWidth != tc.formWidth {
				t.Fatalf("form width mismatch: got %d want %d", layout.formWidth, tc.formWidth)
			}
			if layout.docRows != tc.docRows {
				t.Fatalf("doc rows mismatch: got %d want %d", layout.docRows, tc.docRows)
			}
		})
	}
}

func TestContentBuilderCountsLines(t *testing.T) {
	cb := &contentBuilder{}
	cb.WriteString("one\ntwo")
	cb.WriteRune('\n')
	cb.WriteString("three")
	if cb.Line() != 2 {
		t.Fatalf("expected 2 newlines, got %d", cb.Line())
	}
	if cb.String() != "one\ntwo\nthree" {
		t.Fatalf("unexpected content %q", cb.String())
	}
}

func TestIndentMultilineSkipsBlankLines(t *testing.T) {
	got := indentMultiline("first\n\nsecond", "  ")
	want := "  first\n\n  second"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBuildChatContentEmptyShowsHint(t *testing.T) {
	m := newWorkspaceModel(t, &fakeService{})
	content := m.buildChatContent()
	if !strings.Contains(content, "Ask a question below") {
		t.Fatalf("empty transcript should show the hint, got %q", content)
	}
}

func TestBuildChatContentLabelsTurns(t *testing.T) {
	m := newWorkspaceModel(t, &fakeService{})
	m.chatLog.AppendUser("what changed in v2?")
	m.chatLog.AppendAssistant("The upload limits doubled.")

	content := m.buildChatContent()
	if !strings.Contains(content, "You") {
		t.Fatal("user turn missing its label")
	}
	if !strings.Contains(content, "Prism") {
		t.Fatal("assistant turn missing its label")
	}
	if !strings.Contains(content, "what changed in v2?") {
		t.Fatal("user content missing")
	}
	if !strings.Contains(content, "The upload limits doubled.") {
		t.Fatal("assistant content missing")
	}
}

func TestDocumentsPanelShowsCursorAndDeleting(t *testing.T) {
	m := newWorkspaceModel(t, &fakeService{})
	m.documents = []string{"a.pdf", "b.pdf", "c.pdf"}
	m.docCursor = 1
	m.deleting["c.pdf"] = true

	panel := m.documentsPanel()
	if !strings.Contains(panel, "Knowledge Base (3)") {
		t.Fatalf("header missing document count: %q", panel)
	}
	if !strings.Contains(panel, "> b.pdf") {
		t.Fatalf("cursor marker missing: %q", panel)
	}
	if !strings.Contains(panel, "c.pdf  (deleting…)") {
		t.Fatalf("deleting badge missing: %q", panel)
	}
}

func TestDocumentsPanelOverflow(t *testing.T) {
	m := newWorkspaceModel(t, &fakeService{})
	for i := 0; i < 12; i++ {
		m.documents = append(m.documents, string(rune('a'+i))+".pdf")
	}

	panel := m.documentsPanel()
	if !strings.Contains(panel, "… and 4 more") {
		t.Fatalf("overflow line missing: %q", panel)
	}

	m.docCursor = 11
	panel = m.documentsPanel()
	if !strings.Contains(panel, "… 4 above") {
		t.Fatalf("window should follow the cursor: %q", panel)
	}
	if !strings.Contains(panel, "> l.pdf") {
		t.Fatalf("cursor row should stay visible: %q", panel)
	}
}

func TestDocumentsPanelEmptyShowsOnboarding(t *testing.T) {
	m := newWorkspaceModel(t, &fakeService{})
	panel := m.documentsPanel()
	if !strings.Contains(panel, "No documents yet") {
		t.Fatalf("onboarding intro missing: %q", panel)
	}
	if !strings.Contains(panel, "Upload a document") {
		t.Fatalf("first onboarding step missing: %q", panel)
	}
}

func TestDocumentsPanelConfirmPrompt(t *testing.T) {
	m := newWorkspaceModel(t, &fakeService{})
	m.documents = []string{"a.pdf"}
	m.pendingDelete = "a.pdf"

	panel := m.documentsPanel()
	if !strings.Contains(panel, `Delete "a.pdf"?`) {
		t.Fatalf("confirmation prompt missing: %q", panel)
	}
}
