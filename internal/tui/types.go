package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/queryprism/prism/internal/api"
)

// command names one orchestrated operation. Every command owns an opSlot,
// and the job bus stamps the name on its log lines.
type command string

const (
	cmdLogin    command = "login"
	cmdRegister command = "register"
	cmdForgot   command = "forgot-password"
	cmdReset    command = "reset-password"
	cmdQuery    command = "query"
	cmdList     command = "list-documents"
	cmdDelete   command = "delete-document"
	cmdUpload   command = "upload"
	cmdFolder   command = "drive-folder"
	cmdSync     command = "drive-sync"
	cmdExport   command = "export-transcript"
)

var allCommands = []command{
	cmdLogin,
	cmdRegister,
	cmdForgot,
	cmdReset,
	cmdQuery,
	cmdList,
	cmdDelete,
	cmdUpload,
	cmdFolder,
	cmdSync,
	cmdExport,
}

// opSlot tracks one command between invocation and settlement. busy spans
// the whole round trip and clears on both outcomes; lastErr keeps the most
// recent failure for display. When two invocations of the same command
// overlap, the slot reflects whichever settles last.
type opSlot struct {
	busy    bool
	lastErr string
}

// homeFocus says which control on the home view owns the keyboard.
type homeFocus int

const (
	focusComposer homeFocus = iota
	focusBrowse
	focusUpload
	focusDrive
)

const heroTagline = "Ask your knowledge base anything with Prism."

// chatApology is the assistant turn appended when a query fails. Chat
// failures live inside the transcript so the conversation keeps its
// question/answer rhythm instead of surfacing a blocking error.
const chatApology = "Sorry, something went wrong while answering. Please try again."

const (
	composerPlaceholder = "Ask a question about your documents…"
	uploadPlaceholder   = "Path to a PDF, CSV, or Word document…"
	folderPlaceholder   = "Google Drive folder ID…"
	capturePlaceholder  = "Paste the redirect link containing #token=…"
)

const (
	minContentWidth  = 40
	horizontalMargin = 4
	documentRowLimit = 8
)

// Result messages, one per command. Home-scoped results carry the workspace
// epoch captured at dispatch; a settle left over from a previous sign-in
// folds as a no-op instead of touching the fresh workspace.

type loginResultMsg struct {
	err error
}

type registerResultMsg struct {
	email string
	err   error
}

type forgotResultMsg struct {
	email   string
	message string
	err     error
}

type resetResultMsg struct {
	email   string
	message string
	err     error
}

type queryResultMsg struct {
	epoch  int
	answer string
	err    error
}

type documentsResultMsg struct {
	epoch int
	names []string
	err   error
}

type uploadResultMsg struct {
	epoch    int
	filename string
	stored   api.Upload
	err      error
}

type deleteResultMsg struct {
	epoch    int
	filename string
	err      error
}

type folderResultMsg struct {
	epoch   int
	message string
	err     error
}

type syncResultMsg struct {
	epoch   int
	message string
	err     error
}

type exportResultMsg struct {
	epoch int
	path  string
	count int
	err   error
}

// documentsChangedMsg announces that the server-side document set may have
// changed. Upload, delete, and drive-sync settles publish it; the list
// refreshes in response without the publishers knowing how.
type documentsChangedMsg struct {
	reason string
}

// SessionMsg reports an authentication change that happened outside the
// update loop. The program wires session.Subscribe to deliver it so the
// access gate re-evaluates immediately, not on the next keypress.
type SessionMsg struct {
	Authenticated bool
}

// authForm is a vertical stack of inputs with exactly one focused.
type authForm struct {
	inputs []textinput.Model
	focus  int
}

func newAuthForm(inputs ...textinput.Model) authForm {
	form := authForm{inputs: inputs}
	if len(form.inputs) > 0 {
		form.inputs[0].Focus()
	}
	return form
}

func (f *authForm) Next() { f.setFocus(f.focus + 1) }
func (f *authForm) Prev() { f.setFocus(f.focus - 1) }

func (f *authForm) setFocus(target int) {
	if len(f.inputs) == 0 {
		return
	}
	if target < 0 {
		target = len(f.inputs) - 1
	}
	target %= len(f.inputs)
	f.inputs[f.focus].Blur()
	f.focus = target
	f.inputs[f.focus].Focus()
}

func (f *authForm) Update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *authForm) Value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

func (f *authForm) SetValue(i int, value string) {
	if i < 0 || i >= len(f.inputs) {
		return
	}
	f.inputs[i].SetValue(value)
}

func (f *authForm) Blur() {
	if len(f.inputs) > 0 {
		f.inputs[f.focus].Blur()
	}
}

func (f *authForm) Refocus() {
	if len(f.inputs) > 0 {
		f.inputs[f.focus].Focus()
	}
}

func (f *authForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = 0
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
}

func (f *authForm) SetWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = width
	}
}

// notice is one line on the notice board.
type notice struct {
	id      string
	text    string
	failed  bool
	working bool
}

// noticeBoard holds transient notifications addressed by stable handles.
// Posting under an existing handle mutates that notice in place, so a
// long-running operation shows a single line that moves from "in progress"
// to its final state instead of stacking a second one.
type noticeBoard struct {
	items []notice
	limit int
}

func newNoticeBoard(limit int) *noticeBoard {
	if limit <= 0 {
		limit = 4
	}
	return &noticeBoard{limit: limit}
}

// Post sets an informational notice under id.
func (b *noticeBoard) Post(id, text string) { b.set(notice{id: id, text: text}) }

// Fail sets a failure notice under id.
func (b *noticeBoard) Fail(id, text string) { b.set(notice{id: id, text: text, failed: true}) }

// Working sets an in-progress notice under id; the view prefixes a spinner.
func (b *noticeBoard) Working(id, text string) { b.set(notice{id: id, text: text, working: true}) }

func (b *noticeBoard) set(n notice) {
	for i := range b.items {
		if b.items[i].id == n.id {
			b.items[i] = n
			return
		}
	}
	b.items = append(b.items, n)
	if len(b.items) > b.limit {
		b.items = b.items[len(b.items)-b.limit:]
	}
}

// Clear removes the notice under id, if present.
func (b *noticeBoard) Clear(id string) {
	for i := range b.items {
		if b.items[i].id == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// ClearAll drops every notice.
func (b *noticeBoard) ClearAll() { b.items = nil }

// Items returns the notices in display order.
func (b *noticeBoard) Items() []notice {
	items := make([]notice, len(b.items))
	copy(items, b.items)
	return items
}

// Get returns the notice under id.
func (b *noticeBoard) Get(id string) (notice, bool) {
	for _, n := range b.items {
		if n.id == id {
			return n, true
		}
	}
	return notice{}, false
}

// Notice handles. One handle per concern keeps repeated outcomes of the
// same operation on one line.
const (
	noticeAuth   = "auth"
	noticeChat   = "chat"
	noticeUpload = "upload"
	noticeList   = "documents"
	noticeDelete = "delete"
	noticeFolder = "drive-folder"
	noticeSync   = "drive-sync"
	noticeExport = "export"
)
