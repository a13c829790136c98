package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/queryprism/prism/internal/api"
	"github.com/queryprism/prism/internal/forms"
	"github.com/queryprism/prism/internal/gate"
	"github.com/queryprism/prism/internal/guide"
	"github.com/queryprism/prism/internal/session"
	"github.com/queryprism/prism/internal/transcript"
)

// Config wires runtime collaborators into the TUI program. Service, Session,
// and TranscriptPath are required; a nil Logger silences the job log.
type Config struct {
	Service        api.Service
	Session        *session.Session
	Logger         *zap.Logger
	ServerURL      string
	TranscriptPath string
}

// Field positions within each auth form.
const (
	signInEmail = iota
	signInPassword
)

const (
	registerEmail = iota
	registerName
	registerPassword
	registerConfirm
)

const (
	resetEmail = iota
	resetNewPassword
	resetConfirm
)

// New returns a tea.Model ready to be mounted into a Program. The first view
// runs through the access gate, so a restored credential opens the workspace
// and anything else lands on sign-in.
func New(config Config) tea.Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 48

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 72
	password.Width = 48

	regEmail := email
	regName := textinput.New()
	regName.Placeholder = "full name"
	regName.CharLimit = 120
	regName.Width = 48
	regPassword := password
	regPassword.Placeholder = "password (8+ characters)"
	regConfirm := password
	regConfirm.Placeholder = "confirm password"

	forgotEmail := email
	resetEmailInput := email
	resetPassword := password
	resetPassword.Placeholder = "new password (8+ characters)"
	resetConfirmInput := password
	resetConfirmInput.Placeholder = "confirm new password"

	capture := textinput.New()
	capture.Placeholder = capturePlaceholder
	capture.CharLimit = 2048
	capture.Width = 64

	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.CharLimit = 500
	composer.Width = 70

	uploadInput := textinput.New()
	uploadInput.Placeholder = uploadPlaceholder
	uploadInput.CharLimit = 512
	uploadInput.Width = 70

	folderInput := textinput.New()
	folderInput.Placeholder = folderPlaceholder
	folderInput.CharLimit = 128
	folderInput.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	chat := viewport.New(80, 12)
	chat.MouseWheelEnabled = true

	ops := make(map[command]*opSlot, len(allCommands))
	for _, c := range allCommands {
		ops[c] = &opSlot{}
	}

	m := &model{
		config:       config,
		layout:       newPageLayout(),
		signInForm:   newAuthForm(email, password),
		registerForm: newAuthForm(regEmail, regName, regPassword, regConfirm),
		forgotForm:   newAuthForm(forgotEmail),
		resetForm:    newAuthForm(resetEmailInput, resetPassword, resetConfirmInput),
		capture:      capture,
		composer:     composer,
		uploadInput:  uploadInput,
		folderInput:  folderInput,
		spinner:      spin,
		chat:         chat,
		chatLog:      &transcript.Log{},
		deleting:     map[string]bool{},
		jobs:         map[string]jobSnapshot{},
		ops:          ops,
		notices:      newNoticeBoard(4),
		bus:          newJobBus(config.Logger),
		onboarding:   guide.Build(guide.Metadata{Host: config.ServerURL}),
		authed:       config.Session.IsAuthenticated(),
		chatDirty:    true,
	}

	view := gate.Home
	if gate.Guard(view, m.authed) == gate.RedirectToSignIn {
		view = gate.SignIn
	}
	m.view = view
	if view == gate.Home {
		m.focus = focusComposer
		m.composer.Focus()
	}
	return m
}

type model struct {
	config Config
	layout pageLayout

	view   gate.View
	authed bool

	signInForm   authForm
	registerForm authForm
	forgotForm   authForm
	resetForm    authForm
	capture      textinput.Model
	googlePaste  bool

	focus       homeFocus
	composer    textinput.Model
	uploadInput textinput.Model
	folderInput textinput.Model
	chat        viewport.Model
	chatDirty   bool
	chatFollow  bool

	chatLog       *transcript.Log
	documents     []string
	docCursor     int
	deleting      map[string]bool
	pendingDelete string
	onboarding    []guide.Step

	// epoch numbers one signed-in workspace. Results stamped with an older
	// epoch settled after a sign-out and must not touch the fresh state.
	epoch int

	ops     map[command]*opSlot
	jobs    map[string]jobSnapshot
	notices *noticeBoard
	bus     *jobBus
	spinner spinner.Model

	helpVisible bool
}

func (m *model) Init() tea.Cmd {
	if m.view == gate.Home {
		return tea.Batch(textinput.Blink, m.refreshDocuments())
	}
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.spinnerNeeded() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.chat.Width = m.layout.chatWidth
		m.chat.Height = m.layout.chatHeight
		m.composer.Width = m.layout.inputWidth
		m.uploadInput.Width = m.layout.inputWidth
		m.folderInput.Width = m.layout.inputWidth
		m.capture.Width = m.layout.inputWidth
		m.signInForm.SetWidth(m.layout.formWidth)
		m.registerForm.SetWidth(m.layout.formWidth)
		m.forgotForm.SetWidth(m.layout.formWidth)
		m.resetForm.SetWidth(m.layout.formWidth)
		m.markChatDirty()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.view == gate.Home {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		return m, nil
	case SessionMsg:
		return m.handleSessionChange(msg)
	case jobSignalMsg:
		m.jobs[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		delete(m.jobs, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case loginResultMsg:
		return m.handleLoginResult(msg)
	case registerResultMsg:
		return m.handleRegisterResult(msg)
	case forgotResultMsg:
		return m.handleForgotResult(msg)
	case resetResultMsg:
		return m.handleResetResult(msg)
	case queryResultMsg:
		return m.handleQueryResult(msg)
	case documentsResultMsg:
		return m.handleDocumentsResult(msg)
	case uploadResultMsg:
		return m.handleUploadResult(msg)
	case deleteResultMsg:
		return m.handleDeleteResult(msg)
	case folderResultMsg:
		return m.handleFolderResult(msg)
	case syncResultMsg:
		return m.handleSyncResult(msg)
	case exportResultMsg:
		return m.handleExportResult(msg)
	case documentsChangedMsg:
		if !m.config.Session.IsAuthenticated() {
			return m, nil
		}
		return m, m.refreshDocuments()
	}
	return m, nil
}

// handleSessionChange folds authentication changes delivered from outside
// the update loop. Changes the model already acted on fold as no-ops, so the
// echo of its own sign-out does not wipe the notices it just posted.
func (m *model) handleSessionChange(msg SessionMsg) (tea.Model, tea.Cmd) {
	if msg.Authenticated == m.authed {
		return m, nil
	}
	m.authed = msg.Authenticated
	if !msg.Authenticated {
		m.resetWorkspace()
		m.navigate(gate.SignIn)
		m.notices.Post(noticeAuth, "Session ended. Please sign in to continue.")
	}
	return m, nil
}

func (m *model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.settle(cmdLogin, msg.err)
	if msg.err != nil {
		return m, nil
	}
	return m, m.enterWorkspace()
}

func (m *model) handleRegisterResult(msg registerResultMsg) (tea.Model, tea.Cmd) {
	m.settle(cmdRegister, msg.err)
	if msg.err != nil {
		return m, nil
	}
	m.navigate(gate.SignIn)
	m.signInForm.SetValue(signInEmail, msg.email)
	m.signInForm.setFocus(signInPassword)
	m.notices.Post(noticeAuth, "Account created. Sign in with your new password.")
	return m, nil
}

func (m *model) handleForgotResult(msg forgotResultMsg) (tea.Model, tea.Cmd) {
	m.settle(cmdForgot, msg.err)
	if msg.err != nil {
		return m, nil
	}
	m.navigate(gate.ResetPassword)
	m.resetForm.SetValue(resetEmail, msg.email)
	m.resetForm.setFocus(resetNewPassword)
	text := msg.message
	if text == "" {
		text = "Reset request accepted. Choose a new password."
	}
	m.notices.Post(noticeAuth, text)
	return m, nil
}

func (m *model) handleResetResult(msg resetResultMsg) (tea.Model, tea.Cmd) {
	m.settle(cmdReset, msg.err)
	if msg.err != nil {
		return m, nil
	}
	m.navigate(gate.SignIn)
	m.signInForm.SetValue(signInEmail, msg.email)
	m.signInForm.setFocus(signInPassword)
	text := msg.message
	if text == "" {
		text = "Password reset. Sign in with your new password."
	}
	m.notices.Post(noticeAuth, text)
	return m, nil
}

func (m *model) handleQueryResult(msg queryResultMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch {
		return m, nil
	}
	m.settle(cmdQuery, msg.err)
	if msg.err != nil {
		m.chatLog.AppendAssistant(chatApology)
	} else {
		m.chatLog.AppendAssistant(msg.answer)
	}
	m.markChatDirtyFollow()
	return m, nil
}

func (m *model) handleDocumentsResult(msg documentsResultMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch {
		return m, nil
	}
	m.settle(cmdList, msg.err)
	if msg.err != nil {
		m.notices.Fail(noticeList, "Loading documents failed: "+api.Detail(msg.err))
		return m, nil
	}
	m.notices.Clear(noticeList)
	m.documents = msg.names
	m.clampDocCursor()
	return m, nil
}

func (m *model) handleUploadResult(msg uploadResultMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch {
		return m, nil
	}
	m.settle(cmdUpload, msg.err)
	// The held selection clears on both outcomes; a retry is a fresh pick.
	m.uploadInput.SetValue("")
	if msg.err != nil {
		m.notices.Fail(noticeUpload, "Upload failed: "+api.Detail(msg.err))
		return m, nil
	}
	m.notices.Post(noticeUpload, "Uploaded "+msg.filename+".")
	reaction := strings.TrimSpace(msg.stored.Message)
	if reaction == "" {
		reaction = fmt.Sprintf("Added %q to the knowledge base. Ask away.", msg.filename)
	}
	m.chatLog.AppendAssistant(reaction)
	m.markChatDirtyFollow()
	return m, announceDocumentsChanged("upload")
}

func (m *model) handleDeleteResult(msg deleteResultMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch {
		return m, nil
	}
	delete(m.deleting, msg.filename)
	if msg.err != nil {
		m.ops[cmdDelete].lastErr = api.Detail(msg.err)
		m.notices.Fail(noticeDelete, "Deleting "+msg.filename+" failed: "+api.Detail(msg.err))
		return m, nil
	}
	m.ops[cmdDelete].lastErr = ""
	m.notices.Post(noticeDelete, "Deleted "+msg.filename+".")
	return m, announceDocumentsChanged("delete")
}

func (m *model) handleFolderResult(msg folderResultMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch {
		return m, nil
	}
	m.settle(cmdFolder, msg.err)
	if msg.err != nil {
		m.notices.Fail(noticeFolder, "Saving the folder failed: "+api.Detail(msg.err))
		return m, nil
	}
	m.folderInput.SetValue("")
	text := msg.message
	if text == "" {
		text = "Google Drive folder saved."
	}
	m.notices.Post(noticeFolder, text)
	return m, nil
}

// handleSyncResult refreshes the list on both outcomes: the server may have
// ingested part of the folder before failing.
func (m *model) handleSyncResult(msg syncResultMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch {
		return m, nil
	}
	m.settle(cmdSync, msg.err)
	if msg.err != nil {
		m.notices.Fail(noticeSync, "Drive sync failed: "+api.Detail(msg.err))
	} else {
		text := msg.message
		if text == "" {
			text = "Drive sync complete."
		}
		m.notices.Post(noticeSync, text)
	}
	return m, announceDocumentsChanged("drive-sync")
}

func (m *model) handleExportResult(msg exportResultMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch {
		return m, nil
	}
	m.settle(cmdExport, msg.err)
	if msg.err != nil {
		m.notices.Fail(noticeExport, "Export failed: "+msg.err.Error())
		return m, nil
	}
	m.notices.Post(noticeExport, fmt.Sprintf("Saved %d turns to %s.", msg.count, msg.path))
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case gate.SignIn:
		return m.handleSignInKey(key)
	case gate.Register:
		return m.handleRegisterKey(key)
	case gate.ForgotPassword:
		return m.handleForgotKey(key)
	case gate.ResetPassword:
		return m.handleResetKey(key)
	case gate.Home:
		return m.handleHomeKey(key)
	default:
		return m, nil
	}
}

func (m *model) handleSignInKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.googlePaste {
		switch key.Type {
		case tea.KeyEsc:
			m.googlePaste = false
			m.capture.SetValue("")
			m.capture.Blur()
			m.signInForm.Refocus()
			return m, nil
		case tea.KeyEnter:
			return m, m.submitCapture()
		}
		var cmd tea.Cmd
		m.capture, cmd = m.capture.Update(key)
		return m, cmd
	}
	switch key.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		m.signInForm.Next()
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.signInForm.Prev()
		return m, nil
	case tea.KeyEnter:
		return m, m.submitLogin()
	case tea.KeyCtrlN:
		m.navigate(gate.Register)
		return m, nil
	case tea.KeyCtrlR:
		m.navigate(gate.ForgotPassword)
		return m, nil
	case tea.KeyCtrlP:
		m.navigate(gate.ResetPassword)
		return m, nil
	case tea.KeyCtrlG:
		m.enterGooglePaste()
		return m, nil
	}
	return m, m.signInForm.Update(key)
}

func (m *model) handleRegisterKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.navigate(gate.SignIn)
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.registerForm.Next()
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.registerForm.Prev()
		return m, nil
	case tea.KeyEnter:
		return m, m.submitRegister()
	}
	return m, m.registerForm.Update(key)
}

func (m *model) handleForgotKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.navigate(gate.SignIn)
		return m, nil
	case tea.KeyEnter:
		return m, m.submitForgot()
	}
	return m, m.forgotForm.Update(key)
}

func (m *model) handleResetKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.navigate(gate.SignIn)
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.resetForm.Next()
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.resetForm.Prev()
		return m, nil
	case tea.KeyEnter:
		return m, m.submitReset()
	}
	return m, m.resetForm.Update(key)
}

func (m *model) handleHomeKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusComposer:
		switch key.Type {
		case tea.KeyEnter:
			return m, m.submitQuery()
		case tea.KeyEsc:
			m.focus = focusBrowse
			m.composer.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(key)
		return m, cmd
	case focusUpload:
		switch key.Type {
		case tea.KeyEnter:
			return m, m.submitUpload()
		case tea.KeyEsc:
			m.focus = focusBrowse
			m.uploadInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.uploadInput, cmd = m.uploadInput.Update(key)
		return m, cmd
	case focusDrive:
		switch key.Type {
		case tea.KeyEnter:
			return m, m.submitFolder()
		case tea.KeyEsc:
			m.focus = focusBrowse
			m.folderInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.folderInput, cmd = m.folderInput.Update(key)
		return m, cmd
	default:
		return m.handleBrowseKey(key)
	}
}

func (m *model) handleBrowseKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingDelete != "" {
		switch key.String() {
		case "y":
			return m, m.confirmDelete()
		case "n", "esc":
			m.pendingDelete = ""
			m.notices.Post(noticeDelete, "Delete canceled.")
			return m, nil
		}
		return m, nil
	}
	handled := true
	switch key.String() {
	case "i", "enter":
		m.focus = focusComposer
		m.composer.Focus()
	case "j", "down":
		m.moveDocCursor(1)
	case "k", "up":
		m.moveDocCursor(-1)
	case "r":
		return m, m.refreshDocuments()
	case "d":
		m.requestDelete()
	case "u":
		m.focus = focusUpload
		m.uploadInput.Focus()
	case "f":
		m.focus = focusDrive
		m.folderInput.Focus()
	case "s":
		return m, m.startDriveSync()
	case "t":
		return m, m.exportTranscript()
	case "o":
		m.signOut()
	case "g":
		m.chat.GotoTop()
	case "G":
		m.chat.GotoBottom()
	case "?":
		m.helpVisible = !m.helpVisible
	case "q", "esc":
		return m, tea.Quit
	default:
		handled = false
	}
	if handled {
		return m, nil
	}
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(key)
	return m, cmd
}

func (m *model) submitLogin() tea.Cmd {
	if m.busy(cmdLogin) {
		m.notices.Post(noticeAuth, "Sign-in already in progress…")
		return nil
	}
	form := forms.Login{
		Email:    strings.TrimSpace(m.signInForm.Value(signInEmail)),
		Password: m.signInForm.Value(signInPassword),
	}
	if err := forms.Check(form); err != nil {
		m.ops[cmdLogin].lastErr = err.Error()
		return nil
	}
	m.begin(cmdLogin)
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdLogin, loginJob(m.config.Session, form.Email, form.Password)))
}

func (m *model) submitRegister() tea.Cmd {
	if m.busy(cmdRegister) {
		m.notices.Post(noticeAuth, "Registration already in progress…")
		return nil
	}
	form := forms.Register{
		Email:    strings.TrimSpace(m.registerForm.Value(registerEmail)),
		FullName: strings.TrimSpace(m.registerForm.Value(registerName)),
		Password: m.registerForm.Value(registerPassword),
		Confirm:  m.registerForm.Value(registerConfirm),
	}
	if err := forms.Check(form); err != nil {
		m.ops[cmdRegister].lastErr = err.Error()
		return nil
	}
	m.begin(cmdRegister)
	reg := api.Registration{Email: form.Email, FullName: form.FullName, Password: form.Password}
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdRegister, registerJob(m.config.Service, reg)))
}

func (m *model) submitForgot() tea.Cmd {
	if m.busy(cmdForgot) {
		m.notices.Post(noticeAuth, "Reset request already in progress…")
		return nil
	}
	form := forms.ForgotPassword{Email: strings.TrimSpace(m.forgotForm.Value(0))}
	if err := forms.Check(form); err != nil {
		m.ops[cmdForgot].lastErr = err.Error()
		return nil
	}
	m.begin(cmdForgot)
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdForgot, forgotJob(m.config.Service, form.Email)))
}

func (m *model) submitReset() tea.Cmd {
	if m.busy(cmdReset) {
		m.notices.Post(noticeAuth, "Password reset already in progress…")
		return nil
	}
	form := forms.ResetPassword{
		Email:       strings.TrimSpace(m.resetForm.Value(resetEmail)),
		NewPassword: m.resetForm.Value(resetNewPassword),
		Confirm:     m.resetForm.Value(resetConfirm),
	}
	if err := forms.Check(form); err != nil {
		m.ops[cmdReset].lastErr = err.Error()
		return nil
	}
	m.begin(cmdReset)
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdReset, resetJob(m.config.Service, form.Email, form.NewPassword)))
}

func (m *model) submitCapture() tea.Cmd {
	raw := strings.TrimSpace(m.capture.Value())
	if raw == "" {
		m.notices.Post(noticeAuth, "Paste the full redirect link first.")
		return nil
	}
	captured, err := m.config.Session.CaptureFromRedirect(raw)
	if err != nil {
		m.notices.Fail(noticeAuth, "Storing the Google credential failed: "+err.Error())
		return nil
	}
	if !captured {
		m.notices.Fail(noticeAuth, "No token found in that link. Paste the full redirect URL, fragment included.")
		return nil
	}
	m.googlePaste = false
	m.capture.SetValue("")
	m.capture.Blur()
	return m.enterWorkspace()
}

// submitQuery appends the user's turn before anything leaves the machine, so
// the question survives whatever the network does to the answer.
func (m *model) submitQuery() tea.Cmd {
	question := strings.TrimSpace(m.composer.Value())
	if question == "" {
		return nil
	}
	if m.busy(cmdQuery) {
		m.notices.Post(noticeChat, "Still answering the previous question…")
		return nil
	}
	m.notices.Clear(noticeChat)
	m.chatLog.AppendUser(question)
	m.composer.SetValue("")
	m.markChatDirtyFollow()
	m.begin(cmdQuery)
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdQuery, queryJob(m.config.Service, m.epoch, question)))
}

func (m *model) submitUpload() tea.Cmd {
	if m.busy(cmdUpload) {
		m.notices.Post(noticeUpload, "An upload is already running…")
		return nil
	}
	path := strings.TrimSpace(m.uploadInput.Value())
	if err := forms.CheckUpload(path); err != nil {
		m.uploadInput.SetValue("")
		m.ops[cmdUpload].lastErr = err.Error()
		m.notices.Fail(noticeUpload, err.Error())
		return nil
	}
	m.begin(cmdUpload)
	m.focus = focusBrowse
	m.uploadInput.Blur()
	m.notices.Working(noticeUpload, "Uploading "+path+"…")
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdUpload, uploadJob(m.config.Service, m.epoch, path)))
}

func (m *model) submitFolder() tea.Cmd {
	if m.busy(cmdFolder) {
		m.notices.Post(noticeFolder, "Still saving the folder reference…")
		return nil
	}
	folderID := strings.TrimSpace(m.folderInput.Value())
	if err := forms.Check(forms.DriveFolder{FolderID: folderID}); err != nil {
		m.ops[cmdFolder].lastErr = err.Error()
		m.notices.Fail(noticeFolder, err.Error())
		return nil
	}
	m.begin(cmdFolder)
	m.focus = focusBrowse
	m.folderInput.Blur()
	m.notices.Working(noticeFolder, "Saving Drive folder reference…")
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdFolder, folderJob(m.config.Service, m.epoch, folderID)))
}

func (m *model) startDriveSync() tea.Cmd {
	if m.busy(cmdSync) {
		m.notices.Post(noticeSync, "Drive sync already running…")
		return nil
	}
	m.begin(cmdSync)
	m.notices.Working(noticeSync, "Syncing Google Drive folder…")
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdSync, syncJob(m.config.Service, m.epoch)))
}

func (m *model) exportTranscript() tea.Cmd {
	if m.chatLog.Len() == 0 {
		m.notices.Post(noticeExport, "Nothing to export yet.")
		return nil
	}
	if m.busy(cmdExport) {
		m.notices.Post(noticeExport, "Export already running…")
		return nil
	}
	m.begin(cmdExport)
	m.notices.Working(noticeExport, "Exporting transcript…")
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdExport, exportJob(m.epoch, m.config.TranscriptPath, m.chatLog.Turns())))
}

func (m *model) requestDelete() {
	name, ok := m.selectedDocument()
	if !ok {
		m.notices.Post(noticeDelete, "No document selected.")
		return
	}
	if m.deleting[name] {
		m.notices.Post(noticeDelete, "Already deleting "+name+"…")
		return
	}
	m.pendingDelete = name
}

func (m *model) confirmDelete() tea.Cmd {
	name := m.pendingDelete
	m.pendingDelete = ""
	if name == "" {
		return nil
	}
	m.deleting[name] = true
	m.ops[cmdDelete].lastErr = ""
	m.notices.Working(noticeDelete, "Deleting "+name+"…")
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdDelete, deleteJob(m.config.Service, m.epoch, name)))
}

// signOut drops the credential and redirects without waiting for the
// session's own change notification to come back around.
func (m *model) signOut() {
	err := m.config.Session.Logout()
	m.authed = false
	m.resetWorkspace()
	m.navigate(gate.SignIn)
	if err != nil {
		m.notices.Fail(noticeAuth, "Signed out, but clearing the saved credential failed: "+err.Error())
		return
	}
	m.notices.Post(noticeAuth, "Signed out.")
}

func (m *model) enterGooglePaste() {
	m.googlePaste = true
	m.signInForm.Blur()
	m.capture.SetValue("")
	m.capture.Focus()
}

// enterWorkspace opens a fresh home view after a credential was activated.
func (m *model) enterWorkspace() tea.Cmd {
	m.authed = true
	m.resetWorkspace()
	m.navigate(gate.Home)
	if identity, ok := m.config.Session.Identity(); ok {
		m.notices.Post(noticeAuth, "Signed in as "+identity.Subject+".")
	} else {
		m.notices.Post(noticeAuth, "Signed in.")
	}
	return m.refreshDocuments()
}

// resetWorkspace wipes every per-sign-in piece of state and advances the
// epoch so in-flight results from the old sign-in settle as no-ops.
func (m *model) resetWorkspace() {
	m.epoch++
	m.chatLog = &transcript.Log{}
	m.documents = nil
	m.docCursor = 0
	m.deleting = map[string]bool{}
	m.pendingDelete = ""
	for _, slot := range m.ops {
		slot.busy = false
		slot.lastErr = ""
	}
	m.composer.SetValue("")
	m.uploadInput.SetValue("")
	m.uploadInput.Blur()
	m.folderInput.SetValue("")
	m.folderInput.Blur()
	m.capture.SetValue("")
	m.capture.Blur()
	m.googlePaste = false
	m.notices.ClearAll()
	m.helpVisible = false
	m.focus = focusComposer
	m.markChatDirty()
}

// navigate moves to view, coercing protected destinations to sign-in when
// no credential is held. Each auth view starts from a clean form.
func (m *model) navigate(view gate.View) {
	if gate.Guard(view, m.config.Session.IsAuthenticated()) == gate.RedirectToSignIn {
		view = gate.SignIn
	}
	m.view = view
	switch view {
	case gate.SignIn:
		m.signInForm.Reset()
		m.googlePaste = false
		m.capture.SetValue("")
		m.capture.Blur()
		m.ops[cmdLogin].lastErr = ""
	case gate.Register:
		m.registerForm.Reset()
		m.ops[cmdRegister].lastErr = ""
	case gate.ForgotPassword:
		m.forgotForm.Reset()
		m.ops[cmdForgot].lastErr = ""
	case gate.ResetPassword:
		m.resetForm.Reset()
		m.ops[cmdReset].lastErr = ""
	case gate.Home:
		m.focus = focusComposer
		m.composer.Focus()
	}
}

func (m *model) refreshDocuments() tea.Cmd {
	m.begin(cmdList)
	return tea.Batch(m.spinner.Tick, m.bus.Start(cmdList, listJob(m.config.Service, m.epoch)))
}

func (m *model) moveDocCursor(delta int) {
	if len(m.documents) == 0 {
		return
	}
	target := m.docCursor + delta
	if target < 0 {
		target = 0
	}
	if target >= len(m.documents) {
		target = len(m.documents) - 1
	}
	m.docCursor = target
}

func (m *model) clampDocCursor() {
	if m.docCursor >= len(m.documents) {
		m.docCursor = len(m.documents) - 1
	}
	if m.docCursor < 0 {
		m.docCursor = 0
	}
}

func (m *model) selectedDocument() (string, bool) {
	if len(m.documents) == 0 {
		return "", false
	}
	m.clampDocCursor()
	return m.documents[m.docCursor], true
}

func (m *model) begin(c command) {
	slot := m.ops[c]
	slot.busy = true
	slot.lastErr = ""
}

func (m *model) settle(c command, err error) {
	slot := m.ops[c]
	slot.busy = false
	if err != nil {
		slot.lastErr = api.Detail(err)
	} else {
		slot.lastErr = ""
	}
}

func (m *model) busy(c command) bool {
	return m.ops[c].busy
}

func (m *model) spinnerNeeded() bool {
	if len(m.deleting) > 0 {
		return true
	}
	for _, slot := range m.ops {
		if slot.busy {
			return true
		}
	}
	return false
}

func (m *model) markChatDirty() {
	m.chatDirty = true
}

func (m *model) markChatDirtyFollow() {
	m.chatDirty = true
	m.chatFollow = true
}

func (m *model) refreshChatIfDirty() {
	if !m.chatDirty {
		return
	}
	m.chatDirty = false
	m.chat.SetContent(m.buildChatContent())
	if m.chatFollow {
		m.chat.GotoBottom()
		m.chatFollow = false
	}
}
