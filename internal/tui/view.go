package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/queryprism/prism/internal/gate"
)

func (m *model) View() string {
	switch m.view {
	case gate.Home:
		return m.viewHome()
	case gate.Register:
		return m.viewRegister()
	case gate.ForgotPassword:
		return m.viewForgotPassword()
	case gate.ResetPassword:
		return m.viewResetPassword()
	default:
		return m.viewSignIn()
	}
}

func (m *model) viewSignIn() string {
	parts := []string{m.heroView(), m.serverLine()}
	parts = append(parts, m.authFormView("Sign in", &m.signInForm, cmdLogin, "Signing in…",
		"Enter signs in • Tab moves between fields."))
	if m.googlePaste {
		parts = append(parts, m.googleCaptureView())
	} else {
		parts = append(parts, helperStyle.Render("Ctrl+G Google sign-in • Ctrl+N create account • Ctrl+R forgot password • Ctrl+C quit"))
	}
	parts = append(parts, m.noticesView())
	return joinNonEmpty(parts)
}

func (m *model) viewRegister() string {
	parts := []string{m.heroView(), m.serverLine()}
	parts = append(parts, m.authFormView("Create account", &m.registerForm, cmdRegister, "Creating account…",
		"Enter submits • Tab moves between fields • Esc back to sign-in."))
	parts = append(parts, m.noticesView())
	return joinNonEmpty(parts)
}

func (m *model) viewForgotPassword() string {
	parts := []string{m.heroView(), m.serverLine()}
	parts = append(parts, m.authFormView("Forgot password", &m.forgotForm, cmdForgot, "Requesting reset…",
		"Enter requests a reset • Esc back to sign-in."))
	parts = append(parts, m.noticesView())
	return joinNonEmpty(parts)
}

func (m *model) viewResetPassword() string {
	parts := []string{m.heroView(), m.serverLine()}
	parts = append(parts, m.authFormView("Reset password", &m.resetForm, cmdReset, "Resetting password…",
		"Enter sets the new password • Tab moves between fields • Esc back to sign-in."))
	parts = append(parts, m.noticesView())
	return joinNonEmpty(parts)
}

func (m *model) viewHome() string {
	m.refreshChatIfDirty()
	parts := []string{
		m.heroView(),
		m.statusBarView(),
		m.documentsPanel(),
		m.chatPanel(),
		m.noticesView(),
		m.actionPanel(),
		helperStyle.Render(m.homeHintLine()),
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	return joinNonEmpty(parts)
}

// authFormView renders one auth form: its inputs top to bottom, the
// command's error surface, a progress line while the command runs, and the
// key hints.
func (m *model) authFormView(title string, form *authForm, c command, workingLabel string, hints ...string) string {
	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render(title))
	b.WriteRune('\n')
	for i := range form.inputs {
		b.WriteString(form.inputs[i].View())
		b.WriteRune('\n')
	}
	if lastErr := m.ops[c].lastErr; lastErr != "" {
		b.WriteString(errorStyle.Render(lastErr))
		b.WriteRune('\n')
	}
	if m.busy(c) {
		b.WriteString(helperStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), workingLabel)))
		b.WriteRune('\n')
	}
	for _, hint := range hints {
		b.WriteString(helperStyle.Render(hint))
		b.WriteRune('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) googleCaptureView() string {
	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render("Google sign-in"))
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Open this address in your browser and approve access:"))
	b.WriteRune('\n')
	b.WriteString(linkStyle.Render(m.config.Service.GoogleLoginURL()))
	b.WriteRune('\n')
	b.WriteString(m.capture.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Paste the redirect link here. Enter captures the token, Esc cancels."))
	return b.String()
}

func (m *model) actionPanel() string {
	switch m.focus {
	case focusUpload:
		return joinNonEmpty([]string{
			sectionHeaderStyle.Render("Upload Document"),
			m.uploadInput.View(),
			m.slotErrLine(cmdUpload),
		})
	case focusDrive:
		return joinNonEmpty([]string{
			sectionHeaderStyle.Render("Google Drive Folder"),
			m.folderInput.View(),
			m.slotErrLine(cmdFolder),
		})
	default:
		return joinNonEmpty([]string{
			sectionHeaderStyle.Render("Composer"),
			m.composer.View(),
		})
	}
}

func (m *model) chatPanel() string {
	parts := []string{sectionHeaderStyle.Render("Conversation"), m.chat.View()}
	if m.busy(cmdQuery) {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("%s Answering…", m.spinner.View())))
	}
	return strings.Join(parts, "\n")
}

func (m *model) homeHintLine() string {
	switch m.focus {
	case focusComposer:
		return "Enter asks • Esc browses documents • Ctrl+C quits."
	case focusUpload:
		return "Enter uploads (PDF, CSV, DOC, DOCX) • Esc cancels."
	case focusDrive:
		return "Enter saves the folder reference • Esc cancels."
	default:
		return "i compose • j/k select • d delete • u upload • f drive folder • s sync • r refresh • t export • o sign out • ? keys • q quit"
	}
}

func (m *model) slotErrLine(c command) string {
	if m.ops[c].lastErr == "" {
		return ""
	}
	return errorStyle.Render(m.ops[c].lastErr)
}

func (m *model) serverLine() string {
	if m.config.ServerURL == "" {
		return ""
	}
	return helperStyle.Render("Server: " + m.config.ServerURL)
}

func (m *model) noticesView() string {
	items := m.notices.Items()
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, n := range items {
		switch {
		case n.failed:
			lines = append(lines, errorStyle.Render(n.text))
		case n.working:
			lines = append(lines, helperStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), n.text)))
		default:
			lines = append(lines, helperStyle.Render(n.text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *model) statusBarView() string {
	stats := []string{"Prism"}
	if identity, ok := m.config.Session.Identity(); ok {
		stats = append(stats, "Signed in as "+identity.Subject)
	}
	stats = append(stats, fmt.Sprintf("Documents %d", len(m.documents)))
	stats = append(stats, fmt.Sprintf("Turns %d", m.chatLog.Len()))
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.jobs) == 0 {
		return nil
	}
	badges := make([]string, 0, len(m.jobs))
	for _, snapshot := range m.jobs {
		badges = append(badges, fmt.Sprintf("%s…", snapshot.Command))
	}
	sort.Strings(badges)
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"i / Enter", "Focus composer"},
		{"j/k", "Select document"},
		{"d", "Delete selected"},
		{"u", "Upload document"},
		{"f", "Drive folder"},
		{"s", "Sync Drive"},
		{"r", "Refresh list"},
		{"t", "Export transcript"},
		{"g/G", "Chat top/bottom"},
		{"o", "Sign out"},
		{"?", "Toggle this panel"},
		{"q", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Key Bindings")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderLogo(),
		taglineStyle.Render(heroTagline),
	)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width += 1 // allow horizontal shadow shift
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	// draw shadow first (offset down/right)
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}

	// draw face on top
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	linkStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true)

	heroAccentColor        = lipgloss.Color("#7f5af0")
	heroBaseColor          = lipgloss.Color("#16161e")
	heroTextColor          = lipgloss.Color("#e0def4")
	heroSecondaryTextColor = lipgloss.Color("#94a1b2")

	taglineStyle        = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#9ccfd8")).Padding(0, 1)
	keyStyle            = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	selectedRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	deletingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3a3a3")).Italic(true)
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	logoFaceStyle       = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroBaseColor)
	logoShadowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0b0b10"))
	logoContainerStyle  = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines        = []string{
		"██████╗   ██████╗   ██╗  ███████╗  ███╗   ███╗",
		"██╔══██╗  ██╔══██╗  ██║  ██╔════╝  ████╗ ████║",
		"██████╔╝  ██████╔╝  ██║  ███████╗  ██╔████╔██║",
		"██╔═══╝   ██╔══██╗  ██║  ╚════██║  ██║╚██╔╝██║",
		"██║       ██║  ██║  ██║  ███████║  ██║ ╚═╝ ██║",
		"╚═╝       ╚═╝  ╚═╝  ╚═╝  ╚══════╝  ╚═╝     ╚═╝",
	}
)
