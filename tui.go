package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nativo/api"
	"nativo/lang"
	"nativo/quota"
	"nativo/session"
	"nativo/store"
)

// TUI message types
type RecordingStartMsg struct{ Side session.Side }
type RecordingStopMsg struct{ Side session.Side }
type RecordingTickMsg struct {
	Side      session.Side
	Remaining int
}
type TranslationMsg struct{ Result session.Result }
type QuotaMsg struct{ Snap quota.Snapshot }
type QuotaExhaustedMsg struct{}
type NoticeMsg struct{ Text string }
type ErrorMsg struct{ Text string }
type LoginDoneMsg struct {
	Token string
	Err   error
}
type PurchaseDoneMsg struct {
	Balances session.Balances
	Err      error
}
type submitDoneMsg struct{}
type tickMsg time.Time

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// tuiSink forwards session events into the Bubble Tea loop.
type tuiSink struct{}

func (tuiSink) RecordingStart(side session.Side) { tuiSend(RecordingStartMsg{Side: side}) }
func (tuiSink) RecordingStop(side session.Side)  { tuiSend(RecordingStopMsg{Side: side}) }
func (tuiSink) RecordingTick(side session.Side, remaining int) {
	tuiSend(RecordingTickMsg{Side: side, Remaining: remaining})
}
func (tuiSink) Translation(res session.Result)   { tuiSend(TranslationMsg{Result: res}) }
func (tuiSink) QuotaChanged(snap quota.Snapshot) { tuiSend(QuotaMsg{Snap: snap}) }
func (tuiSink) QuotaExhausted()                  { tuiSend(QuotaExhaustedMsg{}) }
func (tuiSink) Notice(text string)               { tuiSend(NoticeMsg{Text: text}) }
func (tuiSink) Error(text string)                { tuiSend(ErrorMsg{Text: text}) }

type tuiView int

const (
	viewMain tuiView = iota
	viewLogin
	viewText
	viewPhoto
	viewStore
	viewHistory
	viewSettings
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	recStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpBold      = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

type tuiModel struct {
	sess   *session.Session
	client *api.Client
	kv     store.KV

	width, height int
	view          tuiView

	quotaSnap  quota.Snapshot
	quotaKnown bool

	countdown [2]int // remaining seconds, -1 when idle
	lastRes   *session.Result
	copied    bool
	notice    string
	errText   string

	// language column cursors, indexes into lang.Catalog
	leftIdx, rightIdx int

	// text entry
	input     string
	inputSide session.Side

	// login form
	loginEmail    string
	loginPassword string
	loginField    int // 0 = email, 1 = password
	loggingIn     bool

	storeCursor int
	buying      bool
}

func newTUIModel(sess *session.Session, client *api.Client, kv store.KV) tuiModel {
	m := tuiModel{
		sess:      sess,
		client:    client,
		kv:        kv,
		countdown: [2]int{-1, -1},
	}
	p := sess.Pair()
	m.leftIdx = catalogIndex(p.Left.Code)
	m.rightIdx = catalogIndex(p.Right.Code)
	if store.Token(kv) == "" {
		m.view = viewLogin
	}
	return m
}

func catalogIndex(code string) int {
	for i, l := range lang.Catalog {
		if l.Code == code {
			return i
		}
	}
	return 0
}

func NewTUIProgram(sess *session.Session, client *api.Client, kv store.KV) *tea.Program {
	return tea.NewProgram(newTUIModel(sess, client, kv), tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(tuiTick(), func() tea.Msg {
		m.sess.RefreshQuota(context.Background())
		return nil
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		// Drive the lane countdowns. Tick may trigger the stop/submit
		// sequence, so it runs off the UI goroutine.
		cmds := []tea.Cmd{tuiTick()}
		for _, side := range []session.Side{session.Left, session.Right} {
			if m.sess.Recording(side) {
				s := side
				cmds = append(cmds, func() tea.Msg {
					m.sess.Tick(context.Background(), s)
					return nil
				})
			}
		}
		return m, tea.Batch(cmds...)

	case RecordingStartMsg:
		m.countdown[msg.Side] = m.sess.Countdown(msg.Side)
		m.notice = ""
		m.errText = ""

	case RecordingTickMsg:
		m.countdown[msg.Side] = msg.Remaining

	case RecordingStopMsg:
		m.countdown[msg.Side] = -1

	case TranslationMsg:
		res := msg.Result
		m.lastRes = &res
		m.copied = false
		m.errText = ""
		m.notice = ""

	case QuotaMsg:
		m.quotaSnap = msg.Snap
		m.quotaKnown = true

	case QuotaExhaustedMsg:
		m.errText = ""
		m.notice = "Out of quota. Press b to top up."

	case NoticeMsg:
		m.notice = msg.Text

	case ErrorMsg:
		m.errText = msg.Text

	case LoginDoneMsg:
		m.loggingIn = false
		if msg.Err != nil {
			m.errText = "login failed, check your credentials"
			break
		}
		if err := store.SaveToken(m.kv, msg.Token); err != nil {
			m.errText = "could not save login"
			break
		}
		m.view = viewMain
		m.errText = ""
		return m, func() tea.Msg {
			m.sess.RefreshQuota(context.Background())
			return nil
		}

	case PurchaseDoneMsg:
		m.buying = false
		if msg.Err == nil {
			m.notice = fmt.Sprintf("Purchase complete: %d credits, %d scans", msg.Balances.Credits, msg.Balances.Scans)
			m.view = viewMain
		}
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewLogin:
		return m.handleLoginKey(msg)
	case viewText:
		return m.handleTextKey(msg)
	case viewPhoto:
		return m.handlePhotoKey(msg)
	case viewStore:
		return m.handleStoreKey(key)
	case viewHistory:
		return m.handleHistoryKey(key)
	case viewSettings:
		return m.handleSettingsKey(key)
	}

	switch key {
	case "tab":
		if _, err := m.sess.ToggleLock(); err != nil {
			m.notice = "finish the current recording first"
		} else {
			m.notice = ""
			m.errText = ""
		}

	case "1", "2":
		side := session.Left
		if key == "2" {
			side = session.Right
		}
		return m, func() tea.Msg {
			m.sess.StartStop(context.Background(), side)
			return submitDoneMsg{}
		}

	case "up", "down":
		if m.sess.Locked() {
			break
		}
		m.leftIdx = m.cycleLanguage(m.leftIdx, key == "down", true)
	case "shift+up", "shift+down", "K", "J":
		if m.sess.Locked() {
			break
		}
		m.rightIdx = m.cycleLanguage(m.rightIdx, key == "shift+down" || key == "J", false)

	case "w":
		if err := m.sess.SwapPair(); err == nil {
			m.leftIdx, m.rightIdx = m.rightIdx, m.leftIdx
		}

	case "t", "T":
		m.view = viewText
		m.input = ""
		m.inputSide = session.Left
		if key == "T" {
			m.inputSide = session.Right
		}

	case "p":
		m.view = viewPhoto
		m.input = ""

	case "b":
		m.view = viewStore
		m.storeCursor = 0

	case "h":
		m.view = viewHistory

	case "s":
		m.view = viewSettings

	case "c":
		if m.lastRes != nil {
			if err := clipboard.WriteAll(m.lastRes.Translated); err == nil {
				m.copied = true
			}
		}

	case "r":
		return m, func() tea.Msg {
			m.sess.RefreshQuota(context.Background())
			return nil
		}
	}
	return m, nil
}

// cycleLanguage moves a column cursor, skipping the language held by
// the other side so the pair stays distinct.
func (m *tuiModel) cycleLanguage(idx int, forward, left bool) int {
	n := len(lang.Catalog)
	step := 1
	if !forward {
		step = n - 1
	}
	next := idx
	for i := 0; i < n; i++ {
		next = (next + step) % n
		code := lang.Catalog[next].Code
		var err error
		if left {
			err = m.sess.SelectLeft(code)
		} else {
			err = m.sess.SelectRight(code)
		}
		if err == nil {
			return next
		}
	}
	return idx
}

func (m tuiModel) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := &m.loginEmail
	if m.loginField == 1 {
		field = &m.loginPassword
	}
	switch msg.String() {
	case "tab", "down", "up":
		m.loginField = 1 - m.loginField
	case "enter":
		if m.loggingIn || m.loginEmail == "" || m.loginPassword == "" {
			break
		}
		m.loggingIn = true
		email, password := m.loginEmail, m.loginPassword
		return m, func() tea.Msg {
			token, err := m.client.Login(context.Background(), email, password)
			return LoginDoneMsg{Token: token, Err: err}
		}
	case "backspace":
		if len(*field) > 0 {
			*field = (*field)[:len(*field)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			*field += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			*field += " "
		}
	}
	return m, nil
}

func (m tuiModel) handleTextKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewMain
	case "enter":
		text := strings.TrimSpace(m.input)
		if text == "" {
			break
		}
		m.view = viewMain
		m.input = ""
		side := m.inputSide
		return m, func() tea.Msg {
			m.sess.SubmitText(context.Background(), side, text)
			return submitDoneMsg{}
		}
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m, nil
}

func (m tuiModel) handlePhotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewMain
	case "enter":
		path := strings.TrimSpace(m.input)
		if path == "" {
			break
		}
		m.view = viewMain
		m.input = ""
		return m, func() tea.Msg {
			data, err := os.ReadFile(path)
			if err != nil {
				return ErrorMsg{Text: "could not read " + path}
			}
			m.sess.SubmitPhoto(context.Background(), data, filepathBase(path))
			return submitDoneMsg{}
		}
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m, nil
}

func filepathBase(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func (m tuiModel) handleStoreKey(key string) (tea.Model, tea.Cmd) {
	bundles := session.Bundles()
	switch key {
	case "esc", "b":
		m.view = viewMain
	case "up", "k":
		if m.storeCursor > 0 {
			m.storeCursor--
		}
	case "down", "j":
		if m.storeCursor < len(bundles)-1 {
			m.storeCursor++
		}
	case "enter":
		if m.buying {
			break
		}
		m.buying = true
		plan := bundles[m.storeCursor].Plan
		return m, func() tea.Msg {
			bal, err := m.sess.Buy(context.Background(), plan)
			return PurchaseDoneMsg{Balances: bal, Err: err}
		}
	}
	return m, nil
}

func (m tuiModel) handleHistoryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "h":
		m.view = viewMain
	case "x":
		store.ClearHistory(m.kv)
	}
	return m, nil
}

func (m tuiModel) handleSettingsKey(key string) (tea.Model, tea.Cmd) {
	cfg := m.sess.Settings()
	genders := []string{"neutral", "female", "male"}
	next := func(cur string) string {
		for i, g := range genders {
			if g == cur {
				return genders[(i+1)%len(genders)]
			}
		}
		return genders[0]
	}

	switch key {
	case "esc", "s":
		m.view = viewMain
		return m, nil
	case "1":
		cfg.Speaker1Gender = next(cfg.Speaker1Gender)
	case "2":
		cfg.Speaker2Gender = next(cfg.Speaker2Gender)
	case "f":
		if cfg.Formality == "formal" {
			cfg.Formality = "casual"
		} else {
			cfg.Formality = "formal"
		}
	case "a":
		cfg.Autoplay = !cfg.Autoplay
	case "+", "=":
		if cfg.RecordDuration < 30 {
			cfg.RecordDuration++
		}
	case "-":
		if cfg.RecordDuration > 1 {
			cfg.RecordDuration--
		}
	default:
		return m, nil
	}
	m.sess.UpdateSettings(cfg)
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	switch m.view {
	case viewLogin:
		return m.viewLoginScreen()
	case viewText:
		return m.viewInputScreen(fmt.Sprintf("Type text to translate (%s side)", m.inputSide))
	case viewPhoto:
		return m.viewInputScreen("Path to an image to translate")
	case viewStore:
		return m.viewStoreScreen()
	case viewHistory:
		return m.viewHistoryScreen()
	case viewSettings:
		return m.viewSettingsScreen()
	}
	return m.viewMainScreen()
}

func (m tuiModel) quotaLine() string {
	if !m.quotaKnown {
		return dimStyle.Render("quota: loading...")
	}
	s := m.quotaSnap
	line := fmt.Sprintf("quota: %d credits | %ds speech | %d scans", s.CreditsLeft, s.SecondsLeft(), s.RemainingScans)
	if s.Plan != "" {
		line += " | " + s.Plan
	}
	return dimStyle.Render(line)
}

func (m tuiModel) renderColumn(side session.Side, idx int) string {
	l := lang.Catalog[idx]
	var b strings.Builder

	name := fmt.Sprintf("%s %s", l.Flag, l.Label)
	if m.sess.Locked() {
		b.WriteString(lockedStyle.Render(name))
	} else {
		b.WriteString(selectedStyle.Render(name))
	}
	b.WriteString("\n")

	if m.countdown[side] >= 0 {
		b.WriteString(recStyle.Render(fmt.Sprintf("● REC %ds", m.countdown[side])))
	} else if m.sess.Locked() {
		key := "1"
		if side == session.Right {
			key = "2"
		}
		b.WriteString(dimStyle.Render("press " + key + " to speak"))
	} else {
		b.WriteString(dimStyle.Render("unlocked"))
	}
	return b.String()
}

func (m tuiModel) viewMainScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nativo") + dimStyle.Render("  "+version) + "\n\n")
	b.WriteString(m.quotaLine() + "\n\n")

	colWidth := m.width/2 - 2
	if colWidth < 18 {
		colWidth = 18
	}
	left := lipgloss.NewStyle().Width(colWidth).Render(m.renderColumn(session.Left, m.leftIdx))
	right := lipgloss.NewStyle().Width(colWidth).Render(m.renderColumn(session.Right, m.rightIdx))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right) + "\n\n")

	if m.sess.Locked() {
		b.WriteString(lockedStyle.Render("● session locked") + dimStyle.Render("  (tab to unlock)") + "\n\n")
	} else {
		b.WriteString(dimStyle.Render("○ unlocked — arrows pick left, J/K pick right, w swaps, tab locks") + "\n\n")
	}

	if m.lastRes != nil {
		r := m.lastRes
		b.WriteString(labelStyle.Render(fmt.Sprintf("%s → %s (%s)", r.From, r.To, r.Kind)) + "\n")
		b.WriteString(dimStyle.Render(r.Original) + "\n")
		b.WriteString(resultStyle.Render(r.Translated))
		if m.copied {
			b.WriteString(" " + selectedStyle.Render("[✓ copied]"))
		}
		b.WriteString("\n\n")
	}

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpBold.Render("1/2") + helpStyle.Render(" record  ") +
		helpBold.Render("t/T") + helpStyle.Render(" text  ") +
		helpBold.Render("p") + helpStyle.Render(" photo  ") +
		helpBold.Render("b") + helpStyle.Render(" store  ") +
		helpBold.Render("h") + helpStyle.Render(" history  ") +
		helpBold.Render("s") + helpStyle.Render(" settings  ") +
		helpBold.Render("c") + helpStyle.Render(" copy  ") +
		helpBold.Render("ctrl+c") + helpStyle.Render(" quit"))
	return b.String()
}

func (m tuiModel) viewLoginScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nativo — sign in") + "\n\n")

	emailLabel := labelStyle.Render("email:    ")
	passLabel := labelStyle.Render("password: ")
	if m.loginField == 0 {
		emailLabel = selectedStyle.Render("email:    ")
	} else {
		passLabel = selectedStyle.Render("password: ")
	}
	b.WriteString(emailLabel + m.loginEmail + "\n")
	b.WriteString(passLabel + strings.Repeat("*", len(m.loginPassword)) + "\n\n")

	if m.loggingIn {
		b.WriteString(dimStyle.Render("signing in...") + "\n")
	}
	if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab switches fields, enter signs in, ctrl+c quits"))
	return b.String()
}

func (m tuiModel) viewInputScreen(prompt string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nativo") + "\n\n")
	b.WriteString(labelStyle.Render(prompt) + "\n\n")
	b.WriteString("> " + m.input + "▌\n\n")
	b.WriteString(helpStyle.Render("enter submits, esc cancels"))
	return b.String()
}

func (m tuiModel) viewStoreScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nativo — store") + "\n\n")
	b.WriteString(m.quotaLine() + "\n\n")

	for i, bundle := range session.Bundles() {
		line := fmt.Sprintf("%-10s %3d credits, %2d scans   $%.2f", bundle.Label, bundle.Credits, bundle.Scans, bundle.PriceUSD)
		if i == m.storeCursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(labelStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n")
	if m.buying {
		b.WriteString(dimStyle.Render("processing purchase...") + "\n")
	}
	if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText) + "\n")
	}
	b.WriteString(helpStyle.Render("enter buys, esc goes back"))
	return b.String()
}

func (m tuiModel) viewHistoryScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nativo — history") + "\n\n")

	entries := store.History(m.kv)
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("No translations yet") + "\n")
	}
	max := len(entries)
	if limit := m.height - 8; limit > 0 && max > limit/3 {
		max = limit / 3
	}
	for _, e := range entries[:max] {
		header := fmt.Sprintf("%s  %s → %s (%s)", e.Timestamp.Format("Jan 2 15:04"), e.From, e.To, e.Type)
		b.WriteString(dimStyle.Render(header) + "\n")
		b.WriteString(labelStyle.Render(e.Original) + "\n")
		b.WriteString(resultStyle.Render(e.Translated) + "\n\n")
	}
	b.WriteString(helpStyle.Render("x clears history, esc goes back"))
	return b.String()
}

func (m tuiModel) viewSettingsScreen() string {
	cfg := m.sess.Settings()
	var b strings.Builder
	b.WriteString(titleStyle.Render("nativo — settings") + "\n\n")

	autoplay := "off"
	if cfg.Autoplay {
		autoplay = "on"
	}
	rows := []struct{ key, label, value string }{
		{"1", "speaker gender", cfg.Speaker1Gender},
		{"2", "listener gender", cfg.Speaker2Gender},
		{"f", "formality", cfg.Formality},
		{"a", "autoplay", autoplay},
		{"+/-", "record duration", fmt.Sprintf("%ds", cfg.RecordDuration)},
	}
	for _, r := range rows {
		b.WriteString(helpBold.Render(fmt.Sprintf("%-4s", r.key)) +
			labelStyle.Render(fmt.Sprintf("%-16s", r.label)) +
			selectedStyle.Render(r.value) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("esc goes back"))
	return b.String()
}
