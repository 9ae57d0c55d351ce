// Package dashboard provides the developer harness's terminal UI using
// Bubble Tea: a live aEEG trend per channel, a GS histogram bar chart,
// and the current gain/filter settings, with keybindings to change them.
//
// Mirrors the teacher's internal/display conventions: a UI type that
// owns the tea.Program, thread-safe Push* methods that Send messages
// into the event loop, and callback hooks for keybindings the caller
// wires up (rather than the dashboard importing param/acquisition
// directly, keeping it a pure presentation layer).
package dashboard

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aeegmon/core/internal/domain"
)

var (
	brandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	traceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	histStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	satStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)
)

const channelCount = 4

// ParamsView is the subset of the active runtime parameters the
// dashboard renders; decoupled from param.Settings so this package
// never imports the control layer.
type ParamsView struct {
	GainUVPerCM int
	LPFCutoffHz float64
	HPFCutoffHz float64
	NotchOn     bool
}

// UI owns the Bubble Tea program. Call Run (blocking) after wiring
// callbacks and before any Push* call.
type UI struct {
	program *tea.Program
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool

	onGainCycle func()
	onLPFCycle  func()
	onHPFCycle  func()
	onNotch     func()
	onCopyDiag  func() string
}

// NewUI creates the dashboard. Call Run() to start the event loop.
func NewUI() *UI {
	return &UI{
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// OnGainCycle registers the 'g' keybinding handler.
func (u *UI) OnGainCycle(fn func()) { u.onGainCycle = fn }

// OnLPFCycle registers the 'l' keybinding handler.
func (u *UI) OnLPFCycle(fn func()) { u.onLPFCycle = fn }

// OnHPFCycle registers the 'h' keybinding handler.
func (u *UI) OnHPFCycle(fn func()) { u.onHPFCycle = fn }

// OnNotchToggle registers the 'n' keybinding handler.
func (u *UI) OnNotchToggle(fn func()) { u.onNotch = fn }

// OnCopyDiagnostics registers the 'c' keybinding handler; its return
// value is written to the clipboard by the caller, not this package.
func (u *UI) OnCopyDiagnostics(fn func() string) { u.onCopyDiag = fn }

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// PushAeeg updates channel ch's latest closed aEEG window. Thread-safe.
func (u *UI) PushAeeg(ch int, out domain.AeegOutput) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(aeegMsg{ch: ch, out: out})
	}
}

// PushGsFrame updates channel ch's latest closed GS histogram frame.
// Thread-safe.
func (u *UI) PushGsFrame(ch int, frame domain.GsFrame) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(gsFrameMsg{ch: ch, frame: frame})
	}
}

// PushParams updates the displayed parameter settings. Thread-safe.
func (u *UI) PushParams(p ParamsView) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(paramsMsg{p: p})
	}
}

// PushAuditLine appends one line to the scrolling audit tail. Thread-safe.
func (u *UI) PushAuditLine(line string) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(auditLineMsg{line: line})
	}
}

// PushCopyStatus shows a transient status line after a clipboard copy.
func (u *UI) PushCopyStatus(status string) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(copyStatusMsg{status: status})
	}
}

// PushAlarm shows or clears the urgent alarm banner, e.g. on DeviceLost
// or a sustained playback sync violation.
func (u *UI) PushAlarm(active bool, reason string) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(alarmMsg{active: active, reason: reason})
	}
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	m := model{readyCh: u.readyCh, ui: u, spinner: newSpinner()}
	u.program = tea.NewProgram(m, tea.WithAltScreen())
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type channelState struct {
	lastAeeg   domain.AeegOutput
	hasAeeg    bool
	lastFrame  domain.GsFrame
	hasFrame   bool
	frameCount int
}

type model struct {
	readyCh  chan struct{}
	ui       *UI
	channels [channelCount]channelState
	params   ParamsView
	width    int
	height   int
	auditLog []string
	copyMsg  string
	alarmOn  bool
	alarmWhy string
	spinner  spinner.Model
}

type aeegMsg struct {
	ch  int
	out domain.AeegOutput
}

type gsFrameMsg struct {
	ch    int
	frame domain.GsFrame
}

type paramsMsg struct{ p ParamsView }

type auditLineMsg struct{ line string }

type copyStatusMsg struct{ status string }

type alarmMsg struct {
	active bool
	reason string
}

// newSpinner builds the "warming up" spinner shown for a channel before
// its first aEEG window has closed.
func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = hintStyle
	return sp
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(signalReady(m.readyCh), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "g":
			if m.ui.onGainCycle != nil {
				m.ui.onGainCycle()
			}
		case "l":
			if m.ui.onLPFCycle != nil {
				m.ui.onLPFCycle()
			}
		case "h":
			if m.ui.onHPFCycle != nil {
				m.ui.onHPFCycle()
			}
		case "n":
			if m.ui.onNotch != nil {
				m.ui.onNotch()
			}
		case "c":
			if m.ui.onCopyDiag != nil {
				m.ui.onCopyDiag()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case aeegMsg:
		if msg.ch >= 0 && msg.ch < channelCount {
			m.channels[msg.ch].lastAeeg = msg.out
			m.channels[msg.ch].hasAeeg = true
		}
		return m, nil

	case gsFrameMsg:
		if msg.ch >= 0 && msg.ch < channelCount {
			m.channels[msg.ch].lastFrame = msg.frame
			m.channels[msg.ch].hasFrame = true
			m.channels[msg.ch].frameCount++
		}
		return m, nil

	case paramsMsg:
		m.params = msg.p
		return m, nil

	case auditLineMsg:
		m.auditLog = append(m.auditLog, msg.line)
		const maxTail = 8
		if len(m.auditLog) > maxTail {
			m.auditLog = m.auditLog[len(m.auditLog)-maxTail:]
		}
		return m, nil

	case copyStatusMsg:
		m.copyMsg = msg.status
		return m, nil

	case alarmMsg:
		m.alarmOn = msg.active
		m.alarmWhy = msg.reason
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	w := m.width
	if w <= 0 {
		w = 96
	}

	var b strings.Builder
	b.WriteString(brandStyle.Render("  aeegmon-sim") + "\n")
	if m.alarmOn {
		b.WriteString(urgentStyle.Render("  ALARM: "+m.alarmWhy) + "\n")
	}
	b.WriteString("\n")

	for ch := 0; ch < channelCount; ch++ {
		b.WriteString(m.renderChannelLine(ch, w) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderHistogram(0, w) + "\n\n")
	b.WriteString(m.renderParams() + "\n\n")

	if len(m.auditLog) > 0 {
		b.WriteString(labelStyle.Render("  audit:") + "\n")
		for _, line := range m.auditLog {
			b.WriteString(hintStyle.Render("    "+line) + "\n")
		}
		b.WriteString("\n")
	}

	if m.copyMsg != "" {
		b.WriteString(valueStyle.Render("  "+m.copyMsg) + "\n\n")
	}

	b.WriteString(hintStyle.Render("  g gain   l lpf   h hpf   n notch   c copy diagnostics   q quit"))
	return b.String()
}

func (m model) renderChannelLine(ch int, width int) string {
	cs := m.channels[ch]
	label := labelStyle.Render(fmt.Sprintf("  ch%d ", ch+1))
	if !cs.hasAeeg {
		return label + m.spinner.View() + hintStyle.Render(" warming up...")
	}
	barWidth := width - 28 // leave room for label + numeric readout
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 60 {
		barWidth = 60
	}
	bar := sparkBar(cs.lastAeeg.MinUV, cs.lastAeeg.MaxUV, 30.0, barWidth)
	qual := ""
	if cs.lastAeeg.Quality == domain.Saturated {
		qual = satStyle.Render(" SAT")
	}
	return fmt.Sprintf("%s%s %s%s",
		label,
		traceStyle.Render(bar),
		hintStyle.Render(fmt.Sprintf("%5.1f-%5.1fuV", cs.lastAeeg.MinUV, cs.lastAeeg.MaxUV)),
		qual,
	)
}

// sparkBar renders a min-max band as a fixed-width ASCII bar scaled to
// [0, scaleMaxUV], matching the semi-log trend's linear band visually
// (exact semi-log mapping lives in render.BuildSeries; this is a coarse
// terminal approximation, not the clinical display path).
func sparkBar(minUV, maxUV, scaleMaxUV float64, width int) string {
	if scaleMaxUV <= 0 {
		scaleMaxUV = 1
	}
	lo := int((minUV / scaleMaxUV) * float64(width))
	hi := int((maxUV / scaleMaxUV) * float64(width))
	if lo < 0 {
		lo = 0
	}
	if hi >= width {
		hi = width - 1
	}
	if hi < lo {
		hi = lo
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < lo:
			b.WriteByte(' ')
		case i <= hi:
			b.WriteByte('#')
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// renderHistogram draws channel ch's most recent GS frame as a coarse
// bar chart, downsampling the 230 bins into 40 visual buckets.
func (m model) renderHistogram(ch int, width int) string {
	cs := m.channels[ch]
	if !cs.hasFrame {
		return labelStyle.Render("  GS histogram: ") + hintStyle.Render("no frame closed yet")
	}

	const buckets = 40
	const binsPerBucket = 230 / buckets // 5, with remainder handled by the final bucket
	var maxCount uint8
	bucketSums := make([]int, buckets)
	for i := 0; i < buckets; i++ {
		start := i * binsPerBucket
		end := start + binsPerBucket
		if i == buckets-1 {
			end = 230
		}
		sum := 0
		for _, v := range cs.lastFrame.Bins[start:end] {
			sum += int(v)
			if v > maxCount {
				maxCount = v
			}
		}
		bucketSums[i] = sum
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("  GS histogram (frame %d): ", cs.lastFrame.FrameIndex)))
	b.WriteString(hintStyle.Render(fmt.Sprintf("%d frames closed\n", cs.frameCount)))
	b.WriteString("  ")
	const rampLevels = "_.-=+*#%@"
	for _, sum := range bucketSums {
		level := 0
		if maxCount > 0 {
			level = sum * (len(rampLevels) - 1) / (int(maxCount) * binsPerBucket)
			if level >= len(rampLevels) {
				level = len(rampLevels) - 1
			}
		}
		b.WriteByte(rampLevels[level])
	}
	return histStyle.Render(b.String())
}

func (m model) renderParams() string {
	notch := "off"
	if m.params.NotchOn {
		notch = "on"
	}
	return labelStyle.Render("  gain: ") + valueStyle.Render(fmt.Sprintf("%duV/cm", m.params.GainUVPerCM)) +
		labelStyle.Render("   lpf: ") + valueStyle.Render(fmt.Sprintf("%.1fHz", m.params.LPFCutoffHz)) +
		labelStyle.Render("   hpf: ") + valueStyle.Render(fmt.Sprintf("%.1fHz", m.params.HPFCutoffHz)) +
		labelStyle.Render("   notch: ") + valueStyle.Render(notch)
}

// ── exported for test visibility without touching bubbletea internals ──

// DiagnosticsSummary formats a plain-text diagnostics dump suitable for
// clipboard export: latest aEEG reading and frame count per channel,
// and the active parameters.
func DiagnosticsSummary(channels [channelCount]struct {
	LastAeeg   domain.AeegOutput
	HasAeeg    bool
	FrameCount int
}, params ParamsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "aeegmon-sim diagnostics\n")
	fmt.Fprintf(&b, "gain=%duV/cm lpf=%.1fHz hpf=%.1fHz notch=%v\n",
		params.GainUVPerCM, params.LPFCutoffHz, params.HPFCutoffHz, params.NotchOn)
	for ch, c := range channels {
		if !c.HasAeeg {
			fmt.Fprintf(&b, "ch%d: warming up\n", ch+1)
			continue
		}
		fmt.Fprintf(&b, "ch%d: %.1f-%.1fuV quality=%s gs_frames=%d\n",
			ch+1, c.LastAeeg.MinUV, c.LastAeeg.MaxUV, c.LastAeeg.Quality, c.FrameCount)
	}
	return b.String()
}
