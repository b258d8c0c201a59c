package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amilajack/corona/sched"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	workerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	panicStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const eventLogDepth = 12

// eventLog keeps the most recent coroutine lifecycle events. It is fed
// from worker goroutines and read on UI ticks.
type eventLog struct {
	mu     sync.Mutex
	events []sched.Event
}

func (l *eventLog) OnCoroutineEvent(e sched.Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	if len(l.events) > eventLogDepth {
		l.events = l.events[len(l.events)-eventLogDepth:]
	}
	l.mu.Unlock()
}

func (l *eventLog) recent() []sched.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sched.Event(nil), l.events...)
}

type monitorModel struct {
	pool  *sched.Pool
	cfg   waveConfig
	log   *eventLog
	input textinput.Model

	stats    []sched.Stats
	live     int
	waves    int
	lastWave time.Duration
	running  bool
	err      error
}

type tickMsg time.Time

type waveDoneMsg struct {
	dur time.Duration
	err error
}

func newMonitorModel(pool *sched.Pool, cfg waveConfig) *monitorModel {
	ti := textinput.New()
	ti.Placeholder = "wave [count]"
	ti.Prompt = "> "
	ti.Width = 30
	ti.Focus()

	log := &eventLog{}
	pool.Registry().Subscribe(log)

	return &monitorModel{
		pool:  pool,
		cfg:   cfg,
		log:   log,
		input: ti,
		stats: make([]sched.Stats, pool.NumWorkers()),
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *monitorModel) Init() tea.Cmd {
	return tick()
}

func (m *monitorModel) startWave(cfg waveConfig) tea.Cmd {
	return func() tea.Msg {
		dur, err := runWave(m.pool, cfg)
		return waveDoneMsg{dur: dur, err: err}
	}
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.pool.Registry().Unsubscribe(m.log)
			return m, tea.Quit

		case "enter":
			cmd := m.runCommand(strings.TrimSpace(m.input.Value()))
			m.input.SetValue("")
			return m, cmd
		}

	case tickMsg:
		for i := range m.stats {
			m.stats[i] = m.pool.Worker(i).Stats()
		}
		m.live = m.pool.Registry().Len()
		return m, tick()

	case waveDoneMsg:
		m.running = false
		m.waves++
		m.lastWave = msg.dur
		m.err = msg.err
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *monitorModel) runCommand(line string) tea.Cmd {
	if line == "" {
		return nil
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "q", "quit":
		m.pool.Registry().Unsubscribe(m.log)
		return tea.Quit

	case "wave", "w":
		if m.running {
			m.err = fmt.Errorf("a wave is already running")
			return nil
		}
		cfg := m.cfg
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n <= 0 {
				m.err = fmt.Errorf("bad count %q", fields[1])
				return nil
			}
			cfg.count = n
		}
		m.running = true
		m.err = nil
		return m.startWave(cfg)

	default:
		m.err = fmt.Errorf("unknown command %q", fields[0])
		return nil
	}
}

func (m *monitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("coronatop"))
	fmt.Fprintf(&b, "  %d workers, %d live coroutines\n\n", m.pool.NumWorkers(), m.live)

	for i, st := range m.stats {
		b.WriteString(workerStyle.Render(fmt.Sprintf("worker %d", i)))
		fmt.Fprintf(&b, "  runnable %-4d waiting %-4d resumes %-8d completed %-8d",
			st.Runnable, st.Waiting, st.Resumes, st.Completed)
		if st.Panicked > 0 {
			b.WriteString(panicStyle.Render(fmt.Sprintf(" panicked %d", st.Panicked)))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nWaves run: %d", m.waves)
	if m.lastWave > 0 {
		fmt.Fprintf(&b, ", last %s", m.lastWave.Round(time.Microsecond))
	}
	if m.running {
		b.WriteString(okStyle.Render("  [wave in flight]"))
	}
	b.WriteString("\n\nRecent events:\n")
	events := m.log.recent()
	if len(events) == 0 {
		b.WriteString(helpStyle.Render("  none yet — start a wave\n"))
	}
	for _, e := range events {
		switch e.Type {
		case sched.EventSpawned:
			fmt.Fprintf(&b, "  spawn    #%d on worker %d\n", e.ID, e.Worker)
		case sched.EventCompleted:
			fmt.Fprintf(&b, "  %s #%d on worker %d\n", okStyle.Render("complete"), e.ID, e.Worker)
		case sched.EventPanicked:
			fmt.Fprintf(&b, "  %s   #%d on worker %d\n", panicStyle.Render("panic"), e.ID, e.Worker)
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(panicStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("wave [n] start a wave • q quit"))
	return b.String()
}

func runInteractive(pool *sched.Pool, cfg waveConfig) error {
	p := tea.NewProgram(newMonitorModel(pool, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
