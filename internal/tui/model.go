package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zsnapfree/internal/recompute"
	"zsnapfree/pkg/utils"
)

type model struct {
	ctx  context.Context
	loop *recompute.Loop
	log  *slog.Logger

	keys     keyMap
	help     help.Model
	sp       spinner.Model
	spinning bool

	// idle detection: every key bumps seq and schedules a tick carrying it;
	// only the tick matching the latest seq means input went quiet.
	seq uint64
	err error

	// list view (custom rendering, not using bubbles/list)
	scrollOffset int

	// terminal size
	termW int
	termH int
}

type idleMsg struct{ seq uint64 }

func newModel(ctx context.Context, loop *recompute.Loop, log *slog.Logger) model {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle
	return model{
		ctx:  ctx,
		loop: loop,
		log:  log,
		keys: newKeyMap(),
		help: help.New(),
		sp:   sp,
	}
}

// Run shows the snapshot picker until the operator quits. Estimates are
// refreshed through loop; a failed estimate ends the session with its error.
func Run(ctx context.Context, loop *recompute.Loop, log *slog.Logger, opts ...tea.ProgramOption) error {
	m := newModel(ctx, loop, log)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tea.SetWindowTitle("zsnapfree " + m.loop.Dataset())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.adjustScroll()
		return m, nil

	case idleMsg:
		if msg.seq != m.seq {
			m.log.Debug("stale idle tick", "seq", msg.seq, "latest", m.seq)
			return m, nil
		}
		if err := m.loop.Idle(m.ctx); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loop.Dirty() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		m.adjustScroll()
		return m, nil
	}
	a, ok := m.keys.action(msg)
	if !ok {
		return m, nil
	}
	m.loop.Handle(a)
	if m.loop.Exiting() {
		return m, tea.Quit
	}
	m.adjustScroll()

	m.seq++
	cmds := []tea.Cmd{idleAfter(m.loop.IdleInterval(), m.seq)}
	if m.loop.Dirty() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.sp.Tick)
	}
	return m, tea.Batch(cmds...)
}

func idleAfter(d time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return idleMsg{seq: seq} })
}

func (m model) View() string {
	body := titleStyle.Render(m.titleText()) + "\n" + m.renderList()
	return frameStyle.Render(strings.TrimSuffix(body, "\n")) + "\n" +
		m.footerText() + "\n" +
		m.help.View(m.keys)
}

func (m *model) titleText() string {
	sel := m.loop.Selection()
	title := fmt.Sprintf("Snapshots for %s", m.loop.Dataset())
	if n := sel.MarkedCount(); n > 0 {
		title += mutedStyle.Render(fmt.Sprintf("  %d/%d marked", n, sel.Len()))
	}
	return title
}

func (m *model) footerText() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	res := m.loop.Result()
	s := footerStyle.Render("Destroying ") + fmt.Sprint(len(res.Destroys)) +
		footerStyle.Render(" snapshots would reclaim ") + utils.HumanizeBytes(res.Bytes)
	if m.loop.Dirty() {
		s += " " + m.sp.View() + pendingStyle.Render("<recalculating...>")
	}
	return s
}

// visibleHeight is how many list rows fit; zero means no limit.
func (m *model) visibleHeight() int {
	if m.termH == 0 {
		return 0
	}
	// frame borders, title, footer and help
	chrome := 2 + 1 + 1 + lipgloss.Height(m.help.View(m.keys))
	return max(m.termH-chrome, 3)
}

// Custom list rendering - no bubbles/list component
func (m *model) renderList() string {
	sel := m.loop.Selection()
	items := sel.Items()
	if len(items) == 0 {
		return mutedStyle.Render("No snapshots.") + "\n"
	}
	cursor, _ := sel.Cursor()

	start, end := 0, len(items)
	if h := m.visibleHeight(); h > 0 {
		start = m.scrollOffset
		end = min(start+h, len(items))
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		it := items[i]

		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render(">") + " "
		}

		row := "  " + it.Name
		if it.Marked {
			row = markedStyle.Render("+ " + it.Name)
		}
		b.WriteString(prefix + row + "\n")
	}
	return b.String()
}

func (m *model) adjustScroll() {
	h := m.visibleHeight()
	cursor, ok := m.loop.Selection().Cursor()
	if h == 0 || !ok {
		m.scrollOffset = 0
		return
	}

	// Scroll down if cursor is below visible area
	if cursor >= m.scrollOffset+h {
		m.scrollOffset = cursor - h + 1
	}

	// Scroll up if cursor is above visible area
	if cursor < m.scrollOffset {
		m.scrollOffset = cursor
	}

	// Keep the window full after a resize
	if last := m.loop.Selection().Len() - h; m.scrollOffset > last {
		m.scrollOffset = max(last, 0)
	}
}
