// Package tui provides the BubbleTea host for the popup controller:
// a frame clock that advances animations and delivers animation-end
// signals, back-key dispatch, and demo popup spawners.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popui/internal/anim"
	"github.com/jmylchreest/popui/internal/backevent"
	"github.com/jmylchreest/popui/internal/config"
	"github.com/jmylchreest/popui/internal/popup"
	"github.com/jmylchreest/popui/internal/render"
)

// tickMsg advances the animation clock.
type tickMsg time.Time

// changeMsg carries a registry commit notification.
type changeMsg popup.ChangeEvent

// Model is the demo TUI model hosting a popup controller.
type Model struct {
	cfg     *config.Config
	ctrl    *popup.Controller
	overlay *render.Overlay
	back    *backevent.Source

	keys KeyMap
	help help.Model

	width     int
	height    int
	ready     bool
	showHelp  bool
	statusMsg string
	startedAt time.Time
	spawned   int

	events     <-chan popup.ChangeEvent
	cancelBack func()
}

// NewModel creates the demo model around an existing controller.
func NewModel(cfg *config.Config, ctrl *popup.Controller) *Model {
	back := backevent.NewSource()
	cancel := back.Subscribe(ctrl.HandleBack)

	return &Model{
		cfg:        cfg,
		ctrl:       ctrl,
		overlay:    render.New(cfg.Mask.Color),
		back:       back,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		startedAt:  time.Now(),
		events:     ctrl.Subscribe(),
		cancelBack: cancel,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForChange())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Tick(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return changeMsg(ev)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		m.finishExitAnimations(time.Time(msg))
		return m, m.tick()

	case changeMsg:
		return m, m.waitForChange()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// finishExitAnimations delivers the animation-end signal for closing
// popups whose exit transition has run to completion.
func (m *Model) finishExitAnimations(now time.Time) {
	for _, v := range m.ctrl.Snapshot() {
		if v.Closing && anim.Progress(v.Start, v.Delay, v.Duration, now) >= 1 {
			m.ctrl.AnimationEnd(v.ID)
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelBack()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if !m.back.Dispatch() {
			// Nothing consumed the back event; close the screen.
			m.cancelBack()
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.keys.Toast):
		m.spawnToast()
		return m, nil

	case key.Matches(msg, m.keys.Modal):
		m.spawnModal()
		return m, nil

	case key.Matches(msg, m.keys.Alert):
		m.spawnAlert()
		return m, nil

	case key.Matches(msg, m.keys.MaskTap):
		m.tapTopmostMask()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.RemoveAll(nil)
		m.statusMsg = "removed all popups"
		return m, nil

	case key.Matches(msg, m.keys.Dump):
		m.dumpState()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}
	return m, nil
}

func (m *Model) spawnToast() {
	m.spawned++
	n := m.spawned
	text := fmt.Sprintf("Toast #%d at %s", n, time.Now().Format("15:04:05"))
	m.ctrl.Add(popup.ElementFunc(func(width, height int) string {
		return text
	}), popup.Options{
		ZIndex:    10,
		Animation: anim.Named("slide-down"),
		Duration:  180 * time.Millisecond,
		AutoClose: true,
		OnAdded: func() {
			m.statusMsg = fmt.Sprintf("toast #%d shown", n)
		},
		OnClosed: func() {
			m.statusMsg = fmt.Sprintf("toast #%d closed", n)
		},
	})
}

func (m *Model) spawnModal() {
	m.spawned++
	n := m.spawned
	body := render.PopupTitle.Render("Confirm") + "\n\n" +
		fmt.Sprintf("Modal #%d. Esc asks the modal first;\nit dismisses itself and consumes the event.", n)
	m.ctrl.Add(popup.ElementFunc(func(width, height int) string {
		return body
	}), popup.Options{
		ZIndex: 20,
		Animation: anim.FromFrames(
			anim.Keyframe{Offset: 0, Props: map[anim.Prop]float64{anim.PropScale: 0, anim.PropOpacity: 0}},
			anim.Keyframe{Offset: 1, Props: map[anim.Prop]float64{anim.PropScale: 1, anim.PropOpacity: 1}},
		),
		Duration: 220 * time.Millisecond,
		OnPressBack: func(id string) bool {
			m.ctrl.Remove(id)
			m.statusMsg = "modal handled back"
			return true
		},
		OnClosed: func() {
			m.statusMsg = fmt.Sprintf("modal #%d closed", n)
		},
	})
}

func (m *Model) spawnAlert() {
	m.spawned++
	n := m.spawned
	text := render.PopupTitle.Render("Alert") + "\n" +
		fmt.Sprintf("Alert #%d, no animation: removal is synchronous.", n)
	m.ctrl.Add(popup.ElementFunc(func(width, height int) string {
		return text
	}), popup.Options{
		ZIndex:    30,
		AutoClose: true,
	})
}

// tapTopmostMask simulates a backdrop tap on the topmost popup.
func (m *Model) tapTopmostMask() {
	snap := m.ctrl.Snapshot()
	if len(snap) == 0 {
		return
	}
	top := snap[len(snap)-1]
	m.ctrl.MaskTap(top.ID)
	m.statusMsg = "mask tapped"
}

// dumpState writes the current registry snapshot as YAML, mirroring
// the copy-as-YAML export of the history TUI.
func (m *Model) dumpState() {
	type entry struct {
		ID      string `yaml:"id"`
		ZIndex  int    `yaml:"zIndex"`
		OrderID uint64 `yaml:"orderId"`
		Closing bool   `yaml:"closing"`
	}
	snap := m.ctrl.Snapshot()
	entries := make([]entry, 0, len(snap))
	for _, v := range snap {
		entries = append(entries, entry{ID: v.ID, ZIndex: v.ZIndex, OrderID: v.OrderID, Closing: v.Closing})
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		m.statusMsg = "dump failed: " + err.Error()
		return
	}
	path := filepath.Join(os.TempDir(), "popui-state.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.statusMsg = "dump failed: " + err.Error()
		return
	}
	m.statusMsg = "state written to " + path
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	base := m.baseView()
	return m.overlay.Render(base, m.ctrl.Snapshot(), m.width, m.height, time.Now())
}

func (m *Model) baseView() string {
	header := titleStyle.Render("popui demo")
	status := statusStyle.Render(fmt.Sprintf(
		"%d popup(s) active · running since %s",
		m.ctrl.Count(), humanize.Time(m.startedAt),
	))
	lines := header + "\n\n" + status
	if m.statusMsg != "" {
		lines += "\n" + statusStyle.Render(m.statusMsg)
	}
	m.help.ShowAll = m.showHelp
	lines += "\n\n" + m.help.View(m.keys)
	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(lines))
}
