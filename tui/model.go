// Package tui is a read-only terminal monitor for the selected camera. All
// state changes still flow through the reconciler; the keys here only inject
// the same events the physical surface would.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"camdeck/camera"
	"camdeck/lightring"
	"camdeck/param"
	"camdeck/reconcile"
	"camdeck/xtouch"
)

type Model struct {
	rec      *reconcile.Reconciler
	events   chan<- xtouch.Event
	quitting bool
}

// UpdateMsg arrives whenever the reconciler's replicated state may have
// moved.
type UpdateMsg struct{}

func NewModel(rec *reconcile.Reconciler, events chan<- xtouch.Event) Model {
	return Model{rec: rec, events: events}
}

func ListenForUpdates(rec *reconcile.Reconciler) tea.Cmd {
	return func() tea.Msg {
		<-rec.Updates()
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.rec)
}

// inject hands a synthetic surface event to the reconciler without blocking
// the render loop.
func (m Model) inject(ev xtouch.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "1", "2", "3", "4", "5", "6", "7", "8":
			idx := int(msg.String()[0] - '1')
			m.inject(xtouch.Event{Kind: xtouch.Key, Button: idx, Pressed: false})

		case "f":
			m.inject(xtouch.Event{Kind: xtouch.Key, Button: 14, Pressed: false})

		case "m":
			m.inject(xtouch.Event{Kind: xtouch.Key, Button: 15, Pressed: false})
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.rec)
	}

	return m, nil
}

// ringText is the terminal rendition of what the encoder's LED ring shows.
func ringText(fn param.Function, snap camera.Snapshot) string {
	if !snap.Known() {
		return lightring.Off.String()
	}
	if fn == param.Focus {
		if af, _ := snap.Value(param.MovieServoAF); af == "On" {
			return lightring.AllOn.String()
		}
		return lightring.BlinkCenter.String()
	}
	if fn == param.ColorTemperature {
		switch wb, _ := snap.Value(param.WhiteBalance); wb {
		case "Auto":
			return lightring.AllOn.String()
		case "Color Temperature":
		default:
			return lightring.BlinkAll.String()
		}
	}
	v, ok := snap.Value(fn)
	if !ok {
		return lightring.Off.String()
	}
	pos, ok := param.Forward(fn, v, snap.AllowedFor(fn))
	if !ok {
		return lightring.BlinkAll.String()
	}
	code := lightring.Render(pos)
	if code.Kind == lightring.Blink {
		return lightring.Special(code.Value).String()
	}
	return fmt.Sprintf("%3d %s", pos, lightring.SegmentName(lightring.Segment(pos)))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.rec.Selected()

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hotStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	title := snap.Name
	if title == "" {
		title = "no camera"
	}
	model := snap.Values["cameramodel"]
	lens := snap.Values["lensname"]
	header := headerStyle.Render(fmt.Sprintf("camdeck  %s", title))
	if model != "" {
		header += dimStyle.Render(fmt.Sprintf("  %s  %s", model, lens))
	}
	if snap.Status != "" && snap.Status != "online" {
		header += "  " + hotStyle.Render(snap.Status)
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for e := 0; e < param.NumEncoders; e++ {
		fn, _ := param.ForEncoder(e)
		value, ok := snap.Value(fn)
		if !ok {
			value = "-"
		}
		line := fmt.Sprintf("  %d  %-22s %-18s %s", e+1, fn, value, ringText(fn, snap))
		if snap.LastChanged == fn.String() {
			line = hotStyle.Render(line)
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render("1-8:camera  f:aux-follow  m:multiview  q:quit"))
	return out.String()
}
