// package ui renders an interactive scan session in the terminal.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songscan/internal/pipeline"
	"github.com/desertthunder/songscan/internal/shared"
)

// ViewState tracks which screen the model renders.
type ViewState int

const (
	ViewScanning ViewState = iota
	ViewResult
	ViewError
)

type keyMap struct {
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// progressUpdateMsg carries one pipeline update into the event loop.
type progressUpdateMsg pipeline.ProgressUpdate

// scanCompleteMsg ends the session with the run's outcome.
type scanCompleteMsg struct {
	result *pipeline.ScanResult
	err    error
}

// Model is the bubbletea model for a scan session.
type Model struct {
	state    ViewState
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
	palette  Palette

	fileName string
	message  string
	percent  int
	result   *pipeline.ScanResult
	err      error

	updates chan pipeline.ProgressUpdate
	done    chan scanCompleteMsg
}

// NewModel creates a scan session model and starts the run in the background.
func NewModel(ctx context.Context, engine *pipeline.Engine, upload *pipeline.UploadedAudio) Model {
	palette := DefaultPalette()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = NewStyle(palette.Highlight)

	updates := make(chan pipeline.ProgressUpdate, 32)
	done := make(chan scanCompleteMsg, 1)
	go func() {
		result, err := engine.Run(ctx, upload, updates)
		close(updates)
		done <- scanCompleteMsg{result: result, err: err}
	}()

	return Model{
		state:    ViewScanning,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     defaultKeyMap(),
		palette:  palette,
		fileName: upload.Name,
		message:  "Uploading " + upload.Name + "...",
		updates:  updates,
		done:     done,
	}
}

// Result returns the run's outcome once the session has ended.
func (m Model) Result() (*pipeline.ScanResult, error) {
	return m.result, m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

// waitForProgress pulls the next pipeline update, or the final outcome
// once the update channel drains.
func (m Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-m.updates; ok {
			return progressUpdateMsg(update)
		}
		return <-m.done
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case progressUpdateMsg:
		m.message = msg.Message
		m.percent = msg.Percent
		return m, m.waitForProgress()

	case scanCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		if msg.err != nil {
			m.state = ViewError
		} else {
			m.state = ViewResult
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	title := NewBold(m.palette.Highlight).Render("songscan")
	b.WriteString(title + "\n\n")

	switch m.state {
	case ViewScanning:
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.message))
		b.WriteString(m.progress.ViewAs(float64(m.percent)/100) + "\n")

	case ViewResult:
		b.WriteString(m.resultView())

	case ViewError:
		b.WriteString(NewBold(m.palette.Error).Render("Scan failed") + "\n")
		if m.err != nil {
			b.WriteString(NewStyle(m.palette.Subtle).Render(m.err.Error()) + "\n")
		}
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) resultView() string {
	var b strings.Builder
	track := m.result.Track

	b.WriteString(NewBold(m.palette.Text).Render(track.Name) + "\n")
	b.WriteString(NewStyle(m.palette.Text).Render(track.ArtistNames()) + "\n")
	if track.Album.Name != "" {
		b.WriteString(NewEm(m.palette.Subtle).Render(track.Album.Name) + "\n")
	}
	if track.DurationMS > 0 {
		b.WriteString(NewStyle(m.palette.Subtle).Render(shared.FormatDuration(track.DurationMS)) + "\n")
	}
	if track.ExternalURL != "" {
		b.WriteString(NewStyle(m.palette.Highlight).Render(track.ExternalURL) + "\n")
	}
	return b.String()
}
