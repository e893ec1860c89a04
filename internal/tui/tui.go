// Package tui implements the interactive terminal mode: a step-by-step
// wizard that collects the input file, output path, preset, and rate
// settings, then runs the conversion with a live progress display.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/backmassage/chonga/internal/config"
	"github.com/backmassage/chonga/internal/display"
	"github.com/backmassage/chonga/internal/encode"
	"github.com/backmassage/chonga/internal/logging"
	"github.com/backmassage/chonga/internal/pipeline"
)

var (
	appStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#B200B2")).
			Padding(0, 1).
			Bold(true)

	stepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B200B2")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)

	selectedItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	itemStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	faintStyle        = lipgloss.NewStyle().Faint(true)
)

type state int

const (
	stateInputFile state = iota
	stateOutputFile
	stateSelectPreset
	stateSelectMode
	stateInputRate
	stateProcessing
	stateDone
	stateError
)

var modeOptions = []string{
	"Constant quality (CRF)",
	"Target bitrate",
	"Target bitrate, two-pass",
}

type progressMsg struct {
	current time.Duration
	total   time.Duration
}

type workDoneMsg struct {
	outputFile string
	finalSize  int64
	err        error
}

// chanReporter forwards runner progress events into the bubbletea
// message loop.
type chanReporter struct {
	ch    chan progressMsg
	total time.Duration
}

func (r *chanReporter) Begin(total time.Duration) {
	r.total = total
	r.ch <- progressMsg{current: 0, total: total}
}

func (r *chanReporter) Update(current time.Duration) {
	r.ch <- progressMsg{current: current, total: r.total}
}

func (r *chanReporter) Done() {
	r.ch <- progressMsg{current: r.total, total: r.total}
}

type model struct {
	cfg *config.Config
	log *logging.Logger
	err error

	state     state
	textInput textinput.Model
	spinner   spinner.Model
	bar       progress.Model

	inputPath  string
	outputPath string
	presetIdx  int
	modeIdx    int

	progressChan chan progressMsg
	encodeState  encode.State
	outputFile   string
	finalSize    int64
}

func initialModel(cfg *config.Config, log *logging.Logger) model {
	ti := textinput.New()
	ti.CharLimit = 1000
	ti.Width = 60
	ti.Placeholder = "Input file (mp4/mov/mkv...)"
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := model{
		cfg:       cfg,
		log:       log,
		state:     stateInputFile,
		textInput: ti,
		spinner:   s,
		bar:       progress.New(progress.WithDefaultGradient()),
		presetIdx: 1, // balanced
	}

	if cfg.InputPath != "" {
		if _, err := os.Stat(cfg.InputPath); err == nil {
			m.inputPath = cfg.InputPath
			m.state = stateOutputFile
			m.textInput.SetValue(pipeline.OutputPath(cfg.InputPath))
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		return m.updateKey(msg)

	case progressMsg:
		m.encodeState.Total = msg.total
		m.encodeState.Update(msg.current)
		return m, waitForProgress(m.progressChan)

	case workDoneMsg:
		if msg.err != nil {
			m.state = stateError
			m.err = msg.err
		} else {
			m.state = stateDone
			m.outputFile = msg.outputFile
			m.finalSize = msg.finalSize
		}
		return m, tea.Quit

	case spinner.TickMsg:
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	if m.state == stateInputFile || m.state == stateOutputFile || m.state == stateInputRate {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case stateInputFile:
		if msg.Type == tea.KeyEnter {
			path := strings.TrimSpace(m.textInput.Value())
			if _, err := os.Stat(path); err != nil {
				m.err = fmt.Errorf("file not found: %s", path)
			} else {
				m.inputPath = path
				m.state = stateOutputFile
				m.textInput.SetValue(pipeline.OutputPath(path))
				m.err = nil
			}
			return m, nil
		}

	case stateOutputFile:
		if msg.Type == tea.KeyEnter {
			out := strings.TrimSpace(m.textInput.Value())
			if out == "" {
				out = pipeline.OutputPath(m.inputPath)
			}
			m.outputPath = out
			m.state = stateSelectPreset
			m.textInput.Blur()
			m.err = nil
			return m, nil
		}

	case stateSelectPreset:
		switch msg.String() {
		case "up", "k":
			if m.presetIdx > 0 {
				m.presetIdx--
			}
		case "down", "j":
			if m.presetIdx < len(config.Presets)-1 {
				m.presetIdx++
			}
		case "enter":
			m.state = stateSelectMode
		}
		return m, nil

	case stateSelectMode:
		switch msg.String() {
		case "up", "k":
			if m.modeIdx > 0 {
				m.modeIdx--
			}
		case "down", "j":
			if m.modeIdx < len(modeOptions)-1 {
				m.modeIdx++
			}
		case "enter":
			m.state = stateInputRate
			if m.modeIdx == 0 {
				m.textInput.SetValue(fmt.Sprintf("%d", config.Presets[m.presetIdx].CRF))
				m.textInput.Placeholder = "CRF (18-36 typical)"
			} else {
				m.textInput.SetValue(config.DefaultBitrate)
				m.textInput.Placeholder = "Bitrate (e.g. 1M, 800k)"
			}
			m.textInput.SetCursor(len(m.textInput.Value()))
			m.textInput.Focus()
		}
		return m, nil

	case stateInputRate:
		if msg.Type == tea.KeyEnter {
			if err := m.applyRate(strings.TrimSpace(m.textInput.Value())); err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.textInput.Blur()
			m.state = stateProcessing
			m.encodeState.Start = time.Now()
			m.progressChan = make(chan progressMsg, 16)
			return m, tea.Batch(
				m.spinner.Tick,
				m.startConversion(),
				waitForProgress(m.progressChan),
			)
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// applyRate folds the chosen preset, mode, and rate value into the config
// the conversion will run with.
func (m *model) applyRate(value string) error {
	p := config.Presets[m.presetIdx]
	m.cfg.Speed = p.Speed
	m.cfg.Deadline = p.Deadline

	if m.modeIdx == 0 {
		var crf int
		if _, err := fmt.Sscanf(value, "%d", &crf); err != nil || crf < 0 || crf > 63 {
			return fmt.Errorf("invalid CRF: %s", value)
		}
		m.cfg.CRF = crf
		m.cfg.Bitrate = ""
		m.cfg.TwoPass = false
		return nil
	}

	bitrate, err := config.ValidateBitrate(value)
	if err != nil {
		return err
	}
	if bitrate == "" {
		bitrate = config.DefaultBitrate
	}
	m.cfg.Bitrate = bitrate
	m.cfg.TwoPass = m.modeIdx == 2
	return nil
}

func (m *model) startConversion() tea.Cmd {
	cfg, log := m.cfg, m.log
	job := encode.Job{
		InputPath:  m.inputPath,
		OutputPath: m.outputPath,
		Bitrate:    cfg.Bitrate,
	}
	ch := m.progressChan

	return func() tea.Msg {
		defer close(ch)
		err := encode.Convert(context.Background(), cfg, log, job, &chanReporter{ch: ch})
		if err != nil {
			return workDoneMsg{err: err}
		}
		var size int64
		if info, statErr := os.Stat(job.OutputPath); statErr == nil {
			size = info.Size()
		}
		return workDoneMsg{outputFile: job.OutputPath, finalSize: size}
	}
}

func waitForProgress(sub <-chan progressMsg) tea.Cmd {
	return func() tea.Msg {
		if msg, ok := <-sub; ok {
			return msg
		}
		return nil
	}
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CHONGA // ANARCHY MODE "))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errStyle.Render(fmt.Sprintf("ERROR: %v", m.err)))
		s.WriteString("\n\n")
	}

	switch m.state {
	case stateInputFile:
		s.WriteString(stepStyle.Render("1. Input File"))
		s.WriteString("\nDrag & drop or enter a path:\n\n")
		s.WriteString(m.textInput.View())

	case stateOutputFile:
		s.WriteString(stepStyle.Render("2. Output File"))
		s.WriteString(fmt.Sprintf("\nInput: %s", filepath.Base(m.inputPath)))
		s.WriteString("\nEnter accepts the suggested .webm path:\n\n")
		s.WriteString(m.textInput.View())

	case stateSelectPreset:
		s.WriteString(stepStyle.Render("3. Preset"))
		s.WriteString("\n\n")
		for i, p := range config.Presets {
			cursor, style := "  ", itemStyle
			if m.presetIdx == i {
				cursor, style = "> ", selectedItemStyle
			}
			label := fmt.Sprintf("%s (CRF %d, speed %d, %s)", p.Name, p.CRF, p.Speed, p.Deadline)
			s.WriteString(style.Render(cursor+label) + "\n")
		}

	case stateSelectMode:
		s.WriteString(stepStyle.Render("4. Rate Mode"))
		s.WriteString(fmt.Sprintf("\nPreset: %s\n\n", config.Presets[m.presetIdx].Name))
		for i, opt := range modeOptions {
			cursor, style := "  ", itemStyle
			if m.modeIdx == i {
				cursor, style = "> ", selectedItemStyle
			}
			s.WriteString(style.Render(cursor+opt) + "\n")
		}

	case stateInputRate:
		s.WriteString(stepStyle.Render("5. Rate Value"))
		s.WriteString("\n" + modeOptions[m.modeIdx] + ":\n\n")
		s.WriteString(m.textInput.View())

	case stateProcessing:
		s.WriteString(stepStyle.Render("Converting..."))
		s.WriteString("\n\n")
		frac := m.encodeState.Fraction()
		s.WriteString(fmt.Sprintf("%s %s %3.0f%%\n\n", m.spinner.View(), m.bar.ViewAs(frac), frac*100))
		status := fmt.Sprintf("%s -> %s  (%s elapsed",
			filepath.Base(m.inputPath), filepath.Base(m.outputPath),
			display.FormatDuration(time.Since(m.encodeState.Start)))
		if left, ok := m.encodeState.Remaining(time.Now()); ok {
			status += ", ~" + display.FormatDuration(left) + " left"
		}
		s.WriteString(faintStyle.Render(status + ")"))

	case stateDone:
		s.WriteString(doneStyle.Render("Success!"))
		s.WriteString(fmt.Sprintf("\n\nSaved to:\n%s", m.outputFile))
		if m.finalSize > 0 {
			s.WriteString(fmt.Sprintf("\n%s", display.FormatBytes(m.finalSize)))
		}

	case stateError:
		s.WriteString(errStyle.Render("Failed."))
		s.WriteString(fmt.Sprintf("\n\n%v", m.err))
	}

	return appStyle.Render(s.String())
}

// Run starts the interactive mode and blocks until it exits. Console
// logging is silenced while the program owns the terminal.
func Run(cfg *config.Config, log *logging.Logger) error {
	log.SetQuiet(true)
	defer log.SetQuiet(false)

	final, err := tea.NewProgram(initialModel(cfg, log)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(model); ok && m.err != nil {
		return m.err
	}
	return nil
}
