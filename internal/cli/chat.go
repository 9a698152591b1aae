package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/pkg/chat"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/export"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/pipeline"
	"github.com/unixblacksteel/mindmap/pkg/raster"
)

// chatCommand creates the interactive chat command.
func (c *CLI) chatCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Chat opens a terminal conversation with the model.

  tab / shift+tab   switch mode
  /export png|pdf   export the latest mind map to the export directory
  /reset            start over
  ctrl+c            quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start, err := chat.ParseMode(mode)
			if err != nil {
				return err
			}
			model, err := c.newChatModel(ctx, start)
			if err != nil {
				return err
			}
			defer model.runner.Close()

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "study", "initial mode")
	return cmd
}

// =============================================================================
// chatModel - bubbletea model for the chat session
// =============================================================================

// Chat styles
var (
	chatUserStyle   = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	chatModelStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	chatErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	chatStatusStyle = lipgloss.NewStyle().Foreground(colorSlate).Background(lipgloss.Color("#1e293b")).Padding(0, 1)
	chatModeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(colorAccent).Padding(0, 1)
)

type (
	replyMsg struct {
		msg chat.Message
		err error
	}
	exportMsg struct {
		art *export.Artifact
		err error
	}
)

type chatModel struct {
	ctx      context.Context
	session  *chat.Session
	runner   *pipeline.Runner
	exporter *export.Exporter
	render   pipeline.Options
	saveDir  string

	modes []chat.Mode
	mode  int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	busy      bool
	exporting bool
	status    string
	saved  map[string]string // image message ID to file
	width  int
	ready  bool
}

func (c *CLI) newChatModel(ctx context.Context, start chat.Mode) (*chatModel, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := c.newClient()
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return nil, err
	}
	opts, err := c.renderDefaults()
	if err != nil {
		return nil, err
	}
	rast, err := raster.New(opts.Rasterizer)
	if err != nil {
		return nil, err
	}

	in := textinput.New()
	in.Placeholder = "اكتب سؤالك هنا..."
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleIconSpinner

	m := &chatModel{
		ctx:     ctx,
		session: chat.NewSession(client, chat.WithLogger(c.Logger)),
		runner:  runner,
		exporter: export.New(
			export.WithRasterizer(rast),
			export.WithSink(export.DirSink{Dir: cfg.Export.Dir}),
			export.WithLogger(c.Logger),
		),
		render:  opts,
		saveDir: cfg.Export.Dir,
		modes:   chat.Modes(),
		input:   in,
		spinner: sp,
		saved:   map[string]string{},
	}
	for i, md := range m.modes {
		if md == start {
			m.mode = i
		}
	}
	return m, nil
}

func (m *chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.mode = (m.mode + 1) % len(m.modes)
			return m, nil
		case "shift+tab":
			m.mode = (m.mode + len(m.modes) - 1) % len(m.modes)
			return m, nil
		case "enter":
			return m, m.submit()
		}

	case replyMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = ""
			m.saveImage(msg.msg)
		}
		m.refresh()
		return m, nil

	case exportMsg:
		m.exporting = false
		switch {
		case errors.Is(msg.err, errors.ErrCodeExportInProgress):
		case msg.err != nil:
			m.status = "export failed: " + msg.err.Error()
		default:
			m.status = "saved " + msg.art.Location
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit sends the input line, or runs it as a slash command.
func (m *chatModel) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, "/") {
		m.input.Reset()
		return m.command(strings.Fields(line))
	}
	if m.busy || m.session.Busy() {
		m.status = "a request is already in progress"
		return nil
	}
	m.input.Reset()
	m.busy = true
	m.status = ""

	ctx, session, mode := m.ctx, m.session, m.modes[m.mode]
	send := func() tea.Msg {
		reply, err := session.Send(ctx, mode, line, nil)
		return replyMsg{msg: reply, err: err}
	}
	return tea.Batch(send, m.spinner.Tick)
}

func (m *chatModel) command(args []string) tea.Cmd {
	switch args[0] {
	case "/quit", "/exit":
		return tea.Quit
	case "/reset":
		if m.busy || m.session.Busy() {
			m.status = "wait for the current reply"
			return nil
		}
		m.session.Reset()
		m.saved = map[string]string{}
		m.refresh()
	case "/export":
		format := "png"
		if len(args) > 1 {
			format = args[1]
		}
		return m.export(format)
	default:
		m.status = "unknown command " + args[0]
	}
	return nil
}

// export renders the latest mind map and hands it to the exporter. A request
// made while an export is running is dropped.
func (m *chatModel) export(format string) tea.Cmd {
	if m.exporting || m.exporter.Busy() {
		return nil
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	tree := m.latestMindMap()
	if tree == nil {
		m.status = "no mind map to export yet"
		return nil
	}
	m.status = "exporting " + string(f) + "..."
	m.exporting = true

	ctx, runner, exporter, opts := m.ctx, m.runner, m.exporter, m.render
	return func() tea.Msg {
		res, err := runner.Render(ctx, tree, opts)
		if err != nil {
			return exportMsg{err: err}
		}
		art, err := exporter.Export(ctx, res.Scene, f)
		return exportMsg{art: art, err: err}
	}
}

func (m *chatModel) latestMindMap() *mindmap.Node {
	history := m.session.History()
	for i := len(history) - 1; i >= 0; i-- {
		if mm, ok := history[i].Content.(chat.MindMap); ok {
			return mm.Tree
		}
	}
	return nil
}

// saveImage writes generated images to the export directory so the
// transcript can point at them.
func (m *chatModel) saveImage(msg chat.Message) {
	img, ok := msg.Content.(chat.Image)
	if !ok || img.Image == nil {
		return
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		m.status = err.Error()
		return
	}
	path := filepath.Join(m.saveDir, imageFileName(img.Image, msg.Timestamp.UnixMilli()))
	if err := os.WriteFile(path, img.Image.Data, 0o644); err != nil {
		m.status = err.Error()
		return
	}
	m.saved[msg.ID] = path
}

// refresh redraws the transcript and scrolls to the end.
func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	width := max(m.width-4, 20)

	var b strings.Builder
	for _, msg := range m.session.History() {
		if msg.Role == chat.RoleUser {
			b.WriteString(chatUserStyle.Render("أنت") + StyleDim.Render(" "+msg.Timestamp.Format("15:04")) + "\n")
		} else {
			b.WriteString(chatModelStyle.Render("Unix Blacksteel") + StyleDim.Render(" "+msg.Timestamp.Format("15:04")) + "\n")
		}
		b.WriteString(m.content(msg, width))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(m.spinner.View() + StyleDim.Render(" جاري التفكير...") + "\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *chatModel) content(msg chat.Message, width int) string {
	switch c := msg.Content.(type) {
	case chat.Text:
		if msg.Role == chat.RoleUser {
			return c.Body + "\n"
		}
		return renderMarkdown(c.Body, width)
	case chat.Image:
		line := chat.Describe(msg)
		if path, ok := m.saved[msg.ID]; ok {
			line += " → " + path
		}
		return StyleHighlight.Render(line) + "\n"
	case chat.MindMap:
		return c.Caption + "\n" + outline(c.Tree) + StyleDim.Render("/export png or /export pdf to save it") + "\n"
	case chat.Failure:
		return chatErrorStyle.Render(c.Text) + "\n"
	default:
		return ""
	}
}

func (m *chatModel) View() string {
	if !m.ready {
		return "\n  " + m.spinner.View() + " loading..."
	}
	mode := chatModeStyle.Render(m.modes[m.mode].String())
	tokens := fmt.Sprintf("tokens %d", m.session.TokensUsed())
	status := m.status
	if status == "" {
		status = "tab: mode · /export png|pdf · ctrl+c: quit"
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, mode, chatStatusStyle.Render(tokens+" · "+status))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		bar,
		m.input.View(),
	)
}
