package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/inspect"
	"github.com/matzehuels/blendview/pkg/render"
	"github.com/matzehuels/blendview/pkg/render/text"
	"github.com/matzehuels/blendview/pkg/roster"
	"github.com/matzehuels/blendview/pkg/scene"
)

// watchCommand opens the live terminal view over a scene directory.
func (c *CLI) watchCommand() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Live terminal view of the graphs in a scene directory",
		Long: `Live terminal view of the graphs in a scene directory.

Scene files are watched: edits rebuild their graph, deletions remove it. The
selected graph is re-inspected every poll interval.

Keys:
  tab / shift+tab   next / previous graph
  j / k             move the node cursor
  p                 pin or unpin the current graph
  i                 toggle the inspector
  l                 toggle the legend
  q                 quit`,
		Args: cobra.ExactArgs(1),
	}
	display := bindDisplayFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := display.apply(c.Config); err != nil {
			return err
		}
		return c.runWatch(cmd.Context(), args[0], logFile)
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the view is open")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, dir, logFile string) error {
	// The view owns the terminal; logs go to a file or nowhere.
	logger := log.New(io.Discard)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = newLogger(f, c.Logger.GetLevel())
	}

	r := roster.New(roster.WithLogger(logger))
	watcher, err := scene.NewWatcher(dir, r, scene.WithWatcherLogger(logger))
	if err != nil {
		return err
	}
	defer watcher.Close()

	opts, err := c.Config.InspectOptions(logger)
	if err != nil {
		return err
	}
	in, err := inspect.New(r, opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scene watcher stopped", "err", err)
		}
	}()

	m := newWatchModel(ctx, in, c.Config.Cadence(), c.Config.RenderOptions(), shouldUseColor(os.Stdout))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// =============================================================================
// watchModel - live view
// =============================================================================

// frameMsg delivers one poll. seq ties it to the poll chain that asked.
type frameMsg struct {
	seq      int
	state    inspect.State
	snapshot *graph.Snapshot
	index    int
	count    int
	pinned   bool
}

type tickMsg struct{ seq int }

type watchModel struct {
	ctx     context.Context
	in      *inspect.Inspector
	cadence inspect.Cadence
	opts    render.Options
	color   bool

	// seq identifies the live poll chain; user actions start a new one so
	// the view reacts at once instead of on the next tick.
	seq   int
	frame frameMsg

	width, height int
}

func newWatchModel(ctx context.Context, in *inspect.Inspector, c inspect.Cadence, opts render.Options, color bool) watchModel {
	return watchModel{
		ctx:     ctx,
		in:      in,
		cadence: c,
		opts:    opts,
		color:   color,
		width:   80,
		height:  24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.poll(m.seq)
}

// poll inspects the selected graph off the UI goroutine.
func (m watchModel) poll(seq int) tea.Cmd {
	return func() tea.Msg {
		f := m.in.Poll(m.ctx)
		msg := frameMsg{
			seq:      seq,
			state:    f.State,
			snapshot: graph.FromFrame(f),
			index:    f.Selected,
			count:    len(f.Graphs),
		}
		if f.Graph != nil {
			msg.pinned = m.in.Roster().Pinned(f.Graph)
		}
		return msg
	}
}

// restart begins a new poll chain, orphaning the pending tick.
func (m watchModel) restart() (watchModel, tea.Cmd) {
	m.seq++
	return m, m.poll(m.seq)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.frame = msg
		if n := len(msg.snapshot.Nodes); m.opts.Selected >= n {
			m.opts.Selected = n - 1
		}
		seq := m.seq
		return m, tea.Tick(m.cadence.Interval(msg.state), func(time.Time) tea.Msg {
			return tickMsg{seq: seq}
		})

	case tickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.poll(m.seq)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.in.Next()
			m.opts.Selected = render.NoSelection
			return m.restart()
		case "shift+tab":
			m.in.Prev()
			m.opts.Selected = render.NoSelection
			return m.restart()
		case "down", "j":
			if s := m.frame.snapshot; s != nil && m.opts.Selected < len(s.Nodes)-1 {
				m.opts.Selected++
			}
		case "up", "k":
			if m.opts.Selected > render.NoSelection {
				m.opts.Selected--
			}
		case "p":
			m.togglePin()
			return m.restart()
		case "i":
			m.opts.ShowInspector = !m.opts.ShowInspector
		case "l":
			m.opts.ShowLegend = !m.opts.ShowLegend
		}
	}
	return m, nil
}

func (m watchModel) togglePin() {
	id := m.in.Selected()
	g, ok := m.in.Roster().Lookup(id)
	if !ok {
		return
	}
	r := m.in.Roster()
	if r.Pinned(g) {
		r.Unpin(g)
	} else {
		r.Pin(g)
	}
}

var (
	watchPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	watchHelp = "tab graph · j/k node · p pin · i inspector · l legend · q quit"
)

func (m watchModel) View() string {
	s := m.frame.snapshot
	if s == nil {
		return StyleDim.Render("inspecting...")
	}

	var header strings.Builder
	header.WriteString(StyleTitle.Render(appName))
	if m.frame.count > 0 {
		fmt.Fprintf(&header, "  graph %d/%d", m.frame.index+1, m.frame.count)
	}
	if m.frame.pinned {
		header.WriteString(StyleWarning.Render("  pinned"))
	}
	header.WriteString("  " + stateStyle(s.State).Render(s.State))

	panel := ""
	panelWidth := 0
	if m.opts.ShowInspector {
		panel = watchPanelStyle.Render(strings.Join(render.InspectorLines(s, m.opts.Selected), "\n"))
		panelWidth = lipgloss.Width(panel) + 1
	}

	canvas := text.Canvas(s, text.Options{
		Options: m.opts,
		Color:   m.color,
		Columns: max(m.width-panelWidth, 20),
		Rows:    max(m.height-6, 4),
	})
	body := canvas
	if panel != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, canvas, " ", panel)
	}
	return header.String() + "\n" + body + "\n" + StyleDim.Render(watchHelp)
}
