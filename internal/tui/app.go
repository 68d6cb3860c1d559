package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/plotline/internal/hierarchy"
	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
)

// PagerConfig holds configuration for the tree pager.
type PagerConfig struct {
	// Title is shown in the title bar, usually the project name.
	Title string
	// Tree is the forest to display.
	Tree hierarchy.Node
	// DateFormat is the layout for bucket labels.
	DateFormat string
}

// Pager is a Bubble Tea model that shows the hierarchy in a scrollable
// viewport.
type Pager struct {
	config   PagerConfig
	keys     KeyMap
	theme    Theme
	help     help.Model
	viewport viewport.Model
	showIDs  bool
	ready    bool // true after first WindowSizeMsg
	quitting bool
	width    int
	height   int
}

// NewPager constructs a Pager. Sizing happens on the first WindowSizeMsg.
func NewPager(cfg PagerConfig) Pager {
	return Pager{
		config:   cfg,
		keys:     DefaultKeyMap(),
		theme:    DefaultTheme(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
	}
}

// Init returns nil; bubbletea v1.x sends a WindowSizeMsg on startup.
func (p Pager) Init() tea.Cmd {
	return nil
}

// Update handles resizing and key bindings. Scrolling keys are applied to the
// viewport directly.
func (p Pager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = m.Width, m.Height
		p.help.Width = m.Width
		p.viewport.Width = m.Width
		p.viewport.Height = p.viewportHeight()
		if !p.ready {
			p.ready = true
			p.refresh()
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(m, p.keys.Quit):
			p.quitting = true
			return p, tea.Quit
		case key.Matches(m, p.keys.Help):
			p.help.ShowAll = !p.help.ShowAll
			p.viewport.Height = p.viewportHeight()
		case key.Matches(m, p.keys.IDs):
			p.showIDs = !p.showIDs
			p.refresh()
		case key.Matches(m, p.keys.Up):
			p.viewport.ScrollUp(1)
		case key.Matches(m, p.keys.Down):
			p.viewport.ScrollDown(1)
		case key.Matches(m, p.keys.PageUp):
			p.viewport.PageUp()
		case key.Matches(m, p.keys.PageDown):
			p.viewport.PageDown()
		case key.Matches(m, p.keys.Home):
			p.viewport.GotoTop()
		case key.Matches(m, p.keys.End):
			p.viewport.GotoBottom()
		}
		return p, nil
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the title bar, the tree and the help footer.
func (p Pager) View() string {
	if p.quitting {
		return ""
	}
	if !p.ready {
		return "Loading plans..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		p.renderTitleBar(),
		p.viewport.View(),
		p.theme.HelpBar.Render(p.help.View(p.keys)),
	)
}

func (p *Pager) refresh() {
	p.viewport.SetContent(RenderTree(p.config.Tree, p.theme, TreeOptions{
		DateFormat: p.config.DateFormat,
		ShowIDs:    p.showIDs,
	}))
}

func (p Pager) viewportHeight() int {
	footer := lipgloss.Height(p.help.View(p.keys))
	h := p.height - 1 - footer
	if h < 1 {
		h = 1
	}
	return h
}

func (p Pager) renderTitleBar() string {
	title := "plotline"
	if p.config.Title != "" {
		title = fmt.Sprintf("%s  |  %s", title, p.config.Title)
	}
	pct := fmt.Sprintf("%3.0f%%", p.viewport.ScrollPercent()*100)
	gap := p.width - lipgloss.Width(title) - lipgloss.Width(pct) - 2
	if gap < 1 {
		gap = 1
	}
	return p.theme.TitleBar.Width(p.width).Render(title + lipgloss.NewStyle().Width(gap).Render("") + pct)
}

// RunPager runs the pager full-screen until the user quits.
func RunPager(cfg PagerConfig) error {
	logger := logging.New("tui")
	logger.Debug("starting pager", "title", cfg.Title)

	prog := tea.NewProgram(NewPager(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
