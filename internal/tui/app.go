package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fruitcakej/GuardianNews/internal/browser"
	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/config"
	"github.com/fruitcakej/GuardianNews/internal/loader"
	"github.com/fruitcakej/GuardianNews/internal/logging"
	"github.com/fruitcakej/GuardianNews/internal/prefs"
	"github.com/fruitcakej/GuardianNews/internal/query"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeSettings
	modeHelp
)

type App struct {
	cfg    *config.Config
	prefs  *prefs.Store
	loader *loader.Loader
	opener *browser.Opener
	logger *slog.Logger

	articles articleList
	cursor   int
	focus    focusPane
	mode     mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	settings    settingsScreen

	online   bool
	loading  bool
	spinning bool
	loaded   bool
	err      error

	previewScroll int
	currentDate   string
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg    *config.Config
	Prefs  *prefs.Store
	Loader *loader.Loader
	Opener *browser.Opener
	Logger *slog.Logger
	// Online is the result of the launch-time connectivity check.
	Online bool
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Filter headlines..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	opener := opts.Opener
	if opener == nil {
		opener = browser.New(opts.Cfg.Browser)
	}

	return &App{
		cfg:         opts.Cfg,
		prefs:       opts.Prefs,
		loader:      opts.Loader,
		opener:      opener,
		logger:      logger,
		online:      opts.Online,
		searchInput: ti,
		spinner:     sp,
		currentDate: time.Now().Format("Mon 2 Jan"),
	}
}

// Listen subscribes the app to preference changes. send must not block
// the caller; the store invokes it from the goroutine that made the change.
func (a *App) Listen(send func(tea.Msg)) {
	a.prefs.OnChange(func(keys []string) {
		send(prefsChangedMsg{keys: keys})
	})
}

func (a *App) Init() tea.Cmd {
	if !a.online {
		a.logger.Info("offline at launch, not loading")
		return nil
	}
	return a.startLoad()
}

func (a *App) request() query.Request {
	v := a.prefs.Values()
	return query.NewRequest(v.PageSize, v.OrderBy, v.Sections, a.cfg.DefaultSections)
}

// startLoad kicks off a fetch. The request is re-read when the command runs
// so that of two racing commands the later Load always carries the newest
// preferences.
func (a *App) startLoad() tea.Cmd {
	a.loading = true
	l := a.loader
	build := a.request
	load := func() tea.Msg {
		return articlesLoadedMsg{result: l.Load(context.Background(), build())}
	}
	if a.spinning {
		// one tick chain at a time; the running one picks up this load
		return load
	}
	a.spinning = true
	return tea.Batch(load, a.spinner.Tick)
}

// restart drops what is shown and everything pending, then loads again.
func (a *App) restart() tea.Cmd {
	a.articles.Clear()
	a.cursor = 0
	a.previewScroll = 0
	a.loader.Reset()
	return a.startLoad()
}

func (a *App) openCmd(url string) tea.Cmd {
	o := a.opener
	return func() tea.Msg {
		if err := o.Open(url); err != nil {
			return statusErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.err = nil
		return a.handleKey(msg)

	case articlesLoadedMsg:
		if !a.loader.Current(msg.result) {
			a.logger.Debug("discarding stale result", "generation", msg.result.Generation)
			return a, nil
		}
		a.loading = false
		a.loaded = true
		// a failed fetch shows the same empty state as an empty one
		a.articles.Replace(msg.result.Articles)
		if a.cursor >= a.articles.Count() {
			a.cursor = max(0, a.articles.Count()-1)
		}
		return a, nil

	case prefsChangedMsg:
		a.logger.Info("preferences changed", "keys", msg.keys)
		if !a.online {
			return a, nil
		}
		return a, a.restart()

	case statusErrMsg:
		a.logger.Warn("action failed", "error", msg.err)
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		a.spinning = false
		return a, nil
	}

	return a, nil
}

func (a *App) visible() []cache.Article {
	return a.articles.Visible(a.searchInput.Value())
}

func (a *App) selected() *cache.Article {
	items := a.visible()
	if a.cursor < 0 || a.cursor >= len(items) {
		return nil
	}
	return &items[a.cursor]
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeSettings:
		return a.handleSettingsKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeList
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.visible())-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if art := a.selected(); art != nil {
			return a, a.openCmd(art.WebURL)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "s":
		a.mode = modeSettings
		return a, nil
	case "r":
		if !a.online || a.loading {
			return a, nil
		}
		return a, a.restart()
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeList
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.cursor = 0
		return a, nil
	case "enter":
		a.mode = modeList
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.cursor = 0
	return a, cmd
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	if len(lines) >= a.height {
		lines = lines[:max(0, a.height-1)]
	}
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorPrimary).Render("  guardiannews")
	}

	switch {
	case a.mode == modeHelp:
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	case a.mode == modeSettings:
		return a.withBottomBar(a.renderSettings(), "↑/↓ move  ←/→ change  space toggle  x reset  esc back")
	case !a.online:
		return a.withBottomBar(
			renderEmptyState(a.width, a.height-1, "No internet connection.",
				"Connect and restart guardiannews to load the news."),
			"s settings  q quit")
	case a.loaded && !a.loading && a.articles.Count() == 0:
		return a.withBottomBar(
			renderEmptyState(a.width, a.height-1, "No data",
				"Nothing came back for "+a.prefs.Summary(prefs.KeySections)+".",
				"Press r to try again or s to change sections."),
			"r refresh  s settings  q quit")
	}

	headerHeight := 2
	statusHeight := 1
	contentHeight := max(3, a.height-headerHeight-statusHeight-3)

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1

	headerLeft := headerStyle.Render("The Guardian")
	headerRight := headerDateStyle.Render(a.currentDate)
	headerGap := max(0, a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight))
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	sub := subheaderStyle.Render(a.prefs.Summary(prefs.KeySections))
	if a.mode == modeSearch {
		sub = a.searchInput.View()
	}

	items := a.visible()
	var listContent string
	if a.loading && a.articles.Count() == 0 {
		listContent = centerLine(a.spinner.View()+" Loading articles...", listWidth-4, contentHeight)
	} else {
		listContent = renderList(items, a.cfg.SectionLabel, a.cursor, contentHeight, listWidth-4)
	}

	listStyle, previewStyle := listPaneStyle, previewPaneActiveStyle
	if a.focus == focusList {
		listStyle, previewStyle = listPaneActiveStyle, previewPaneStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	var section string
	sel := a.selected()
	if sel != nil {
		section = a.cfg.SectionLabel(sel.Section)
	}
	previewContent := renderPreview(sel, section, previewWidth-4, contentHeight, a.previewScroll)
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	hints := "/ search  s settings  r refresh  ? help  q quit"
	if a.mode == modeSearch {
		hints = "esc clear  enter done"
	}
	info := statusInfo{
		shown:   len(items),
		total:   a.articles.Count(),
		order:   a.prefs.Summary(prefs.KeyOrderBy),
		loading: a.loading,
		search:  a.searchInput.Value(),
		hints:   hints,
		spinner: a.spinner.View(),
	}
	if a.err != nil {
		info.errorMsg = a.err.Error()
	}
	status := renderStatusBar(info, a.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, sub, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("guardiannews")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through the article list\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open article in browser\n" +
		"  r             Reload articles\n" +
		"  /             Filter headlines\n" +
		"  s             Settings\n\n" +
		dim.Render("Settings") + "\n" +
		"  ←/→           Change page size or order\n" +
		"  space         Toggle a section\n" +
		"  x             Reset to defaults\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)
	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application and blocks until it exits.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.Listen(func(msg tea.Msg) {
		// Send blocks until the loop receives; the store may call us from Update
		go p.Send(msg)
	})
	_, err := p.Run()
	return err
}
