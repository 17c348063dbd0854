package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/streamvault/streamvault/internal/client"
	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/service"
	"github.com/streamvault/streamvault/internal/session"
)

const defaultServer = "http://localhost:8080"

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160")).
			MarginBottom(1)

	heroStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("88")).
			Padding(0, 2)

	rowTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type step int

const (
	stepLogin step = iota
	stepLoggingIn
	stepRegister
	stepRegistering
	stepRegisterDone
	stepBrowseLoading
	stepBrowse
)

var loginFields = []string{"User ID", "Password"}
var registerFields = []string{"User ID", "Name", "Email", "Phone", "Password"}

type model struct {
	api     *client.Client
	store   *session.Store
	session *service.LoginResult

	step       step
	fieldIdx   int
	fields     []string
	values     []string
	message    string
	errText    string
	quitting   bool
	wantBrowse bool // intended destination before the login redirect

	pages   map[string]*models.MoviePage
	hero    *models.Movie
	fetches int
}

type loginSuccessMsg struct{ result *service.LoginResult }
type registerSuccessMsg struct{}
type registerRedirectMsg struct{}
type moviesMsg struct {
	category string
	page     *models.MoviePage
}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel(api *client.Client, store *session.Store) model {
	m := model{
		api:    api,
		store:  store,
		pages:  map[string]*models.MoviePage{},
		fields: loginFields,
		values: make([]string, len(loginFields)),
	}

	// Route guard: a stored session goes straight to the browse view,
	// anything else lands on login and remembers where it was headed.
	if sess, err := store.Load(); err == nil && sess != nil {
		m.session = sess
		m.step = stepBrowseLoading
	} else {
		m.step = stepLogin
		m.wantBrowse = true
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.step == stepBrowseLoading {
		return fetchAllCategories(m.api)
	}
	return nil
}

func fetchAllCategories(api *client.Client) tea.Cmd {
	// The three categories load concurrently; the browse view renders only
	// once every one of them has arrived.
	cmds := make([]tea.Cmd, 0, 3)
	for _, category := range []string{"trending", "popular", "top_rated"} {
		cmds = append(cmds, fetchCategory(api, category))
	}
	return tea.Batch(cmds...)
}

func fetchCategory(api *client.Client, category string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		page, err := api.Movies(ctx, category)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load movies: %w", err)}
		}
		return moviesMsg{category: category, page: page}
	}
}

func doLogin(api *client.Client, userID, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		result, err := api.Login(ctx, userID, password)
		if err != nil {
			return errMsg{err}
		}
		return loginSuccessMsg{result: result}
	}
}

func doRegister(api *client.Client, values []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := api.Register(ctx, service.RegisterRequest{
			UserID:   values[0],
			Name:     values[1],
			Email:    values[2],
			Phone:    values[3],
			Password: values[4],
		})
		if err != nil {
			return errMsg{err}
		}
		return registerSuccessMsg{}
	}
}

func registerRedirect() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return registerRedirectMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case loginSuccessMsg:
		m.session = msg.result
		// Persist the full login response, token included.
		if err := m.store.Save(msg.result); err != nil {
			m.errText = fmt.Sprintf("could not save session: %v", err)
		}
		m.step = stepBrowseLoading
		m.errText = ""
		m.pages = map[string]*models.MoviePage{}
		m.hero = nil
		return m, fetchAllCategories(m.api)

	case registerSuccessMsg:
		m.step = stepRegisterDone
		m.message = "Registration successful."
		m.errText = ""
		return m, registerRedirect()

	case registerRedirectMsg:
		m.toLoginForm()
		return m, nil

	case moviesMsg:
		if m.step != stepBrowseLoading {
			// The view moved on; drop the late result.
			return m, nil
		}
		m.pages[msg.category] = msg.page
		if len(m.pages) == 3 {
			m.step = stepBrowse
			m.hero = pickHero(m.pages["trending"])
		}
		return m, nil

	case errMsg:
		switch m.step {
		case stepLoggingIn:
			m.step = stepLogin
		case stepRegistering:
			m.step = stepRegister
		case stepBrowseLoading:
			// One failed category collapses the whole view into a single
			// error state.
			m.step = stepBrowse
			m.pages = map[string]*models.MoviePage{}
		}
		m.errText = msg.err.Error()
		return m, nil
	}

	return m, nil
}

func (m *model) toLoginForm() {
	m.step = stepLogin
	m.fields = loginFields
	m.values = make([]string, len(loginFields))
	m.fieldIdx = 0
	m.message = ""
	m.errText = ""
}

func (m *model) toRegisterForm() {
	m.step = stepRegister
	m.fields = registerFields
	m.values = make([]string, len(registerFields))
	m.fieldIdx = 0
	m.message = ""
	m.errText = ""
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.step {
	case stepLogin, stepRegister:
		return m.updateForm(msg)

	case stepBrowse:
		switch key {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.step = stepBrowseLoading
			m.pages = map[string]*models.MoviePage{}
			m.hero = nil
			m.errText = ""
			return m, fetchAllCategories(m.api)
		case "l":
			// Logout: clear the stored session and return to login.
			if err := m.store.Clear(); err != nil {
				m.errText = err.Error()
				return m, nil
			}
			m.session = nil
			m.toLoginForm()
			return m, nil
		}
	}

	return m, nil
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.fieldIdx < len(m.fields)-1 {
			m.fieldIdx++
			return m, nil
		}
		return m.submitForm()

	case "tab", "down":
		m.fieldIdx = (m.fieldIdx + 1) % len(m.fields)
		return m, nil

	case "shift+tab", "up":
		m.fieldIdx = (m.fieldIdx - 1 + len(m.fields)) % len(m.fields)
		return m, nil

	case "backspace":
		v := m.values[m.fieldIdx]
		if v != "" {
			m.values[m.fieldIdx] = v[:len(v)-1]
		}
		return m, nil

	case "ctrl+r":
		if m.step == stepLogin {
			m.toRegisterForm()
		} else {
			m.toLoginForm()
		}
		return m, nil

	default:
		if len(msg.Runes) > 0 {
			m.values[m.fieldIdx] += string(msg.Runes)
		}
		return m, nil
	}
}

func (m model) submitForm() (tea.Model, tea.Cmd) {
	// Required-field check before any network call.
	for i, v := range m.values {
		if strings.TrimSpace(v) == "" {
			m.errText = m.fields[i] + " is required."
			m.fieldIdx = i
			return m, nil
		}
	}

	m.errText = ""
	if m.step == stepLogin {
		m.step = stepLoggingIn
		return m, doLogin(m.api, m.values[0], m.values[1])
	}
	m.step = stepRegistering
	return m, doRegister(m.api, m.values)
}

// pickHero picks one random trending title for the banner.
func pickHero(trending *models.MoviePage) *models.Movie {
	if trending == nil || len(trending.Results) == 0 {
		return nil
	}
	movie := trending.Results[rand.Intn(len(trending.Results))]
	return &movie
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("STREAMVAULT") + "\n")

	switch m.step {
	case stepLogin, stepRegister:
		m.viewForm(&b)
	case stepLoggingIn:
		b.WriteString("Signing in...\n")
	case stepRegistering:
		b.WriteString("Creating your account...\n")
	case stepRegisterDone:
		b.WriteString(successStyle.Render(m.message) + "\n")
		b.WriteString("Redirecting to login...\n")
	case stepBrowseLoading:
		b.WriteString("Loading movies...\n")
	case stepBrowse:
		m.viewBrowse(&b)
	}

	return b.String()
}

func (m model) viewForm(b *strings.Builder) {
	if m.step == stepLogin {
		b.WriteString(promptStyle.Render("Sign In") + "\n\n")
	} else {
		b.WriteString(promptStyle.Render("Create Account") + "\n\n")
	}

	for i, field := range m.fields {
		value := m.values[i]
		if field == "Password" {
			value = strings.Repeat("*", len(value))
		}
		cursor := "  "
		if i == m.fieldIdx {
			cursor = "> "
			value = inputStyle.Render(value + "_")
		}
		fmt.Fprintf(b, "%s%s: %s\n", cursor, field, value)
	}

	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter: next/submit • tab: move • ctrl+r: switch login/register • ctrl+c: quit") + "\n")
}

func (m model) viewBrowse(b *strings.Builder) {
	if m.errText != "" || len(m.pages) < 3 {
		b.WriteString(errorStyle.Render("Something went wrong loading movies. Please try again.") + "\n")
		b.WriteString("\n" + helpStyle.Render("r: retry • l: logout • q: quit") + "\n")
		return
	}

	if m.session != nil {
		fmt.Fprintf(b, "Welcome back, %s\n\n", m.session.User.Name)
	}

	if m.hero != nil {
		b.WriteString(heroStyle.Render(m.hero.Title) + "\n")
		overview := m.hero.Overview
		if len(overview) > 200 {
			overview = overview[:200] + "..."
		}
		b.WriteString(normalStyle.Render(overview) + "\n\n")
	}

	rows := []struct {
		title    string
		category string
	}{
		{"Trending Now", "trending"},
		{"Popular", "popular"},
		{"Top Rated", "top_rated"},
	}

	for _, row := range rows {
		b.WriteString(rowTitleStyle.Render(row.title) + "\n")
		page := m.pages[row.category]
		max := 5
		if len(page.Results) < max {
			max = len(page.Results)
		}
		for _, movie := range page.Results[:max] {
			fmt.Fprintf(b, "%s\n", normalStyle.Render(fmt.Sprintf("%-40s ★ %.1f", movie.Title, movie.VoteAverage)))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("r: refresh • l: logout • q: quit") + "\n")
}

func main() {
	server := os.Getenv("STREAMVAULT_SERVER")
	if server == "" {
		server = defaultServer
	}

	store, err := session.NewStore(os.Getenv("STREAMVAULT_SESSION_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open session store: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client.New(server), store))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
