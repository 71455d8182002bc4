package status

import (
	"errors"
	"io"

	"github.com/bnema/repostctl/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// tally is computed once per render and shown under the title.
type tally struct {
	accounts    int
	loggedIn    int
	staleCaches int
}

type layoutMsg struct {
	tally tally
}

type statusModel struct {
	statuses []domain.AccountStatus
	opts     RenderOptions
	styles   styles
	output   string
}

func (m statusModel) Init() tea.Cmd {
	statuses, opts := m.statuses, m.opts
	return func() tea.Msg {
		return layoutMsg{tally: countStatuses(statuses, opts)}
	}
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(layoutMsg); ok {
		m.output = renderView(m.statuses, msg.tally, m.opts, m.styles)
		return m, tea.Quit
	}
	return m, nil
}

func (m statusModel) View() string {
	return m.output
}

func countStatuses(statuses []domain.AccountStatus, opts RenderOptions) tally {
	t := tally{accounts: len(statuses)}
	for _, status := range statuses {
		if status.State == domain.StateLoggedIn {
			t.loggedIn++
		}
		if status.Role == domain.RoleAlt && isStale(status.Cache, opts) {
			t.staleCaches++
		}
	}
	return t
}

// Render lays out account statuses and returns the text.
func Render(statuses []domain.AccountStatus, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		statusModel{statuses: statuses, opts: opts, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(statusModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
