package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	ecos "github.com/ecosdacama/dreams/pkg"
	"github.com/ecosdacama/dreams/pkg/dreams"
	"github.com/ecosdacama/dreams/pkg/interpret"
)

type model struct {
	dreams []dreams.Dream
	cursor int // Index of selected dream

	width  int
	height int
	err    error

	store       *dreams.Store
	interpreter *interpret.Client
	dbFilename  string

	quitting bool

	searching   bool
	searchInput textinput.Model
	query       string // Filter currently applied to the list

	deleting         bool
	deleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	interpretingID int64  // Dream whose interpretation is being fetched, 0 when idle
	notice         string // Inline result of the last interpretation attempt

	// Animation state
	marqueeOffset int
	marqueeTimer  int
}

// Initialize TUI model
func initModel(store *dreams.Store, interpreter *interpret.Client) model {
	_, file := getDbPragmaList(store.DB())

	search := textinput.New()
	search.Placeholder = "title or description"
	search.CharLimit = 256

	return model{
		dreams:      []dreams.Dream{},
		store:       store,
		interpreter: interpreter,
		dbFilename:  filepath.Base(file),
		searchInput: search,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		loadDreams(m.store, ""),
		tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
			return t
		}),
	)
}

func (m model) selected() (dreams.Dream, bool) {
	if m.cursor < 0 || m.cursor >= len(m.dreams) {
		return dreams.Dream{}, false
	}
	return m.dreams[m.cursor], true
}

// Processes events like window resize, errors, loaded data, and key presses
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case dreamsLoadedMsg:
		m.dreams = msg.dreams
		m.query = msg.query
		if m.cursor >= len(m.dreams) {
			m.cursor = max(len(m.dreams)-1, 0)
		}
		return m, nil

	case dreamDeletedMsg:
		for i, d := range m.dreams {
			if d.ID == msg.id {
				m.dreams = append(m.dreams[:i], m.dreams[i+1:]...)
				break
			}
		}
		if m.cursor >= len(m.dreams) && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case interpretationMsg:
		m.interpretingID = 0
		if msg.err != nil {
			m.notice = interpret.Message(msg.err)
		} else {
			m.notice = ""
		}
		// The dream may have been deleted while the request was in flight.
		if msg.text != "" {
			for i := range m.dreams {
				if m.dreams[i].ID == msg.id {
					m.dreams[i].Interpretation = msg.text
				}
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			switch msg.Type {
			case tea.KeyEnter:
				m.searching = false
				m.searchInput.Blur()
				m.cursor = 0
				return m, loadDreams(m.store, m.searchInput.Value())
			case tea.KeyEsc:
				m.searching = false
				m.searchInput.Blur()
				m.searchInput.SetValue(m.query)
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		if m.deleting {
			switch msg.String() {
			case "up", "k":
				m.deleteConfirmIdx = 0
			case "down", "j":
				m.deleteConfirmIdx = 1
			case "enter":
				m.deleting = false
				if d, ok := m.selected(); ok && m.deleteConfirmIdx == 0 {
					return m, deleteDream(m.store, d.ID)
				}
			case "esc":
				m.deleting = false
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.dreams)-1 {
				m.cursor++
			}

		case "/":
			m.searching = true
			m.searchInput.SetValue(m.query)
			m.searchInput.Focus()
			return m, textinput.Blink

		case "r":
			return m, loadDreams(m.store, m.query)

		case "d":
			if len(m.dreams) > 0 {
				m.deleteConfirmIdx = 1
				m.deleting = true
			}

		case "i":
			d, ok := m.selected()
			if !ok || m.interpreter == nil || m.interpretingID != 0 {
				return m, nil
			}
			m.interpretingID = d.ID
			m.notice = ""
			return m, fetchInterpretation(m.store, m.interpreter, d)
		}
		return m, nil

	case time.Time:
		// Update marquee animation every x ticks (adjust for speed)
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
			return t
		})
	}

	return m, nil
}

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Sweet dreams.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleBar := titleStyle.Width(m.width).Render(fmt.Sprintf("Dreams v%s - dream journal", ecos.Version))

	leftWidth := m.width * 35 / 100
	rightWidth := m.width - leftWidth
	panelHeight := max(m.height-3, 0)

	// Left column: dream list
	var left strings.Builder
	heading := "  Dreams"
	if m.query != "" {
		heading = fmt.Sprintf("  Dreams matching %q", m.query)
	}
	left.WriteString(subtitleStyle.Width(leftWidth - bordersAndPaddingWidth).Render(heading))
	left.WriteString("\n\n")

	if m.searching {
		left.WriteString("Search: " + m.searchInput.View() + "\n\n")
	}

	if len(m.dreams) == 0 {
		left.WriteString("  No dreams found.\n")
	}
	for i, d := range m.dreams {
		pointer := generateLinePointer(i == m.cursor, 2)
		available := leftWidth - len(pointer) - bordersAndPaddingWidth - 1
		label := d.Title
		if label == "" {
			label = "(untitled)"
		}
		label = fmt.Sprintf("%s %s", d.Date, label)
		if i == m.cursor {
			left.WriteString(pointer + selectedStyle.Render(marqueeText(label, m.marqueeOffset, available)) + "\n")
		} else {
			left.WriteString(pointer + inactiveStyle.Render(truncate(label, available)) + "\n")
		}
	}

	left.WriteString("\n" + fmt.Sprintf("Database file: %v\n",
		TextStatusColorize(m.dbFilename, boolStatus(m.dbFilename != ""))))
	interpreterStatus := "off"
	if m.interpreter != nil {
		interpreterStatus = m.interpreter.URL()
	}
	left.WriteString(fmt.Sprintf("Interpreter: %v\n",
		TextStatusColorize(interpreterStatus, boolStatus(m.interpreter != nil))))

	// Right column: details or delete confirmation
	var right strings.Builder
	subtitle := "Dream"
	if m.deleting {
		subtitle = "Delete Dream"
	}
	right.WriteString(subtitleStyle.Width(rightWidth - bordersAndPaddingWidth).Render(subtitle))
	right.WriteString("\n\n")

	d, ok := m.selected()
	switch {
	case !ok:
		right.WriteString("Select a dream to view details.")
	case m.deleting:
		right.WriteString("Title: " + errorStyle.Render(d.Title) + "\n\n")
		yesOpt, noOpt := "Yes", "No"
		if m.deleteConfirmIdx == 0 {
			yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
			noOpt = inactiveStyle.Render("  " + noOpt)
		} else {
			yesOpt = inactiveStyle.Render("  " + yesOpt)
			noOpt = selectedStyle.Render(" >" + noOpt)
		}
		right.WriteString(fmt.Sprintf("%s\n%s\n\n", yesOpt, noOpt))
		right.WriteString("(enter to confirm, esc to cancel, up/down to switch)")
	default:
		right.WriteString(lipgloss.NewStyle().Bold(true).Render(labelStyle.Render("Title: ")+inactiveStyle.Render(d.Title)) + "\n")
		right.WriteString(labelStyle.Render("When: ") + inactiveStyle.Render(d.Date+" "+d.Time) + "\n\n")
		right.WriteString(inactiveStyle.Render(d.Description) + "\n\n")
		right.WriteString(labelStyle.Render("Interpretation:") + "\n")
		switch {
		case m.interpretingID == d.ID:
			right.WriteString(meaningStyle.Render("fetching..."))
		case d.Interpretation != "":
			right.WriteString(meaningStyle.Render(d.Interpretation))
		default:
			right.WriteString(footerStyle.Render("none yet (press i)"))
		}
		if m.notice != "" {
			right.WriteString("\n\n" + errorStyle.Render(m.notice))
		}
	}

	leftPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).
		Width(leftWidth).Height(panelHeight).
		Render(left.String())
	rightPanel := lipgloss.NewStyle().Padding(0, 2).
		Width(rightWidth).Height(panelHeight).
		Render(right.String())

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	footerText := "\n↑/↓ to navigate • / to search • i to interpret • d to delete • r to reload • q to quit"
	footerBar := footerStyle.Width(m.width).Render(footerText)

	return titleBar + "\n\n" + columns + footerBar
}

func boolStatus(ok bool) int {
	if ok {
		return 1
	}
	return 2
}

// Create and start the Bubble Tea TUI
func ShowTUI(store *dreams.Store, interpreter *interpret.Client) error {
	p := tea.NewProgram(initModel(store, interpreter), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
