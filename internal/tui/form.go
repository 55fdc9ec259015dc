package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/riskaudit/internal/audit"
)

// Form fields in tab order.
const (
	fieldName = iota
	fieldPosition
	fieldPerformedWork
	fieldProblems
	fieldCount
)

// noteForm collects the auditor identity and the notes for one stage. The
// identity survives stage switches; the notes are swapped per stage.
type noteForm struct {
	name          textinput.Model
	position      textinput.Model
	performedWork textarea.Model
	problems      textarea.Model
	focus         int
}

func newNoteForm() noteForm {
	name := textinput.New()
	name.Placeholder = "Auditor name"
	name.Prompt = "Name:     "
	name.CharLimit = 0

	position := textinput.New()
	position.Placeholder = "Auditor position"
	position.Prompt = "Position: "
	position.CharLimit = 0

	return noteForm{
		name:          name,
		position:      position,
		performedWork: newNoteArea("Work performed at this stage"),
		problems:      newNoteArea("Problems encountered at this stage"),
	}
}

func newNoteArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetHeight(5)
	return ta
}

func (f *noteForm) setWidth(width int) {
	f.name.Width = max(10, width-12)
	f.position.Width = max(10, width-12)
	f.performedWork.SetWidth(width)
	f.problems.SetWidth(width)
}

// load replaces the note fields with the stage's saved draft.
func (f *noteForm) load(notes audit.Notes) {
	f.performedWork.SetValue(notes.PerformedWork)
	f.problems.SetValue(notes.Problems)
}

func (f *noteForm) notes() audit.Notes {
	return audit.Notes{
		PerformedWork: f.performedWork.Value(),
		Problems:      f.problems.Value(),
	}
}

func (f *noteForm) identity() (string, string) {
	return strings.TrimSpace(f.name.Value()), strings.TrimSpace(f.position.Value())
}

func (f *noteForm) reset() {
	f.blur()
	f.performedWork.Reset()
	f.problems.Reset()
	f.focus = fieldName
}

// focusFirstEmpty puts the cursor on the identity fields until both are
// filled, then on the performed-work notes.
func (f *noteForm) focusFirstEmpty() tea.Cmd {
	switch {
	case strings.TrimSpace(f.name.Value()) == "":
		f.focus = fieldName
	case strings.TrimSpace(f.position.Value()) == "":
		f.focus = fieldPosition
	default:
		f.focus = fieldPerformedWork
	}
	return f.focusCurrent()
}

func (f *noteForm) focusCurrent() tea.Cmd {
	f.blur()
	switch f.focus {
	case fieldName:
		return f.name.Focus()
	case fieldPosition:
		return f.position.Focus()
	case fieldPerformedWork:
		return f.performedWork.Focus()
	case fieldProblems:
		return f.problems.Focus()
	}
	return nil
}

func (f *noteForm) blur() {
	f.name.Blur()
	f.position.Blur()
	f.performedWork.Blur()
	f.problems.Blur()
}

func (f *noteForm) move(delta int) tea.Cmd {
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.focusCurrent()
}

func (f *noteForm) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			return f.move(1)
		case "shift+tab":
			return f.move(-1)
		case "enter":
			// Enter advances past single-line inputs; in notes it is a newline.
			if f.focus == fieldName || f.focus == fieldPosition {
				return f.move(1)
			}
		}
	}
	var cmd tea.Cmd
	switch f.focus {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
	case fieldPosition:
		f.position, cmd = f.position.Update(msg)
	case fieldPerformedWork:
		f.performedWork, cmd = f.performedWork.Update(msg)
	case fieldProblems:
		f.problems, cmd = f.problems.Update(msg)
	}
	return cmd
}

func (f *noteForm) view(stageTitle string) string {
	label := func(field int, text string) string {
		if f.focus == field {
			return focusedLabelStyle.Render(text)
		}
		return labelStyle.Render(text)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Stage · %s", stageTitle)),
		"",
		label(fieldName, "Auditor"),
		f.name.View(),
		f.position.View(),
		"",
		label(fieldPerformedWork, fmt.Sprintf("Work performed during '%s'", stageTitle)),
		f.performedWork.View(),
		"",
		label(fieldProblems, fmt.Sprintf("Problems encountered during '%s'", stageTitle)),
		f.problems.View(),
	)
}
