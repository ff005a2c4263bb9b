package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"kreosurvey/internal/ui/theme"
)

const (
	KindSingle = "single"
	KindMulti  = "multi"
	KindText   = "text"
	KindNumber = "number"
	KindBool   = "bool"
)

var boolOptions = []string{"Yes", "No"}

// Field edits the answer to one question. Text and number questions use a
// text input; choice questions use a cursor with space to pick.
type Field struct {
	Key      string
	Prompt   string
	Kind     string
	Options  []string
	Required bool

	input    textinput.Model
	cursor   int
	choice   int
	selected map[int]bool
	focused  bool
}

func NewField(key, prompt, kind string, options []string, required bool, initial any) Field {
	f := Field{Key: key, Prompt: prompt, Kind: kind, Options: options, Required: required, choice: -1, selected: map[int]bool{}}
	if kind == KindBool {
		f.Options = boolOptions
	}
	if f.textual() {
		ti := textinput.New()
		ti.CharLimit = 120
		if kind == KindNumber {
			ti.Placeholder = "number"
			ti.CharLimit = 6
		}
		f.input = ti
	}
	f.setInitial(initial)
	return f
}

func (f Field) textual() bool {
	return f.Kind == KindText || f.Kind == KindNumber
}

func (f *Field) setInitial(initial any) {
	switch v := initial.(type) {
	case nil:
	case string:
		if f.textual() {
			f.input.SetValue(v)
			return
		}
		f.pick(v)
	case float64:
		f.input.SetValue(strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		f.input.SetValue(strconv.Itoa(v))
	case bool:
		if v {
			f.choice = 0
		} else {
			f.choice = 1
		}
		f.cursor = f.choice
	case []string:
		for _, s := range v {
			f.pick(s)
		}
	case []any:
		for _, item := range v {
			f.pick(fmt.Sprint(item))
		}
	}
}

func (f *Field) pick(option string) {
	for i, o := range f.Options {
		if o != option {
			continue
		}
		if f.Kind == KindMulti {
			f.selected[i] = true
		} else {
			f.choice = i
		}
		f.cursor = i
	}
}

func (f *Field) Focus() tea.Cmd {
	f.focused = true
	if f.textual() {
		return f.input.Focus()
	}
	return nil
}

func (f *Field) Blur() {
	f.focused = false
	if f.textual() {
		f.input.Blur()
	}
}

func (f Field) Update(msg tea.Msg) (Field, tea.Cmd) {
	if !f.focused {
		return f, nil
	}
	if f.textual() {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return f, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}
	switch key.String() {
	case "up", "k", "left", "h":
		if f.cursor > 0 {
			f.cursor--
		}
	case "down", "j", "right", "l":
		if f.cursor < len(f.Options)-1 {
			f.cursor++
		}
	case " ", "x":
		if f.Kind == KindMulti {
			f.selected[f.cursor] = !f.selected[f.cursor]
		} else if f.choice == f.cursor {
			f.choice = -1
		} else {
			f.choice = f.cursor
		}
	}
	return f, nil
}

// Value is the answer in the shape the survey expects, or nil when blank.
func (f Field) Value() any {
	switch f.Kind {
	case KindText, KindNumber:
		v := strings.TrimSpace(f.input.Value())
		if v == "" {
			return nil
		}
		return v
	case KindBool:
		if f.choice < 0 {
			return nil
		}
		return f.choice == 0
	case KindMulti:
		var out []string
		for i, o := range f.Options {
			if f.selected[i] {
				out = append(out, o)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		if f.choice < 0 || f.choice >= len(f.Options) {
			return nil
		}
		return f.Options[f.choice]
	}
}

func (f Field) View() string {
	var sb strings.Builder
	prompt := f.Prompt
	if f.Required {
		prompt += theme.Hot.Render(" *")
	}
	if f.focused {
		sb.WriteString(theme.Title.Render("› ") + prompt + "\n")
	} else {
		sb.WriteString("  " + prompt + "\n")
	}
	if f.textual() {
		sb.WriteString("    " + f.input.View() + "\n")
		return sb.String()
	}
	for i, o := range f.Options {
		mark := "( )"
		if f.Kind == KindMulti {
			mark = "[ ]"
			if f.selected[i] {
				mark = "[x]"
			}
		} else if f.choice == i {
			mark = "(•)"
		}
		line := "    " + mark + " " + o
		if f.focused && f.cursor == i {
			line = theme.Hot.Render(line)
		} else if f.selected[i] || f.choice == i {
			line = theme.Success.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
