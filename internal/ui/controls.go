package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"formdeck/internal/docstore"
	"formdeck/internal/form"
)

// control renders one field of a FormOverlay and writes its edits into the
// form engine through fieldEnv.set.
type control interface {
	Descriptor() form.Descriptor
	// Init starts any asynchronous work the control needs once mounted.
	Init() tea.Cmd
	Focus() tea.Cmd
	Blur()
	// Wants reports whether the control consumes msg before the overlay
	// applies its own bindings (Enter, Esc, Tab...).
	Wants(msg tea.KeyMsg) bool
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	Dispose()
}

// fieldMsg is a message addressed to one field of one overlay.
type fieldMsg interface {
	target() (owner uint64, field string)
}

// fieldEnv is everything a control may touch.
type fieldEnv struct {
	owner    uint64
	ctx      context.Context
	store    docstore.Store
	names    docstore.NameSource
	blocks   docstore.BlockSource
	resolver docstore.Resolver
	extra    []string
	newID    func() string
	get      func(name string) (form.Value, bool)
	set      func(name string, v form.Value)
	clear    func(name string)
}

type controlFactory func(d form.Descriptor, env *fieldEnv) control

// controlFactoryFor must name a factory for every form.Kind.
func controlFactoryFor(k form.Kind) controlFactory {
	switch k {
	case form.KindText:
		return newTextControl
	case form.KindNumber:
		return newNumberControl
	case form.KindFlag:
		return newFlagControl
	case form.KindSelect:
		return newSelectControl
	case form.KindPage:
		return newPageControl
	case form.KindBlock:
		return newBlockControl
	case form.KindAutocomplete:
		return newAutocompleteControl
	case form.KindEmbed:
		return newEmbedControl
	}
	return nil
}

func init() {
	for _, k := range form.Kinds {
		if controlFactoryFor(k) == nil {
			panic(fmt.Sprintf("ui: no control for field kind %q", k))
		}
	}
}

func newFieldInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	return ti
}

func renderInputBox(view string, width int, focused bool) string {
	style := styleSearchInput()
	if focused {
		style = styleSearchInputFocused()
	}
	return style.Width(width).Render(view)
}

// text

type textControl struct {
	desc  form.Descriptor
	env   *fieldEnv
	input textinput.Model
}

func newTextControl(d form.Descriptor, env *fieldEnv) control {
	c := &textControl{desc: d, env: env, input: newFieldInput()}
	if v, ok := env.get(d.Name); ok {
		c.input.SetValue(v.Str())
		c.input.CursorEnd()
	}
	return c
}

func (c *textControl) Descriptor() form.Descriptor { return c.desc }
func (c *textControl) Init() tea.Cmd               { return nil }
func (c *textControl) Focus() tea.Cmd              { return c.input.Focus() }
func (c *textControl) Blur()                       { c.input.Blur() }
func (c *textControl) Wants(tea.KeyMsg) bool       { return false }
func (c *textControl) Dispose()                    {}

func (c *textControl) Update(msg tea.Msg) tea.Cmd {
	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if after := c.input.Value(); after != before {
		c.env.set(c.desc.Name, form.String(after))
	}
	return cmd
}

func (c *textControl) View(width int) string {
	c.input.Width = width - 4
	return renderInputBox(c.input.View(), width, c.input.Focused())
}

// number

type numberControl struct {
	desc    form.Descriptor
	env     *fieldEnv
	input   textinput.Model
	invalid bool
}

func newNumberControl(d form.Descriptor, env *fieldEnv) control {
	c := &numberControl{desc: d, env: env, input: newFieldInput()}
	if v, ok := env.get(d.Name); ok {
		c.input.SetValue(strconv.FormatFloat(v.Num(), 'f', -1, 64))
		c.input.CursorEnd()
	}
	return c
}

func (c *numberControl) Descriptor() form.Descriptor { return c.desc }
func (c *numberControl) Init() tea.Cmd               { return nil }
func (c *numberControl) Focus() tea.Cmd              { return c.input.Focus() }
func (c *numberControl) Blur()                       { c.input.Blur() }
func (c *numberControl) Wants(tea.KeyMsg) bool       { return false }
func (c *numberControl) Dispose()                    {}

// Update stores parseable input and clears the value when the input is
// emptied. Anything else is flagged and leaves the last good number in
// place.
func (c *numberControl) Update(msg tea.Msg) tea.Cmd {
	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	after := strings.TrimSpace(c.input.Value())
	if after == strings.TrimSpace(before) {
		return cmd
	}
	if after == "" {
		c.invalid = false
		c.env.clear(c.desc.Name)
		return cmd
	}
	n, err := strconv.ParseFloat(after, 64)
	c.invalid = err != nil
	if err == nil {
		c.env.set(c.desc.Name, form.Number(n))
	}
	return cmd
}

func (c *numberControl) View(width int) string {
	c.input.Width = width - 4
	out := renderInputBox(c.input.View(), width, c.input.Focused())
	if c.invalid {
		out += "\n" + styleInlineError.Render("not a number")
	}
	return out
}

// flag

type flagControl struct {
	desc    form.Descriptor
	env     *fieldEnv
	focused bool
}

func newFlagControl(d form.Descriptor, env *fieldEnv) control {
	return &flagControl{desc: d, env: env}
}

func (c *flagControl) Descriptor() form.Descriptor { return c.desc }
func (c *flagControl) Init() tea.Cmd               { return nil }
func (c *flagControl) Blur()                       { c.focused = false }
func (c *flagControl) Dispose()                    {}

func (c *flagControl) Focus() tea.Cmd {
	c.focused = true
	return nil
}

func (c *flagControl) Wants(msg tea.KeyMsg) bool {
	return key.Matches(msg, keys.Toggle)
}

func (c *flagControl) checked() bool {
	v, ok := c.env.get(c.desc.Name)
	return ok && v.Flag()
}

func (c *flagControl) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, keys.Toggle) {
		c.env.set(c.desc.Name, form.Bool(!c.checked()))
	}
	return nil
}

func (c *flagControl) View(int) string {
	box := styleCheckOff.Render("[ ]")
	if c.checked() {
		box = styleCheckOn.Render("[x]")
	}
	if c.focused {
		return box + " " + styleMuted.Render("space to toggle")
	}
	return box
}

// select

type selectControl struct {
	desc    form.Descriptor
	env     *fieldEnv
	focused bool
}

func newSelectControl(d form.Descriptor, env *fieldEnv) control {
	return &selectControl{desc: d, env: env}
}

func (c *selectControl) Descriptor() form.Descriptor { return c.desc }
func (c *selectControl) Init() tea.Cmd               { return nil }
func (c *selectControl) Blur()                       { c.focused = false }
func (c *selectControl) Dispose()                    {}

func (c *selectControl) Focus() tea.Cmd {
	c.focused = true
	return nil
}

func (c *selectControl) Wants(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyLeft, tea.KeyRight:
		return len(c.desc.Options) > 0
	}
	return false
}

// index returns the position of the stored option, or -1.
func (c *selectControl) index() int {
	v, ok := c.env.get(c.desc.Name)
	if !ok {
		return -1
	}
	for i, opt := range c.desc.Options {
		if opt == v.Str() {
			return i
		}
	}
	return -1
}

func (c *selectControl) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok || len(c.desc.Options) == 0 {
		return nil
	}
	i := c.index()
	switch k.Type {
	case tea.KeyUp, tea.KeyLeft:
		if i > 0 {
			i--
		} else {
			i = 0
		}
	case tea.KeyDown, tea.KeyRight:
		if i < len(c.desc.Options)-1 {
			i++
		}
	default:
		return nil
	}
	c.env.set(c.desc.Name, form.String(c.desc.Options[i]))
	return nil
}

func (c *selectControl) View(width int) string {
	if len(c.desc.Options) == 0 {
		return styleNotice.Render("no options")
	}
	selected := c.index()
	parts := make([]string, len(c.desc.Options))
	for i, opt := range c.desc.Options {
		if i == selected {
			parts[i] = styleOptionSelected.Render("(•) " + opt)
		} else {
			parts[i] = styleText.Render("( ) " + opt)
		}
	}
	return wordwrap.String(strings.Join(parts, "  "), width)
}
