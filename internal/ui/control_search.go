package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/form"
	"formdeck/internal/search"
)

// searchControl backs page, autocomplete and block fields with a
// SearchInput. Every edit and commit is written to the engine
// synchronously, so a submit that immediately follows a keystroke sees it.
type searchControl struct {
	desc       form.Descriptor
	env        *fieldEnv
	input      *SearchInput
	candidates func() []string
	// store writes the edited or committed text into the engine.
	store func(text string, committed bool) tea.Cmd
}

func newSearchControl(d form.Descriptor, env *fieldEnv, placeholder string, candidates func() []string) *searchControl {
	id := fmt.Sprintf("%d/%s", env.owner, d.Name)
	c := &searchControl{
		desc:       d,
		env:        env,
		input:      NewSearchInput(id, candidates()).WithPlaceholder(placeholder),
		candidates: candidates,
	}
	c.store = func(text string, _ bool) tea.Cmd {
		env.set(d.Name, form.String(text))
		return nil
	}
	if v, ok := env.get(d.Name); ok {
		c.input.SetValue(v.Str())
	}
	return c
}

func newPageControl(d form.Descriptor, env *fieldEnv) control {
	return newSearchControl(d, env, "Search for a page", func() []string {
		var names []string
		if env.names != nil {
			names = env.names.ReferenceNames()
		}
		return search.Candidates(names, env.extra...)
	})
}

func newAutocompleteControl(d form.Descriptor, env *fieldEnv) control {
	options := d.Options
	return newSearchControl(d, env, "", func() []string { return options })
}

func (c *searchControl) Descriptor() form.Descriptor { return c.desc }
func (c *searchControl) Init() tea.Cmd               { return nil }
func (c *searchControl) Blur()                       { c.input.Blur() }
func (c *searchControl) Dispose()                    {}

// Focus refreshes the candidates since the store may have changed while
// the field was unfocused.
func (c *searchControl) Focus() tea.Cmd {
	c.input.SetCandidates(c.candidates())
	return c.input.Focus()
}

// Wants claims Enter (commit, or confirm while closed) and the arrows.
// Esc only belongs to the control while the dropdown is open.
func (c *searchControl) Wants(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyUp, tea.KeyDown:
		return true
	case tea.KeyEsc:
		return c.input.IsOpen()
	}
	return false
}

func (c *searchControl) Update(msg tea.Msg) tea.Cmd {
	before, commits := c.input.Value(), c.input.Commits()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	committed := c.input.Commits() != commits
	if after := c.input.Value(); committed || after != before {
		return tea.Batch(cmd, c.store(after, committed))
	}
	return cmd
}

func (c *searchControl) View(width int) string {
	c.input.WithWidth(width)
	return c.input.View()
}

func (c *searchControl) dropdownOpen() bool {
	return c.input.IsOpen()
}

// ownsSearch reports whether a SearchInput message came from this control.
func (c *searchControl) ownsSearch(id string) bool {
	return c.input.ID == id
}

// block

// blockDisplayMsg carries the display text of a stored block reference.
type blockDisplayMsg struct {
	owner uint64
	field string
	seq   int
	text  string
	err   error
}

func (m blockDisplayMsg) target() (uint64, string) { return m.owner, m.field }

// blockControl stores a block uid when the committed text is a candidate
// block's text, and the raw text otherwise. Stored uids are shown as
// the block's text; an unresolvable value is shown as is.
type blockControl struct {
	*searchControl
	uids map[string]string
	// seq invalidates lookups started before the latest edit.
	seq int
}

func newBlockControl(d form.Descriptor, env *fieldEnv) control {
	c := &blockControl{uids: make(map[string]string)}
	c.searchControl = newSearchControl(d, env, "Search for a block", func() []string {
		return c.texts(env)
	})
	c.store = c.storeText
	return c
}

// texts lists block candidates by text, remembering the first uid seen for
// each text.
func (c *blockControl) texts(env *fieldEnv) []string {
	if env.blocks == nil {
		return nil
	}
	blocks := env.blocks.BlockCandidates()
	texts := make([]string, 0, len(blocks))
	uids := make(map[string]string, len(blocks))
	for _, b := range blocks {
		if _, dup := uids[b.Text]; dup {
			continue
		}
		uids[b.Text] = b.UID
		texts = append(texts, b.Text)
	}
	c.uids = uids
	return texts
}

// storeText keeps the raw text while typing. A commit of a known block's
// text stores its uid in the same step, so a submit right after the commit
// sees the reference.
func (c *blockControl) storeText(text string, committed bool) tea.Cmd {
	c.seq++
	if uid, ok := c.uids[text]; committed && ok {
		c.env.set(c.desc.Name, form.String(uid))
		return nil
	}
	c.env.set(c.desc.Name, form.String(text))
	return nil
}

// Init resolves a stored reference to its text for display.
func (c *blockControl) Init() tea.Cmd {
	v, ok := c.env.get(c.desc.Name)
	if !ok || v.Str() == "" || c.env.resolver == nil {
		return nil
	}
	seq, owner, field := c.seq, c.env.owner, c.desc.Name
	resolver, ctx, raw := c.env.resolver, c.env.ctx, v.Str()
	return func() tea.Msg {
		text, err := resolver.ResolveText(ctx, raw)
		return blockDisplayMsg{owner: owner, field: field, seq: seq, text: text, err: err}
	}
}

func (c *blockControl) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case blockDisplayMsg:
		if msg.seq == c.seq && msg.err == nil {
			c.input.SetValue(msg.text)
		}
		return nil
	}
	return c.searchControl.Update(msg)
}
