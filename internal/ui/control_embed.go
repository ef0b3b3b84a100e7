package ui

import (
	"sync"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/binding"
	"formdeck/internal/debug"
	"formdeck/internal/form"
)

var embedLog = debug.Scope("embed")

const embedEditorHeight = 4

// embedReadyMsg reports the end of a provisioning started by generation gen.
type embedReadyMsg struct {
	owner uint64
	field string
	gen   int
	err   error
}

func (m embedReadyMsg) target() (uint64, string) { return m.owner, m.field }

// embedChangedMsg carries entry content pushed by the store subscription.
type embedChangedMsg struct {
	owner   uint64
	field   string
	gen     int
	content string
}

func (m embedChangedMsg) target() (uint64, string) { return m.owner, m.field }

// editorRegion is the docstore.Region an embed control hands to the store.
// The store attaches from the provisioning goroutine, so access is locked.
type editorRegion struct {
	mu       sync.Mutex
	attached bool
	entryID  string
	content  string
	edit     func(string) error
	// sent holds values written back to the store whose echo has not been
	// seen yet, oldest first.
	sent []string
}

func (r *editorRegion) Attach(entryID, content string, edit func(string) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = true
	r.entryID = entryID
	r.content = content
	r.edit = edit
}

func (r *editorRegion) snapshot() (content string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content, r.attached
}

// write sends v to the store through the attached edit function.
func (r *editorRegion) write(v string) error {
	r.mu.Lock()
	edit := r.edit
	r.sent = append(r.sent, v)
	r.mu.Unlock()
	if edit == nil {
		return nil
	}
	return edit(v)
}

// echo reports whether v is the store echoing one of our own writes. The
// matched write and every older one are forgotten.
func (r *editorRegion) echo(v string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sent {
		if s == v {
			r.sent = r.sent[i+1:]
			return true
		}
	}
	return false
}

// embedControl mirrors a freshly provisioned store entry. Each mount, and
// each change of the default value, starts a new generation; messages from
// older generations are dropped.
type embedControl struct {
	desc         form.Descriptor
	env          *fieldEnv
	editor       textarea.Model
	defaultValue string

	gen     int
	pending *binding.Pending
	changes *binding.Feed
	writes  *binding.Feed
	region  *editorRegion
	ready   bool
	notice  string
}

func newEmbedControl(d form.Descriptor, env *fieldEnv) control {
	c := &embedControl{
		desc:   d,
		env:    env,
		editor: NewBaseTextarea(40, embedEditorHeight),
	}
	if d.Default != nil {
		c.defaultValue = d.Default.Str()
	}
	return c
}

func (c *embedControl) Descriptor() form.Descriptor { return c.desc }
func (c *embedControl) Blur()                       { c.editor.Blur() }

func (c *embedControl) Focus() tea.Cmd {
	return c.editor.Focus()
}

// Wants keeps Enter for newlines once the editor is live.
func (c *embedControl) Wants(msg tea.KeyMsg) bool {
	return c.ready && msg.Type == tea.KeyEnter
}

// Init provisions the first generation.
func (c *embedControl) Init() tea.Cmd {
	return c.provision()
}

// SetDefault re-provisions against a new default value.
func (c *embedControl) SetDefault(v form.Value) tea.Cmd {
	if v.Str() == c.defaultValue && c.pending != nil {
		return nil
	}
	c.defaultValue = v.Str()
	return c.provision()
}

func (c *embedControl) provision() tea.Cmd {
	c.release()
	c.gen++
	c.ready = false
	c.notice = ""
	c.editor.Reset()

	gen, owner, field := c.gen, c.env.owner, c.desc.Name
	p := &binding.Pending{}
	changes := binding.NewFeed()
	region := &editorRegion{}
	c.pending, c.changes, c.region = p, changes, region
	c.writes = nil

	opts := binding.Options{
		Store:    c.env.store,
		Region:   region,
		OnChange: changes.Push,
		NewID:    c.env.newID,
	}
	ctx, def := c.env.ctx, c.defaultValue
	return func() tea.Msg {
		_, err := p.Run(ctx, opts, def)
		return embedReadyMsg{owner: owner, field: field, gen: gen, err: err}
	}
}

// waitChange delivers the next pushed content onto the event loop.
func (c *embedControl) waitChange() tea.Cmd {
	changes, ctx := c.changes, c.env.ctx
	owner, field, gen := c.env.owner, c.desc.Name, c.gen
	return func() tea.Msg {
		v, ok := changes.Next(ctx)
		if !ok {
			return nil
		}
		return embedChangedMsg{owner: owner, field: field, gen: gen, content: v}
	}
}

// runWriter writes editor content back to the store one value at a time.
// Values queued while a write is in flight collapse into the latest.
func (c *embedControl) runWriter() tea.Cmd {
	writes, region, ctx := c.writes, c.region, c.env.ctx
	field := c.desc.Name
	return func() tea.Msg {
		for {
			v, ok := writes.Next(ctx)
			if !ok {
				return nil
			}
			if err := region.write(v); err != nil {
				embedLog.Logf("write %s: %v", field, err)
			}
		}
	}
}

func (c *embedControl) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case embedReadyMsg:
		if msg.gen != c.gen {
			return nil
		}
		if msg.err != nil {
			c.notice = "Embedded editor unavailable: " + extractShortError(msg.err.Error(), 80)
			return nil
		}
		if _, live := c.pending.Binding(); !live {
			return nil
		}
		content, _ := c.region.snapshot()
		c.editor.SetValue(content)
		c.ready = true
		c.writes = binding.NewFeed()
		return tea.Batch(c.waitChange(), c.runWriter())

	case embedChangedMsg:
		if msg.gen != c.gen || !c.ready {
			return nil
		}
		if c.region.echo(msg.content) {
			return c.waitChange()
		}
		c.env.set(c.desc.Name, form.String(msg.content))
		if c.editor.Value() != msg.content {
			c.editor.SetValue(msg.content)
		}
		return c.waitChange()
	}

	if !c.ready {
		return nil
	}
	before := c.editor.Value()
	var cmd tea.Cmd
	c.editor, cmd = c.editor.Update(msg)
	if after := c.editor.Value(); after != before {
		c.env.set(c.desc.Name, form.String(after))
		c.writes.Push(after)
	}
	return cmd
}

func (c *embedControl) View(width int) string {
	switch {
	case c.notice != "":
		return styleNotice.Render(c.notice)
	case !c.ready:
		return styleNotice.Render("Loading…")
	}
	c.editor.SetWidth(TextareaContentWidth(width, 2))
	return renderInputBox(c.editor.View(), width, c.editor.Focused())
}

// Binding returns the live binding of the current generation.
func (c *embedControl) Binding() (*binding.Binding, bool) {
	if c.pending == nil {
		return nil, false
	}
	return c.pending.Binding()
}

func (c *embedControl) release() {
	if c.changes != nil {
		c.changes.Close()
	}
	if c.writes != nil {
		c.writes.Close()
	}
	if c.pending != nil {
		c.pending.Dispose()
	}
}

// Dispose tears the current generation down.
func (c *embedControl) Dispose() {
	c.release()
	c.ready = false
}
