package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/docstore"
	"formdeck/internal/form"
	"formdeck/internal/search"
)

// DemoFields exercises every field kind and both conditional forms.
const DemoFields = `
text: {type: text, label: Text Field}
number: {type: number, label: Number Field}
flag: {type: flag, label: Flag Field}
conditionalText: {type: text, label: Conditional Text Field, conditional: flag}
page: {type: page, label: Page Field}
block: {type: block, label: Block Field}
select:
  type: select
  label: Select Field
  options: [apple, banana, orange, conditional select 1]
conditionalSelect:
  type: text
  label: Conditional Text Field
  conditional: select
  conditionalValues: [conditional select 1]
autocomplete: {type: autocomplete, label: Autocomplete Field, options: [apple, banana, orange]}
embed: {type: embed, label: Embed Field}
`

var demoOptions = []string{"apple", "banana", "orange"}

// demoCommands are registered on every host.
func demoCommands() []Command {
	return []Command{
		{
			Label: "AutocompleteInput",
			Run: func(h *Host) tea.Cmd {
				return h.Mount(SlotRoot, newSearchPanel("Autocomplete Input", func() []string {
					return demoOptions
				}))
			},
		},
		{
			Label: "FormDialog",
			Run: func(h *Host) tea.Cmd {
				return h.Mount(SlotRoot, newLauncherPanel(h))
			},
		},
		{
			Label: "PageInput",
			Run: func(h *Host) tea.Cmd {
				store, extra := h.store, h.extra
				return h.Mount(SlotRoot, newSearchPanel("Page Input", func() []string {
					return search.Candidates(store.ReferenceNames(), extra...)
				}))
			},
		},
		{
			Label: "Prompt",
			Run: func(h *Host) tea.Cmd {
				return h.openPrompt(PromptOptions{
					Title:         "Prompt",
					Question:      "What should the next entry say?",
					DefaultAnswer: "hello",
				})
			},
		},
	}
}

// openFormDialog mounts the demo form. Its submit writes a Response tree
// under today's daily container.
func (h *Host) openFormDialog() tea.Cmd {
	fields, err := form.ParseFields([]byte(DemoFields))
	if err != nil {
		h.status = extractShortError(err.Error(), 60)
		return nil
	}
	store, now := h.store, h.now
	o, err := NewFormOverlay(h.ctx, FormOptions{
		Title:   "Form Dialog",
		Content: "Fill in the fields. The response is written to today's page.",
		Fields:  fields,
		OnSubmit: func(ctx context.Context, payload map[string]any) error {
			_, err := WriteResponse(ctx, store, now(), fields, payload)
			return err
		},
		Store: store,
		Extra: h.extra,
		Size:  OverlaySizeWide,
	})
	if err != nil {
		h.status = extractShortError(err.Error(), 60)
		return nil
	}
	return h.Mount(SlotForm, o)
}

// openPrompt mounts a prompt and reports its answer in the status line.
func (h *Host) openPrompt(opts PromptOptions) tea.Cmd {
	o, future, err := NewPromptOverlay(h.ctx, opts)
	if err != nil {
		h.status = extractShortError(err.Error(), 60)
		return nil
	}
	ctx := h.ctx
	wait := func() tea.Msg {
		answer, err := future.Wait(ctx)
		if err != nil {
			return statusMsg("Prompt closed without an answer")
		}
		return statusMsg("Answer: " + answer)
	}
	return tea.Batch(h.Mount(SlotPrompt, o), wait)
}

// ResponseTree turns a payload into a "Response" entry with one child per
// field in declaration order. List values become one grandchild per item.
func ResponseTree(fields form.Fields, payload map[string]any) docstore.Tree {
	root := docstore.Tree{Text: "Response"}
	for _, name := range fields.Names() {
		v, ok := payload[name]
		if !ok {
			continue
		}
		node := docstore.Tree{Text: name}
		switch v := v.(type) {
		case []string:
			for _, item := range v {
				node.Children = append(node.Children, docstore.Tree{Text: item})
			}
		default:
			node.Children = []docstore.Tree{{Text: payloadText(v)}}
		}
		root.Children = append(root.Children, node)
	}
	return root
}

func payloadText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(v)
}

// WriteResponse writes ResponseTree under the daily container of day and
// returns the uid of the Response entry.
func WriteResponse(ctx context.Context, s docstore.Store, day time.Time, fields form.Fields, payload map[string]any) (string, error) {
	parent, err := docstore.EnsureDaily(ctx, s, day)
	if err != nil {
		return "", fmt.Errorf("ensure daily container: %w", err)
	}
	return docstore.WriteTree(ctx, s, parent, ResponseTree(fields, payload))
}

func summarizePayload(payload map[string]any) string {
	if len(payload) == 1 {
		return "1 field"
	}
	return fmt.Sprintf("%d fields", len(payload))
}

// panelTitleLines is the number of rows a panel renders above its input.
const panelTitleLines = 2

// searchPanel is a root panel with one SearchInput and the last chosen
// value.
type searchPanel struct {
	id         uint64
	title      string
	input      *SearchInput
	candidates func() []string
	chosen     string
	width      int
	height     int
}

func newSearchPanel(title string, candidates func() []string) *searchPanel {
	id := nextOverlayID()
	return &searchPanel{
		id:         id,
		title:      title,
		candidates: candidates,
		input:      NewSearchInput(fmt.Sprintf("panel/%d", id), nil).WithPlaceholder("Type to search…"),
	}
}

func (p *searchPanel) ID() uint64 { return p.id }
func (p *searchPanel) Dispose()   {}

func (p *searchPanel) SetSize(width, height int) {
	p.width, p.height = width, height
	if width > 0 {
		p.input.WithWidth(min(OverlayWidthStandard, width-2))
	}
}

func (p *searchPanel) Init() tea.Cmd {
	p.input.SetCandidates(p.candidates())
	return p.input.Focus()
}

func (p *searchPanel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SearchCommittedMsg:
		if msg.ID == p.input.ID {
			p.chosen = msg.Value
		}
		return nil
	case SearchConfirmMsg:
		if msg.ID == p.input.ID {
			p.chosen = msg.Value
		}
		return nil
	case SearchChangedMsg:
		return nil
	case tea.MouseMsg:
		msg.Y -= panelTitleLines
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) && !p.input.IsOpen() {
			id := p.id
			return func() tea.Msg { return CloseOverlayMsg{ID: id} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *searchPanel) View() string {
	return styleFieldLabel.Render(p.title) + "\n\n" +
		p.input.View() + "\n\n" +
		styleText.Render("Chosen value: ") + styleOptionSelected.Render(p.chosen)
}

// launcherPanel is the root panel of the FormDialog demo: a button that
// opens the form.
type launcherPanel struct {
	id   uint64
	host *Host
}

func newLauncherPanel(h *Host) *launcherPanel {
	return &launcherPanel{id: nextOverlayID(), host: h}
}

func (l *launcherPanel) ID() uint64       { return l.id }
func (l *launcherPanel) Dispose()         {}
func (l *launcherPanel) SetSize(int, int) {}
func (l *launcherPanel) Init() tea.Cmd    { return nil }

func (l *launcherPanel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return l.host.openFormDialog()
		case key.Matches(msg, keys.Escape):
			id := l.id
			return func() tea.Msg { return CloseOverlayMsg{ID: id} }
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			return l.host.openFormDialog()
		}
	}
	return nil
}

func (l *launcherPanel) View() string {
	return styleKeyPill.Render(" Open Form ") + "  " + styleMuted.Render("press Enter")
}
