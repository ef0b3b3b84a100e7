package form

import (
	"context"
	"slices"
)

// State maps field names to values. A State handed out by the Engine is
// never modified afterwards; every Set produces a new map.
type State map[string]Value

// Initialize seeds a State from the descriptors that declare a default.
func Initialize(fields Fields) State {
	state := make(State, len(fields))
	for _, d := range fields {
		if d.Default != nil {
			state[d.Name] = *d.Default
		}
	}
	return state
}

// Handler receives the payload of a submitted form. A returned error keeps
// the form open and is shown inline.
type Handler func(ctx context.Context, payload map[string]any) error

// Engine owns the state of one form for the lifetime of its overlay. All
// mutation goes through Set and Clear.
type Engine struct {
	fields Fields
	state  State
}

// NewEngine validates fields and seeds state from their defaults.
func NewEngine(fields Fields) (*Engine, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &Engine{fields: fields, state: Initialize(fields)}, nil
}

// Fields returns the descriptors in declaration order.
func (e *Engine) Fields() Fields { return e.fields }

// State returns the current snapshot.
func (e *Engine) State() State { return e.state }

// Get returns the stored value for name.
func (e *Engine) Get(name string) (Value, bool) {
	v, ok := e.state[name]
	return v, ok
}

// Set stores value under name and returns the new snapshot. The value type
// must match the field's kind.
func (e *Engine) Set(name string, value Value) (State, error) {
	d, ok := e.fields.Lookup(name)
	if !ok {
		return e.state, unknownFieldError(name)
	}
	if value.Type() != d.Kind.ValueType() {
		return e.state, typeMismatchError(name, d.Kind, value.Type())
	}
	next := make(State, len(e.state)+1)
	for k, v := range e.state {
		next[k] = v
	}
	next[name] = value
	e.state = next
	return next, nil
}

// Clear removes the stored value for name, so the field is absent from the
// payload until it is set again.
func (e *Engine) Clear(name string) (State, error) {
	if _, ok := e.fields.Lookup(name); !ok {
		return e.state, unknownFieldError(name)
	}
	if _, ok := e.state[name]; !ok {
		return e.state, nil
	}
	next := make(State, len(e.state))
	for k, v := range e.state {
		if k != name {
			next[k] = v
		}
	}
	e.state = next
	return next, nil
}

// Visible reports whether a field renders under the current state. A flag
// sibling shows its dependents while truthy; any other sibling shows them
// while its value is one of ConditionalValues (or, with no values listed,
// while it is non-empty). A sibling without a value hides its dependents.
// Hidden fields keep their stored values.
func (e *Engine) Visible(name string) bool {
	d, ok := e.fields.Lookup(name)
	if !ok {
		return false
	}
	if d.Conditional == "" {
		return true
	}
	sibling, ok := e.state[d.Conditional]
	if !ok {
		return false
	}
	if sibling.Type() == TypeBool || len(d.ConditionalValues) == 0 {
		return sibling.Truthy()
	}
	if sibling.Type() == TypeList {
		for _, item := range sibling.list {
			if slices.Contains(d.ConditionalValues, item) {
				return true
			}
		}
		return false
	}
	return slices.Contains(d.ConditionalValues, sibling.Text())
}

// VisibleFields returns the descriptors that currently render.
func (e *Engine) VisibleFields() Fields {
	out := make(Fields, 0, len(e.fields))
	for _, d := range e.fields {
		if e.Visible(d.Name) {
			out = append(out, d)
		}
	}
	return out
}

// Payload flattens the stored values into plain Go values keyed by name.
func (e *Engine) Payload() map[string]any {
	payload := make(map[string]any, len(e.state))
	for k, v := range e.state {
		payload[k] = v.Any()
	}
	return payload
}

// Submit hands the payload to h. Failures carry the submit_failed code and
// keep the handler's message.
func (e *Engine) Submit(ctx context.Context, h Handler) error {
	return e.Submitter(h)(ctx)
}

// Submitter snapshots the payload now and returns a function that hands it
// to h. The returned function may run on any goroutine.
func (e *Engine) Submitter(h Handler) func(ctx context.Context) error {
	payload := e.Payload()
	return func(ctx context.Context) error {
		return Deliver(ctx, h, payload)
	}
}

// Deliver hands payload to h. A nil handler accepts everything.
func Deliver(ctx context.Context, h Handler, payload map[string]any) error {
	if h == nil {
		return nil
	}
	if err := h(ctx, payload); err != nil {
		return submitError(err)
	}
	return nil
}
