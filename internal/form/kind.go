package form

import "strings"

// Kind is the closed set of field types a descriptor can declare.
type Kind string

const (
	KindText         Kind = "text"
	KindNumber       Kind = "number"
	KindFlag         Kind = "flag"
	KindSelect       Kind = "select"
	KindPage         Kind = "page"
	KindBlock        Kind = "block"
	KindAutocomplete Kind = "autocomplete"
	KindEmbed        Kind = "embed"
)

// Kinds lists every kind in declaration order. Renderers use it to check at
// startup that each kind has a control.
var Kinds = []Kind{
	KindText,
	KindNumber,
	KindFlag,
	KindSelect,
	KindPage,
	KindBlock,
	KindAutocomplete,
	KindEmbed,
}

// ParseKind normalises and validates a wire type string.
func ParseKind(raw string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range Kinds {
		if k == kind {
			return k, true
		}
	}
	return "", false
}

// ValueType is the type of value a field of this kind stores.
func (k Kind) ValueType() ValueType {
	switch k {
	case KindNumber:
		return TypeNumber
	case KindFlag:
		return TypeBool
	default:
		return TypeString
	}
}

// Searchable reports whether the kind is backed by a search input.
func (k Kind) Searchable() bool {
	return k == KindPage || k == KindBlock || k == KindAutocomplete
}

func (k Kind) String() string { return string(k) }
