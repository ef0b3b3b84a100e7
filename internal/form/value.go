package form

import (
	"strconv"
	"strings"
)

// ValueType tags the variant held by a Value.
type ValueType int

const (
	TypeNone ValueType = iota
	TypeString
	TypeNumber
	TypeBool
	TypeList
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeList:
		return "list"
	default:
		return "none"
	}
}

// Value is a field value: a string, a number, a bool or an ordered list of
// strings. The zero Value holds nothing.
type Value struct {
	typ  ValueType
	str  string
	num  float64
	flag bool
	list []string
}

func String(s string) Value  { return Value{typ: TypeString, str: s} }
func Number(n float64) Value { return Value{typ: TypeNumber, num: n} }
func Bool(b bool) Value      { return Value{typ: TypeBool, flag: b} }

// List copies items into a list value.
func List(items ...string) Value {
	return Value{typ: TypeList, list: append([]string(nil), items...)}
}

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsZero() bool    { return v.typ == TypeNone }

func (v Value) Str() string     { return v.str }
func (v Value) Num() float64    { return v.num }
func (v Value) Flag() bool      { return v.flag }
func (v Value) Items() []string { return append([]string(nil), v.list...) }

// Truthy mirrors how a controlling sibling is tested for visibility.
func (v Value) Truthy() bool {
	switch v.typ {
	case TypeString:
		return v.str != ""
	case TypeNumber:
		return v.num != 0
	case TypeBool:
		return v.flag
	case TypeList:
		return len(v.list) > 0
	}
	return false
}

// Text renders the value as display text.
func (v Value) Text() string {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.flag)
	case TypeList:
		return strings.Join(v.list, ", ")
	}
	return ""
}

// Any converts the value to its plain Go form for payloads: string,
// float64, bool or []string.
func (v Value) Any() any {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumber:
		return v.num
	case TypeBool:
		return v.flag
	case TypeList:
		return v.Items()
	}
	return nil
}

// Equal compares two values by type and content.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return v.str == o.str && v.num == o.num && v.flag == o.flag
	}
}
