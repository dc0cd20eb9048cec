package core

import "slices"

// ValueKind classifies a decoded header value.
type ValueKind int

const (
	// KindString is a plain string value.
	KindString ValueKind = iota
	// KindList is a sequence made only of strings.
	KindList
	// KindOther is anything else (number, bool, object, mixed list, null).
	// It is kept so unknown keys survive decoding.
	KindOther
)

// String returns the name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "other"
	}
}

// Value is one decoded header value.
type Value struct {
	Kind ValueKind
	Str  string
	List []string
	Raw  any
}

// StringValue builds a KindString value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// ListValue builds a KindList value.
func ListValue(items ...string) Value {
	return Value{Kind: KindList, List: slices.Clone(items)}
}

// OtherValue builds a KindOther value around raw.
func OtherValue(raw any) Value {
	return Value{Kind: KindOther, Raw: raw}
}

// Metadata represents the key-value pairs decoded from an example header.
type Metadata map[string]Value

// Header is the output of header parsing: the decoded metadata plus the
// remaining file text.
type Header struct {
	Metadata Metadata
	Body     string
}
