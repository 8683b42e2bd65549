package model

import "strconv"

// FieldType is the borsh wire type of one event field.
type FieldType string

const (
	FieldPublicKey FieldType = "publicKey"
	FieldU64       FieldType = "u64"
	FieldI64       FieldType = "i64"
	FieldU32       FieldType = "u32"
	FieldBool      FieldType = "bool"
	FieldString    FieldType = "string"
)

// FieldSpec describes one field of an anchor event payload.
type FieldSpec struct {
	Name string
	Type FieldType
}

// EventSpec describes one event type a program declares in its IDL.
type EventSpec struct {
	Name   string
	Fields []FieldSpec
}

// RawEvent is one decoded anchor event as delivered by a chain subscription.
// It lives only for the duration of one processor pass.
type RawEvent struct {
	Program   string
	Name      string
	Fields    map[string]any
	Signature string
	Index     int
}

// EventKey returns the idempotency key of the event: the transaction
// signature plus the event's index within that transaction's logs.
func (e RawEvent) EventKey() string {
	if e.Signature == "" {
		return ""
	}
	return e.Signature + "/" + strconv.Itoa(e.Index)
}
