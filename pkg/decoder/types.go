/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Decoded field records, the metadata sink contract and the in-memory result
collector used by the offset-field decoder.
*/

package decoder

import "errors"

// Field names emitted by the Enfal decoder
const (
	FieldC2Address    = "c2_address"
	FieldC2URL        = "c2_url"
	FieldRegistryPath = "registrypath"
	FieldServiceName  = "servicename"
	FieldFilePath     = "filepath"
)

var (
	// ErrNilBuffer is returned when no buffer is supplied at all.
	// An empty, non-nil buffer is valid input.
	ErrNilBuffer = errors.New("nil sample buffer")
	// ErrNilSink is returned when decoding has nowhere to send fields
	ErrNilSink = errors.New("nil metadata sink")
	// ErrAnchorOutOfRange is returned by DecodeAt for an anchor outside the buffer
	ErrAnchorOutOfRange = errors.New("anchor offset outside buffer")
)

// Sink receives decoded name/value records in extraction order.
// Repeated fields arrive as repeated calls with the same name.
type Sink interface {
	AddMetadata(name, value string)
}

// Field is a single decoded record
type Field struct {
	Name  string `json:"name" yaml:"name" cbor:"name"`
	Value string `json:"value" yaml:"value" cbor:"value"`
}

// Result collects fields in the order they were emitted.
// A Result is not safe for concurrent use; give each decode its own.
type Result struct {
	fields []Field
	layout []string
}

// NewResult creates an empty result
func NewResult() *Result {
	return &Result{}
}

// AddMetadata appends a record
func (r *Result) AddMetadata(name, value string) {
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Fields returns a copy of the records in emission order
func (r *Result) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Values returns every value recorded under name, in order
func (r *Result) Values(name string) []string {
	var values []string
	for _, f := range r.fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	return values
}

// First returns the first value recorded under name
func (r *Result) First(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Len returns the number of records
func (r *Result) Len() int {
	return len(r.fields)
}

// Empty reports whether no records were collected
func (r *Result) Empty() bool {
	return len(r.fields) == 0
}

// Layout returns the names of the fallback candidates chosen during decoding
func (r *Result) Layout() []string {
	return append([]string(nil), r.layout...)
}

// LayoutRecorder is implemented by sinks that want to know which fallback
// candidates were chosen
type LayoutRecorder interface {
	RecordLayout(candidate string)
}

// RecordLayout notes a chosen fallback candidate
func (r *Result) RecordLayout(candidate string) {
	r.layout = append(r.layout, candidate)
}
