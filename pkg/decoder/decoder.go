/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: decoder.go
Description: Anchored offset-field decoder for Enfal configuration blobs. Locates the
configuration anchor in a sample image and extracts C2, registry, service and file path
fields from fixed anchor-relative offsets. Decoding is a pure function of the buffer and
anchor; the decoder holds no state between calls.
*/

package decoder

import (
	"fmt"

	"github.com/kleascm/enfal-extractor/pkg/anchor"
)

// Decoder extracts configuration fields relative to an anchor pattern.
// A Decoder is immutable and safe for concurrent use.
type Decoder struct {
	pattern  *anchor.Pattern
	layout   Layout
	registry []candidate[string]
	service  []candidate[serviceConfig]
}

// New creates a decoder for the given pattern and layout
func New(pattern *anchor.Pattern, layout Layout) *Decoder {
	return &Decoder{
		pattern:  pattern,
		layout:   layout,
		registry: registryChain(layout),
		service:  serviceChain(layout),
	}
}

// NewEnfal creates a decoder for the reference Enfal anchor and layout
func NewEnfal() *Decoder {
	return New(anchor.EnfalConfig, EnfalLayout)
}

// Pattern returns the anchor pattern
func (d *Decoder) Pattern() *anchor.Pattern {
	return d.pattern
}

// Layout returns the field layout
func (d *Decoder) Layout() Layout {
	return d.layout
}

// Decode locates the first anchor in buf and sends every decoded field to sink.
// It reports false when the anchor is absent, which is not an error.
func (d *Decoder) Decode(buf []byte, sink Sink) (anchor.Match, bool, error) {
	if buf == nil {
		return anchor.Match{}, false, ErrNilBuffer
	}
	if sink == nil {
		return anchor.Match{}, false, ErrNilSink
	}

	match, ok := d.pattern.First(buf)
	if !ok {
		return anchor.Match{}, false, nil
	}
	if err := d.DecodeAt(buf, match.Offset, sink); err != nil {
		return match, true, err
	}
	return match, true, nil
}

// Extract decodes buf into a fresh Result
func (d *Decoder) Extract(buf []byte) (*Result, error) {
	result := NewResult()
	if _, _, err := d.Decode(buf, result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeAt extracts fields relative to a known anchor offset.
// Steps run in a fixed order and never abort one another; anything that
// cannot be read is simply not emitted.
func (d *Decoder) DecodeAt(buf []byte, base int, sink Sink) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if sink == nil {
		return ErrNilSink
	}
	if base < 0 || base >= len(buf) {
		return fmt.Errorf("%w: offset %d, buffer length %d", ErrAnchorOutOfRange, base, len(buf))
	}

	recorder, _ := sink.(LayoutRecorder)
	emit := func(name, value string) {
		if value != "" {
			sink.AddMetadata(name, value)
		}
	}

	emit(FieldC2Address, ReadBoundedString(buf, base+d.layout.C2Address, MaxStringSize))
	emit(FieldC2URL, ReadBoundedString(buf, base+d.layout.C2URL, MaxStringSize))

	if path, name, ok := firstMatch(d.registry, buf, base); ok {
		if recorder != nil {
			recorder.RecordLayout(name)
		}
		emit(FieldRegistryPath, path)
	}

	if svc, name, ok := firstMatch(d.service, buf, base); ok {
		if recorder != nil {
			recorder.RecordLayout(name)
		}
		emit(FieldServiceName, svc.name)
		for _, p := range svc.paths {
			emit(FieldFilePath, p)
		}
	}

	return nil
}
