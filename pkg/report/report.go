/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Per-sample extraction reports. A Report identifies the sample, records where
the configuration anchor was found and collects decoded fields in emission order. Reports
implement the decoder sink so a decode can stream straight into them.
*/

package report

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/enfal-extractor/pkg/anchor"
	"github.com/kleascm/enfal-extractor/pkg/decoder"
)

// ParserName identifies the decoder that produced a report
const ParserName = "enfal"

// ParserDescription is a human readable parser description
const ParserDescription = "Enfal configuration parser"

// AnchorInfo records where the configuration anchor matched
type AnchorInfo struct {
	PatternID string `json:"pattern_id" yaml:"pattern_id"`
	Offset    int    `json:"offset" yaml:"offset"`
}

// Report is the outcome of extracting one sample
type Report struct {
	ID          string          `json:"id" yaml:"id"`
	Sample      string          `json:"sample" yaml:"sample"`
	Size        int64           `json:"size" yaml:"size"`
	SHA256      string          `json:"sha256" yaml:"sha256"`
	Parser      string          `json:"parser" yaml:"parser"`
	Description string          `json:"description" yaml:"description"`
	Anchor      *AnchorInfo     `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Fields      []decoder.Field `json:"fields" yaml:"fields"`
	Layout      []string        `json:"layout,omitempty" yaml:"layout,omitempty"`
	Duration    time.Duration   `json:"duration" yaml:"duration"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewReport creates a report for sample. data may be nil when the sample could not be read.
func NewReport(sample string, data []byte) *Report {
	r := &Report{
		ID:          uuid.New().String(),
		Sample:      sample,
		Parser:      ParserName,
		Description: ParserDescription,
		Fields:      []decoder.Field{},
		CreatedAt:   time.Now().UTC(),
	}
	if data != nil {
		sum := sha256.Sum256(data)
		r.Size = int64(len(data))
		r.SHA256 = hex.EncodeToString(sum[:])
	}
	return r
}

// AddMetadata appends a decoded field
func (r *Report) AddMetadata(name, value string) {
	r.Fields = append(r.Fields, decoder.Field{Name: name, Value: value})
}

// RecordLayout notes the fallback candidate chosen by the decoder
func (r *Report) RecordLayout(candidate string) {
	r.Layout = append(r.Layout, candidate)
}

// SetAnchor records the anchor match
func (r *Report) SetAnchor(m anchor.Match) {
	r.Anchor = &AnchorInfo{PatternID: m.PatternID, Offset: m.Offset}
}

// SetError records a failure
func (r *Report) SetError(err error) {
	if err != nil {
		r.Error = err.Error()
	}
}

// Found reports whether a configuration anchor was located
func (r *Report) Found() bool {
	return r.Anchor != nil
}

// Values returns every value recorded under name
func (r *Report) Values(name string) []string {
	var values []string
	for _, f := range r.Fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	return values
}
