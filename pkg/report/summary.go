/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary.go
Description: Aggregate statistics across a batch of reports.
*/

package report

import "sort"

// Summary aggregates a batch of reports
type Summary struct {
	Samples int            `json:"samples" yaml:"samples"`
	Found   int            `json:"found" yaml:"found"`
	Errors  int            `json:"errors" yaml:"errors"`
	Fields  map[string]int `json:"fields" yaml:"fields"`
}

// Summarize counts samples, located configurations, errors and fields by name
func Summarize(reports []*Report) Summary {
	s := Summary{Fields: make(map[string]int)}
	for _, r := range reports {
		if r == nil {
			continue
		}
		s.Samples++
		if r.Error != "" {
			s.Errors++
		}
		if r.Found() {
			s.Found++
		}
		for _, f := range r.Fields {
			s.Fields[f.Name]++
		}
	}
	return s
}

// FieldNames returns the field names seen, sorted
func (s Summary) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
