/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink.go
Description: Metadata sink adapters. LoggerSink logs every decoded field before forwarding
it, MultiSink fans each field out to several sinks in order.
*/

package report

import (
	"github.com/kleascm/enfal-extractor/pkg/decoder"
	"github.com/sirupsen/logrus"
)

// LoggerSink logs decoded fields and forwards them to the next sink
type LoggerSink struct {
	logger logrus.FieldLogger
	sample string
	next   decoder.Sink
}

// NewLoggerSink creates a LoggerSink. next may be nil to only log.
func NewLoggerSink(logger logrus.FieldLogger, sample string, next decoder.Sink) *LoggerSink {
	return &LoggerSink{logger: logger, sample: sample, next: next}
}

// AddMetadata logs the field and forwards it
func (s *LoggerSink) AddMetadata(name, value string) {
	s.logger.WithFields(logrus.Fields{
		"sample": s.sample,
		"field":  name,
		"value":  value,
	}).Debug("Field decoded")

	if s.next != nil {
		s.next.AddMetadata(name, value)
	}
}

// RecordLayout logs the chosen candidate and forwards it when the next sink records layouts
func (s *LoggerSink) RecordLayout(candidate string) {
	s.logger.WithFields(logrus.Fields{
		"sample":    s.sample,
		"candidate": candidate,
	}).Debug("Layout candidate selected")

	if rec, ok := s.next.(decoder.LayoutRecorder); ok {
		rec.RecordLayout(candidate)
	}
}

// multiSink forwards every record to each sink in order
type multiSink struct {
	sinks []decoder.Sink
}

// MultiSink returns a sink that forwards to all sinks in order. Nil sinks are skipped.
func MultiSink(sinks ...decoder.Sink) decoder.Sink {
	m := &multiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *multiSink) AddMetadata(name, value string) {
	for _, s := range m.sinks {
		s.AddMetadata(name, value)
	}
}

func (m *multiSink) RecordLayout(candidate string) {
	for _, s := range m.sinks {
		if rec, ok := s.(decoder.LayoutRecorder); ok {
			rec.RecordLayout(candidate)
		}
	}
}
