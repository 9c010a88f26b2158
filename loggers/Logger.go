// Package loggers handles experiment metric streams. A Logger accepts
// a mapping of metric names to values and delivers it to some
// destination: a structured log, a CSV file, or several destinations
// at once.
package loggers

import "sort"

// Metrics maps metric names to the values recorded on one step of an
// experiment
type Metrics map[string]interface{}

// Logger handles a stream of metrics
type Logger interface {
	// Write delivers one set of metrics to the destination
	Write(metrics Metrics) error

	// Close flushes buffered data and releases the destination
	Close() error
}

// sortedKeys returns the metric names in lexicographic order so that
// output columns and fields are stable across writes
func sortedKeys(metrics Metrics) []string {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
