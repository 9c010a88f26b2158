package loggers

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSV delivers metrics to a CSV file, one row per Write. The header is
// fixed by the keys of the first Write, in lexicographic order. Later
// writes may omit keys, leaving empty cells, but introducing a key
// outside the header is an error.
type CSV struct {
	file   *os.File
	writer *csv.Writer
	header []string
	column map[string]int
}

// NewCSV creates the file at path, truncating any existing file, and
// returns a CSV metric logger writing to it.
func NewCSV(path string) (*CSV, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("newCSV: could not create file: %w", err)
	}

	return &CSV{
		file:   file,
		writer: csv.NewWriter(file),
	}, nil
}

// Write appends one row of metrics to the file
func (c *CSV) Write(metrics Metrics) error {
	if c.header == nil {
		c.header = sortedKeys(metrics)
		c.column = make(map[string]int, len(c.header))
		for i, key := range c.header {
			c.column[key] = i
		}
		if err := c.writer.Write(c.header); err != nil {
			return fmt.Errorf("write: could not write header: %w", err)
		}
	}

	row := make([]string, len(c.header))
	for key, value := range metrics {
		i, ok := c.column[key]
		if !ok {
			return fmt.Errorf("write: metric %v is not in the header %v",
				key, c.header)
		}
		row[i] = fmt.Sprint(value)
	}

	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("write: could not write row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file
func (c *CSV) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return fmt.Errorf("close: could not flush rows: %w", err)
	}

	if err := c.file.Close(); err != nil {
		return fmt.Errorf("close: could not close file: %w", err)
	}
	return nil
}
