package loggers

// Multi fans metrics out to several loggers so that, for example, an
// experiment can stream to the terminal and to a CSV file at once.
type Multi struct {
	loggers []Logger
}

// NewMulti returns a Logger delivering every Write to each of the
// argument loggers in order.
func NewMulti(loggers ...Logger) *Multi {
	return &Multi{loggers: loggers}
}

// Write delivers the metrics to every registered logger, stopping at
// the first error.
func (m *Multi) Write(metrics Metrics) error {
	for _, logger := range m.loggers {
		if err := logger.Write(metrics); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every registered logger. All loggers are closed even if
// one fails; the first error is returned.
func (m *Multi) Close() error {
	var firstErr error
	for _, logger := range m.loggers {
		if err := logger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
