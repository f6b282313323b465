package log

// Tee returns a Logger that hands every event to each non-nil logger in
// argument order. It returns NoopLogger when none remain and the logger
// itself when exactly one does.
func Tee(loggers ...Logger) Logger {
	var tee teeLogger
	for _, l := range loggers {
		if l != nil {
			tee = append(tee, l)
		}
	}
	switch len(tee) {
	case 0:
		return NoopLogger{}
	case 1:
		return tee[0]
	}
	return tee
}

type teeLogger []Logger

func (t teeLogger) Log(event Event) {
	for _, l := range t {
		l.Log(event)
	}
}
