package lndl

import "fmt"

// Entry emits messages through a logger with a fixed set of message options,
// such as a per-call tag or terminator.
type Entry struct {
	logger *Logger
	opts   []MessageOption
}

// With returns a new Entry with opts appended to the current ones.
func (e *Entry) With(opts ...MessageOption) *Entry {
	merged := make([]MessageOption, 0, len(e.opts)+len(opts))
	merged = append(merged, e.opts...)
	merged = append(merged, opts...)

	return &Entry{logger: e.logger, opts: merged}
}

// Log emits args at an arbitrary level.
func (e *Entry) Log(level Level, args ...any) {
	if !e.logger.LogFor(level) {
		return
	}

	e.logger.log(level, e.opts, args)
}

// Trace logs args at trace level.
func (l *Logger) Trace(args ...any) {
	if !l.LogFor(TraceLevel) {
		return
	}

	l.log(TraceLevel, nil, args)
}

// Tracef logs a formatted message at trace level.
func (l *Logger) Tracef(format string, args ...any) {
	if !l.LogFor(TraceLevel) {
		return
	}

	l.log(TraceLevel, nil, []any{fmt.Sprintf(format, args...)})
}

// Fine logs args at fine level.
func (l *Logger) Fine(args ...any) {
	if !l.LogFor(FineLevel) {
		return
	}

	l.log(FineLevel, nil, args)
}

// Finef logs a formatted message at fine level.
func (l *Logger) Finef(format string, args ...any) {
	if !l.LogFor(FineLevel) {
		return
	}

	l.log(FineLevel, nil, []any{fmt.Sprintf(format, args...)})
}

// Debug logs args at debug level.
func (l *Logger) Debug(args ...any) {
	if !l.LogFor(DebugLevel) {
		return
	}

	l.log(DebugLevel, nil, args)
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.LogFor(DebugLevel) {
		return
	}

	l.log(DebugLevel, nil, []any{fmt.Sprintf(format, args...)})
}

// Info logs args at info level.
func (l *Logger) Info(args ...any) {
	if !l.LogFor(InfoLevel) {
		return
	}

	l.log(InfoLevel, nil, args)
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	if !l.LogFor(InfoLevel) {
		return
	}

	l.log(InfoLevel, nil, []any{fmt.Sprintf(format, args...)})
}

// Warn logs args at warn level.
func (l *Logger) Warn(args ...any) {
	if !l.LogFor(WarnLevel) {
		return
	}

	l.log(WarnLevel, nil, args)
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	if !l.LogFor(WarnLevel) {
		return
	}

	l.log(WarnLevel, nil, []any{fmt.Sprintf(format, args...)})
}

// Error logs args at error level.
func (l *Logger) Error(args ...any) {
	if !l.LogFor(ErrorLevel) {
		return
	}

	l.log(ErrorLevel, nil, args)
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	if !l.LogFor(ErrorLevel) {
		return
	}

	l.log(ErrorLevel, nil, []any{fmt.Sprintf(format, args...)})
}

// Fatal logs args at fatal level. It does not exit the process.
func (l *Logger) Fatal(args ...any) {
	if !l.LogFor(FatalLevel) {
		return
	}

	l.log(FatalLevel, nil, args)
}

// Fatalf logs a formatted message at fatal level.
func (l *Logger) Fatalf(format string, args ...any) {
	if !l.LogFor(FatalLevel) {
		return
	}

	l.log(FatalLevel, nil, []any{fmt.Sprintf(format, args...)})
}

// Trace logs args at trace level.
func (e *Entry) Trace(args ...any) {
	if !e.logger.LogFor(TraceLevel) {
		return
	}

	e.logger.log(TraceLevel, e.opts, args)
}

// Tracef logs a formatted message at trace level.
func (e *Entry) Tracef(format string, args ...any) {
	if !e.logger.LogFor(TraceLevel) {
		return
	}

	e.logger.log(TraceLevel, e.opts, []any{fmt.Sprintf(format, args...)})
}

// Fine logs args at fine level.
func (e *Entry) Fine(args ...any) {
	if !e.logger.LogFor(FineLevel) {
		return
	}

	e.logger.log(FineLevel, e.opts, args)
}

// Finef logs a formatted message at fine level.
func (e *Entry) Finef(format string, args ...any) {
	if !e.logger.LogFor(FineLevel) {
		return
	}

	e.logger.log(FineLevel, e.opts, []any{fmt.Sprintf(format, args...)})
}

// Debug logs args at debug level.
func (e *Entry) Debug(args ...any) {
	if !e.logger.LogFor(DebugLevel) {
		return
	}

	e.logger.log(DebugLevel, e.opts, args)
}

// Debugf logs a formatted message at debug level.
func (e *Entry) Debugf(format string, args ...any) {
	if !e.logger.LogFor(DebugLevel) {
		return
	}

	e.logger.log(DebugLevel, e.opts, []any{fmt.Sprintf(format, args...)})
}

// Info logs args at info level.
func (e *Entry) Info(args ...any) {
	if !e.logger.LogFor(InfoLevel) {
		return
	}

	e.logger.log(InfoLevel, e.opts, args)
}

// Infof logs a formatted message at info level.
func (e *Entry) Infof(format string, args ...any) {
	if !e.logger.LogFor(InfoLevel) {
		return
	}

	e.logger.log(InfoLevel, e.opts, []any{fmt.Sprintf(format, args...)})
}

// Warn logs args at warn level.
func (e *Entry) Warn(args ...any) {
	if !e.logger.LogFor(WarnLevel) {
		return
	}

	e.logger.log(WarnLevel, e.opts, args)
}

// Warnf logs a formatted message at warn level.
func (e *Entry) Warnf(format string, args ...any) {
	if !e.logger.LogFor(WarnLevel) {
		return
	}

	e.logger.log(WarnLevel, e.opts, []any{fmt.Sprintf(format, args...)})
}

// Error logs args at error level.
func (e *Entry) Error(args ...any) {
	if !e.logger.LogFor(ErrorLevel) {
		return
	}

	e.logger.log(ErrorLevel, e.opts, args)
}

// Errorf logs a formatted message at error level.
func (e *Entry) Errorf(format string, args ...any) {
	if !e.logger.LogFor(ErrorLevel) {
		return
	}

	e.logger.log(ErrorLevel, e.opts, []any{fmt.Sprintf(format, args...)})
}

// Fatal logs args at fatal level.
func (e *Entry) Fatal(args ...any) {
	if !e.logger.LogFor(FatalLevel) {
		return
	}

	e.logger.log(FatalLevel, e.opts, args)
}

// Fatalf logs a formatted message at fatal level.
func (e *Entry) Fatalf(format string, args ...any) {
	if !e.logger.LogFor(FatalLevel) {
		return
	}

	e.logger.log(FatalLevel, e.opts, []any{fmt.Sprintf(format, args...)})
}
