package logger

// Instance defines the interface for logging backends.
type Instance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger holds multiple logging backends and dispatches log calls to all
// of them. A Logger is constructed once with New and passed explicitly to
// every component that logs; all methods are safe on a nil receiver, so
// components built without a logger stay silent.
type Logger struct {
	instances []Instance
}

// New creates a Logger dispatching to the given backends.
func New(instances ...Instance) *Logger {
	return &Logger{
		instances: instances,
	}
}

// Log writes a message at the default log level to all configured backends.
func (l *Logger) Log(message string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		instance.Log(message, keyvals...)
	}
}

// Debug writes a message at DEBUG level to all configured backends.
func (l *Logger) Debug(message string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		instance.Debug(message, keyvals...)
	}
}

// Info writes a message at INFO level to all configured backends.
func (l *Logger) Info(message string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		instance.Info(message, keyvals...)
	}
}

// Warn writes a message at WARN level to all configured backends.
func (l *Logger) Warn(message string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		instance.Warn(message, keyvals...)
	}
}

// Error writes a message at ERROR level to all configured backends.
func (l *Logger) Error(message string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		instance.Error(message, keyvals...)
	}
}

// Fatal writes a message at FATAL level and terminates the program.
func (l *Logger) Fatal(message string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		instance.Fatal(message, keyvals...)
	}
}
