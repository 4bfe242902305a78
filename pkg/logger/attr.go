package logger

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// MachineID records the machine instance identifier under the key "machine_id".
// If id is nil, it returns an empty Attr.
func MachineID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	if s, ok := id.(fmt.Stringer); ok {
		return slog.String("machine_id", s.String())
	}
	return slog.Any("machine_id", id)
}

// State records a state name under the key "state".
func State(name string) slog.Attr {
	return slog.String("state", name)
}

// From records the state a transition leaves under the key "from".
func From(name string) slog.Attr {
	return slog.String("from", name)
}

// To records the state a transition enters under the key "to".
func To(name string) slog.Attr {
	return slog.String("to", name)
}

// Phase records a lifecycle phase (enter, process, exit) under the key "phase".
func Phase(name string) slog.Attr {
	return slog.String("phase", name)
}

// Operation records the engine entry point under the key "op".
func Operation(name string) slog.Attr {
	return slog.String("op", name)
}

// Depth records a nesting depth under the key "depth".
func Depth(n int) slog.Attr {
	return slog.Int("depth", n)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
