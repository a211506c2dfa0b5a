// Package logger holds the process-wide zerolog logger of the booking
// back-office. Call Init once from the entrypoint; packages then take a
// tagged child through Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	// Level is one of trace, debug, info, warn or error. Anything else
	// falls back to info.
	Level string
	// Pretty switches to coloured console output for local runs.
	Pretty bool
	// Caller adds the file:line of each entry.
	Caller bool
	// Service and Env, when set, are stamped on every entry.
	Service string
	Env     string
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	mu   sync.RWMutex
	once sync.Once
	root *zerolog.Logger
)

// Init builds the root logger from opts. Later calls return the logger built
// by the first one.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		fields := zerolog.New(out).Level(lvl).With().Timestamp()
		if opts.Caller {
			fields = fields.Caller()
		}
		if opts.Service != "" {
			fields = fields.Str("service", opts.Service)
		}
		if opts.Env != "" {
			fields = fields.Str("env", opts.Env)
		}
		l := fields.Logger()

		mu.Lock()
		root = &l
		mu.Unlock()
	})
	return Get()
}

// Get returns the root logger and panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		panic("logger: Get() called before Init()")
	}
	return *root
}

// Component returns a child of the root logger carrying a "component" field.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the root logger so tests can Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	once = sync.Once{}
	root = nil
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
