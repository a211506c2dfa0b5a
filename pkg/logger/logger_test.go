package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_SingletonAndFields(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer

	Init(Options{Level: "debug", Service: "booking", Env: "test", Output: &buf})
	Init(Options{Level: "error", Output: &bytes.Buffer{}})

	l := Component("auth")
	l.Debug().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "booking" || entry["component"] != "auth" || entry["message"] != "hello" || entry["env"] != "test" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_CallerOption(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer

	l := Init(Options{Caller: true, Output: &buf})
	l.Info().Msg("where")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if _, ok := entry[zerolog.CallerFieldName]; !ok {
		t.Fatalf("expected caller field, got %v", entry)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
