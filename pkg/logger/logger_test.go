package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_AttachesServiceFields(t *testing.T) {
	Reset()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "commerce-api", Env: "test"})
	l := Component("stripe")
	l.Debug().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "commerce-api" || line["env"] != "test" || line["component"] != "stripe" {
		t.Fatalf("unexpected fields: %+v", line)
	}
	if line["level"] != "debug" || line["message"] != "hello" {
		t.Fatalf("unexpected line: %+v", line)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var first, second bytes.Buffer
	Init(Options{Level: "warn", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	l := Get()
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	if second.Len() != 0 {
		t.Fatalf("second Init must be ignored")
	}
	if bytes.Contains(first.Bytes(), []byte("dropped")) || !bytes.Contains(first.Bytes(), []byte("kept")) {
		t.Fatalf("unexpected output: %q", first.String())
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
