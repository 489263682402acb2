package sysutil

import (
	"bytes"
	"encoding/json"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel}, // case + trim
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel}, // empty -> info
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel}, // alias
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel}, // default
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	trues := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	falses := []string{"", "0", "false", "no", "off", "n", "  ", "random"}

	for _, v := range trues {
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false; want true", v)
		}
	}
	for _, v := range falses {
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true; want false", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	// no args -> ""
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	// only empties -> ""
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	// picks first non-empty (preserves original spacing)
	if got := FirstNonEmpty("   ", "  hello  ", "world"); got != "  hello  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  hello  ")
	}
	// first already non-empty
	if got := FirstNonEmpty("alpha", "beta"); got != "alpha" {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "alpha")
	}
}

func TestSetupLogger_JSONWithStack(t *testing.T) {
	prevLogger, prevLevel, prevStack := log.Logger, zerolog.GlobalLevel(), zerolog.ErrorStackMarshaler
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
		zerolog.ErrorStackMarshaler = prevStack
	})

	var buf bytes.Buffer
	l := SetupLogger("warn", false, &buf)

	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}

	log.Error().Stack().Err(pkgerrors.New("db down")).Msg("boom")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record: %v (%s)", err, buf.String())
	}
	if rec["service"] != "go-wallet-backend" || rec["error"] != "db down" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["stack"]; !ok {
		t.Fatalf("expected stack field: %v", rec)
	}
}

func TestSetupLogger_Pretty(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	logger := SetupLogger("info", true, &buf)
	logger.Info().Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) || bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}
