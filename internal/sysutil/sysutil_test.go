package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":     zerolog.DebugLevel,
		"  DeBuG  ": zerolog.DebugLevel,
		"trace":     zerolog.TraceLevel,
		"":          zerolog.InfoLevel,
		"warning":   zerolog.WarnLevel,
		"WARN":      zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"disabled":  zerolog.Disabled,
		"verbose":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestSetLogLevel_AppliesGlobally(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	if got := SetLogLevel("error"); got != zerolog.ErrorLevel {
		t.Fatalf("returned %v", got)
	}
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("global = %v", zerolog.GlobalLevel())
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "TRUE", " yes ", "on"} {
		if val, ok := ParseBool(v); !val || !ok {
			t.Errorf("ParseBool(%q) = %v,%v", v, val, ok)
		}
	}
	for _, v := range []string{"0", "False", "n", "off"} {
		if val, ok := ParseBool(v); val || !ok {
			t.Errorf("ParseBool(%q) = %v,%v", v, val, ok)
		}
	}
	for _, v := range []string{"", "  ", "maybe"} {
		if _, ok := ParseBool(v); ok {
			t.Errorf("ParseBool(%q) should be unrecognised", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("no args = %q", got)
	}
	if got := FirstNonEmpty(" ", "\t"); got != "" {
		t.Fatalf("blanks = %q", got)
	}
	if got := FirstNonEmpty("", "  rid-1 ", "x"); got != "  rid-1 " {
		t.Fatalf("got %q", got)
	}
}
