package bclog

import "testing"

func TestLevelOptionOrdering(t *testing.T) {
	// Sanity check that the switch in levelOption doesn't panic across the
	// documented level range and returns a non-nil option each time.
	for _, l := range []Level{LevelNotset, LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical, 999} {
		if levelOption(l) == nil {
			t.Fatalf("expected non-nil level option for %v", l)
		}
	}
}

func TestLoggerIsSingleton(t *testing.T) {
	a := Logger()
	b := Logger()
	if a == nil || b == nil {
		t.Fatalf("expected non-nil logger")
	}
	if a != b {
		t.Fatalf("expected the same logger from repeated calls")
	}
}
