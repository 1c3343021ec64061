// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerInitializers(t *testing.T) {
	t.Parallel()

	Init()
	if l := Logger(SourceBlob); l == nil {
		t.Fatal("Logger returned nil")
	}
	if l := StdLogger(SourceWeb); l == nil {
		t.Fatal("StdLogger returned nil")
	}
}

func TestSetLevelReachesDerivedLoggers(t *testing.T) {
	l := Logger(SourceCLI)

	t.Cleanup(func() {
		if err := SetLevel("debug"); err != nil {
			t.Fatalf("failed to restore level: %v", err)
		}
	})

	if err := SetLevel(" WARN "); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}

	if got := l.GetLevel(); got != log.WarnLevel {
		t.Fatalf("expected derived logger at warn, got %v", got)
	}

	if err := SetLevel(""); err != nil {
		t.Fatalf("empty level should be ignored, got %v", err)
	}

	if got := l.GetLevel(); got != log.WarnLevel {
		t.Fatalf("expected empty level to keep warn, got %v", got)
	}

	if err := SetLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
