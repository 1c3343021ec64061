// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package db

import "testing"

func TestNextCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prefix string
		last   string
		want   string
	}{
		{prefix: "P", last: "", want: "P001"},
		{prefix: "P", last: "P001", want: "P002"},
		{prefix: "P", last: "P009", want: "P010"},
		{prefix: "D", last: "D999", want: "D1000"},
		{prefix: "D", last: "X012", want: "D001"},
		{prefix: "P", last: "Pabc", want: "P001"},
	}

	for _, tc := range cases {
		if got := nextCode(tc.prefix, tc.last); got != tc.want {
			t.Fatalf("nextCode(%q, %q): expected %q, got %q", tc.prefix, tc.last, tc.want, got)
		}
	}
}

func TestOptionalString(t *testing.T) {
	t.Parallel()

	if optionalString("   ") != nil {
		t.Fatalf("expected nil for blank input")
	}

	got := optionalString("  note ")
	if got == nil || *got != "note" {
		t.Fatalf("expected trimmed note, got %v", got)
	}
}
