// SPDX-FileCopyrightText: 2026 Humaid Alqasimi
// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"testing"

	"github.com/flamego/template"
)

func TestSiteTitleInjectorUsesConfiguredValue(t *testing.T) {
	t.Parallel()

	handler, ok := SiteTitleInjector("  Clinic Records  ").(func(template.Data))
	if !ok {
		t.Fatalf("unexpected SiteTitleInjector handler type")
	}

	data := template.Data{}
	handler(data)

	title, _ := data["SiteTitle"].(string)
	if title != "Clinic Records" {
		t.Fatalf("expected configured site title, got %q", title)
	}
}

func TestSiteTitleInjectorFallsBackToDefault(t *testing.T) {
	t.Parallel()

	handler, ok := SiteTitleInjector("   ").(func(template.Data))
	if !ok {
		t.Fatalf("unexpected SiteTitleInjector handler type")
	}

	data := template.Data{}
	handler(data)

	title, _ := data["SiteTitle"].(string)
	if title != defaultSiteTitle {
		t.Fatalf("expected default site title %q, got %q", defaultSiteTitle, title)
	}
}
