package prompts

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestGet_KnownVersions(t *testing.T) {
	log := zap.NewNop()
	for _, version := range []string{"v1", "v2"} {
		tmpl, effective := Get(version, log)
		if effective != version {
			t.Fatalf("effective version = %q, want %q", effective, version)
		}
		if !strings.Contains(tmpl, "{cv_text}") {
			t.Fatalf("template %s missing cv placeholder", version)
		}
	}
}

func TestGet_UnknownVersionFallsBack(t *testing.T) {
	tmpl, effective := Get("v99", zap.NewNop())
	if effective != DefaultVersion {
		t.Fatalf("effective version = %q, want %q", effective, DefaultVersion)
	}
	defaultTmpl, _ := Get(DefaultVersion, zap.NewNop())
	if tmpl != defaultTmpl {
		t.Fatal("fallback did not return the default template")
	}
}

func TestRender(t *testing.T) {
	tmpl, _ := Get("v1", zap.NewNop())
	rendered := Render(tmpl, "Jane Doe, Software Engineer")
	if strings.Contains(rendered, "{cv_text}") {
		t.Fatal("placeholder not substituted")
	}
	if !strings.Contains(rendered, "Jane Doe, Software Engineer") {
		t.Fatal("cv text missing from rendered prompt")
	}
}
