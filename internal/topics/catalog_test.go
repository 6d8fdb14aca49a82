package topics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCatalog_Defaults(t *testing.T) {
	catalog, err := NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	for _, lang := range []string{"en", "so", "ar"} {
		if len(catalog.Topics(lang)) == 0 {
			t.Errorf("no default topics for %s", lang)
		}
	}
}

func TestTopics_UnknownLanguageFallsBack(t *testing.T) {
	catalog, err := NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	en := catalog.Topics("en")
	unknown := catalog.Topics("zz")

	if len(unknown) != len(en) {
		t.Errorf("unknown language list length = %d, want english fallback %d", len(unknown), len(en))
	}
}

func TestNewCatalog_LoadsOverridesFromDir(t *testing.T) {
	dir := t.TempDir()
	content := "language: en\ntopics:\n  - Custom topic one\n  - Custom topic two\n"
	if err := os.WriteFile(filepath.Join(dir, "en.topics.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	got := catalog.Topics("en")
	if len(got) != 2 || got[0] != "Custom topic one" {
		t.Errorf("Topics(en) = %v, want the overridden list", got)
	}

	// Other languages keep their defaults.
	if len(catalog.Topics("so")) == 0 {
		t.Error("somali defaults should survive an english override")
	}
}

func TestNewCatalog_SkipsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("{{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() should tolerate invalid files, got %v", err)
	}
	if len(catalog.Topics("en")) == 0 {
		t.Error("defaults should remain after skipping an invalid file")
	}
}

func TestNewCatalog_MissingDirUsesDefaults(t *testing.T) {
	catalog, err := NewCatalog(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if len(catalog.Topics("en")) == 0 {
		t.Error("missing dir should fall back to defaults")
	}
}
