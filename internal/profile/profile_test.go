package profile

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleProfile = `
personal:
  name: Jane Doe
  email: jane@example.com
  location: Copenhagen
experiences:
  - company: Acme
    role: Engineer
    dates: 2021 - 2024
    bullets:
      - Built Go services
      - Tuned Postgres
projects:
  - name: sidekick
    role: Author
    bullets:
      - Wrote a CLI
skills:
  languages: [Go, SQL]
  technologies: [Postgres]
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	p, err := Load(writeProfile(t, sampleProfile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Personal.Name != "Jane Doe" {
		t.Fatalf("personal section not parsed: %+v", p.Personal)
	}
	if len(p.Experiences) != 1 || len(p.Experiences[0].Bullets) != 2 {
		t.Fatalf("experiences not parsed: %+v", p.Experiences)
	}
	if got := len(p.Bullets()); got != 3 {
		t.Fatalf("expected 3 corpus items, got %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadRejectsEmptyCorpus(t *testing.T) {
	if _, err := Load(writeProfile(t, "personal:\n  name: Jane\n")); err == nil {
		t.Fatalf("expected error for profile without bullets")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	if _, err := Load(writeProfile(t, "personal: [unclosed")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}
