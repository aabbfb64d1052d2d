package models

import "testing"

func TestProfileBullets(t *testing.T) {
	p := &Profile{
		Experiences: []Experience{
			{Company: "Acme", Role: "Engineer", Bullets: []string{"first", "second"}},
			{Company: "Globex", Role: "Developer", Bullets: []string{"third"}},
		},
		Projects: []Project{
			{Name: "sidekick", Role: "Author", Bullets: []string{"fourth"}},
		},
	}

	items := p.Bullets()
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	wantIDs := []string{"Acme#0", "Acme#1", "Globex#0", "sidekick#0"}
	for i, want := range wantIDs {
		if items[i].ID != want {
			t.Fatalf("item %d id = %q, want %q", i, items[i].ID, want)
		}
	}

	if items[0].Category != CategoryExperience || items[3].Category != CategoryProject {
		t.Fatalf("categories mismatch: %+v", items)
	}
	if items[2].Source != "Globex" || items[2].Role != "Developer" {
		t.Fatalf("source metadata mismatch: %+v", items[2])
	}
}

func TestProfileBulletsEmpty(t *testing.T) {
	var p Profile
	if items := p.Bullets(); len(items) != 0 {
		t.Fatalf("empty profile should yield no items, got %d", len(items))
	}
}
