package ideas

import (
	"testing"

	"meridian/internal/catalog"
)

func TestPick_RoundRobinAcrossCategories(t *testing.T) {
	store := newFakeStore()
	cat := &catalog.Catalog{
		Categories: []catalog.Category{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Durations:  []int{180},
		Tracks:     catalog.TrackLibrary{Short: []catalog.Track{{ID: "s1"}}},
	}
	bank := NewBank(cat, store)

	batch := []Idea{
		{CategoryID: "a", Title: "a1"},
		{CategoryID: "a", Title: "a2"},
		{CategoryID: "b", Title: "b1"},
		{CategoryID: "c", Title: "c1"},
	}
	if err := bank.Add(batch); err != nil {
		t.Fatal(err)
	}

	var order []string
	for i := 0; i < 4; i++ {
		idea, ok, err := bank.Pick()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("pick %d: no idea", i)
		}
		order = append(order, idea.CategoryID)
		if idea.Status != IdeaScheduled {
			t.Fatalf("picked idea status = %s, want scheduled", idea.Status)
		}
	}

	want := []string{"a", "b", "c", "a"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("pick order = %v, want %v", order, want)
		}
	}

	if _, ok, err := bank.Pick(); err != nil || ok {
		t.Fatalf("pick from empty bank: ok=%v err=%v, want no idea", ok, err)
	}
}

func TestPick_SkipsEmptyCategories(t *testing.T) {
	store := newFakeStore()
	cat := &catalog.Catalog{
		Categories: []catalog.Category{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Durations:  []int{180},
		Tracks:     catalog.TrackLibrary{Short: []catalog.Track{{ID: "s1"}}},
	}
	bank := NewBank(cat, store)

	if err := bank.Add([]Idea{{CategoryID: "c", Title: "c1"}}); err != nil {
		t.Fatal(err)
	}

	idea, ok, err := bank.Pick()
	if err != nil || !ok {
		t.Fatalf("pick: ok=%v err=%v", ok, err)
	}
	if idea.CategoryID != "c" {
		t.Fatalf("picked category = %s, want c", idea.CategoryID)
	}
}

func TestMarkUsed_TiesIdeaToJob(t *testing.T) {
	store := newFakeStore()
	cat := catalog.Default()
	bank := NewBank(cat, store)

	if err := bank.Add([]Idea{{CategoryID: cat.Categories[0].ID, Title: "x"}}); err != nil {
		t.Fatal(err)
	}
	idea, ok, err := bank.Pick()
	if err != nil || !ok {
		t.Fatalf("pick: ok=%v err=%v", ok, err)
	}

	if err := bank.MarkUsed(idea.ID, "job-42"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(idea.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != IdeaUsed || got.JobID != "job-42" || got.UsedAt == nil {
		t.Fatalf("idea after mark used = %+v", got)
	}
}
