package engagement

import (
	"testing"

	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

func newArticle() *model.Article {
	return &model.Article{ID: "a1"}
}

func assertExclusive(t *testing.T, a *model.Article) {
	t.Helper()
	for id := range a.FavouritedBy {
		if a.UnfavouritedBy.Has(id) {
			t.Fatalf("user %d is in both engagement sets", id)
		}
	}
}

func TestToggleFavouriteTwiceIsNeutral(t *testing.T) {
	t.Parallel()

	a := newArticle()
	if got := ToggleFavourite(a, 7); got != Favourited {
		t.Fatalf("expected favourited, got %s", got)
	}
	if got := ToggleFavourite(a, 7); got != Neutral {
		t.Fatalf("expected neutral, got %s", got)
	}
	if a.FavouritedBy.Has(7) || a.UnfavouritedBy.Has(7) {
		t.Fatalf("user must be in neither set: %v %v", a.FavouritedBy, a.UnfavouritedBy)
	}
}

func TestToggleUnfavouriteTwiceIsNeutral(t *testing.T) {
	t.Parallel()

	a := newArticle()
	ToggleUnfavourite(a, 7)
	if got := ToggleUnfavourite(a, 7); got != Neutral {
		t.Fatalf("expected neutral, got %s", got)
	}
	if StateOf(a, 7) != Neutral {
		t.Fatalf("expected neutral state")
	}
}

func TestToggleMovesBetweenSets(t *testing.T) {
	t.Parallel()

	a := newArticle()
	ToggleFavourite(a, 1)
	if got := ToggleUnfavourite(a, 1); got != Unfavourited {
		t.Fatalf("expected unfavourited, got %s", got)
	}
	if a.FavouritedBy.Has(1) {
		t.Fatalf("favourite must be cleared when unfavouriting")
	}
	assertExclusive(t, a)

	if got := ToggleFavourite(a, 1); got != Favourited {
		t.Fatalf("expected favourited, got %s", got)
	}
	if a.UnfavouritedBy.Has(1) {
		t.Fatalf("unfavourite must be cleared when favouriting")
	}
	assertExclusive(t, a)
}

func TestToggleSequencesKeepExclusion(t *testing.T) {
	t.Parallel()

	ops := []func(*model.Article, int64) State{ToggleFavourite, ToggleUnfavourite}
	a := newArticle()
	// Walk every op sequence of length 6 over three users.
	for seq := 0; seq < 1<<6; seq++ {
		for user := int64(1); user <= 3; user++ {
			for step := 0; step < 6; step++ {
				op := ops[(seq>>step)&1]
				got := op(a, user)
				if got != StateOf(a, user) {
					t.Fatalf("returned state %s disagrees with sets", got)
				}
				assertExclusive(t, a)
			}
		}
	}
}

func TestUsersAreIndependent(t *testing.T) {
	t.Parallel()

	a := newArticle()
	ToggleFavourite(a, 1)
	ToggleUnfavourite(a, 2)
	if StateOf(a, 1) != Favourited || StateOf(a, 2) != Unfavourited || StateOf(a, 3) != Neutral {
		t.Fatalf("unexpected states: %v %v", a.FavouritedBy, a.UnfavouritedBy)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	a := newArticle()
	ToggleFavourite(a, 1)
	ToggleFavourite(a, 2)
	before := Snapshot(a)

	ToggleUnfavourite(a, 1)
	ToggleFavourite(a, 2)
	ToggleFavourite(a, 3)

	changes := Diff(before, a)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %+v", len(changes), changes)
	}
	want := map[int64]Change{
		1: {UserID: 1, Before: Favourited, After: Unfavourited},
		2: {UserID: 2, Before: Favourited, After: Neutral},
		3: {UserID: 3, Before: Neutral, After: Favourited},
	}
	for _, c := range changes {
		if want[c.UserID] != c {
			t.Fatalf("unexpected change %+v", c)
		}
	}
}
