// Package engagement implements the favourite/unfavourite toggles of an
// article. A user is in at most one of the two sets after every call.
package engagement

import "github.com/SergeyParamoshkin/speaksfer/internal/model"

// State is a user's engagement with one article.
type State string

const (
	Neutral      State = "neutral"
	Favourited   State = "favourited"
	Unfavourited State = "unfavourited"
)

// StateOf reports the current engagement of user with a.
func StateOf(a *model.Article, user int64) State {
	switch {
	case a.FavouritedBy.Has(user):
		return Favourited
	case a.UnfavouritedBy.Has(user):
		return Unfavourited
	default:
		return Neutral
	}
}

// ToggleFavourite removes user from the favourites if present, otherwise
// moves user into the favourites out of the unfavourites.
func ToggleFavourite(a *model.Article, user int64) State {
	ensureSets(a)

	return toggle(a.FavouritedBy, a.UnfavouritedBy, user, Favourited)
}

// ToggleUnfavourite mirrors ToggleFavourite with the sets swapped.
func ToggleUnfavourite(a *model.Article, user int64) State {
	ensureSets(a)

	return toggle(a.UnfavouritedBy, a.FavouritedBy, user, Unfavourited)
}

func toggle(target, opposite model.UserSet, user int64, on State) State {
	if target.Has(user) {
		target.Remove(user)

		return Neutral
	}
	opposite.Remove(user)
	target.Add(user)

	return on
}

func ensureSets(a *model.Article) {
	if a.FavouritedBy == nil {
		a.FavouritedBy = model.UserSet{}
	}
	if a.UnfavouritedBy == nil {
		a.UnfavouritedBy = model.UserSet{}
	}
}

// Change is the membership delta between two engagement snapshots for one user.
type Change struct {
	UserID int64
	Before State
	After  State
}

// Diff lists the users whose state differs between before and after.
func Diff(before, after *model.Article) []Change {
	seen := model.UserSet{}
	var changes []Change
	for _, set := range []model.UserSet{before.FavouritedBy, before.UnfavouritedBy, after.FavouritedBy, after.UnfavouritedBy} {
		for _, id := range set.Slice() {
			if seen.Has(id) {
				continue
			}
			seen.Add(id)
			b, a := StateOf(before, id), StateOf(after, id)
			if b != a {
				changes = append(changes, Change{UserID: id, Before: b, After: a})
			}
		}
	}

	return changes
}

// Snapshot copies the engagement sets of a so they can be diffed later.
func Snapshot(a *model.Article) *model.Article {
	return &model.Article{
		ID:             a.ID,
		FavouritedBy:   a.FavouritedBy.Clone(),
		UnfavouritedBy: a.UnfavouritedBy.Clone(),
	}
}
