// Package tag turns a comma separated tag list into the canonical tag set
// of an article.
package tag

import (
	"context"
	"fmt"
	"strings"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

// MaxNameLength bounds a single tag name.
const MaxNameLength = 50

// Upserter returns the tag with the given name, creating it when absent.
type Upserter interface {
	GetOrCreateTag(ctx context.Context, name string) (model.Tag, error)
}

// Parse splits list on commas, trims every token and drops empty and
// repeated names. Order of first occurrence and case are kept.
func Parse(list string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, token := range strings.Split(list, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

// Reconcile replaces the tags of a with exactly the tags named in list.
func Reconcile(ctx context.Context, a *model.Article, list string, tags Upserter) error {
	names := Parse(list)
	for _, name := range names {
		if len([]rune(name)) > MaxNameLength {
			return apperr.Validation("taglist", "max_length", fmt.Sprintf("Tag %q is longer than %d characters.", name, MaxNameLength))
		}
	}

	resolved := make([]model.Tag, 0, len(names))
	for _, name := range names {
		t, err := tags.GetOrCreateTag(ctx, name)
		if err != nil {
			return fmt.Errorf("get or create tag %q: %w", name, err)
		}
		resolved = append(resolved, t)
	}
	a.Tags = resolved

	return nil
}
