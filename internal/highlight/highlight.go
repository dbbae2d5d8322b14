// Package highlight validates and normalizes highlighted ranges of an
// article body and serves the highlight endpoints.
package highlight

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

const (
	FieldStart = "highlight_start"
	FieldEnd   = "highlight_end"

	codeOutOfRange = "invalid_length"
	codeNegative   = "min_value"
)

// Create validates the range against the article body and builds a new
// highlight owned by highlighter. A reversed range is swapped before the
// text is sliced. Offsets count runes.
func Create(a *model.Article, highlighter int64, start, end int, comment string) (*model.Highlight, error) {
	body := []rune(a.Body)
	if err := checkBounds(len(body), start, end); err != nil {
		return nil, err
	}

	start, end = Normalize(start, end)
	now := time.Now().UTC()

	return &model.Highlight{
		ID:            uuid.New().String(),
		ArticleID:     a.ID,
		HighlighterID: highlighter,
		Start:         start,
		End:           end,
		Text:          string(body[start:end]),
		Comment:       strings.TrimSpace(comment),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Normalize returns the range in forward order.
func Normalize(start, end int) (int, int) {
	if start > end {
		return end, start
	}

	return start, end
}

func checkBounds(length, start, end int) error {
	if start < 0 {
		return apperr.Validation(FieldStart, codeNegative, "Ensure this value is greater than or equal to 0.")
	}
	if end < 0 {
		return apperr.Validation(FieldEnd, codeNegative, "Ensure this value is greater than or equal to 0.")
	}
	if start > length {
		return apperr.Validation(FieldStart, codeOutOfRange, "This field should be less than the length of the article")
	}
	if end > length {
		return apperr.Validation(FieldEnd, codeOutOfRange, "This field should be less than the length of the article")
	}

	return nil
}

// IsOutOfRange reports whether err is a bound exceeding the body length.
func IsOutOfRange(err error) bool {
	e, ok := apperr.As(err)

	return ok && e.Kind == apperr.KindValidation && e.Code == codeOutOfRange
}

// UpdateComment replaces the comment of h. The range is immutable.
func UpdateComment(h *model.Highlight, comment string) {
	h.Comment = strings.TrimSpace(comment)
	h.UpdatedAt = time.Now().UTC()
}
