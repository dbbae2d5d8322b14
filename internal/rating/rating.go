// Package rating records per-user article ratings and summarizes them.
package rating

import (
	"math"
	"time"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

const (
	MinValue = 0
	MaxValue = 5

	field = "rating"
)

// Summary aggregates the ratings of one article. Average is the mean
// rounded half to even; Mean keeps the unrounded value.
type Summary struct {
	Average    int         `json:"avg_rating"`
	TotalCount int         `json:"total_user_rates"`
	Histogram  map[int]int `json:"each_rating"`
	Mean       float64     `json:"-"`
}

// Validate checks value against [MinValue, MaxValue].
func Validate(value int) error {
	if value < MinValue {
		return apperr.Validation(field, "min_value", "Ensure this value is greater than or equal to 0.")
	}
	if value > MaxValue {
		return apperr.Validation(field, "max_value", "Ensure this value is less than or equal to 5.")
	}

	return nil
}

// Record builds rater's rating of article. Storing it replaces any earlier
// rating by the same rater.
func Record(articleID string, rater int64, value int) (model.Rating, error) {
	if err := Validate(value); err != nil {
		return model.Rating{}, err
	}

	return model.Rating{
		ArticleID: articleID,
		RatedBy:   rater,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Summarize computes the summary over ratings.
func Summarize(ratings []model.Rating) Summary {
	s := Summary{Histogram: make(map[int]int)}
	if len(ratings) == 0 {
		return s
	}

	total := 0
	for _, r := range ratings {
		total += r.Value
		s.Histogram[r.Value]++
	}
	s.TotalCount = len(ratings)
	s.Mean = float64(total) / float64(len(ratings))
	s.Average = int(math.RoundToEven(s.Mean))

	return s
}
