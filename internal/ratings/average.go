package ratings

import (
	"math"
	"strconv"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// NoRating is how an average over no reviews is displayed.
const NoRating = "no rating"

// Average is the arithmetic mean of a set of ratings rounded to one decimal.
// The zero value is the "no rating" sentinel.
type Average struct {
	Value float64
	Count int
}

// AverageRating averages the ratings of reviews. It performs no I/O.
func AverageRating(reviews []entities.Review) Average {
	if len(reviews) == 0 {
		return Average{}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	rounded, _ := strconv.ParseFloat(formatOneDecimal(mean), 64)
	return Average{
		Value: rounded,
		Count: len(reviews),
	}
}

// formatOneDecimal rounds the binary value of x to the nearest tenth, so 1.15
// (stored as 1.1499...) gives "1.1". A value exactly halfway between two tenths,
// such as 1.25, rounds up.
func formatOneDecimal(x float64) string {
	if q := x * 4; q == math.Trunc(q) && x*2 != math.Trunc(x*2) {
		return strconv.FormatFloat(math.Ceil(x*10)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(x, 'f', 1, 64)
}

// IsRated reports whether the average covers at least one review.
func (a Average) IsRated() bool {
	return a.Count > 0
}

// String formats the average with one fraction digit, e.g. "3.0".
func (a Average) String() string {
	if !a.IsRated() {
		return NoRating
	}
	return strconv.FormatFloat(a.Value, 'f', 1, 64)
}

// MarshalJSON renders the average as a number, or null when unrated.
func (a Average) MarshalJSON() ([]byte, error) {
	if !a.IsRated() {
		return []byte("null"), nil
	}
	return []byte(a.String()), nil
}
