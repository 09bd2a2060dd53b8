package credits

import (
	"errors"
	"fmt"
)

// Video models accepted by the generation endpoint.
const (
	ModelSora2    = "sora-2"
	ModelSora2Pro = "sora-2-pro"
)

// ErrUnknownPricing is returned for a model/duration pair outside the cost table.
var ErrUnknownPricing = errors.New("unknown pricing")

var costTable = map[string]map[int]int{
	ModelSora2: {
		4:  1,
		8:  2,
		12: 3,
	},
	ModelSora2Pro: {
		4:  2,
		8:  4,
		12: 6,
	},
}

var durations = []int{4, 8, 12}

// Cost returns the credits charged for one video of the given model and length.
// Callers validate model and duration first; unknown pairs are not interpolated.
func Cost(model string, seconds int) (int, error) {
	byDuration, ok := costTable[model]
	if !ok {
		return 0, fmt.Errorf("%w: model %q", ErrUnknownPricing, model)
	}
	cost, ok := byDuration[seconds]
	if !ok {
		return 0, fmt.Errorf("%w: %s for %ds", ErrUnknownPricing, model, seconds)
	}
	return cost, nil
}

// ValidModel reports whether model is priced.
func ValidModel(model string) bool {
	_, ok := costTable[model]
	return ok
}

// ValidDuration reports whether seconds is one of the billable durations.
func ValidDuration(seconds int) bool {
	for _, d := range durations {
		if d == seconds {
			return true
		}
	}
	return false
}

// Durations lists the billable durations in ascending order.
func Durations() []int {
	return append([]int(nil), durations...)
}

// Models lists the priced models.
func Models() []string {
	return []string{ModelSora2, ModelSora2Pro}
}
