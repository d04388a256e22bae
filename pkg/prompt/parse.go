package prompt

import (
	"regexp"
	"strconv"
)

var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// ExtractNumber pulls the first numeric literal out of a model reply. Models
// often wrap the answer in prose ("approximately 2.35 g/mol"); the first
// number in reading order is taken as the prediction. The second return is
// false when the reply contains no number at all.
func ExtractNumber(response string) (float64, bool) {
	m := numberPattern.FindString(response)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
