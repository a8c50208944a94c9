package inference

import (
	"fmt"
	"strconv"
)

// Format renders a classification as the user-facing result line.
// The percentage is computed in float32; precision -1 prints the shortest
// representation, so a confidence of 0.87 renders as "87".
func Format(label string, confidence float32, precision int) string {
	pct := confidence * 100
	return fmt.Sprintf(
		"The image represents a %s, with %s%% accuracy",
		label,
		strconv.FormatFloat(float64(pct), 'f', precision, 32),
	)
}
