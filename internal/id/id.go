package id

import (
	"fmt"
	"strconv"
	"strings"
)

// clarificationPrefix marks clarification request IDs.
const clarificationPrefix = "CLR"

// FormatClarificationID returns an ID like "CLR-2025-01-001".
func FormatClarificationID(year, month, seq int) string {
	return fmt.Sprintf("%s-%04d-%02d-%03d", clarificationPrefix, year, month, seq)
}

// ParseClarificationID parses "CLR-2025-01-001" into year, month, seq.
func ParseClarificationID(id string) (year, month, seq int, err error) {
	rest, ok := strings.CutPrefix(strings.ToUpper(id), clarificationPrefix+"-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid clarification ID format: %q", id)
	}

	parts := strings.SplitN(rest, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid clarification ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in clarification ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in clarification ID %q: %w", id, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month out of range in clarification ID %q", id)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in clarification ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// Normalize upper-cases an ID so lookups accept "clr-2025-01-001".
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
