package serial

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
)

// Serial scheme: template + two-digit year suffix + zero-padded numeric
// suffix of fixed width. Example: template "TPL", year 2025, suffix 7
// -> "TPL2500007".
const (
	// SuffixWidth is the zero-padded width of the numeric tail.
	SuffixWidth = 5

	// MaxSuffix is the highest suffix expressible at SuffixWidth.
	MaxSuffix = 99999

	// GenerateBatchCap bounds one generation batch.
	GenerateBatchCap = 500

	// MovementBatchCap bounds one stock movement.
	MovementBatchCap = 10000

	// Inputs up to this length are treated as bare numeric suffixes.
	bareSuffixMaxLen = 8
)

// YearSuffix returns the two-digit year component for t.
func YearSuffix(t time.Time) string {
	return fmt.Sprintf("%02d", t.Year()%100)
}

// Prefix returns the fixed serial prefix for a product and year.
func Prefix(template, yearSuffix string) string {
	return template + yearSuffix
}

// Format renders a full serial string for the given suffix.
func Format(template, yearSuffix string, suffix int) string {
	return fmt.Sprintf("%s%s%0*d", template, yearSuffix, SuffixWidth, suffix)
}

// ParseSuffix resolves an operator-entered serial into its numeric suffix.
// Short inputs (len <= 8) must be all digits and are taken as a bare suffix.
// Longer inputs must start with template+yearSuffix followed by digits.
func ParseSuffix(input, template, yearSuffix string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, domain.Validationf(domain.CodeInvalidSerialFormat, "empty serial")
	}
	if len(s) <= bareSuffixMaxLen {
		// strconv.Atoi tolerates a leading sign, so digits are checked first.
		if !allDigits(s) {
			return 0, domain.Validationf(domain.CodeInvalidSerialFormat,
				"serial %q: short input must be numeric", input)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, domain.Validationf(domain.CodeInvalidSerialFormat,
				"serial %q: short input must be numeric", input)
		}
		if n < 1 || n > MaxSuffix {
			return 0, domain.Validationf(domain.CodeInvalidSerialFormat,
				"serial %q: suffix %d out of range 1..%d", input, n, MaxSuffix)
		}
		return n, nil
	}
	prefix := Prefix(template, yearSuffix)
	if !strings.HasPrefix(s, prefix) {
		return 0, domain.Validationf(domain.CodeInvalidSerialFormat,
			"serial %q: expected prefix %q", input, prefix)
	}
	tail := s[len(prefix):]
	if !allDigits(tail) {
		return 0, domain.Validationf(domain.CodeInvalidSerialFormat,
			"serial %q: non-numeric suffix %q", input, tail)
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, domain.Validationf(domain.CodeInvalidSerialFormat,
			"serial %q: non-numeric suffix %q", input, tail)
	}
	if n < 1 || n > MaxSuffix {
		return 0, domain.Validationf(domain.CodeInvalidSerialFormat,
			"serial %q: suffix %d out of range 1..%d", input, n, MaxSuffix)
	}
	return n, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Range expands [start, end] into ordered fixed-width serial strings.
// The batch cap is supplied by the caller (generation and movements
// carry different caps).
func Range(template, yearSuffix string, start, end, limit int) ([]string, error) {
	if start < 1 || end < start {
		return nil, domain.Validationf(domain.CodeInvalidSerialFormat,
			"invalid suffix range %d..%d", start, end)
	}
	if end > MaxSuffix {
		return nil, domain.Validationf(domain.CodeInvalidSerialFormat,
			"suffix %d exceeds the %d-digit serial space", end, SuffixWidth)
	}
	count := end - start + 1
	if count > limit {
		return nil, domain.Validationf(domain.CodeBatchTooLarge,
			"batch of %d serials exceeds the cap of %d", count, limit)
	}
	out := make([]string, 0, count)
	for s := start; s <= end; s++ {
		out = append(out, Format(template, yearSuffix, s))
	}
	return out, nil
}

// CheckSequential enforces the continuation rule: a new range for a
// template+year prefix must start right after the highest suffix already
// allocated under it, or at 1 when none exists.
func CheckSequential(start, maxExisting int, hasExisting bool) error {
	expected := 1
	if hasExisting {
		expected = maxExisting + 1
	}
	if start != expected {
		return domain.Validationf(domain.CodeNonSequentialSerial,
			"range must start at %d, got %d", expected, start)
	}
	return nil
}
