package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseISODuration converts an ISO 8601 duration string as returned by the
// video catalog's contentDetails (e.g. "PT3M16S", "PT1H2M", "P1DT4H") into
// seconds. Year and month designators are rejected since they have no fixed
// length in seconds.
func ParseISODuration(s string) (float64, error) {
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("%w: ISO 8601 duration must start with 'P': %q", ErrInvalidInput, s)
	}

	rest := s[1:]
	if rest == "" {
		return 0, fmt.Errorf("%w: empty ISO 8601 duration: %q", ErrInvalidInput, s)
	}

	datePart := rest
	timePart := ""
	if i := strings.IndexByte(rest, 'T'); i >= 0 {
		datePart, timePart = rest[:i], rest[i+1:]
		if timePart == "" {
			return 0, fmt.Errorf("%w: dangling 'T' in ISO 8601 duration: %q", ErrInvalidInput, s)
		}
	}

	var total float64

	add := func(part string, units map[byte]float64) error {
		num := ""
		for i := 0; i < len(part); i++ {
			c := part[i]
			if (c >= '0' && c <= '9') || c == '.' {
				num += string(c)
				continue
			}
			mult, ok := units[c]
			if !ok {
				return fmt.Errorf("%w: unsupported designator %q in duration %q", ErrInvalidInput, string(c), s)
			}
			if num == "" {
				return fmt.Errorf("%w: designator %q without a value in duration %q", ErrInvalidInput, string(c), s)
			}
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return fmt.Errorf("%w: bad number %q in duration %q", ErrInvalidInput, num, s)
			}
			total += v * mult
			num = ""
		}
		if num != "" {
			return fmt.Errorf("%w: trailing value without designator in duration %q", ErrInvalidInput, s)
		}
		return nil
	}

	if err := add(datePart, map[byte]float64{'W': 7 * 86400, 'D': 86400}); err != nil {
		return 0, err
	}
	if err := add(timePart, map[byte]float64{'H': 3600, 'M': 60, 'S': 1}); err != nil {
		return 0, err
	}

	return total, nil
}
