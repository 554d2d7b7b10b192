package schedule

import "strings"

// FormatPhone renders an 11 digit Brazilian mobile number as
// "(DD) DDDDD-DDDD". Anything else is returned as typed.
func FormatPhone(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return raw
	}
	return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
}
