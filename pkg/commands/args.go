package commands

import (
	"strconv"
	"strings"
)

// String returns v trimmed, or def when v is blank.
func String(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return strings.TrimSpace(def)
}

// Number parses v as an integer. A blank v yields def.
func Number(v string, def int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// ParseKeyValue splits s on its first "=". A missing "=" is reported as not
// ok; the value may be empty and may itself contain "=".
func ParseKeyValue(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", false
	}
	return key, value, true
}

// ArrayArg drops blank entries from a repeated flag's values.
func ArrayArg(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
