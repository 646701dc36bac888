package observability

import "strings"

const maxLogValueLength = 120

func sanitizeString(value string) string {
	value = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, value)
	if len(value) > maxLogValueLength {
		value = value[:maxLogValueLength]
	}
	return value
}

// SanitizeRoute strips control characters from route patterns before logging.
func SanitizeRoute(route string) string {
	if route == "" {
		return "unknown"
	}
	return sanitizeString(route)
}

// SanitizeMethod normalizes an HTTP method for log output.
func SanitizeMethod(method string) string {
	return strings.ToUpper(sanitizeString(method))
}

// MaskPhone obscures all but the last three digits of a phone number so
// request logs do not carry full customer identifiers.
func MaskPhone(phone string) string {
	phone = sanitizeString(phone)
	if len(phone) <= 3 {
		return phone
	}
	return strings.Repeat("*", len(phone)-3) + phone[len(phone)-3:]
}
