package logging

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/m-mizutani/masq"
)

const redacted = "[REDACTED]"

// SensitiveHeaders is the set of HTTP header names (lowercase) that carry
// credentials. It feeds both the masq field rules and RedactHeaders.
var SensitiveHeaders = map[string]bool{
	"authorization":  true,
	"x-api-key":      true,
	"x-goog-api-key": true,
	"cookie":         true,
}

var (
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`)

	// At least 10 characters per segment so version strings do not match.
	jwtPattern = regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`)

	apiKeyInlinePattern = regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`)

	// Portal OAuth token passed as a query parameter: .../user.current.json?auth=abc
	authQueryPattern = regexp.MustCompile(`(?i)[?&]auth=[^&\s]+`)

	// Inbound webhook base: https://portal/rest/{user}/{secret}/
	webhookPathPattern = regexp.MustCompile(`/rest/\d+/[a-zA-Z0-9]{6,}`)
)

// newRedactAttr returns a masq ReplaceAttr function that redacts known
// credential fields by name and raw credential values by pattern.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(SensitiveHeaders)+12)

	for name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}

	opts = append(opts,
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("auth_id"),
		masq.WithFieldName("AUTH_ID"),

		masq.WithFieldPrefix("secret_"),
		masq.WithFieldPrefix("api_key"),

		masq.WithRegex(bearerPattern),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(apiKeyInlinePattern),
		masq.WithRegex(authQueryPattern),
		masq.WithRegex(webhookPathPattern),
	)

	return masq.New(opts...)
}

// RedactHeaders converts headers into slog attributes for debug logging,
// replacing the values of SensitiveHeaders. Multi-value headers are joined
// with a comma.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for key, vals := range headers {
		if SensitiveHeaders[strings.ToLower(key)] {
			attrs = append(attrs, slog.String(key, redacted))
			continue
		}
		attrs = append(attrs, slog.String(key, strings.Join(vals, ",")))
	}
	return attrs
}
