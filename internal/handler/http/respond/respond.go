// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling with sanitization to prevent leaking sensitive information.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; the failure can only be logged.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the given status code and error message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError sanitizes error messages before returning them to users.
// Validation-style and known operational errors are returned as-is; anything
// else, and any plain 500, is collapsed to "internal server error" with the
// detail logged. Gateway-style codes keep their safe message so a caller can
// tell an upstream outage apart from a server fault.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()

	safeErrors := []string{
		"required",
		"invalid",
		"not found",
		"must be",
		"cannot be",
		"in progress",
		"all sources failed",
	}

	isSafe := false
	lowerMsg := strings.ToLower(msg)
	for _, safe := range safeErrors {
		if strings.Contains(lowerMsg, safe) {
			isSafe = true
			break
		}
	}

	if code == http.StatusInternalServerError {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeMessage(msg)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// SanitizeMessage masks credentials embedded in URLs before a message is
// logged. Fetch errors carry the requested URL, which may include userinfo
// on misconfigured sources.
func SanitizeMessage(msg string) string {
	for _, word := range strings.Fields(msg) {
		u, err := url.Parse(word)
		if err != nil || u.User == nil {
			continue
		}
		u.User = url.UserPassword("xxx", "xxx")
		msg = strings.ReplaceAll(msg, word, u.String())
	}
	return msg
}
