package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// queryParam returns the named query parameter, trimmed.
func queryParam(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := queryParam(r, name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// parseBoolParam reports whether a boolean query parameter is set to true.
func parseBoolParam(r *http.Request, name string) bool {
	val := queryParam(r, name)
	return val == "true" || val == "1"
}

// parseFloatParam parses an optional float query parameter. Absent or
// malformed values yield nil.
func parseFloatParam(r *http.Request, name string) *float64 {
	val := queryParam(r, name)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// parseDateParam parses an optional 2006-01-02 query parameter. Absent or
// malformed values yield nil.
func parseDateParam(r *http.Request, name string) *time.Time {
	val := queryParam(r, name)
	if val == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil
	}
	return &parsed
}
