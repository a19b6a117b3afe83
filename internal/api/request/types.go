package request

import (
	"net/http"
	"strconv"
)

// ParseLimit reads the limit query parameter. A missing value returns 0 so
// the store applies its default; ok is false for non-numeric or negative
// values.
func ParseLimit(r *http.Request) (limit int, ok bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
