package httpapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/scrapbird/hview/internal/apperrors"
)

func queryString(q url.Values, name, def string) string {
	v := q.Get(name)
	if v == "" {
		return def
	}
	return v
}

func queryBool(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, apperrors.InvalidSelection("invalid boolean value %q for %s", v, name)
	}
}

// queryInt parses name as a base-10 integer, returning def when absent.
// A present-but-unparseable value is a client error.
func queryInt(q url.Values, name string, def int64) (int64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, apperrors.InvalidSelection("invalid integer value %q for %s", v, name)
	}
	return n, nil
}

// queryIntPtr parses name, returning nil when absent so callers can tell
// "not supplied" apart from an explicit 0.
func queryIntPtr(q url.Values, name string) (*int64, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return nil, apperrors.InvalidSelection("invalid integer value %q for %s", v, name)
	}
	return &n, nil
}

func queryBoolPtr(q url.Values, name string) (*bool, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := queryBool(q, name, false)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func intPtrOr(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}
