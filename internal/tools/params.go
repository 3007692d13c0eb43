package tools

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tool arguments arrive as loosely-typed JSON values. These helpers normalize
// the common cases (numbers decode as float64, clients sometimes send numbers
// as strings) in one place, the way the reference tools parse inline.

func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func requireString(params map[string]interface{}, key string) (string, error) {
	v := stringParam(params, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func intParam(params map[string]interface{}, key string, defaultValue int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func boolParam(params map[string]interface{}, key string, defaultValue bool) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// optionalBool distinguishes "unset" from an explicit false.
func optionalBool(params map[string]interface{}, key string) *bool {
	switch v := params[key].(type) {
	case bool:
		return &v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

func requireUID(params map[string]interface{}, key string) (uint32, error) {
	switch v := params[key].(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid %s: %v", key, v)
		}
		return uint32(v), nil
	case string:
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return uint32(n), nil
	}
	return 0, fmt.Errorf("%s is required", key)
}

func requireUIDList(params map[string]interface{}, key string) ([]uint32, error) {
	raw, ok := params[key].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%s is required", key)
	}
	uids := make([]uint32, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			if v < 0 {
				return nil, fmt.Errorf("invalid entry in %s: %v", key, v)
			}
			uids = append(uids, uint32(v))
		case string:
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid entry in %s: %w", key, err)
			}
			uids = append(uids, uint32(n))
		default:
			return nil, fmt.Errorf("invalid entry in %s: %v", key, item)
		}
	}
	return uids, nil
}

// stringListParam accepts either an array of strings or a comma-separated
// string.
func stringListParam(params map[string]interface{}, key string) []string {
	switch v := params[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func dateParam(params map[string]interface{}, key string) (time.Time, error) {
	s := stringParam(params, key)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s format: %q", key, s)
}
