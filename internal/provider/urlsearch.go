package provider

import (
	"sort"
	"strings"
)

// MaxURLSearchDepth bounds FindVideoURL's descent into nested output.
const MaxURLSearchDepth = 8

var directURLKeys = []string{"url", "uri", "href", "video", "video_url", "videoUrl"}

// FindVideoURL returns the first http(s) URL found in decoded JSON output.
// Arrays are searched in order. Objects check the well-known keys first and
// then recurse into their values in sorted key order so results are stable.
func FindVideoURL(v any) string {
	return findURL(v, 0)
}

func findURL(v any, depth int) string {
	if depth > MaxURLSearchDepth {
		return ""
	}
	switch val := v.(type) {
	case string:
		if isHTTPURL(val) {
			return val
		}
	case []any:
		for _, item := range val {
			if found := findURL(item, depth+1); found != "" {
				return found
			}
		}
	case map[string]any:
		for _, key := range directURLKeys {
			if s, ok := val[key].(string); ok && isHTTPURL(s) {
				return s
			}
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found := findURL(val[k], depth+1); found != "" {
				return found
			}
		}
	}
	return ""
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http")
}
