package util

import "strings"

// StripCodeFences returns the body of the first markdown code fence in s,
// or s itself (trimmed) when the model answered without a fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	i := strings.Index(s, "```")
	if i < 0 {
		return s
	}
	body := s[i+3:]
	// info string: ```json, ```JSON, ```javascript ...
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
		body = strings.TrimPrefix(body, "JSON")
	}
	if j := strings.Index(body, "```"); j >= 0 {
		body = body[:j]
	}
	return strings.TrimSpace(body)
}
