package backendapi

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// GeneralErrorKey holds messages not tied to a form field.
const GeneralErrorKey = ""

// fieldErrors normalises the shapes the backend uses for validation errors:
//
//	{"gitName": "taken"}                      object of messages
//	{"gitName": ["taken", "too long"]}        object of message lists
//	[{"field": "gitName", "message": "taken"}] list of field objects
//	["something went wrong"]                   list of general messages
func fieldErrors(v any) map[string]string {
	out := map[string]string{}
	switch t := v.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(t)) {
			appendMessage(out, k, messageText(t[k]))
		}
	case []any:
		for _, item := range t {
			switch e := item.(type) {
			case string:
				appendMessage(out, GeneralErrorKey, e)
			case map[string]any:
				appendMessage(out, firstString(e, "field", "param", "path"), firstString(e, "message", "msg"))
			}
		}
	case string:
		appendMessage(out, GeneralErrorKey, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func appendMessage(out map[string]string, field, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	if prev, ok := out[field]; ok {
		out[field] = prev + "; " + msg
		return
	}
	out[field] = msg
}

func messageText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s := messageText(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
