package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitize policy names accepted by Field.Sanitize.
const (
	SanitizeStrict = "strict"
	SanitizeUGC    = "ugc"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
	ugcOnce      sync.Once
	ugcPolicy    *bluemonday.Policy
)

// Normalize applies the field's value transforms (sanitize, then trim).
func (f Field) Normalize(value string) string {
	if f.Sanitize != "" {
		if policy, ok := policyFor(f.Sanitize); ok {
			value = policy.Sanitize(value)
		}
	}
	if f.Trim {
		value = strings.TrimSpace(value)
	}
	return value
}

func policyFor(name string) (*bluemonday.Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SanitizeStrict:
		strictOnce.Do(func() {
			strictPolicy = bluemonday.StrictPolicy()
		})
		return strictPolicy, true
	case SanitizeUGC:
		ugcOnce.Do(func() {
			ugcPolicy = bluemonday.UGCPolicy()
		})
		return ugcPolicy, true
	default:
		return nil, false
	}
}
