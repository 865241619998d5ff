// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package labels

import (
	"errors"
)

type PolicyMode int

const (
	// POLICY_NONE keeps every label.
	POLICY_NONE PolicyMode = iota
	// POLICY_BLACKLIST removes the configured keys.
	POLICY_BLACKLIST
	// POLICY_WHITELIST retains only the configured keys.
	POLICY_WHITELIST
)

func (m PolicyMode) String() string {
	return [...]string{
		POLICY_NONE:      "none",
		POLICY_BLACKLIST: "blacklist",
		POLICY_WHITELIST: "whitelist",
	}[m]
}

// Policy decides which container labels make it onto the exported metrics.
// Filtering matches the label's native (unsanitized) key; sanitization only
// happens afterwards, on whatever survives.
type Policy struct {
	mode PolicyMode
	keys map[string]struct{}
}

// ErrBothLists is returned when both an include and an exclude list are
// configured. The two are mutually exclusive by construction.
var ErrBothLists = errors.New("include and exclude label lists cannot both be set")

// NewPolicy builds a label policy from the configured include and exclude
// lists. Supplying both is a configuration error and must abort startup.
func NewPolicy(include, exclude []string) (Policy, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return Policy{}, ErrBothLists
	}

	switch {
	case len(include) > 0:
		return Policy{mode: POLICY_WHITELIST, keys: keySet(include)}, nil
	case len(exclude) > 0:
		return Policy{mode: POLICY_BLACKLIST, keys: keySet(exclude)}, nil
	}
	return Policy{mode: POLICY_NONE}, nil
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func (p Policy) Mode() PolicyMode {
	return p.mode
}

// Apply filters the labels according to the policy and sanitizes the
// retained keys. When two distinct keys sanitize to the same output key the
// last one written wins; map iteration makes the winner unspecified but the
// output is always a valid label set.
func (p Policy) Apply(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		switch p.mode {
		case POLICY_BLACKLIST:
			if _, ok := p.keys[k]; ok {
				continue
			}
		case POLICY_WHITELIST:
			if _, ok := p.keys[k]; !ok {
				continue
			}
		}
		out[Sanitize(k)] = v
	}
	return out
}

// Sanitize rewrites a label key into the exposition format alphabet: every
// character outside [A-Za-z0-9_] becomes '_', and a leading digit gets a '_'
// prefix.
func Sanitize(key string) string {
	b := []byte(key)
	for i, c := range b {
		if isAlnum(c) || c == '_' {
			continue
		}
		b[i] = '_'
	}
	if len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		b = append([]byte{'_'}, b...)
	}
	return string(b)
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
