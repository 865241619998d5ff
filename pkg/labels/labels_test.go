// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package labels

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, POLICY_NONE, p.Mode())

	p, err = NewPolicy([]string{"env"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, POLICY_WHITELIST, p.Mode())

	p, err = NewPolicy(nil, []string{"env"})
	assert.NoError(t, err)
	assert.Equal(t, POLICY_BLACKLIST, p.Mode())

	_, err = NewPolicy([]string{"a"}, []string{"b"})
	assert.ErrorIs(t, err, ErrBothLists)
}

func TestApplyNone(t *testing.T) {
	p, err := NewPolicy(nil, nil)
	require.NoError(t, err)

	in := map[string]string{"env": "prod", "team": "infra"}
	assert.Equal(t, in, p.Apply(in))
}

func TestApplyBlacklist(t *testing.T) {
	p, err := NewPolicy(nil, []string{"com.docker.compose.version"})
	require.NoError(t, err)

	out := p.Apply(map[string]string{
		"env":                        "prod",
		"com.docker.compose.version": "1",
	})
	assert.Equal(t, map[string]string{"env": "prod"}, out)
}

func TestApplyWhitelist(t *testing.T) {
	p, err := NewPolicy([]string{"env"}, nil)
	require.NoError(t, err)

	out := p.Apply(map[string]string{
		"env":                        "prod",
		"com.docker.compose.version": "1",
	})
	assert.Equal(t, map[string]string{"env": "prod"}, out)
}

// Filter lists match the native key, not the sanitized one.
func TestFilterMatchesUnsanitizedKeys(t *testing.T) {
	p, err := NewPolicy(nil, []string{"com.docker.compose.version"})
	require.NoError(t, err)

	out := p.Apply(map[string]string{
		"com.docker.compose.version": "1",
		"com.docker.compose.project": "app",
	})
	assert.Equal(t, map[string]string{"com_docker_compose_project": "app"}, out)

	// The sanitized form on the exclude list must not match anything.
	p, err = NewPolicy(nil, []string{"com_docker_compose_version"})
	require.NoError(t, err)
	out = p.Apply(map[string]string{"com.docker.compose.version": "1"})
	assert.Equal(t, map[string]string{"com_docker_compose_version": "1"}, out)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "env", Sanitize("env"))
	assert.Equal(t, "com_docker_compose_version", Sanitize("com.docker.compose.version"))
	assert.Equal(t, "my_label", Sanitize("my-label"))
	assert.Equal(t, "_1password", Sanitize("1password"))
	assert.Equal(t, "a_b_c", Sanitize("a b/c"))
	assert.Equal(t, "", Sanitize(""))
}

func TestSanitizeAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	for _, key := range []string{
		"env", "com.docker.compose.version", "a-b", "1a", "Ünïcode",
		"space key", "tab\tkey", "dollar$sign", "trailing.", ".leading",
	} {
		assert.Regexp(t, valid, Sanitize(key), "key %q", key)
	}
}

func TestSanitizeCollisionLastWins(t *testing.T) {
	p, err := NewPolicy(nil, nil)
	require.NoError(t, err)

	out := p.Apply(map[string]string{"a.b": "1", "a-b": "2"})
	require.Len(t, out, 1)
	v, ok := out["a_b"]
	assert.True(t, ok)
	assert.Contains(t, []string{"1", "2"}, v)
}
