// ABOUTME: Tests for permission resolution and normalization
// ABOUTME: Covers override precedence, true-literal coercion, and sends-requires-writes

package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iterable-tools/iterable-mcp/internal/keystore"
)

func envFrom(m map[string]string) Getenv {
	return func(key string) string { return m[key] }
}

func TestResolveOverrideWins(t *testing.T) {
	overrides := map[string]string{keystore.EnvUserPII: "true"}
	env := envFrom(map[string]string{
		keystore.EnvUserPII:      "false",
		keystore.EnvEnableWrites: "true",
	})

	eff := Resolve(overrides, env)
	assert.True(t, eff.AllowPII, "override wins over environment")
	assert.True(t, eff.AllowWrites, "environment is the fallback")
	assert.False(t, eff.AllowSends, "absent everywhere defaults to false")
}

func TestResolveOverrideFalseBlocksEnvTrue(t *testing.T) {
	overrides := map[string]string{keystore.EnvEnableWrites: "false"}
	env := envFrom(map[string]string{keystore.EnvEnableWrites: "true"})

	eff := Resolve(overrides, env)
	assert.False(t, eff.AllowWrites, "a present override always wins, even when false")
}

func TestResolveTrueLiteralCoercion(t *testing.T) {
	for _, v := range []string{"TRUE", "True", "1", "yes", "", " true"} {
		eff := Resolve(map[string]string{keystore.EnvUserPII: v}, envFrom(nil))
		assert.False(t, eff.AllowPII, "only the literal %q must not count as true", v)
	}

	eff := Resolve(map[string]string{keystore.EnvUserPII: "true"}, envFrom(nil))
	assert.True(t, eff.AllowPII)
}

func TestResolveFlagsAreIndependent(t *testing.T) {
	overrides := map[string]string{keystore.EnvEnableSends: "true"}
	env := envFrom(map[string]string{keystore.EnvUserPII: "true"})

	eff := Resolve(overrides, env)
	assert.True(t, eff.AllowPII)
	assert.False(t, eff.AllowWrites)
	assert.True(t, eff.AllowSends)
}

func TestNormalizeSendsRequiresWrites(t *testing.T) {
	eff := Normalize(Effective{AllowWrites: false, AllowSends: true}, nil)
	assert.False(t, eff.AllowSends, "sends without writes must be disabled")

	eff = Normalize(Effective{AllowWrites: true, AllowSends: true}, nil)
	assert.True(t, eff.AllowSends)

	eff = Normalize(Effective{AllowWrites: true, AllowSends: false}, nil)
	assert.False(t, eff.AllowSends)
}
