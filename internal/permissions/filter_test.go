// ABOUTME: Tests for the deny-by-default tool filter
// ABOUTME: Covers unclassified tools, send gating, and the full permission matrix

package permissions

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
	"github.com/iterable-tools/iterable-mcp/internal/tools"
)

func descriptorNamed(name string) tools.Descriptor {
	return tools.Descriptor{Tool: mcp.NewTool(name)}
}

func namesOf(ds []tools.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name()
	}
	return out
}

func TestFilterDenyByDefault(t *testing.T) {
	// A tool in none of the curated sets is blocked unless both PII and
	// writes are granted; the send set is irrelevant for it.
	unknown := descriptorNamed("brand_new_tool")

	tests := []struct {
		name string
		eff  Effective
		want bool
	}{
		{"no permissions", Effective{}, false},
		{"pii only", Effective{AllowPII: true}, false},
		{"writes only", Effective{AllowWrites: true}, false},
		{"pii and writes", Effective{AllowPII: true, AllowWrites: true}, true},
		{"all", Effective{AllowPII: true, AllowWrites: true, AllowSends: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTools([]tools.Descriptor{unknown}, tt.eff)
			if tt.want {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilterSendGating(t *testing.T) {
	// Send tools require all three flags: sends alone is not enough, and
	// writes alone is not enough.
	send := descriptorNamed("send_email")

	assert.Empty(t, FilterTools([]tools.Descriptor{send},
		Effective{AllowPII: true, AllowWrites: true, AllowSends: false}),
		"send tool must be excluded when sends are off, even with writes")

	assert.Empty(t, FilterTools([]tools.Descriptor{send},
		Effective{AllowPII: true, AllowWrites: false, AllowSends: true}),
		"send tool must be excluded when writes are off, even with sends")

	assert.Len(t, FilterTools([]tools.Descriptor{send},
		Effective{AllowPII: true, AllowWrites: true, AllowSends: true}), 1)
}

func TestFilterTriggerCampaignIsSendGated(t *testing.T) {
	// trigger_campaign is non-PII but send-capable
	trigger := descriptorNamed("trigger_campaign")

	assert.Empty(t, FilterTools([]tools.Descriptor{trigger},
		Effective{AllowWrites: true}))

	got := FilterTools([]tools.Descriptor{trigger},
		Effective{AllowWrites: true, AllowSends: true})
	assert.Len(t, got, 1, "non-PII send tool must not need the PII flag")
}

func TestFilterReadOnlyDefaults(t *testing.T) {
	// With no permissions at all, only non-PII read-only tools survive
	all := []tools.Descriptor{
		descriptorNamed("list_campaigns"),
		descriptorNamed("get_user_by_email"),
		descriptorNamed("update_user"),
		descriptorNamed("send_email"),
		descriptorNamed("create_list"),
	}

	got := namesOf(FilterTools(all, Effective{}))
	assert.Equal(t, []string{"list_campaigns"}, got)
}

func TestFilterPiiReadsNeedPiiFlag(t *testing.T) {
	lookup := descriptorNamed("get_user_by_email")

	assert.Empty(t, FilterTools([]tools.Descriptor{lookup}, Effective{}))
	assert.Len(t, FilterTools([]tools.Descriptor{lookup}, Effective{AllowPII: true}), 1,
		"a read-only PII tool needs only the PII flag")
}

func TestFilterPreservesOrder(t *testing.T) {
	all := []tools.Descriptor{
		descriptorNamed("get_lists"),
		descriptorNamed("list_campaigns"),
		descriptorNamed("get_channels"),
	}
	got := namesOf(FilterTools(all, Effective{}))
	assert.Equal(t, []string{"get_lists", "list_campaigns", "get_channels"}, got)
}

// TestCuratedSetsMatchRegistry pins the curated sets to the real registry:
// every name in a set must exist, and every registered tool must be
// deliberately classified (or deliberately absent from all sets).
func TestCuratedSetsMatchRegistry(t *testing.T) {
	client := iterable.New(iterable.BaseURLUS, "a1b2c3d4e5f6789012345678901234ab")
	all := tools.All(client)

	registered := map[string]bool{}
	for _, d := range all {
		require.False(t, registered[d.Name()], "duplicate tool name %q", d.Name())
		registered[d.Name()] = true
	}

	for _, set := range []map[string]bool{nonPiiTools, readOnlyTools, sendTools} {
		for name := range set {
			assert.True(t, registered[name], "curated set references unknown tool %q", name)
		}
	}

	// Full access must expose the entire registry
	eff := Effective{AllowPII: true, AllowWrites: true, AllowSends: true}
	assert.Len(t, FilterTools(all, eff), len(all))

	// Send tools must never be reachable without the sends flag
	noSends := Effective{AllowPII: true, AllowWrites: true}
	for _, d := range FilterTools(all, noSends) {
		assert.False(t, sendTools[d.Name()], "send tool %q leaked past the filter", d.Name())
	}

	// Write tools must never be reachable without the writes flag
	readOnly := Effective{AllowPII: true}
	for _, d := range FilterTools(all, readOnly) {
		assert.True(t, readOnlyTools[d.Name()], "write tool %q leaked past the filter", d.Name())
	}
}
