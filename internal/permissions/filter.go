// ABOUTME: Deny-by-default tool filter over three curated name sets
// ABOUTME: The sets are maintained by hand, never inferred from schemas

package permissions

import (
	"github.com/iterable-tools/iterable-mcp/internal/tools"
)

// nonPiiTools are tools known not to touch personal data. A tool missing
// from this set is assumed to handle PII.
var nonPiiTools = map[string]bool{
	"list_campaigns":        true,
	"get_campaign_metrics":  true,
	"create_campaign":       true,
	"trigger_campaign":      true,
	"abort_campaign":        true,
	"get_lists":             true,
	"create_list":           true,
	"delete_list":           true,
	"get_templates":         true,
	"get_email_template":    true,
	"update_email_template": true,
	"get_user_fields":       true,
	"get_channels":          true,
	"get_message_types":     true,
}

// readOnlyTools are tools that never mutate upstream state. A tool missing
// from this set is assumed to write.
var readOnlyTools = map[string]bool{
	"list_campaigns":       true,
	"get_campaign_metrics": true,
	"get_lists":            true,
	"get_list_users":       true,
	"get_templates":        true,
	"get_email_template":   true,
	"get_user_by_email":    true,
	"get_user_by_user_id":  true,
	"get_user_fields":      true,
	"get_user_events":      true,
	"get_channels":         true,
	"get_message_types":    true,
}

// sendTools are the tools that cause messages to be delivered. This is the
// one explicit blocklist: send-capable actions are the highest-consequence
// category and must be named, never inferred.
var sendTools = map[string]bool{
	"send_email":       true,
	"send_push":        true,
	"send_sms":         true,
	"send_in_app":      true,
	"trigger_campaign": true,
}

// Allowed reports whether a tool name passes all three permission rules.
func Allowed(name string, eff Effective) bool {
	if !eff.AllowPII && !nonPiiTools[name] {
		return false
	}
	if !eff.AllowWrites && !readOnlyTools[name] {
		return false
	}
	if !eff.AllowSends && sendTools[name] {
		return false
	}
	return true
}

// FilterTools returns the subset of descriptors allowed under the effective
// permissions, preserving order. Callers must Normalize first.
func FilterTools(all []tools.Descriptor, eff Effective) []tools.Descriptor {
	out := make([]tools.Descriptor, 0, len(all))
	for _, d := range all {
		if Allowed(d.Name(), eff) {
			out = append(out, d)
		}
	}
	return out
}
