// Package permissions computes a session's effective permission flags and
// filters the tool registry down to the safe-listed subset.
//
// # Model
//
// Three independent booleans gate everything: PII access, write operations,
// and send operations. Each flag resolves per-key-override first, then
// process environment, and defaults to false. Sends are conceptually a
// subset of writes, so a sends-without-writes configuration is normalized
// to sends=false before it can reach the filter.
//
// # Filter
//
// The filter is deny-by-default: a tool survives only if it is known
// non-PII (or PII is allowed), known read-only (or writes are allowed), and
// not a named send tool (or sends are allowed). A tool absent from every
// curated set is blocked unless both PII and writes are granted — new,
// unclassified tools are safe by construction.
package permissions
