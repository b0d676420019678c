// Package config handles configuration loading for iterable-mcp.
//
// Configuration comes from an optional YAML file overlaid by environment
// variables; the environment always wins. Values in the file can reference
// environment variables with ${VAR_NAME} syntax.
//
// Recognized environment variables:
//
//	ITERABLE_CONFIG_DIR   key store directory
//	ITERABLE_BASE_URL     session endpoint override
//	ITERABLE_KEY_NAME     serve with a named key instead of the active one
//	ITERABLE_API_KEY      legacy single-key config, read only by migrate
//
// The permission flags (ITERABLE_USER_PII, ITERABLE_ENABLE_WRITES,
// ITERABLE_ENABLE_SENDS) are documented in the permissions package.
package config
