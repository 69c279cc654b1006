// Package cmd implements the argot subcommands: parsing argument vectors
// against option descriptors, inspecting compiled options, converting
// result maps into argument lists, planning manifest dispatch, and an
// interactive parse loop.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file.
	ConfigIdentifier = "config"
)
