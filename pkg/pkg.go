//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the argot module embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command and module identifier. It appears in help text,
	// default config paths, and the environment variable prefix.
	Name = "argot"
	// Description is a short summary used in help output.
	Description = "Declarative command-line option engine"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
