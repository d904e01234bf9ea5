// Package pkg carries the build-time identity of the module: name, version,
// and authorship, shared by help output and cache path construction.
//
//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
)

// Version is the semantic version embedded from the VERSION file at build
// time. The version subcommand prints it verbatim.
//
//go:embed VERSION
var Version string

const (
	// Name identifies the command and module wherever one is needed, from
	// help text to default cache paths.
	Name = "reckon"

	// Description is the one-line summary shown in help output.
	Description = "Extensible expression evaluator"
)

// AuthorInfo is one author's display name and contact address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the project authors for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
