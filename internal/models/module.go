package models

import "github.com/Masterminds/semver/v3"

// Kind distinguishes the repository root module from nested modules
type Kind string

const (
	KindRoot      Kind = "root"
	KindSubmodule Kind = "submodule"
)

// Module is one independently versioned unit of the repository
type Module struct {
	ID      string
	Name    string
	Path    string
	Kind    Kind
	Version *semver.Version
	// VersionFile is where Version is stored, relative to the repository root.
	VersionFile string
	// Affects lists the modules to reconsider when this module's bump changes.
	Affects []string
}

// CommitRecord is a conventional commit attributed to a module
type CommitRecord struct {
	Hash     string `json:"hash"`
	Type     string `json:"type"`
	Scope    string `json:"scope,omitempty"`
	Subject  string `json:"subject"`
	Breaking bool   `json:"breaking,omitempty"`
	Module   string `json:"module,omitempty"`
}
