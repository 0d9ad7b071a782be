package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pagemill/pagemill/internal/generator"
)

const (
	buildSiteMessageType = "pagemill.site.build"
	diffSiteMessageType  = "pagemill.site.diff"
	cleanSiteMessageType = "pagemill.site.clean"
)

// ResultCallback receives build results produced by generator operations. The
// callback is optional and is invoked synchronously from the handler when a
// BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a site command execution that
// produced a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand executes a full or filtered site build. Paths narrow the
// build to the named source files (slash-separated, relative to the content
// root); Force rebuilds artifacts the manifest would otherwise skip.
type BuildSiteCommand struct {
	Paths          []string       `json:"paths,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures path filters are well-formed.
func (m BuildSiteCommand) Validate() error {
	return validatePaths(m.Paths, "pagemill.site.build.path_invalid")
}

// DiffSiteCommand performs a dry-run build to surface planned changes without
// writing artifacts.
type DiffSiteCommand struct {
	Paths          []string       `json:"paths,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

// Validate ensures path filters are well-formed.
func (m DiffSiteCommand) Validate() error {
	return validatePaths(m.Paths, "pagemill.site.diff.path_invalid")
}

// CleanSiteCommand removes the generated output tree.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

func validatePaths(paths []string, code string) error {
	errs := validation.Errors{}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			errs["paths"] = validation.NewError(code, "paths must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
