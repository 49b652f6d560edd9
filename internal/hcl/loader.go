package hcl

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/brannow/typo3-dev-springboard/internal/config"
	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL blueprint loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file below the given paths, in path order and
// lexical order within directories, and merges them into one blueprint.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Blueprint, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl blueprint files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext()
	blueprint := &config.Blueprint{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		translated, err := translate(&root, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
		blueprint.Merge(translated)
	}

	logger.Debug("HCL loading complete.",
		"files", len(files),
		"pages", len(blueprint.Pages),
		"contents", len(blueprint.Contents),
		"rows", len(blueprint.Rows),
		"templates", len(blueprint.Templates),
	)
	return blueprint, nil
}

// findAllHCLFiles expands paths into a de-duplicated list of .hcl files.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, f := range found {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	return all, nil
}
