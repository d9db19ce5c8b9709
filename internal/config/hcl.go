package config

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/fsutil"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// HCLLoader is the HCL implementation of the Loader interface.
type HCLLoader struct{}

func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// fileRoot is a struct used to decode all possible top-level content of a
// config file.
type fileRoot struct {
	Log    *logBlock      `hcl:"log,block"`
	Router *routerBlock   `hcl:"router,block"`
	Vars   hcl.Expression `hcl:"vars,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level"`
	Format *string `hcl:"format"`
}

type routerBlock struct {
	Transport          *string `hcl:"transport"`
	URL                *string `hcl:"url"`
	Namespace          *string `hcl:"namespace"`
	Timeout            *string `hcl:"timeout"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify"`
}

// Load parses every .hcl file found under paths and merges them into one
// Model. Missing paths are skipped.
func (l *HCLLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := Defaults()
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := merge(model, &root); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files), "vars", len(model.Vars))
	return model, nil
}

// merge applies the attributes set in root on top of model.
func merge(model *Model, root *fileRoot) error {
	if b := root.Log; b != nil {
		setString(&model.Log.Level, b.Level)
		setString(&model.Log.Format, b.Format)
	}

	if b := root.Router; b != nil {
		setString(&model.Router.Transport, b.Transport)
		setString(&model.Router.URL, b.URL)
		setString(&model.Router.Namespace, b.Namespace)
		if b.Timeout != nil {
			d, err := time.ParseDuration(*b.Timeout)
			if err != nil {
				return fmt.Errorf("invalid router timeout: %w", err)
			}
			model.Router.Timeout = d
		}
		if b.InsecureSkipVerify != nil {
			model.Router.InsecureSkipVerify = *b.InsecureSkipVerify
		}
	}

	if root.Vars == nil {
		return nil
	}
	raw, diags := root.Vars.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("invalid vars: %w", diags)
	}
	if raw.IsNull() {
		return nil
	}
	if !raw.Type().IsObjectType() && !raw.Type().IsMapType() {
		return fmt.Errorf("vars must be an object, got %s", raw.Type().FriendlyName())
	}
	vars, err := registry.FromCty(raw)
	if err != nil {
		return fmt.Errorf("invalid vars: %w", err)
	}
	for name, v := range vars.(value.Object) {
		model.Vars[name] = v
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found, in walk order. A file may be listed by several paths.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		files, err := fsutil.FindFiles(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		for _, f := range files {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
