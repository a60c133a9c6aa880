package cli

import (
	"fmt"

	"github.com/toyz/bindgen/internal/generator"
	"github.com/toyz/bindgen/internal/utils"
)

// RuntimeModule is the module generated code imports its runtime from
const RuntimeModule = "github.com/toyz/bindgen"

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// ModuleInfo describes the module enclosing a target directory
type ModuleInfo struct {
	Path           string // import path of the module
	GoModPath      string // location of go.mod
	RequiresBridge bool   // the module can import the bridge runtime
}

// Resolve finds the module enclosing dir
func (r *ModuleResolver) Resolve(dir string) (*ModuleInfo, error) {
	goModPath, err := r.gomod.FindGoModFile(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to determine module for %s: %w", dir, err)
	}

	name, err := r.gomod.ParseModuleName(goModPath)
	if err != nil {
		return nil, err
	}

	requires, err := r.gomod.Requires(goModPath, RuntimeModule)
	if err != nil {
		return nil, err
	}

	return &ModuleInfo{
		Path:           name,
		GoModPath:      goModPath,
		RequiresBridge: requires,
	}, nil
}

// CheckRuntime returns a warning when generated code will not resolve its
// runtime import, or "" when it will
func (r *ModuleResolver) CheckRuntime(dir string) string {
	info, err := r.Resolve(dir)
	if err != nil {
		return fmt.Sprintf("could not read go.mod: %v", err)
	}
	if !info.RequiresBridge {
		return fmt.Sprintf("%s does not require %s; generated code imports %s (run: go get %s)",
			info.Path, RuntimeModule, generator.BridgePackage, RuntimeModule)
	}
	return ""
}
