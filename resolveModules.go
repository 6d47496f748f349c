package main

import (
	"context"
	"strings"
)

type ResolutionStatus uint8

const (
	Resolved ResolutionStatus = iota
	NotFound
	NotEligible
	BinaryPackage
)

func (s ResolutionStatus) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not found"
	case NotEligible:
		return "not eligible"
	case BinaryPackage:
		return "binary package"
	}
	return "unknown"
}

var DefaultExtensions = []string{".py"}

type ResolvedModule struct {
	Target    ImportTarget
	Status    ResolutionStatus
	Path      string // absolute path of the module file, set when Resolved
	IsPackage bool
	// Requested is set for relative targets and for targets matched by an
	// explicit allow list, the ones a missing file is worth reporting for.
	Requested bool
}

func (r ResolvedModule) Kind() string {
	if r.IsPackage {
		return "package"
	}
	return "module"
}

type ModuleResolver struct {
	fs         FileSystem
	searchPath *SearchPath
	matcher    *ModuleMatcher
	extensions []string
}

func NewModuleResolver(fs FileSystem, searchPath *SearchPath, matcher *ModuleMatcher, extensions []string) *ModuleResolver {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &ModuleResolver{fs: fs, searchPath: searchPath, matcher: matcher, extensions: extensions}
}

// Resolve maps an import target to a file. Absolute targets are looked up in
// the search path roots in order, then in the interpreter roots when the
// allow list names them; relative ones only against importerPath's directory,
// one level up per extra leading dot.
func (r *ModuleResolver) Resolve(ctx context.Context, target ImportTarget, importerPath string) ResolvedModule {
	result := ResolvedModule{Target: target, Status: NotFound}

	if target.IsRelative() {
		result.Requested = true
		base := r.fs.Dir(importerPath)
		for level := 1; level < target.Level; level++ {
			base = r.fs.Dir(base)
		}
		r.resolveInRoot(ctx, base, target.Module, &result)
		return result
	}

	if !r.matcher.IsAllowed(target.Module) {
		result.Status = NotEligible
		return result
	}
	result.Requested = r.matcher.IsExplicitlyAllowed(target.Module)

	for _, root := range r.searchPath.Roots {
		if r.resolveInRoot(ctx, root, target.Module, &result) {
			return result
		}
	}
	if !result.Requested {
		return result
	}
	for _, root := range r.searchPath.InterpreterRoots {
		if r.resolveInRoot(ctx, root, target.Module, &result) {
			return result
		}
	}
	return result
}

// resolveInRoot tries the package form `<root>/<path>/__init__<ext>` and then
// the flat form `<root>/<path><ext>`. It returns true once the target is
// settled, either as a file or as a compiled module.
func (r *ModuleResolver) resolveInRoot(ctx context.Context, root string, module string, result *ResolvedModule) bool {
	parts := []string{}
	if module != "" {
		parts = strings.Split(module, ".")
	}
	dir := r.fs.Join(append([]string{root}, parts...)...)

	if r.searchPath.IsBinaryPackage(ctx, dir) {
		result.Status = BinaryPackage
		return true
	}
	for _, ext := range r.extensions {
		candidate := r.fs.Join(dir, "__init__"+ext)
		if r.fs.Exists(ctx, candidate) {
			result.Status = Resolved
			result.Path = candidate
			result.IsPackage = true
			return true
		}
	}
	if len(parts) == 0 {
		return false
	}
	for _, ext := range r.extensions {
		candidate := dir + ext
		if r.fs.Exists(ctx, candidate) && !r.fs.IsDir(ctx, candidate) {
			result.Status = Resolved
			result.Path = candidate
			return true
		}
	}
	parent := r.fs.Join(append([]string{root}, parts[:len(parts)-1]...)...)
	if r.searchPath.HasBinarySibling(ctx, parent, parts[len(parts)-1]) {
		result.Status = BinaryPackage
		return true
	}
	return false
}
