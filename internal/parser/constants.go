package parser

const (
	// BuildTag is the build constraint that keeps skeleton inputs out of normal builds
	BuildTag = "bindgen"

	// ContextPackage is the import path of the context package
	ContextPackage = "context"
)
