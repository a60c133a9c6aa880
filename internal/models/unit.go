package models

import (
	"go/ast"
	"go/token"
)

// UnitMetadata is everything found in one source file
type UnitMetadata struct {
	FilePath    string
	PackageName string
	Fset        *token.FileSet
	File        *ast.File
	Source      []byte
	// Excluded is set when a //go:build line keeps the file out of builds without the bindgen tag
	Excluded   bool
	Interfaces []InterfaceDescription
	Events     []EventDescription
	Skeletons  []SkeletonRequest
}

// IsEmpty reports whether the unit carries no triggers
func (u *UnitMetadata) IsEmpty() bool {
	return len(u.Interfaces) == 0 && len(u.Events) == 0 && len(u.Skeletons) == 0
}
