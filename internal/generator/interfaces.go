package generator

import (
	"go/ast"

	"github.com/toyz/bindgen/internal/models"
)

// UnitGenerator produces the generated file of one parsed unit
type UnitGenerator interface {
	Generate(unit *models.UnitMetadata) (*models.GeneratedFile, error)
}

// HostPredicate reports whether a parameter type is injected by the host
// and therefore dropped from skeleton methods
type HostPredicate func(typ ast.Expr, hostPackages []string) bool
