package parser

import "github.com/toyz/bindgen/internal/models"

// UnitParser turns one Go source file into the triggers it carries
type UnitParser interface {
	ParseFile(path string) (*models.UnitMetadata, error)
	ParseSource(filename string, src []byte) (*models.UnitMetadata, error)
}
