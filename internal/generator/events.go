package generator

import (
	"github.com/iancoleman/strcase"

	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/templates"
)

// listenLocals are the identifiers generated event code binds inside functions
var listenLocals = []string{"ctx", "handler", "b", "e"}

// EventGenerator produces name resolution and bindings for an event union
type EventGenerator struct {
	unit *unitContext
}

// Generate renders the metadata of desc
func (g *EventGenerator) Generate(desc models.EventDescription) (string, error) {
	if len(desc.Variants) == 0 {
		return "", bgerrors.Newf(bgerrors.EventShapeErrorCode, "event union %s has no variants", desc.Name).
			WithLocation(g.unit.loc(desc.Pos))
	}

	bridgePkg, host, err := g.unit.bridge(desc.Config.Namespace, desc.Pos)
	if err != nil {
		return "", err
	}

	data := templates.EventData{
		Name:        desc.Name,
		NameFunc:    desc.Name + "Name",
		Binding:     desc.Name + "Binding",
		Marker:      "is" + strcase.ToCamel(desc.Name) + "Binding",
		BindingsVar: desc.Name + "Bindings",
		BindingOf:   desc.Name + "BindingOf",
		Bridge:      bridgePkg,
		Context:     g.unit.contextPkg(),
		CtxParam:    "ctx",
		Host:        host,
		ReturnMode:  desc.Config.OnDecodeError == models.DecodeReturn,
	}

	for _, name := range []string{data.NameFunc, data.Binding, data.BindingsVar, data.BindingOf} {
		if err := g.unit.declare(name, desc.Pos); err != nil {
			return "", err
		}
	}

	seen := make(map[string]bool, len(desc.Variants))
	for _, v := range desc.Variants {
		if seen[v.Name] {
			return "", bgerrors.Newf(bgerrors.DuplicateNameErrorCode, "variant %s appears twice in %s", v.Name, desc.Name).
				WithLocation(g.unit.loc(v.Pos))
		}
		seen[v.Name] = true

		variant := variantData(v)
		if err := g.unit.declare(variant.Binding, v.Pos); err != nil {
			return "", err
		}
		data.Variants = append(data.Variants, variant)
	}

	code, err := templates.GenerateEvents(data)
	if err != nil {
		return "", bgerrors.Wrapf(err, "render events %s", desc.Name)
	}
	return code, nil
}

func variantData(v models.Variant) templates.VariantData {
	data := templates.VariantData{
		Name:    v.Name,
		Binding: v.Name + "Binding",
		Payload: v.Name,
		Cases:   []string{v.Name, "*" + v.Name},
	}
	if v.Pointer {
		// Only *V carries the marker method.
		data.Payload = "*" + v.Name
		data.Cases = []string{"*" + v.Name}
	}
	return data
}
