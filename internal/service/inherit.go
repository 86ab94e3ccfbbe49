package service

import (
	"fmt"

	"kraisys/internal/dto"
	"kraisys/internal/model"
)

// InheritCuttingParts seeds a new variant's cutting-part table from the base
// specification's list. Name, quantity, consumption and notes carry over
// verbatim; the name becomes locked (inherited identity) while quantity,
// consumption and notes stay editable. Each row gets an unset material slot
// to be resolved against the LEATHER/LINING subset of the materials catalog.
//
// Inheritance happens once, at variant creation. It is never re-applied to a
// variant that already owns its own cutting parts.
func InheritCuttingParts(base []model.CuttingPartEntry) []dto.VariantCuttingPart {
	out := make([]dto.VariantCuttingPart, len(base))
	for i, p := range base {
		out[i] = dto.VariantCuttingPart{
			Name:        p.Name,
			Quantity:    p.Quantity,
			Consumption: p.Consumption,
			Notes:       p.Notes,
			Locked:      true,
		}
	}
	return out
}

// AppendTemplatePart adds a part from the cutting-part template catalog
// beyond the inherited base list. Appended rows are fully editable (not
// locked). The part name is identity within a specification, so a duplicate
// name is rejected before insertion.
func AppendTemplatePart(parts []dto.VariantCuttingPart, tpl model.CatalogRecord) ([]dto.VariantCuttingPart, error) {
	for _, p := range parts {
		if p.Name == tpl.Name {
			return parts, &ValidationError{Fields: map[string]string{
				"cutting_parts": fmt.Sprintf("part %q is already present", tpl.Name),
			}}
		}
	}
	qty := 1
	if tpl.DefaultQty != nil && *tpl.DefaultQty > 0 {
		qty = *tpl.DefaultQty
	}
	return append(parts, dto.VariantCuttingPart{
		Name:     tpl.Name,
		Quantity: qty,
		Notes:    "",
		Locked:   false,
	}), nil
}
