package reconstruct

import (
	"tablemend/internal/config"
	"tablemend/internal/layout"
)

// PolicyFromOptions builds a Policy from a job config's free-form policy bag.
// Missing keys fall back to the engine defaults.
//
// Recognized keys:
//
//	header_threshold (int), min_entity_len (int), enum_window (int),
//	context_window (int), casing (string), qualifiers ([]string),
//	name_overrides (object of string), require_entity_name (bool),
//	keep_zero_numeric_rows (bool)
func PolicyFromOptions(l layout.Layout, o config.Options) Policy {
	p := DefaultPolicy(l)
	p.HeaderThreshold = o.Int("header_threshold", p.HeaderThreshold)
	p.MinEntityLen = o.Int("min_entity_len", p.MinEntityLen)
	p.EnumWindow = o.Int("enum_window", p.EnumWindow)
	p.ContextWindow = o.Int("context_window", p.ContextWindow)
	p.Casing = o.String("casing", p.Casing)
	if q := o.StringSlice("qualifiers"); q != nil {
		p.Qualifiers = q
	}
	if ov := o.StringMap("name_overrides"); len(ov) > 0 {
		p.NameOverrides = ov
	}
	p.RequireEntityName = o.Bool("require_entity_name", p.RequireEntityName)
	p.KeepZeroNumericRows = o.Bool("keep_zero_numeric_rows", p.KeepZeroNumericRows)
	return p
}
