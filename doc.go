// Package formskema validates map-shaped models against declarative schemas
// and reports errors as a tree of human-readable messages.
//
// A Schema holds Fields keyed by model key. Each Field names a Type: a
// registered TypeDescriptor (String, Number, Boolean, Object, Array, Date or
// a custom one), a nested *Schema, a OneOf combinator, or the ArrayOf and
// Optional wrappers. Validation records type, required and custom-validator
// errors per key; nested schemas and array elements produce nested trees.
//
// Design policy:
// - Data errors live in the Tree; programming errors are returned as error.
// - Every write into a Tree goes through Merge, so writers never overwrite
//   each other, whether they run synchronously or from Async validators.
// - Sub-packages add catalogs (i18n), input decoding (source, codec),
//   reusable rules (rules, rules/redisrule) and metrics (metrics).
//
// Typical usage:
//
//	s := formskema.New(map[string]*formskema.Field{
//		"name": {Type: formskema.String, Required: true},
//		"tags": {Type: formskema.ArrayOf(formskema.String)},
//	})
//	tree, err := s.Validate(ctx, model)
//	if err != nil {
//		// malformed schema or failed Async validator
//	}
//	if len(tree) > 0 {
//		return s.Err(tree)
//	}
package formskema
