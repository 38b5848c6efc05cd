// Package protoserde translates between JSON text and dynamic protocol
// message values under a per-message policy.
//
// It provides:
//
// - A schema model (MessageSchema, FieldSchema, EnumRegistry, OneofRegistry) built
// from declarations with directive strings such as `int32, optional, tag="1"`
// - A field codec resolver that picks one strategy per field from its
// cardinality and type, once, at build time
// - Unmarshal/Marshal entry points that fail with a single *Issue (code, JSON
// Pointer, message)
// - Presence metadata and preserving encode through UnmarshalWithMeta and
// MarshalPreserving
// - Streaming token sources with duplicate-key, depth and size enforcement
//
// Declarations can also be loaded from YAML, TOML or JSONC files with the
// schemafile package.
//
// Typical usage:
//
//	reg, err := protoserde.NewBuilder().Add(decls...).Build()
//	person := reg.MustMessage("Person")
//	m, err := protoserde.Unmarshal(ctx, person, data)
//	out, err := protoserde.Marshal(ctx, m)
package protoserde
