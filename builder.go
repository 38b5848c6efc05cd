package protoserde

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Builder turns type declarations into a Registry of compiled schemas.
// A Builder is not safe for concurrent use.
type Builder struct {
	log      zerolog.Logger
	decls    []TypeDecl
	external []EnumRegistry
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for compilation diagnostics.
func WithLogger(l zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

// NewBuilder returns an empty Builder. Without WithLogger it logs nothing.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add queues declarations. Order matters only for error reporting and
// Registry.Messages.
func (b *Builder) Add(decls ...TypeDecl) *Builder {
	b.decls = append(b.decls, decls...)
	return b
}

// RegisterEnum makes externally defined enumerations available to
// `enumeration="Name"` directives.
func (b *Builder) RegisterEnum(enums ...EnumRegistry) *Builder {
	b.external = append(b.external, enums...)
	return b
}

// build carries the state of one Build call.
type build struct {
	*Builder
	errs   DeclErrors
	reg    *Registry
	shells map[string]*MessageSchema
	broken map[string]bool // declared names that failed; references to them stay silent
}

func (b *build) fail(pos Pos, typ, field, format string, args ...any) {
	b.errs = append(b.errs, DeclError{Pos: pos, Type: typ, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Build validates every declaration and compiles the schemas. All problems are
// collected; when any exist Build returns (nil, DeclErrors).
func (b *Builder) Build() (*Registry, error) {
	st := &build{
		Builder: b,
		reg:     newRegistry(),
		shells:  map[string]*MessageSchema{},
		broken:  map[string]bool{},
	}
	kinds := st.classify()
	st.registerExternal()

	for i, td := range b.decls {
		if kinds[i] == TypeEnum {
			st.buildEnum(td)
		}
	}
	// Shells first so that messages may reference each other, themselves
	// included, and oneof variants may carry messages.
	for i, td := range b.decls {
		if kinds[i] == TypeMessage {
			st.shells[td.Name] = &MessageSchema{name: td.Name, policy: st.policy(td)}
		}
	}
	for i, td := range b.decls {
		if kinds[i] == TypeOneof {
			st.buildOneof(td)
		}
	}
	for i, td := range b.decls {
		if kinds[i] == TypeMessage {
			st.buildMessage(td)
		}
	}
	if len(st.errs) > 0 {
		b.log.Debug().Int("errors", len(st.errs)).Msg("schema build failed")
		return nil, st.errs
	}
	b.log.Debug().Int("messages", len(st.reg.order)).Int("enums", len(st.reg.enums)).
		Int("oneofs", len(st.reg.oneofs)).Msg("built schema registry")
	return st.reg, nil
}

// classify checks names and kinds. Entries that fail are left as zero.
func (b *build) classify() []TypeKind {
	kinds := make([]TypeKind, len(b.decls))
	names := map[string]bool{}
	for i, td := range b.decls {
		if td.Name == "" {
			b.fail(td.Pos, "", "", "type without a name")
			continue
		}
		if names[td.Name] {
			b.fail(td.Pos, td.Name, "", "duplicate type name")
			continue
		}
		names[td.Name] = true
		switch len(td.Kinds) {
		case 0:
			b.fail(td.Pos, td.Name, "", "missing kind: one of message, enumeration, oneof")
			b.broken[td.Name] = true
			continue
		case 1:
		default:
			b.fail(td.Pos, td.Name, "", "more than one kind: %s", strings.Join(td.Kinds, ", "))
			b.broken[td.Name] = true
			continue
		}
		k, ok := parseTypeKind(strings.TrimSpace(td.Kinds[0]))
		if !ok {
			b.fail(td.Pos, td.Name, "", "unrecognized kind %q", td.Kinds[0])
			b.broken[td.Name] = true
			continue
		}
		if k != TypeMessage && len(td.Options) > 0 {
			b.fail(td.Pos, td.Name, "", "options are only valid on messages")
		}
		if k != TypeMessage && len(td.Fields) > 0 {
			b.fail(td.Pos, td.Name, "", "fields are only valid on messages")
		}
		if k != TypeEnum && len(td.Values) > 0 {
			b.fail(td.Pos, td.Name, "", "values are only valid on enumerations")
		}
		if k != TypeOneof && len(td.Variants) > 0 {
			b.fail(td.Pos, td.Name, "", "variants are only valid on oneofs")
		}
		kinds[i] = k
	}
	return kinds
}

func (b *build) registerExternal() {
	declared := map[string]bool{}
	for _, td := range b.decls {
		declared[td.Name] = true
	}
	for _, e := range b.external {
		if e == nil {
			continue
		}
		switch {
		case declared[e.Name()]:
			b.fail(Pos{}, e.Name(), "", "registered enumeration clashes with a declared type")
		case b.reg.enums[e.Name()] != nil:
			b.fail(Pos{}, e.Name(), "", "enumeration registered twice")
		default:
			b.reg.enums[e.Name()] = e
		}
	}
}

func (b *build) buildEnum(td TypeDecl) {
	values := make([]EnumValue, len(td.Values))
	for i, v := range td.Values {
		values[i] = EnumValue{Name: v.Name, Number: v.Value}
	}
	if probs := enumProblems(values); len(probs) > 0 {
		for _, p := range probs {
			pos, field := td.Pos, ""
			if p.index >= 0 {
				pos, field = td.Values[p.index].Pos, td.Values[p.index].Name
			}
			b.fail(pos, td.Name, field, "%s", p.msg)
		}
		b.broken[td.Name] = true
		return
	}
	e, err := NewEnum(td.Name, values...)
	if err != nil {
		b.fail(td.Pos, td.Name, "", "%v", err)
		b.broken[td.Name] = true
		return
	}
	b.reg.enums[td.Name] = e
}

func (b *build) policy(td TypeDecl) PolicySet {
	var p PolicySet
	seen := map[string]bool{}
	for _, raw := range td.Options {
		opt := strings.TrimSpace(raw)
		if seen[opt] {
			b.fail(td.Pos, td.Name, "", "duplicate option %q", opt)
			continue
		}
		seen[opt] = true
		switch opt {
		case OptionOmitTypeErrors:
			p.OmitTypeErrors = true
		case OptionUseDefaultForMissingFields:
			p.UseDefaultForMissingFields = true
		case OptionIgnoreUnknownFields:
			p.IgnoreUnknownFields = true
		default:
			b.fail(td.Pos, td.Name, "", "unknown option %q", opt)
		}
	}
	return p
}

func (b *build) buildOneof(td TypeDecl) {
	variants := make([]OneofVariant, 0, len(td.Variants))
	ok := true
	for _, vd := range td.Variants {
		d, good := b.directive(td, vd)
		if !good {
			ok = false
			continue
		}
		switch {
		case d.Kind == KindOneof:
			b.fail(vd.Pos, td.Name, vd.Name, "a oneof cannot nest another oneof")
			ok = false
			continue
		case d.Cardinality != Singular:
			b.fail(vd.Pos, td.Name, vd.Name, "oneof variants take no cardinality modifier")
			ok = false
			continue
		}
		ft, good := b.resolve(td, vd, d)
		if !good {
			ok = false
			continue
		}
		variants = append(variants, OneofVariant{Ident: vd.Name, WireName: WireName(vd.Name), Type: ft, Tag: d.Tag})
	}
	if !ok {
		b.broken[td.Name] = true
		return
	}
	o, err := NewOneof(td.Name, variants...)
	if err != nil {
		b.fail(td.Pos, td.Name, "", "%v", err)
		b.broken[td.Name] = true
		return
	}
	b.reg.oneofs[td.Name] = o
}

func (b *build) buildMessage(td TypeDecl) {
	shell := b.shells[td.Name]
	fields := make([]FieldSchema, 0, len(td.Fields))
	pos := make([]Pos, 0, len(td.Fields))
	ok := true
	for _, fd := range td.Fields {
		d, good := b.directive(td, fd)
		if !good {
			ok = false
			continue
		}
		ft, good := b.resolve(td, fd, d)
		if !good {
			ok = false
			continue
		}
		fields = append(fields, FieldSchema{Name: fd.Name, Type: ft, Cardinality: d.Cardinality, Tag: d.Tag, Tags: d.Tags})
		pos = append(pos, fd.Pos)
	}
	if !ok {
		return
	}
	if errs := shell.compile(fields, pos, b.log); len(errs) > 0 {
		b.errs = append(b.errs, errs...)
		return
	}
	b.reg.messages[td.Name] = shell
	b.reg.order = append(b.reg.order, td.Name)
}

// directive parses the single directive of a field or variant.
func (b *build) directive(td TypeDecl, fd FieldDecl) (Directive, bool) {
	switch len(fd.Directives) {
	case 0:
		b.fail(fd.Pos, td.Name, fd.Name, "missing directive")
		return Directive{}, false
	case 1:
	default:
		b.fail(fd.Pos, td.Name, fd.Name, "more than one directive")
		return Directive{}, false
	}
	if strings.TrimSpace(fd.Directives[0]) == "" {
		b.fail(fd.Pos, td.Name, fd.Name, "empty directive")
		return Directive{}, false
	}
	d, err := ParseDirective(fd.Directives[0])
	if err != nil {
		b.fail(fd.Pos, td.Name, fd.Name, "%v", err)
		return Directive{}, false
	}
	return d, true
}

// resolve binds the type reference of d.
func (b *build) resolve(td TypeDecl, fd FieldDecl, d Directive) (FieldType, bool) {
	ft := FieldType{Kind: d.Kind}
	missing := func(what string) (FieldType, bool) {
		if !b.broken[d.Ref] {
			b.fail(fd.Pos, td.Name, fd.Name, "unknown %s %q", what, d.Ref)
		}
		return ft, false
	}
	switch d.Kind {
	case KindMessage:
		if d.Ref == "" {
			b.fail(fd.Pos, td.Name, fd.Name, `message fields need message="Name"`)
			return ft, false
		}
		if ft.Message = b.shells[d.Ref]; ft.Message == nil {
			return missing("message")
		}
	case KindEnum:
		if ft.Enum = b.reg.enums[d.Ref]; ft.Enum == nil {
			return missing("enumeration")
		}
	case KindOneof:
		if ft.Oneof = b.reg.oneofs[d.Ref]; ft.Oneof == nil {
			return missing("oneof")
		}
	}
	return ft, true
}
