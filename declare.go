package protoserde

import "strconv"

// Pos locates a declaration in its source file. The zero value means unknown.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	var s string
	switch {
	case p.Line > 0 && p.Col > 0:
		s = strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
	case p.Line > 0:
		s = strconv.Itoa(p.Line)
	}
	if p.File == "" {
		return s
	}
	if s == "" {
		return p.File
	}
	return p.File + ":" + s
}

// TypeDecl declares a message, enumeration or oneof.
//
// Kinds must hold exactly one of "message", "enumeration" or "oneof". Options
// apply to messages only. Fields belong to messages, Values to enumerations and
// Variants to oneofs.
type TypeDecl struct {
	Name     string
	Kinds    []string
	Options  []string
	Fields   []FieldDecl
	Values   []EnumValueDecl
	Variants []FieldDecl
	Pos      Pos
}

// FieldDecl declares a message field or a oneof variant. Directives must hold
// exactly one directive string such as `int32, optional, tag="1"`.
type FieldDecl struct {
	Name       string
	Directives []string
	Pos        Pos
}

// EnumValueDecl declares one named discriminant of an enumeration.
type EnumValueDecl struct {
	Name  string
	Value int32
	Pos   Pos
}

// MessageDecl is a convenience constructor for a message TypeDecl.
func MessageDecl(name string, options []string, fields ...FieldDecl) TypeDecl {
	return TypeDecl{Name: name, Kinds: []string{"message"}, Options: options, Fields: fields}
}

// EnumDecl is a convenience constructor for an enumeration TypeDecl.
func EnumDecl(name string, values ...EnumValueDecl) TypeDecl {
	return TypeDecl{Name: name, Kinds: []string{"enumeration"}, Values: values}
}

// OneofDecl is a convenience constructor for a oneof TypeDecl.
func OneofDecl(name string, variants ...FieldDecl) TypeDecl {
	return TypeDecl{Name: name, Kinds: []string{"oneof"}, Variants: variants}
}

// Field is a convenience constructor for a FieldDecl with one directive.
func Field(name, directive string) FieldDecl {
	return FieldDecl{Name: name, Directives: []string{directive}}
}

// Value is a convenience constructor for an EnumValueDecl.
func Value(name string, v int32) EnumValueDecl {
	return EnumValueDecl{Name: name, Value: v}
}

func parseTypeKind(s string) (TypeKind, bool) {
	switch s {
	case "message":
		return TypeMessage, true
	case "enumeration":
		return TypeEnum, true
	case "oneof":
		return TypeOneof, true
	}
	return 0, false
}
