package protoserde

// Kind is the declared type of a field.
type Kind int

const (
	KindInvalid Kind = iota
	KindMessage
	KindEnum
	KindBool
	KindString
	KindBytes
	KindInt32
	KindFixed32
	KindUint32
	KindInt64
	KindFixed64
	KindUint64
	KindFloat
	KindDouble
	KindOneof
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEnum:
		return "enumeration"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindInt32:
		return "int32"
	case KindFixed32:
		return "fixed32"
	case KindUint32:
		return "uint32"
	case KindInt64:
		return "int64"
	case KindFixed64:
		return "fixed64"
	case KindUint64:
		return "uint64"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindOneof:
		return "oneof"
	}
	return "invalid"
}

// Cardinality distinguishes singular, repeated and optional fields.
type Cardinality int

const (
	Singular Cardinality = iota
	Repeated
	Optional
)

func (c Cardinality) String() string {
	switch c {
	case Repeated:
		return "repeated"
	case Optional:
		return "optional"
	}
	return "singular"
}

// TypeKind discriminates declared types.
type TypeKind int

const (
	TypeMessage TypeKind = iota + 1
	TypeEnum
	TypeOneof
)

func (k TypeKind) String() string {
	switch k {
	case TypeMessage:
		return "message"
	case TypeEnum:
		return "enumeration"
	case TypeOneof:
		return "oneof"
	}
	return "unknown"
}

// PolicySet holds the per-message decode switches. The zero value is strict.
type PolicySet struct {
	// OmitTypeErrors replaces a value of the wrong JSON shape with the field's
	// zero value instead of failing.
	OmitTypeErrors bool
	// UseDefaultForMissingFields fills absent singular fields with their zero
	// value instead of failing with missing_field.
	UseDefaultForMissingFields bool
	// IgnoreUnknownFields skips keys that name no field or variant.
	IgnoreUnknownFields bool
}

// Option names accepted in declarations.
const (
	OptionOmitTypeErrors             = "omit_type_errors"
	OptionUseDefaultForMissingFields = "use_default_for_missing_fields"
	OptionIgnoreUnknownFields        = "ignore_unknown_fields"
)

// DefaultMaxDepth bounds container nesting during decode when DecodeOpt.MaxDepth is zero.
const DefaultMaxDepth = 100

// DecodeOpt bundles decode options.
type DecodeOpt struct {
	MaxDepth int   // 0 uses DefaultMaxDepth, negative disables the check
	MaxBytes int64 // 0 disables the check
	// Presence filters the map returned by UnmarshalWithMeta.
	Presence PresenceOpt
}

// EncodeOpt bundles encode options.
type EncodeOpt struct {
	// OmitNull drops keys whose value would be null (unset optional or message).
	OmitNull bool
}

func lastDecodeOpt(opts []DecodeOpt) DecodeOpt {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

func lastEncodeOpt(opts []EncodeOpt) EncodeOpt {
	var opt EncodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

func (o DecodeOpt) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	}
	return o.MaxDepth
}
