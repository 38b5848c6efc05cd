package protoserde

// Registry holds the schemas produced by Builder.Build. It is immutable and
// safe for concurrent use.
type Registry struct {
	messages map[string]*MessageSchema
	enums    map[string]EnumRegistry
	oneofs   map[string]OneofRegistry
	order    []string
}

func newRegistry() *Registry {
	return &Registry{
		messages: map[string]*MessageSchema{},
		enums:    map[string]EnumRegistry{},
		oneofs:   map[string]OneofRegistry{},
	}
}

// Message looks up a built message schema by name.
func (r *Registry) Message(name string) (*MessageSchema, bool) {
	s, ok := r.messages[name]
	return s, ok
}

// Enum looks up an enumeration, including ones added with RegisterEnum.
func (r *Registry) Enum(name string) (EnumRegistry, bool) {
	e, ok := r.enums[name]
	return e, ok
}

// Oneof looks up a oneof by name.
func (r *Registry) Oneof(name string) (OneofRegistry, bool) {
	o, ok := r.oneofs[name]
	return o, ok
}

// Messages returns the message schemas in declaration order.
func (r *Registry) Messages() []*MessageSchema {
	out := make([]*MessageSchema, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.messages[n])
	}
	return out
}

// MustMessage is like Message but panics when name is unknown.
func (r *Registry) MustMessage(name string) *MessageSchema {
	s, ok := r.messages[name]
	if !ok {
		panic("protoserde: unknown message " + name)
	}
	return s
}
