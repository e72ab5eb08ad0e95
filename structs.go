package cinterp

// structLayout is a registered struct type: an ordered field list,
// each field either a typed scalar field or a nested struct field.
type structLayout struct {
	name   string
	fields []*StructField
}

// StructRegistry records every `struct Name { ... };` declaration seen
// so far and can stamp out zero-initialized instances of them,
// grounded on the original's Structs class (interpreter/interpreter/memory.py).
type StructRegistry struct {
	layouts map[string]*structLayout
}

// NewStructRegistry creates an empty registry.
func NewStructRegistry() *StructRegistry {
	return &StructRegistry{layouts: map[string]*structLayout{}}
}

// Create registers a struct type's layout from its declaration.
func (r *StructRegistry) Create(decl *StructTypeDecl) {
	r.layouts[decl.Name] = &structLayout{name: decl.Name, fields: decl.Fields}
}

// Lookup reports whether structType names a registered layout.
func (r *StructRegistry) Lookup(structType string) bool {
	_, ok := r.layouts[structType]
	return ok
}

// Declare builds a zero-initialized *StructInstance for structType and
// binds it into mem under name, recursing into nested struct fields
// the way the original's Structs.declare walks struct_found.items().
func (r *StructRegistry) Declare(pos Position, structType, name string, mem *Memory) error {
	inst, err := r.instantiate(pos, structType)
	if err != nil {
		return err
	}
	mem.Declare(name, inst)
	return nil
}

func (r *StructRegistry) instantiate(pos Position, structType string) (*StructInstance, error) {
	layout, ok := r.layouts[structType]
	if !ok {
		return nil, &SemanticError{Pos: pos, Message: "unknown struct type '" + structType + "'"}
	}
	inst := newStructInstance()
	for _, field := range layout.fields {
		if field.Struct != nil {
			nested, err := r.instantiate(pos, field.Struct.StructType)
			if err != nil {
				return nil, err
			}
			inst.Fields[field.Name] = nested
		} else {
			inst.Fields[field.Name] = NewNumber(0)
		}
	}
	return inst, nil
}
