package nbt

import "slices"

// Tag is a single NBT value.
type Tag interface {
	ID() byte
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
)

func (Byte) ID() byte      { return TagByte }
func (Short) ID() byte     { return TagShort }
func (Int) ID() byte       { return TagInt }
func (Long) ID() byte      { return TagLong }
func (Float) ID() byte     { return TagFloat }
func (Double) ID() byte    { return TagDouble }
func (ByteArray) ID() byte { return TagByteArray }
func (String) ID() byte    { return TagString }
func (IntArray) ID() byte  { return TagIntArray }

// List is a homogeneous list. Elem keeps the element type even when the
// list is empty, so an empty list survives a round trip unchanged.
type List struct {
	Elem   byte
	Values []Tag
}

func (*List) ID() byte { return TagList }

// NewList returns an empty list of the given element type.
func NewList(elem byte) *List {
	return &List{Elem: elem}
}

// Add appends v. The list adopts v's type if it is still untyped.
func (l *List) Add(v Tag) {
	if l.Elem == TagEnd {
		l.Elem = v.ID()
	}
	l.Values = append(l.Values, v)
}

func (l *List) Len() int { return len(l.Values) }

// Compound is a named tag map that preserves insertion order.
type Compound struct {
	names []string
	tags  map[string]Tag
}

func (*Compound) ID() byte { return TagCompound }

func NewCompound() *Compound {
	return &Compound{tags: make(map[string]Tag)}
}

func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns the tag names in insertion order.
func (c *Compound) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.names)
}

func (c *Compound) Get(name string) Tag {
	if c == nil {
		return nil
	}
	return c.tags[name]
}

func (c *Compound) Has(name string) bool {
	return c.Get(name) != nil
}

// Put sets name to v. Replacing an existing tag keeps its position.
func (c *Compound) Put(name string, v Tag) {
	if c.tags == nil {
		c.tags = make(map[string]Tag)
	}
	if _, ok := c.tags[name]; !ok {
		c.names = append(c.names, name)
	}
	c.tags[name] = v
}

// Remove deletes name and returns the removed tag, or nil.
func (c *Compound) Remove(name string) Tag {
	if c == nil {
		return nil
	}
	v, ok := c.tags[name]
	if !ok {
		return nil
	}
	delete(c.tags, name)
	c.names = slices.DeleteFunc(c.names, func(n string) bool { return n == name })
	return v
}

// GetCompound returns the named compound or nil if absent or of another type.
func (c *Compound) GetCompound(name string) *Compound {
	v, _ := c.Get(name).(*Compound)
	return v
}

// GetList returns the named list or nil if absent or of another type.
func (c *Compound) GetList(name string) *List {
	v, _ := c.Get(name).(*List)
	return v
}

// GetString returns the named string tag and whether it was present.
func (c *Compound) GetString(name string) (string, bool) {
	v, ok := c.Get(name).(String)
	return string(v), ok
}

// GetNumber widens any numeric tag to int64.
func (c *Compound) GetNumber(name string) (int64, bool) {
	return Number(c.Get(name))
}

// Number widens a numeric tag to int64.
func Number(t Tag) (int64, bool) {
	switch v := t.(type) {
	case Byte:
		return int64(v), true
	case Short:
		return int64(v), true
	case Int:
		return int64(v), true
	case Long:
		return int64(v), true
	case Float:
		return int64(v), true
	case Double:
		return int64(v), true
	}
	return 0, false
}

// Clone returns a deep copy of t.
func Clone(t Tag) Tag {
	switch v := t.(type) {
	case *Compound:
		return v.Clone()
	case *List:
		out := &List{Elem: v.Elem, Values: make([]Tag, len(v.Values))}
		for i, e := range v.Values {
			out.Values[i] = Clone(e)
		}
		return out
	case ByteArray:
		return slices.Clone(v)
	case IntArray:
		return slices.Clone(v)
	default:
		return t
	}
}

func (c *Compound) Clone() *Compound {
	if c == nil {
		return nil
	}
	out := &Compound{names: slices.Clone(c.names), tags: make(map[string]Tag, len(c.tags))}
	for name, v := range c.tags {
		out.tags[name] = Clone(v)
	}
	return out
}

// Equal reports whether a and b hold the same tree. Compound order is ignored.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID() != b.ID() {
		return false
	}
	switch av := a.(type) {
	case *Compound:
		bv := b.(*Compound)
		if av.Len() != bv.Len() {
			return false
		}
		for _, name := range av.names {
			if !Equal(av.tags[name], bv.Get(name)) {
				return false
			}
		}
		return true
	case *List:
		bv := b.(*List)
		if len(av.Values) != len(bv.Values) {
			return false
		}
		if len(av.Values) > 0 && av.Elem != bv.Elem {
			return false
		}
		for i := range av.Values {
			if !Equal(av.Values[i], bv.Values[i]) {
				return false
			}
		}
		return true
	case ByteArray:
		return slices.Equal(av, b.(ByteArray))
	case IntArray:
		return slices.Equal(av, b.(IntArray))
	default:
		return a == b
	}
}
