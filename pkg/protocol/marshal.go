package protocol

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
)

// Packet structs describe their layout with mc struct tags naming a Type.
// Untagged fields and fields tagged "-" are not on the wire.
const tagName = "mc"

type fieldPlan struct {
	index int
	name  string
	typ   Type
}

// plans caches the wire layout of each packet struct type.
var plans sync.Map

func planOf(t reflect.Type) []fieldPlan {
	if cached, ok := plans.Load(t); ok {
		return cached.([]fieldPlan)
	}
	var plan []fieldPlan
	for i := range t.NumField() {
		f := t.Field(i)
		if tag := f.Tag.Get(tagName); tag != "" && tag != "-" {
			plan = append(plan, fieldPlan{index: i, name: f.Name, typ: Type(tag)})
		}
	}
	cached, _ := plans.LoadOrStore(t, plan)
	return cached.([]fieldPlan)
}

// Marshal encodes the tagged fields of a packet struct in declaration order.
func Marshal(p Packet) ([]byte, error) {
	v := reflect.Indirect(reflect.ValueOf(p))
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("marshal: expected struct, got %s", v.Kind())
	}

	var buf bytes.Buffer
	for _, f := range planOf(v.Type()) {
		if err := WriteField(&buf, f.typ, v.Field(f.index).Interface()); err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", f.name, err)
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into the tagged fields of the struct p points to.
// Bytes left after the last field are ignored.
func Unmarshal(data []byte, p Packet) error {
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal: expected non-nil pointer to struct, got %T", p)
	}
	v = v.Elem()

	r := bytes.NewReader(data)
	for _, f := range planOf(v.Type()) {
		val, err := ReadField(r, f.typ)
		if err != nil {
			return fmt.Errorf("unmarshal field %s: %w", f.name, err)
		}
		field := v.Field(f.index)
		rv := reflect.ValueOf(val)
		switch {
		case rv.Type().AssignableTo(field.Type()):
			field.Set(rv)
		case rv.Type().ConvertibleTo(field.Type()):
			field.Set(rv.Convert(field.Type()))
		default:
			return fmt.Errorf("unmarshal field %s: cannot assign %s to %s", f.name, rv.Type(), field.Type())
		}
	}
	return nil
}
