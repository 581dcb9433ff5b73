package resolve

import "encoding/json"

// Value is a node of the resolved result tree.
type Value interface {
	isValue()
}

// Object keeps its fields in selection order.
type Object struct {
	Fields []Field
}

type Field struct {
	Name  string
	Value Value
}

type Array struct {
	Items []Value
}

// Scalar holds an encoded JSON scalar.
type Scalar struct {
	Raw json.RawMessage
}

type Null struct{}

// Sentinel replaces an object beyond the maximum nesting level.
// It is written as an object with a single message field.
type Sentinel struct {
	Message string
}

func (*Object) isValue() {}
func (*Array) isValue() {}
func (*Scalar) isValue() {}
func (*Null) isValue() {}
func (*Sentinel) isValue() {}

func (o *Object) add(name string, value Value) {
	o.Fields = append(o.Fields, Field{Name: name, Value: value})
}

// Get returns the value of the field name, nil if absent.
func (o *Object) Get(name string) Value {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			return o.Fields[i].Value
		}
	}
	return nil
}

func stringScalar(s string) *Scalar {
	raw, _ := json.Marshal(s)
	return &Scalar{Raw: raw}
}

func intScalar(i int) *Scalar {
	raw, _ := json.Marshal(i)
	return &Scalar{Raw: raw}
}
