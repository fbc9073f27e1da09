package rowkit

import (
	"bytes"
	"encoding/json"
)

// ProjectionField is one (name, value) pair of a projection.
type ProjectionField struct {
	Name  string
	Value interface{}
}

// Projection is an ordered field name -> value view of a record, rendered
// outward as a JSON object. Field order is preserved.
type Projection []ProjectionField

// MarshalJSON renders the projection as a JSON object in field order.
func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Projection returns the record's outward view: by default every field in
// declaration order. A projector installed with WithProjector can exclude
// or transform fields before serialization.
func (r *Record) Projection() Projection {
	if r.projector != nil {
		return r.projector(r)
	}

	p := make(Projection, 0, r.Len())
	for name, value := range r.Fields() {
		p = append(p, ProjectionField{Name: name, Value: value})
	}
	return p
}

// MarshalJSON implements json.Marshaler over the record's projection.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Projection())
}
