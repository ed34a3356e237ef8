package hub

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts a record to a protobuf Struct.
func ToStruct(r Record) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(r.Fields())
	if err != nil {
		return nil, fmt.Errorf("converting %s record: %w", r.Kind(), err)
	}
	return s, nil
}

// MarshalJSON renders a record as one line of JSON.
func MarshalJSON(r Record) ([]byte, error) {
	s, err := ToStruct(r)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{UseProtoNames: true}.Marshal(s)
}

// FromStruct returns the plain fields of a Struct, the inverse of ToStruct.
// Numbers come back as float64.
func FromStruct(s *structpb.Struct) map[string]any {
	if s == nil {
		return nil
	}
	return s.AsMap()
}
