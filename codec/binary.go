package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/errors"
)

// MarshalBinary encodes a struct as protobuf bytes, used for storage values.
func MarshalBinary(s *structpb.Struct) ([]byte, error) {
	return proto.Marshal(s)
}

func UnmarshalBinary(data []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return &s, nil
}

// MarshalJSON encodes a struct as JSON, used by the HTTP bridges.
func MarshalJSON(s *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(s)
}

func UnmarshalJSON(data []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return &s, nil
}
