// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package grpcrt

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"code.hybscloud.com/kontrt"
)

// ProtoSchema decodes input into messages of the same type as msg.
// It accepts a message of that type, protojson as []byte or string, and
// maps. Decoded messages must have their required fields set.
func ProtoSchema(msg proto.Message) kontrt.Schema {
	return &protoSchema{
		prototype: msg,
		name:      string(msg.ProtoReflect().Descriptor().FullName()),
	}
}

type protoSchema struct {
	prototype proto.Message
	name      string
}

func (s *protoSchema) Decode(raw any) (any, error) {
	out := s.prototype.ProtoReflect().New().Interface()
	var data []byte
	switch v := raw.(type) {
	case proto.Message:
		if v.ProtoReflect().Descriptor().FullName() != s.prototype.ProtoReflect().Descriptor().FullName() {
			return nil, s.fail("type", "unexpected message "+string(v.ProtoReflect().Descriptor().FullName()))
		}
		out = proto.Clone(v)
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, s.fail("type", err.Error())
		}
		data = b
	case nil:
		return nil, s.fail("required", "value is required")
	default:
		return nil, s.fail("type", "unsupported input")
	}
	if data != nil {
		if err := protojson.Unmarshal(data, out); err != nil {
			return nil, s.fail("type", err.Error())
		}
	}
	if err := proto.CheckInitialized(out); err != nil {
		return nil, s.fail("required", err.Error())
	}
	return out, nil
}

func (s *protoSchema) fail(tag, msg string) *kontrt.ParseError {
	return &kontrt.ParseError{Schema: s.name, Issues: []kontrt.Issue{{Tag: tag, Message: msg}}}
}
