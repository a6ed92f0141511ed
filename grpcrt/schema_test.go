// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package grpcrt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"code.hybscloud.com/kontrt"
	"code.hybscloud.com/kontrt/grpcrt"
)

func TestProtoSchemaDecode(t *testing.T) {
	schema := grpcrt.ProtoSchema(&wrapperspb.Int64Value{})

	in := wrapperspb.Int64(7)
	out, err := schema.Decode(in)
	require.NoError(t, err)
	assert.True(t, proto.Equal(in, out.(proto.Message)))
	assert.NotSame(t, in, out, "decoded message is a copy")

	out, err = schema.Decode(`"42"`)
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.(*wrapperspb.Int64Value).GetValue())
}

func TestProtoSchemaDecodeMap(t *testing.T) {
	schema := grpcrt.ProtoSchema(&structpb.Struct{})
	out, err := schema.Decode(map[string]any{"name": "Ada", "age": 36})
	require.NoError(t, err)
	fields := out.(*structpb.Struct).GetFields()
	assert.Equal(t, "Ada", fields["name"].GetStringValue())
	assert.Equal(t, float64(36), fields["age"].GetNumberValue())
}

func TestProtoSchemaRejects(t *testing.T) {
	schema := grpcrt.ProtoSchema(&wrapperspb.Int64Value{})
	for _, in := range []any{
		wrapperspb.String("wrong type"),
		`"not a number"`,
		[]byte(`{`),
		nil,
		3.5,
	} {
		_, err := schema.Decode(in)
		var perr *kontrt.ParseError
		require.ErrorAs(t, err, &perr, "input %#v", in)
		assert.Equal(t, "google.protobuf.Int64Value", perr.Schema)
	}
}
