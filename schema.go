// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// StructSchema decodes input into a T and checks its `validate` tags.
//
// Accepted input: a T or *T, JSON as []byte, json.RawMessage or string,
// and maps or other structures decodable by field name. Field names follow
// `json` tags.
type StructSchema[T any] struct {
	name string
}

// Struct returns the schema of T.
func Struct[T any]() *StructSchema[T] {
	return &StructSchema[T]{name: typeName[T]()}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Name returns the Go type name of T.
func (s *StructSchema[T]) Name() string {
	if s == nil {
		return typeName[T]()
	}
	return s.name
}

// Decode implements Schema.
func (s *StructSchema[T]) Decode(raw any) (any, error) {
	return s.Parse(raw)
}

// Parse decodes raw into a checked T.
// A nil schema rejects every input.
func (s *StructSchema[T]) Parse(raw any) (T, error) {
	var out T
	if s == nil {
		return out, s.fail(Issue{Tag: "schema", Message: "nil schema"})
	}
	var err error
	switch v := raw.(type) {
	case T:
		out = v
	case *T:
		if v == nil {
			return out, s.fail(Issue{Tag: "required", Message: "value is required"})
		}
		out = *v
	case json.RawMessage:
		err = json.Unmarshal(v, &out)
	case []byte:
		err = json.Unmarshal(v, &out)
	case string:
		err = json.Unmarshal([]byte(v), &out)
	case nil:
		return out, s.fail(Issue{Tag: "required", Message: "value is required"})
	default:
		err = decodeStructure(v, &out)
	}
	if err != nil {
		return out, s.fail(Issue{Tag: "type", Message: err.Error()})
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return out, s.fail(Issue{Message: err.Error()})
		}
		issues := make([]Issue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, fieldIssue(fe))
		}
		return out, s.fail(issues...)
	}
	return out, nil
}

func (s *StructSchema[T]) fail(issues ...Issue) *ParseError {
	return &ParseError{Schema: s.Name(), Issues: issues}
}

func decodeStructure(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// fieldIssue renders a validator failure without the root type name.
func fieldIssue(fe validator.FieldError) Issue {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	msg := "failed " + fe.Tag()
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	return Issue{Path: path, Tag: fe.Tag(), Message: msg}
}
