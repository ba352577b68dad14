// Package schema 校验工具声明的输入输出 JSON Schema
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// ErrInvalid 不是合法的 JSON Schema 文档
var ErrInvalid = errors.New("invalid json schema")

// Validate 校验 schema 文档，空文档视为未声明
func Validate(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := s.Resolve(nil); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Repair 修复手写的 schema 文本（缺引号、尾逗号等），已合法时原样返回
func Repair(text string) (json.RawMessage, error) {
	if text == "" {
		return nil, nil
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}
	out, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return json.RawMessage(out), nil
}
