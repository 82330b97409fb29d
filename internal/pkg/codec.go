package pkg

import (
	"encoding/json"
	"errors"
	"fmt"

	"Gated_Community/internal/model"
)

var (
	ErrEmptyPayload     = errors.New("empty payload")
	ErrMalformedPayload = errors.New("malformed payload")
)

// EncodeIndex 索引以 JSON 数组存储，nil 也编码为 []
func EncodeIndex(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// DecodeIndex 零长度视为空索引，不做解析
func DecodeIndex(b []byte) ([]string, error) {
	if len(b) == 0 {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("%w: index: %v", ErrMalformedPayload, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func EncodeRecord(c model.Community) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeRecord 记录必须是 JSON 对象，null 视为损坏
func DecodeRecord(b []byte) (model.Community, error) {
	if len(b) == 0 {
		return model.Community{}, ErrEmptyPayload
	}
	var c *model.Community
	if err := json.Unmarshal(b, &c); err != nil {
		return model.Community{}, fmt.Errorf("%w: record: %v", ErrMalformedPayload, err)
	}
	if c == nil {
		return model.Community{}, fmt.Errorf("%w: record: null", ErrMalformedPayload)
	}
	return *c, nil
}
