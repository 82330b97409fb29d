package pkg

import (
	"encoding/base64"
	"encoding/json"

	"Gated_Community/internal/model"
)

const FHEPrefix = "FHE-"

// Protector 把准入策略变成不透明字符串；实现必须是纯函数
type Protector interface {
	Protect(policy model.AccessPolicy) (string, error)
}

// FHEPlaceholder 占位实现：FHE- 前缀 + base64(JSON)，不是真正的加密
type FHEPlaceholder struct{}

func (FHEPlaceholder) Protect(policy model.AccessPolicy) (string, error) {
	raw, err := json.Marshal(policy)
	if err != nil {
		return "", err
	}
	return FHEPrefix + base64.StdEncoding.EncodeToString(raw), nil
}
