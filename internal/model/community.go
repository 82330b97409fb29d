package model

// Community 一个由 NFT 持有关系控制准入的社区记录，创建后不可变
type Community struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	GatingContract   string `json:"nftContract"`
	ProtectedPayload string `json:"data"`      // 占位加密产生的不透明数据，只存储和展示
	CreatedAt        int64  `json:"timestamp"` // Unix 秒，唯一排序键
}

// AccessPolicy 需要被保护的准入规则
type AccessPolicy struct {
	AccessRules        string `json:"accessRules"`
	VerificationMethod string `json:"verificationMethod"`
}

const (
	DefaultAccessRules        = "NFT ownership required"
	DefaultVerificationMethod = "FHE-based proof"
)

// DefaultAccessPolicy 未指定策略时使用
func DefaultAccessPolicy() AccessPolicy {
	return AccessPolicy{
		AccessRules:        DefaultAccessRules,
		VerificationMethod: DefaultVerificationMethod,
	}
}

// IsZero 两个字段都为空
func (p AccessPolicy) IsZero() bool {
	return p.AccessRules == "" && p.VerificationMethod == ""
}

// CommunityDraft 创建社区的入参
type CommunityDraft struct {
	Name           string
	Description    string
	GatingContract string
	Policy         AccessPolicy
}

const (
	TabAll   = "all"
	TabYours = "yours"
)

// ListFilter 列表过滤条件
type ListFilter struct {
	Search  string
	Tab     string // all / yours
	Account string // 当前钱包账户，Tab=yours 时使用
}

type Stats struct {
	Total      int  `json:"total"`
	Refreshing bool `json:"refreshing"`
}
