package model

import "time"

type TxState string

const (
	TxIdle    TxState = "idle"
	TxPending TxState = "pending"
	TxSuccess TxState = "success"
	TxError   TxState = "error"
)

// TxStatus 当前操作进度，不持久化
type TxStatus struct {
	State     TxState   `json:"state"`
	Message   string    `json:"message"`
	Operation uint64    `json:"operation"` // 拥有该状态的操作令牌
	UpdatedAt time.Time `json:"updated_at"`
}

type VerifyOutcome string

const (
	VerifySuccess VerifyOutcome = "success"
	VerifyFailure VerifyOutcome = "failure"
)

const (
	EventCommunityCreated = "community.created"
	EventAccessVerified   = "access.verified"
	EventAccessDenied     = "access.denied"
)

// CommunityEvent 投递到 kafka 的事件
type CommunityEvent struct {
	Type        string `json:"type"`
	CommunityID string `json:"community_id"`
	Account     string `json:"account,omitempty"`
	At          int64  `json:"at"`
}
