package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"Gated_Community/internal/model"

	"go.uber.org/zap"
)

const (
	msgCreatePending  = "Encrypting community data with FHE..."
	msgCreateSuccess  = "Community created with FHE protection!"
	msgCreateFailed   = "Creation failed: "
	msgVerifyPending  = "Verifying NFT ownership with FHE..."
	msgVerifySuccess  = "FHE verification successful! Access granted."
	msgVerifyFailed   = "Verification failed: "
	msgUserRejected   = "Transaction rejected by user"
	userRejectedToken = "user rejected transaction"
	msgUnknownError   = "Unknown error"
)

// CommunityService 调用方边界：所有错误都在这里收口，体现在 StatusTracker 上
type CommunityService struct {
	registry *Registry
	verifier *Verifier
	status   *StatusTracker
	events   EventPublisher
	logger   *zap.Logger
	loading  atomic.Int32 // 进行中的列表加载数
	now      func() time.Time
}

func NewCommunityService(registry *Registry, verifier *Verifier, status *StatusTracker, events EventPublisher, logger *zap.Logger) *CommunityService {
	if events == nil {
		events = nopPublisher{}
	}
	return &CommunityService{
		registry: registry,
		verifier: verifier,
		status:   status,
		events:   events,
		logger:   logger.With(zap.String("component", "community_service")),
		now:      time.Now,
	}
}

// List 失败时记录日志并返回空列表
func (s *CommunityService) List(ctx context.Context, filter model.ListFilter) []model.Community {
	list, _ := s.Browse(ctx, filter)
	return list
}

// Browse 同 List，另外返回本次加载结束时是否还有其他加载在进行
func (s *CommunityService) Browse(ctx context.Context, filter model.ListFilter) (list []model.Community, refreshing bool) {
	s.loading.Add(1)
	defer func() {
		refreshing = s.loading.Load() > 1
		s.loading.Add(-1)
	}()

	all, err := s.registry.ListAll(ctx)
	if err != nil {
		s.logger.Error("load communities failed", zap.Error(err))
		return []model.Community{}, false
	}
	return applyFilter(all, filter), false
}

// Refreshing 是否有列表加载正在进行
func (s *CommunityService) Refreshing() bool {
	return s.loading.Load() > 0
}

func (s *CommunityService) Get(ctx context.Context, id string) (model.Community, error) {
	return s.registry.Get(ctx, id)
}

func (s *CommunityService) Stats(ctx context.Context) model.Stats {
	list, refreshing := s.Browse(ctx, model.ListFilter{})
	return model.Stats{Total: len(list), Refreshing: refreshing}
}

func (s *CommunityService) Status() model.TxStatus {
	return s.status.Current()
}

func (s *CommunityService) SubscribeStatus() (<-chan model.TxStatus, func()) {
	return s.status.Subscribe()
}

// Create 返回的 *model.Community 为 nil 表示失败，原因见状态消息
func (s *CommunityService) Create(ctx context.Context, draft model.CommunityDraft) (created *model.Community, status model.TxStatus) {
	token := s.status.Begin(msgCreatePending)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("create community panicked", zap.Any("panic", r))
			created = nil
			status, _ = s.status.resolve(token, model.TxError, msgCreateFailed+fmt.Sprint(r))
		}
	}()

	c, err := s.registry.Create(ctx, draft)
	if err != nil {
		s.logger.Error("create community failed", zap.String("name", draft.Name), zap.Error(err))
		status, _ = s.status.resolve(token, model.TxError, failureMessage(msgCreateFailed, err))
		return nil, status
	}

	status, _ = s.status.resolve(token, model.TxSuccess, msgCreateSuccess)
	s.publish(ctx, model.CommunityEvent{Type: model.EventCommunityCreated, CommunityID: c.ID})
	return &c, status
}

func (s *CommunityService) Verify(ctx context.Context, account, communityID string) (outcome model.VerifyOutcome, status model.TxStatus) {
	token := s.status.Begin(msgVerifyPending)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("verify access panicked", zap.Any("panic", r))
			outcome = model.VerifyFailure
			status, _ = s.status.resolve(token, model.TxError, msgVerifyFailed+fmt.Sprint(r))
		}
	}()

	outcome, err := s.verifier.Verify(ctx, account, communityID)
	event := model.CommunityEvent{CommunityID: communityID, Account: account}
	if err != nil {
		s.logger.Warn("verify access failed", zap.String("community_id", communityID), zap.Error(err))
		status, _ = s.status.resolve(token, model.TxError, failureMessage(msgVerifyFailed, err))
		event.Type = model.EventAccessDenied
		s.publish(ctx, event)
		return model.VerifyFailure, status
	}

	status, _ = s.status.resolve(token, model.TxSuccess, msgVerifySuccess)
	event.Type = model.EventAccessVerified
	s.publish(ctx, event)
	return outcome, status
}

// publish 事件投递失败不影响主流程
func (s *CommunityService) publish(ctx context.Context, event model.CommunityEvent) {
	event.At = s.now().Unix()
	if err := s.events.Publish(ctx, event.CommunityID, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("type", event.Type), zap.Error(err))
	}
}

func failureMessage(prefix string, err error) string {
	msg := err.Error()
	if strings.Contains(msg, userRejectedToken) {
		return msgUserRejected
	}
	if msg == "" {
		msg = msgUnknownError
	}
	return prefix + msg
}

func applyFilter(list []model.Community, filter model.ListFilter) []model.Community {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	yours := filter.Tab == model.TabYours
	if yours && filter.Account == "" {
		return []model.Community{}
	}

	out := make([]model.Community, 0, len(list))
	for _, c := range list {
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			continue
		}
		if yours && !strings.EqualFold(c.GatingContract, filter.Account) {
			continue
		}
		out = append(out, c)
	}
	return out
}
