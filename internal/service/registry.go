package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"Gated_Community/internal/model"
	"Gated_Community/internal/pkg"

	"go.uber.org/zap"
)

const (
	IndexKey        = "community_keys"
	RecordKeyPrefix = "community_"

	maxKeyAttempts = 3
)

var (
	ErrStoreUnavailable  = errors.New("store not available")
	ErrNameRequired      = errors.New("community name required")
	ErrCommunityNotFound = errors.New("community not found")
	ErrKeyCollision      = errors.New("could not derive unique community key")
	ErrRecordWrite       = errors.New("community record write failed")
	ErrIndexRead         = errors.New("community index read failed")
	ErrIndexWrite        = errors.New("community index write failed")
)

// RecordKey 记录在存储中的 key
func RecordKey(id string) string {
	return RecordKeyPrefix + id
}

// Registry 在不透明键值存储里维护社区记录和索引。
// 索引的读-改-写不加锁：并发 Create 会丢失较早的追加，
// 被丢掉的记录仍可通过 Get 直接读到（孤儿记录）。
type Registry struct {
	store     Store
	protector pkg.Protector
	metrics   RegistryMetrics
	logger    *zap.Logger
	now       func() time.Time
	newID     func(time.Time) (string, error)
}

type RegistryOption func(*Registry)

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func WithIDGenerator(newID func(time.Time) (string, error)) RegistryOption {
	return func(r *Registry) { r.newID = newID }
}

func WithProtector(p pkg.Protector) RegistryOption {
	return func(r *Registry) { r.protector = p }
}

func WithRegistryMetrics(m RegistryMetrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

func NewRegistry(store Store, logger *zap.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:     store,
		protector: pkg.FHEPlaceholder{},
		metrics:   nopMetrics{},
		logger:    logger.With(zap.String("component", "registry")),
		now:       time.Now,
		newID:     pkg.NewCommunityID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListAll 读取索引再逐条读取记录，单条失败只记日志并跳过。
// 按 CreatedAt 倒序返回，相同时间保持索引顺序。
func (r *Registry) ListAll(ctx context.Context) (list []model.Community, err error) {
	started := time.Now()
	defer func() { r.metrics.ObserveRegistry("list_all", err, started) }()

	if !r.store.IsAvailable(ctx) {
		return []model.Community{}, ErrStoreUnavailable
	}

	raw, err := r.store.Get(ctx, IndexKey)
	if err != nil {
		return []model.Community{}, fmt.Errorf("%w: %v", ErrIndexRead, err)
	}
	ids, err := pkg.DecodeIndex(raw)
	if err != nil {
		r.logger.Error("decode community index failed", zap.Error(err))
		return []model.Community{}, nil
	}

	list = make([]model.Community, 0, len(ids))
	for _, id := range ids {
		c, err := r.load(ctx, id)
		if err != nil {
			r.logger.Warn("skip community", zap.String("id", id), zap.Error(err))
			continue
		}
		list = append(list, c)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt > list[j].CreatedAt
	})
	return list, nil
}

// Get 按 key 直接读取，孤儿记录也能读到
func (r *Registry) Get(ctx context.Context, id string) (model.Community, error) {
	if !r.store.IsAvailable(ctx) {
		return model.Community{}, ErrStoreUnavailable
	}
	c, err := r.load(ctx, id)
	if errors.Is(err, pkg.ErrEmptyPayload) {
		return model.Community{}, ErrCommunityNotFound
	}
	return c, err
}

func (r *Registry) load(ctx context.Context, id string) (model.Community, error) {
	b, err := r.store.Get(ctx, RecordKey(id))
	if err != nil {
		return model.Community{}, err
	}
	c, err := pkg.DecodeRecord(b)
	if err != nil {
		return model.Community{}, err
	}
	// 以索引中的 id 为准
	c.ID = id
	return c, nil
}

// NewKey 生成一个当前未被占用的社区 id
func (r *Registry) NewKey(ctx context.Context) (string, error) {
	for i := 0; i < maxKeyAttempts; i++ {
		id, err := r.newID(r.now())
		if err != nil {
			return "", err
		}
		existing, err := r.store.Get(ctx, RecordKey(id))
		if err != nil {
			return "", err
		}
		if len(existing) == 0 {
			return id, nil
		}
		r.logger.Warn("community key collision", zap.String("id", id))
	}
	return "", ErrKeyCollision
}

// Create 先写记录再更新索引，非事务：索引写失败时记录成为孤儿
func (r *Registry) Create(ctx context.Context, draft model.CommunityDraft) (c model.Community, err error) {
	started := time.Now()
	defer func() { r.metrics.ObserveRegistry("create", err, started) }()

	if !r.store.IsAvailable(ctx) {
		return model.Community{}, ErrStoreUnavailable
	}
	if strings.TrimSpace(draft.Name) == "" {
		return model.Community{}, ErrNameRequired
	}

	id, err := r.NewKey(ctx)
	if err != nil {
		return model.Community{}, err
	}

	policy := draft.Policy
	if policy.IsZero() {
		policy = model.DefaultAccessPolicy()
	}
	payload, err := r.protector.Protect(policy)
	if err != nil {
		return model.Community{}, err
	}

	c = model.Community{
		ID:               id,
		Name:             draft.Name,
		Description:      draft.Description,
		GatingContract:   draft.GatingContract,
		ProtectedPayload: payload,
		CreatedAt:        r.now().Unix(),
	}
	b, err := pkg.EncodeRecord(c)
	if err != nil {
		return model.Community{}, err
	}
	if err := r.store.Set(ctx, RecordKey(id), b); err != nil {
		return model.Community{}, fmt.Errorf("%w: %v", ErrRecordWrite, err)
	}

	ids, err := r.readIndexForAppend(ctx)
	if err != nil {
		r.logger.Error("community orphaned", zap.String("id", id), zap.Error(err))
		return model.Community{}, err
	}
	ids = append(ids, id)

	raw, err := pkg.EncodeIndex(ids)
	if err != nil {
		return model.Community{}, err
	}
	if err := r.store.Set(ctx, IndexKey, raw); err != nil {
		r.logger.Error("community orphaned", zap.String("id", id), zap.Error(err))
		return model.Community{}, fmt.Errorf("%w: %v", ErrIndexWrite, err)
	}

	r.logger.Info("community created", zap.String("id", id), zap.Int("index_size", len(ids)))
	return c, nil
}

// readIndexForAppend 索引损坏时按空索引继续，保证仍能创建
func (r *Registry) readIndexForAppend(ctx context.Context) ([]string, error) {
	raw, err := r.store.Get(ctx, IndexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexRead, err)
	}
	ids, err := pkg.DecodeIndex(raw)
	if err != nil {
		r.logger.Error("community index corrupt, starting over", zap.Error(err))
		return []string{}, nil
	}
	return ids, nil
}
