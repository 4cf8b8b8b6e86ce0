package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

// Registry stores session ownership records in Redis. Failures never
// propagate: they are logged and reported as "not registered" or "unknown".
// Concurrent writers race and the last one wins.
type Registry struct {
	client goredis.Cmdable
	self   domain.MachineRecord
	logger *zap.Logger
}

var _ ports.SessionRegistry = (*Registry)(nil)

func NewRegistry(client goredis.Cmdable, self domain.MachineRecord, logger *zap.Logger) (*Registry, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if err := self.Validate(); err != nil {
		return nil, fmt.Errorf("validate machine record: %w", err)
	}

	return &Registry{client: client, self: self, logger: logging.OrNop(logger).Named("registry")}, nil
}

func (r *Registry) Self() domain.MachineRecord {
	return r.self
}

func (r *Registry) Register(ctx context.Context, id domain.SessionID, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}

	data, err := sonic.Marshal(domain.SessionRecord{
		SessionID:      id,
		MachineID:      r.self.MachineID,
		MachineAddress: r.self.Address,
		TTLSeconds:     int64(ttl / time.Second),
	})
	if err != nil {
		r.logger.Warn("encode session record", zap.String("session_id", string(id)), zap.Error(err))
		return false
	}

	if err := r.client.Set(ctx, key(id), data, ttl).Err(); err != nil {
		r.logger.Warn("register session", zap.String("session_id", string(id)), zap.Error(err))
		return false
	}

	return true
}

// Lookup returns the full record for id.
func (r *Registry) Lookup(ctx context.Context, id domain.SessionID) (domain.SessionRecord, bool) {
	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.logger.Warn("lookup session", zap.String("session_id", string(id)), zap.Error(err))
		}
		return domain.SessionRecord{}, false
	}

	var record domain.SessionRecord
	if err := sonic.Unmarshal(raw, &record); err != nil {
		r.logger.Warn("decode session record", zap.String("session_id", string(id)), zap.Error(err))
		return domain.SessionRecord{}, false
	}

	return record, true
}

func (r *Registry) LookupOwner(ctx context.Context, id domain.SessionID) (string, bool) {
	record, ok := r.Lookup(ctx, id)
	if !ok || record.MachineID == "" {
		return "", false
	}
	return record.MachineID, true
}

func (r *Registry) LookupAddress(ctx context.Context, id domain.SessionID) (string, bool) {
	record, ok := r.Lookup(ctx, id)
	if !ok || record.MachineAddress == "" {
		return "", false
	}
	return record.MachineAddress, true
}

func (r *Registry) ExtendTTL(ctx context.Context, id domain.SessionID, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}

	ok, err := r.client.Expire(ctx, key(id), ttl).Result()
	if err != nil {
		r.logger.Warn("extend session ttl", zap.String("session_id", string(id)), zap.Error(err))
		return false
	}
	return ok
}

func (r *Registry) Unregister(ctx context.Context, id domain.SessionID) bool {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		r.logger.Warn("unregister session", zap.String("session_id", string(id)), zap.Error(err))
		return false
	}
	return true
}

func key(id domain.SessionID) string {
	return keyPrefix + string(id)
}
