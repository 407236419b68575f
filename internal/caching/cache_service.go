package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"orgmanager/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "orgmanager"

type CacheService interface {
	// GetOrganization returns nil on a cache miss.
	GetOrganization(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error)
	// SetOrganization never replaces an entry with a newer or equal version.
	SetOrganization(ctx context.Context, state domain.OrganizationState) error
	DeleteOrganization(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient builds a client, accepting either host:port or a redis:// URL.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}
	return redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})
}

func NewRedisCacheService(client *redis.Client, ttl time.Duration, logger zerolog.Logger) CacheService {
	logger = logger.With().Str("component", "cache").Logger()
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", client.Options().Addr).Msg("redis ping failed on initialization")
	}
	return &redisCacheService{client: client, ttl: ttl, logger: logger}
}

// setIfNewer writes ARGV[1] unless the cached entry already carries a version
// at or above ARGV[2]. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfNewer = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local ok, decoded = pcall(cjson.decode, current)
	if ok and type(decoded) == 'table' and tonumber(decoded['version']) and tonumber(decoded['version']) >= tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

func organizationKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:organization:%s", keyPrefix, id.String())
}

func (r *redisCacheService) GetOrganization(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error) {
	data, err := r.client.Get(ctx, organizationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var state domain.OrganizationState
	if err := json.Unmarshal(data, &state); err != nil {
		r.logger.Warn().Err(err).Str("organization_id", id.String()).Msg("dropping undecodable cache entry")
		_ = r.client.Del(ctx, organizationKey(id)).Err()
		return nil, nil
	}
	return &state, nil
}

func (r *redisCacheService) SetOrganization(ctx context.Context, state domain.OrganizationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	written, err := setIfNewer.Run(ctx, r.client, []string{organizationKey(state.ID)},
		string(data), state.Version, r.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if written == 0 {
		r.logger.Debug().
			Str("organization_id", state.ID.String()).
			Int("version", state.Version).
			Msg("skipped stale cache write")
	}
	return nil
}

func (r *redisCacheService) DeleteOrganization(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, organizationKey(id)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
