package codes

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"biokey/internal/platform/redis"
	id "biokey/pkg/domain"
)

// consumeLastScript atomically compares the newest queued code against the
// presented value and pops it on match. Check-and-pop must be one round trip
// so two concurrent redemptions cannot both see the same tail.
var consumeLastScript = goredis.NewScript(`
local tail = redis.call('LINDEX', KEYS[1], -1)
if tail == false then
	return 0
end
if tail ~= ARGV[1] then
	return 0
end
redis.call('RPOP', KEYS[1])
return 1
`)

// RedisCodeStore keeps validation code queues in Redis lists, one list per
// account. Same queue semantics as InMemoryCodeStore.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) key(accountID id.AccountID) string {
	return "biokey:codes:" + accountID.String()
}

func (s *RedisCodeStore) Append(ctx context.Context, accountID id.AccountID, code int) error {
	if err := s.client.RPush(ctx, s.key(accountID), strconv.Itoa(code)).Err(); err != nil {
		return fmt.Errorf("append validation code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) ConsumeLast(ctx context.Context, accountID id.AccountID, presented int) (bool, error) {
	res, err := consumeLastScript.Run(ctx, s.client, []string{s.key(accountID)}, strconv.Itoa(presented)).Int()
	if err != nil {
		return false, fmt.Errorf("consume validation code: %w", err)
	}
	return res == 1, nil
}

func (s *RedisCodeStore) Len(ctx context.Context, accountID id.AccountID) (int, error) {
	n, err := s.client.LLen(ctx, s.key(accountID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count validation codes: %w", err)
	}
	return int(n), nil
}
