package credstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

const (
	tokenKey = "console:session:token"
	userKey  = "console:session:user"
)

// RedisStore keeps the persisted-state layout of the original console: two
// string keys, one for the bearer token and one for the serialised user.
// Pair atomicity comes from transactional writes (MULTI/EXEC) and a single
// MGET read, so a concurrent reader never observes a half-written pair.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, token string, user *domain.User) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenKey, token, 0)
	pipe.Set(ctx, userKey, string(encoded), 0)
	_, err = pipe.Exec(ctx)
	return err
}

// Load fails soft: a missing or half-present pair and undecodable user data
// both report an absent session, clearing whatever was there.
func (s *RedisStore) Load(ctx context.Context) (*ports.Credentials, error) {
	values, err := s.client.MGet(ctx, tokenKey, userKey).Result()
	if err != nil {
		return nil, err
	}

	token, tokenOK := values[0].(string)
	rawUser, userOK := values[1].(string)
	if !tokenOK && !userOK {
		return nil, nil
	}
	if !tokenOK || !userOK || token == "" {
		_ = s.Clear(ctx)
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		_ = s.Clear(ctx)
		return nil, nil
	}
	return &ports.Credentials{Token: token, User: &user}, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, tokenKey, userKey).Err()
}
