package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/tao-yield-api/internal/model"
)

// Hash field names within a validator document.
const (
	fieldMeta        = "meta"
	fieldLastUpdated = "last_updated"
	subnetFieldPrefix = "subnet:"
)

// RedisStore implements Store on a Redis backend. Each validator is one
// hash (`<prefix>:validators:<hotkey>`) whose fields are the identity
// blob and one JSON blob per subnet record, so HSET of a single field
// is an atomic partial upsert of the document: a per-field merge,
// never a whole-document replace.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(url string) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("redis url cannot be empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: "yield"}, nil
}

func (r *RedisStore) validatorKey(hotkey string) string {
	return fmt.Sprintf("%s:validators:%s", r.keyPrefix, hotkey)
}

func (r *RedisStore) subnetKey(netuid string) string {
	return fmt.Sprintf("%s:subnets:%s", r.keyPrefix, netuid)
}

// UpsertValidatorMeta merges identity fields into the validator hash.
func (r *RedisStore) UpsertValidatorMeta(ctx context.Context, meta model.ValidatorMeta, updatedAt string) error {
	blob, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal validator meta: %w", err)
	}
	err = r.client.HSet(ctx, r.validatorKey(meta.Hotkey),
		fieldMeta, blob,
		fieldLastUpdated, updatedAt,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to upsert validator %s: %w", meta.Hotkey, err)
	}
	return nil
}

// UpsertSubnetYield merges one subnet yield record into the validator
// hash.
func (r *RedisStore) UpsertSubnetYield(ctx context.Context, hotkey string, netuid int, y model.SubnetYield, updatedAt string) error {
	blob, err := json.Marshal(y)
	if err != nil {
		return fmt.Errorf("failed to marshal subnet record: %w", err)
	}
	err = r.client.HSet(ctx, r.validatorKey(hotkey),
		subnetFieldPrefix+strconv.Itoa(netuid), blob,
		fieldLastUpdated, updatedAt,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to upsert subnet %d for %s: %w", netuid, hotkey, err)
	}
	return nil
}

// GetValidator fetches one validator document by hotkey.
func (r *RedisStore) GetValidator(ctx context.Context, hotkey string) (model.ValidatorDoc, bool, error) {
	fields, err := r.client.HGetAll(ctx, r.validatorKey(hotkey)).Result()
	if err != nil {
		return model.ValidatorDoc{}, false, fmt.Errorf("failed to read validator %s: %w", hotkey, err)
	}
	if len(fields) == 0 {
		return model.ValidatorDoc{}, false, nil
	}
	return decodeValidatorHash(hotkey, fields), true, nil
}

// ListValidators scans every validator hash.
func (r *RedisStore) ListValidators(ctx context.Context) ([]model.ValidatorDoc, error) {
	pattern := r.keyPrefix + ":validators:*"
	var docs []model.ValidatorDoc

	iter := r.client.Scan(ctx, 0, pattern, 256).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if len(fields) == 0 {
			continue
		}
		hotkey := strings.TrimPrefix(key, r.keyPrefix+":validators:")
		docs = append(docs, decodeValidatorHash(hotkey, fields))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan validators: %w", err)
	}
	return docs, nil
}

// decodeValidatorHash turns a raw hash into a document. Malformed
// fields are treated as "no data" and defaulted, never as a fatal
// condition for the read path.
func decodeValidatorHash(hotkey string, fields map[string]string) model.ValidatorDoc {
	doc := model.ValidatorDoc{
		Meta:        model.ValidatorMeta{Hotkey: hotkey},
		SubnetsData: map[string]model.SubnetYield{},
	}
	for field, value := range fields {
		switch {
		case field == fieldMeta:
			if err := json.Unmarshal([]byte(value), &doc.Meta); err != nil {
				logrus.Warnf("Malformed meta for validator %s, using defaults: %v", hotkey, err)
				doc.Meta = model.ValidatorMeta{Hotkey: hotkey}
			}
		case field == fieldLastUpdated:
			doc.LastUpdated = value
		case strings.HasPrefix(field, subnetFieldPrefix):
			netuid := strings.TrimPrefix(field, subnetFieldPrefix)
			var y model.SubnetYield
			if err := json.Unmarshal([]byte(value), &y); err != nil {
				logrus.Warnf("Malformed subnet %s record for validator %s, skipping: %v", netuid, hotkey, err)
				continue
			}
			doc.SubnetsData[netuid] = y
		}
	}
	if doc.Meta.Hotkey == "" {
		doc.Meta.Hotkey = hotkey
	}
	return doc
}

// UpsertSubnet merges a subnet's name/symbol record.
func (r *RedisStore) UpsertSubnet(ctx context.Context, info model.SubnetInfo) error {
	err := r.client.HSet(ctx, r.subnetKey(info.Netuid),
		"netuid", info.Netuid,
		"name", info.Name,
		"symbol", info.Symbol,
		fieldLastUpdated, info.LastUpdated,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to upsert subnet %s: %w", info.Netuid, err)
	}
	return nil
}

// ListSubnets returns every subnet metadata record.
func (r *RedisStore) ListSubnets(ctx context.Context) ([]model.SubnetInfo, error) {
	pattern := r.keyPrefix + ":subnets:*"
	var infos []model.SubnetInfo

	iter := r.client.Scan(ctx, 0, pattern, 256).Iterator()
	for iter.Next(ctx) {
		fields, err := r.client.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", iter.Val(), err)
		}
		if len(fields) == 0 {
			continue
		}
		infos = append(infos, model.SubnetInfo{
			Netuid:      fields["netuid"],
			Name:        fields["name"],
			Symbol:      fields["symbol"],
			LastUpdated: fields[fieldLastUpdated],
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan subnets: %w", err)
	}
	return infos, nil
}

// Ping reports whether Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
