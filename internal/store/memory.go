package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/yourorg/tao-yield-api/internal/model"
)

// MemoryStore is an in-process Store used by tests and for running the
// service without a Redis backend. Semantics mirror RedisStore: partial
// upserts by key, last writer wins per field.
type MemoryStore struct {
	mu         sync.RWMutex
	validators map[string]model.ValidatorDoc
	subnets    map[string]model.SubnetInfo
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		validators: map[string]model.ValidatorDoc{},
		subnets:    map[string]model.SubnetInfo{},
	}
}

func (m *MemoryStore) UpsertValidatorMeta(_ context.Context, meta model.ValidatorMeta, updatedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.validators[meta.Hotkey]
	if !ok {
		doc = model.ValidatorDoc{SubnetsData: map[string]model.SubnetYield{}}
	}
	doc.Meta = meta
	doc.LastUpdated = updatedAt
	m.validators[meta.Hotkey] = doc
	return nil
}

func (m *MemoryStore) UpsertSubnetYield(_ context.Context, hotkey string, netuid int, y model.SubnetYield, updatedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.validators[hotkey]
	if !ok {
		doc = model.ValidatorDoc{
			Meta:        model.ValidatorMeta{Hotkey: hotkey},
			SubnetsData: map[string]model.SubnetYield{},
		}
	}
	doc.SubnetsData[strconv.Itoa(netuid)] = y
	doc.LastUpdated = updatedAt
	m.validators[hotkey] = doc
	return nil
}

func (m *MemoryStore) GetValidator(_ context.Context, hotkey string) (model.ValidatorDoc, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.validators[hotkey]
	if !ok {
		return model.ValidatorDoc{}, false, nil
	}
	return copyDoc(doc), true, nil
}

func (m *MemoryStore) ListValidators(_ context.Context) ([]model.ValidatorDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]model.ValidatorDoc, 0, len(m.validators))
	for _, doc := range m.validators {
		docs = append(docs, copyDoc(doc))
	}
	return docs, nil
}

func (m *MemoryStore) UpsertSubnet(_ context.Context, info model.SubnetInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subnets[info.Netuid] = info
	return nil
}

func (m *MemoryStore) ListSubnets(_ context.Context) ([]model.SubnetInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]model.SubnetInfo, 0, len(m.subnets))
	for _, info := range m.subnets {
		infos = append(infos, info)
	}
	return infos, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func copyDoc(doc model.ValidatorDoc) model.ValidatorDoc {
	out := doc
	out.SubnetsData = make(map[string]model.SubnetYield, len(doc.SubnetsData))
	for k, v := range doc.SubnetsData {
		out.SubnetsData[k] = v
	}
	return out
}
