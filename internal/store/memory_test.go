package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/tao-yield-api/internal/model"
)

func TestMemoryStoreUpsertMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Yield data can arrive before identity metadata.
	err := s.UpsertSubnetYield(ctx, "hot1", 5, model.SubnetYield{LatestStake: "1000"}, "t1")
	require.NoError(t, err)

	err = s.UpsertValidatorMeta(ctx, model.ValidatorMeta{Hotkey: "hot1", Name: "Alpha"}, "t2")
	require.NoError(t, err)

	doc, found, err := s.GetValidator(ctx, "hot1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alpha", doc.Meta.Name)
	assert.Equal(t, "1000", doc.SubnetsData["5"].LatestStake)
	assert.Equal(t, "t2", doc.LastUpdated)
}

func TestMemoryStoreSubnetRecordsAccumulate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.UpsertSubnetYield(ctx, "hot1", 1, model.SubnetYield{LatestStake: "10"}, "t1"))
	require.NoError(t, s.UpsertSubnetYield(ctx, "hot1", 2, model.SubnetYield{LatestStake: "20"}, "t1"))

	// Overwriting one subnet leaves the other untouched. A record for a
	// subnet the validator has exited is likewise left in place.
	require.NoError(t, s.UpsertSubnetYield(ctx, "hot1", 1, model.SubnetYield{LatestStake: "15"}, "t2"))

	doc, found, err := s.GetValidator(ctx, "hot1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "15", doc.SubnetsData["1"].LatestStake)
	assert.Equal(t, "20", doc.SubnetsData["2"].LatestStake)
}

func TestMemoryStoreGetValidatorMissing(t *testing.T) {
	_, found, err := NewMemoryStore().GetValidator(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreListValidators(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.UpsertValidatorMeta(ctx, model.ValidatorMeta{Hotkey: "a"}, "t"))
	require.NoError(t, s.UpsertValidatorMeta(ctx, model.ValidatorMeta{Hotkey: "b"}, "t"))

	docs, err := s.ListValidators(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	// Returned documents are copies; mutating one must not leak back.
	docs[0].SubnetsData["99"] = model.SubnetYield{LatestStake: "1"}
	fresh, _, err := s.GetValidator(ctx, docs[0].Meta.Hotkey)
	require.NoError(t, err)
	assert.NotContains(t, fresh.SubnetsData, "99")
}

func TestMemoryStoreSubnetInfo(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.UpsertSubnet(ctx, model.SubnetInfo{Netuid: "1", Name: "Machine Learning Subnet", Symbol: "ML"}))
	require.NoError(t, s.UpsertSubnet(ctx, model.SubnetInfo{Netuid: "1", Name: "Machine Learning", Symbol: "ML"}))

	infos, err := s.ListSubnets(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Machine Learning", infos[0].Name)
}
