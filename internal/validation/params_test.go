package validation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQueryDefaults(t *testing.T) {
	params, err := ParseListQuery(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, SortByTotalStake, params.SortBy)
	assert.Equal(t, SortOrderDesc, params.SortOrder)
	assert.Equal(t, DefaultBatchSize, params.BatchSize)
	assert.Nil(t, params.SubnetID)
	assert.Nil(t, params.Limit)
	assert.Nil(t, params.Batch)
}

func TestParseListQueryFull(t *testing.T) {
	q := url.Values{
		"sort_by":    {"subnet_stake"},
		"sort_order": {"asc"},
		"subnet_id":  {"5"},
		"batch":      {"2"},
		"batch_size": {"10"},
	}
	params, err := ParseListQuery(q)
	require.NoError(t, err)

	assert.Equal(t, SortBySubnetStake, params.SortBy)
	assert.Equal(t, SortOrderAsc, params.SortOrder)
	require.NotNil(t, params.SubnetID)
	assert.Equal(t, 5, *params.SubnetID)
	require.NotNil(t, params.Batch)
	assert.Equal(t, 2, *params.Batch)
	assert.Equal(t, 10, params.BatchSize)
}

func TestParseListQueryRejects(t *testing.T) {
	cases := []struct {
		name string
		q    url.Values
	}{
		{"unknown sort_by", url.Values{"sort_by": {"stake"}}},
		{"unknown sort_order", url.Values{"sort_order": {"down"}}},
		{"subnet_stake without subnet_id", url.Values{"sort_by": {"subnet_stake"}}},
		{"negative subnet_id", url.Values{"subnet_id": {"-1"}}},
		{"non-numeric subnet_id", url.Values{"subnet_id": {"abc"}}},
		{"zero limit", url.Values{"limit": {"0"}}},
		{"negative batch", url.Values{"batch": {"-2"}}},
		{"zero batch_size", url.Values{"batch_size": {"0"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseListQuery(tc.q)
			assert.Error(t, err)
		})
	}
}

func TestParseListQueryBatchZeroIsValid(t *testing.T) {
	params, err := ParseListQuery(url.Values{"batch": {"0"}})
	require.NoError(t, err)
	require.NotNil(t, params.Batch)
	assert.Equal(t, 0, *params.Batch)
}

func TestValidateSubnetID(t *testing.T) {
	id, err := ValidateSubnetID("12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	_, err = ValidateSubnetID("twelve")
	assert.Error(t, err)
	_, err = ValidateSubnetID("-3")
	assert.Error(t, err)
}
