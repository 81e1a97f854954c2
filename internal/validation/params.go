// Package validation parses and validates query parameters for the
// validator listing endpoints.
package validation

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Accepted sort_by values
const (
	SortByTotalStake  = "total_stake"
	SortBySubnetStake = "subnet_stake"
)

// Accepted sort_order values
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// DefaultBatchSize is the page size used when batch pagination is
// requested without an explicit batch_size.
const DefaultBatchSize = 32

// ListParams holds the validated parameters of a listing request.
// Optional parameters that were absent stay nil.
type ListParams struct {
	SortBy    string
	SortOrder string
	SubnetID  *int
	Limit     *int
	Batch     *int
	BatchSize int
}

// ParseListQuery validates the query string of a listing request and
// returns the normalized parameters. Any violation is returned as an
// error suitable for a 400 response body.
func ParseListQuery(q url.Values) (ListParams, error) {
	params := ListParams{
		SortBy:    SortByTotalStake,
		SortOrder: SortOrderDesc,
		BatchSize: DefaultBatchSize,
	}

	if v := q.Get("sort_by"); v != "" {
		if v != SortByTotalStake && v != SortBySubnetStake {
			return params, fmt.Errorf("invalid sort_by: %q (expected %s or %s)", v, SortByTotalStake, SortBySubnetStake)
		}
		params.SortBy = v
	}

	if v := q.Get("sort_order"); v != "" {
		if v != SortOrderAsc && v != SortOrderDesc {
			return params, fmt.Errorf("invalid sort_order: %q (expected %s or %s)", v, SortOrderAsc, SortOrderDesc)
		}
		params.SortOrder = v
	}

	if v := q.Get("subnet_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 0 {
			return params, fmt.Errorf("invalid subnet_id: %q", v)
		}
		params.SubnetID = &id
	}

	if params.SortBy == SortBySubnetStake && params.SubnetID == nil {
		return params, fmt.Errorf("sort_by=%s requires subnet_id", SortBySubnetStake)
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return params, fmt.Errorf("invalid limit: %q", v)
		}
		params.Limit = &limit
	}

	if v := q.Get("batch"); v != "" {
		batch, err := strconv.Atoi(v)
		if err != nil || batch < 0 {
			return params, fmt.Errorf("invalid batch: %q", v)
		}
		params.Batch = &batch
	}

	if v := q.Get("batch_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return params, fmt.Errorf("invalid batch_size: %q", v)
		}
		params.BatchSize = size
	}

	if params.Batch != nil && params.Limit != nil {
		logrus.WithFields(logrus.Fields{
			"batch": *params.Batch,
			"limit": *params.Limit,
		}).Debug("Both batch and limit supplied; batch pagination takes precedence")
	}

	return params, nil
}

// ValidateSubnetID parses a path segment as a subnet identifier.
func ValidateSubnetID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid subnet id: %q", s)
	}
	return id, nil
}
