package chain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// raoPerTao converts whole-token amounts into the smallest unit.
const raoPerTao = 1e9

// normalizeAmount decodes the numeric representations observed on the
// wire into a single canonical int64 in rao. Node versions disagree on
// how balances are encoded; the known shapes are handled exhaustively:
//
//   - JSON number:            12345 or 1.5e9
//   - decimal string:         "12345"
//   - hex quantity string:    "0x3039"
//   - balance object:         {"rao": <any of the above>}
//   - balance object:         {"tao": 12.5} (whole tokens, scaled up)
//
// Anything else is an error; callers at the sampling layer resolve that
// to "unavailable" rather than propagating it.
func normalizeAmount(raw json.RawMessage) (int64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, fmt.Errorf("empty amount")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("malformed amount string: %w", err)
		}
		return normalizeString(s)
	case '{':
		var obj struct {
			Rao json.RawMessage `json:"rao"`
			Tao *float64        `json:"tao"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, fmt.Errorf("malformed balance object: %w", err)
		}
		if len(obj.Rao) > 0 && string(obj.Rao) != "null" {
			return normalizeAmount(obj.Rao)
		}
		if obj.Tao != nil {
			return floatToInt64(*obj.Tao * raoPerTao)
		}
		return 0, fmt.Errorf("balance object carries neither rao nor tao: %s", trimmed)
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, fmt.Errorf("malformed numeric amount %q: %w", trimmed, err)
		}
		return floatToInt64(f)
	}
}

func normalizeString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount string")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := hexutil.DecodeUint64(strings.ToLower(s))
		if err != nil {
			return 0, fmt.Errorf("malformed hex amount %q: %w", s, err)
		}
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("hex amount %q overflows int64", s)
		}
		return int64(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed decimal amount %q: %w", s, err)
	}
	return v, nil
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("amount %v outside int64 range", f)
	}
	return int64(f), nil
}

// normalizeSubnetList decodes the shapes the subnet enumeration call is
// known to return: a list of ids, a list of objects carrying a netuid,
// or a bare count N meaning subnets 0..N-1.
func normalizeSubnetList(raw json.RawMessage) ([]int, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, fmt.Errorf("empty subnet list")
	}

	if trimmed[0] != '[' {
		var count int
		if err := json.Unmarshal(raw, &count); err != nil {
			return nil, fmt.Errorf("malformed subnet count: %w", err)
		}
		if count < 0 {
			return nil, fmt.Errorf("negative subnet count %d", count)
		}
		ids := make([]int, count)
		for i := range ids {
			ids[i] = i
		}
		return ids, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("malformed subnet list: %w", err)
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(string(item))
		if len(s) > 0 && s[0] == '{' {
			var obj struct {
				Netuid int `json:"netuid"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				return nil, fmt.Errorf("malformed subnet entry %s: %w", s, err)
			}
			ids = append(ids, obj.Netuid)
			continue
		}
		var id int
		if err := json.Unmarshal(item, &id); err != nil {
			return nil, fmt.Errorf("malformed subnet id %s: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
