package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/tao-yield-api/internal/aggregate"
	"github.com/yourorg/tao-yield-api/internal/model"
)

// listResponse is the envelope of every listing endpoint.
type listResponse struct {
	Data       []validatorView      `json:"data"`
	Pagination aggregate.Pagination `json:"pagination"`
}

// validatorView is the wire form of one validator: identity fields,
// the derived rollup, and the raw per-subnet records. The embedded
// structs marshal flat.
type validatorView struct {
	model.ValidatorMeta
	model.AggregatedMetrics
	TotalStake  string                       `json:"total_stake"`
	SubnetsData map[string]model.SubnetYield `json:"subnetsData"`
	LastUpdated string                       `json:"last_updated"`

	// Populated only on the per-subnet listing.
	SubnetStake *string            `json:"subnet_stake,omitempty"`
	SubnetData  *model.SubnetYield `json:"subnet_data,omitempty"`
}

// newValidatorView assembles the wire form of one ranked validator.
func newValidatorView(r aggregate.Ranked) validatorView {
	return validatorView{
		ValidatorMeta:     r.Doc.Meta,
		AggregatedMetrics: aggregate.Rollup(r.Doc),
		TotalStake:        model.FormatStake(r.TotalStake),
		SubnetsData:       r.Doc.SubnetsData,
		LastUpdated:       r.Doc.LastUpdated,
	}
}

// newSubnetValidatorView additionally carries the validator's record
// and stake in the requested subnet.
func newSubnetValidatorView(r aggregate.Ranked, netuid string) validatorView {
	view := newValidatorView(r)
	view.SubnetStake = model.StrPtr(model.FormatStake(r.SubnetStake))
	if record, ok := r.Doc.SubnetsData[netuid]; ok {
		view.SubnetData = &record
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Failed to encode response body")
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
