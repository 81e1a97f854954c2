package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/tao-yield-api/internal/aggregate"
	"github.com/yourorg/tao-yield-api/internal/validation"
)

// tRPC procedure names served by the batch endpoint.
const (
	procDelegates = "delegates.getDelegates4"
	procSubnets   = "subnets.getSubnetsNameAndSymbol"
)

type trpcResult struct {
	Result *trpcData  `json:"result,omitempty"`
	Error  *trpcError `json:"error,omitempty"`
}

type trpcData struct {
	Data trpcJSON `json:"data"`
}

type trpcJSON struct {
	JSON any `json:"json"`
}

type trpcError struct {
	Message string `json:"message"`
}

// handleTRPC serves a comma-separated batch of procedures. The
// response is a positional array with one entry per requested
// procedure; unknown names produce an error entry in place, never a
// non-200 status.
func (s *Server) handleTRPC(w http.ResponseWriter, r *http.Request) {
	procedures := strings.Split(mux.Vars(r)["procedures"], ",")

	results := make([]trpcResult, 0, len(procedures))
	for _, proc := range procedures {
		switch strings.TrimSpace(proc) {
		case procDelegates:
			results = append(results, s.trpcDelegates(r))
		case procSubnets:
			results = append(results, s.trpcSubnets(r))
		default:
			results = append(results, trpcResult{
				Error: &trpcError{Message: fmt.Sprintf("Unknown procedure: %s", strings.TrimSpace(proc))},
			})
		}
	}
	writeJSON(w, http.StatusOK, results)
}

// trpcDelegates serves the full delegate listing sorted by total stake
// descending. Validators without any subnet record are omitted.
func (s *Server) trpcDelegates(r *http.Request) trpcResult {
	docs, err := s.loadValidators(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list validators for trpc batch")
		return trpcResult{Error: &trpcError{Message: "Failed to list validators"}}
	}

	ranked := make([]aggregate.Ranked, 0, len(docs))
	for _, item := range aggregate.Rank(docs, nil) {
		if len(item.Doc.SubnetsData) == 0 {
			continue
		}
		ranked = append(ranked, item)
	}
	aggregate.SortByTotalStake(ranked, aggregate.SortDesc)

	params, err := validation.ParseListQuery(r.URL.Query())
	if err != nil {
		return trpcResult{Error: &trpcError{Message: err.Error()}}
	}
	page, _ := aggregate.Paginate(ranked, params.Limit, params.Batch, params.BatchSize)

	views := make([]validatorView, 0, len(page))
	for _, item := range page {
		views = append(views, newValidatorView(item))
	}
	return trpcResult{Result: &trpcData{Data: trpcJSON{JSON: views}}}
}

func (s *Server) trpcSubnets(r *http.Request) trpcResult {
	subnets, err := s.store.ListSubnets(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list subnets for trpc batch")
		return trpcResult{Error: &trpcError{Message: "Failed to list subnets"}}
	}
	if len(subnets) == 0 {
		subnets = s.seedDefaultSubnets(r)
	}
	return trpcResult{Result: &trpcData{Data: trpcJSON{JSON: subnets}}}
}
