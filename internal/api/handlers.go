package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/tao-yield-api/internal/aggregate"
	"github.com/yourorg/tao-yield-api/internal/model"
	"github.com/yourorg/tao-yield-api/internal/validation"
)

// defaultSubnets seeds the subnet metadata collection on first read so
// the endpoint is useful before the first metadata sync completes.
var defaultSubnets = []model.SubnetInfo{
	{Netuid: "0", Name: "Foundational Subnet", Symbol: "ROOT"},
	{Netuid: "1", Name: "Machine Learning Subnet", Symbol: "ML"},
	{Netuid: "2", Name: "Text Prompting Subnet", Symbol: "TXT"},
	{Netuid: "3", Name: "Miner Subnet", Symbol: "MINE"},
	{Netuid: "4", Name: "Voice Subnet", Symbol: "VOICE"},
}

func (s *Server) handleListValidators(w http.ResponseWriter, r *http.Request) {
	params, err := validation.ParseListQuery(r.URL.Query())
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := s.loadValidators(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list validators")
		errorResponse(w, http.StatusInternalServerError, "Failed to list validators")
		return
	}

	ranked := aggregate.Rank(docs, params.SubnetID)
	if params.SubnetID != nil {
		ranked = aggregate.FilterBySubnet(ranked)
	}
	if params.SortBy == validation.SortBySubnetStake {
		aggregate.SortBySubnetStake(ranked, params.SortOrder)
	} else {
		aggregate.SortByTotalStake(ranked, params.SortOrder)
	}

	page, pagination := aggregate.Paginate(ranked, params.Limit, params.Batch, params.BatchSize)
	views := make([]validatorView, 0, len(page))
	for _, item := range page {
		views = append(views, newValidatorView(item))
	}
	writeJSON(w, http.StatusOK, listResponse{Data: views, Pagination: pagination})
}

func (s *Server) handleGetValidator(w http.ResponseWriter, r *http.Request) {
	hotkey := mux.Vars(r)["hotkey"]

	doc, found, err := s.store.GetValidator(r.Context(), hotkey)
	if err != nil {
		logrus.WithError(err).WithField("hotkey", hotkey).Error("Failed to fetch validator")
		errorResponse(w, http.StatusInternalServerError, "Failed to fetch validator")
		return
	}
	if !found {
		errorResponse(w, http.StatusNotFound, "Validator not found")
		return
	}

	view := newValidatorView(aggregate.Ranked{Doc: doc, TotalStake: aggregate.TotalStake(doc)})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubnetValidators(w http.ResponseWriter, r *http.Request) {
	netuid, err := validation.ValidateSubnetID(mux.Vars(r)["subnet_id"])
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	params, err := validation.ParseListQuery(r.URL.Query())
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := s.loadValidators(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list validators")
		errorResponse(w, http.StatusInternalServerError, "Failed to list validators")
		return
	}

	ranked := aggregate.FilterBySubnet(aggregate.Rank(docs, &netuid))
	aggregate.SortBySubnetStake(ranked, params.SortOrder)

	page, pagination := aggregate.Paginate(ranked, params.Limit, params.Batch, params.BatchSize)
	key := mux.Vars(r)["subnet_id"]
	views := make([]validatorView, 0, len(page))
	for _, item := range page {
		views = append(views, newSubnetValidatorView(item, key))
	}
	writeJSON(w, http.StatusOK, listResponse{Data: views, Pagination: pagination})
}

func (s *Server) handleListSubnets(w http.ResponseWriter, r *http.Request) {
	subnets, err := s.store.ListSubnets(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list subnets")
		errorResponse(w, http.StatusInternalServerError, "Failed to list subnets")
		return
	}

	if len(subnets) == 0 {
		subnets = s.seedDefaultSubnets(r)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": subnets})
}

// seedDefaultSubnets persists the built-in subnet records. Seeding is
// best effort: a failing upsert still leaves the defaults in the
// response.
func (s *Server) seedDefaultSubnets(r *http.Request) []model.SubnetInfo {
	now := time.Now().UTC().Format(time.RFC3339)
	seeded := make([]model.SubnetInfo, 0, len(defaultSubnets))
	for _, info := range defaultSubnets {
		info.LastUpdated = now
		if err := s.store.UpsertSubnet(r.Context(), info); err != nil {
			logrus.WithError(err).WithField("netuid", info.Netuid).Warn("Failed to seed subnet record")
		}
		seeded = append(seeded, info)
	}
	return seeded
}

func (s *Server) handleUpdateSubnet(w http.ResponseWriter, r *http.Request) {
	if s.opts.AdminKey == "" {
		errorResponse(w, http.StatusForbidden, "Admin endpoints disabled")
		return
	}
	q := r.URL.Query()
	if q.Get("admin_key") != s.opts.AdminKey {
		errorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	netuid, err := validation.ValidateSubnetID(q.Get("netuid"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	name := q.Get("name")
	symbol := q.Get("symbol")
	if name == "" || symbol == "" {
		errorResponse(w, http.StatusBadRequest, "name and symbol are required")
		return
	}

	info := model.SubnetInfo{
		Netuid:      strconv.Itoa(netuid),
		Name:        name,
		Symbol:      symbol,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.UpsertSubnet(r.Context(), info); err != nil {
		logrus.WithError(err).Error("Failed to upsert subnet record")
		errorResponse(w, http.StatusInternalServerError, "Failed to update subnet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "subnet": info})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "operational",
		"version": Version,
		"uptime":  time.Since(s.startTime).String(),
	}
	if s.breaker != nil {
		status["circuit_state"] = s.breaker.GetState()
	}
	if err := s.store.Ping(r.Context()); err != nil {
		status["status"] = "degraded"
		status["store_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}
