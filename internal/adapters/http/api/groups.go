package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/tiewatch/internal/adapters/repository"
	"github.com/okian/tiewatch/internal/domain/classify"
	"github.com/okian/tiewatch/internal/domain/model"
)

// GroupsDependencies defines the read operations the groups handler needs.
type GroupsDependencies interface {
	Analyses(ctx context.Context) []model.Analysis
	Analysis(ctx context.Context, id model.GroupID) (model.Analysis, error)
	Names() classify.NameMap
}

// groupSummary is one element of GET /groups.
type groupSummary struct {
	ID             string `json:"id"`
	Classification string `json:"classification"`
	Players        int    `json:"players"`
	Pending        int    `json:"pending"`
	Decided        int    `json:"decided"`
	Branches       int    `json:"branches"`
}

type player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// groupDetail is the body of GET /groups/{id}. Scores rows are aligned with
// Players.
type groupDetail struct {
	groupSummary

	Header string   `json:"header"`
	Roster []player `json:"roster"`
	Scores [][]int  `json:"scores"`
	Lines  []string `json:"lines"`
}

func summarize(a model.Analysis) groupSummary {
	return groupSummary{
		ID:             string(a.Group),
		Classification: a.Classification.String(),
		Players:        len(a.Branches.Players),
		Pending:        a.Pending,
		Decided:        a.Decided,
		Branches:       a.Branches.Len(),
	}
}

func detail(a model.Analysis, names classify.Namer) groupDetail {
	d := groupDetail{
		groupSummary: summarize(a),
		Roster:       make([]player, 0, len(a.Branches.Players)),
		Scores:       make([][]int, 0, a.Branches.Len()),
		Lines:        classify.BranchLines(a, names),
		Header:       classify.Header(a),
	}
	for _, id := range a.Branches.Players {
		d.Roster = append(d.Roster, player{ID: string(id), Name: names.Name(id)})
	}
	for _, v := range a.Branches.Vectors {
		d.Scores = append(d.Scores, []int(v))
	}
	if d.Lines == nil {
		d.Lines = []string{}
	}
	return d
}

// GroupsHandler serves analysed groups as JSON.
type GroupsHandler struct {
	deps GroupsDependencies
}

// NewGroupsHandler creates a new groups handler.
func NewGroupsHandler(deps GroupsDependencies) *GroupsHandler {
	return &GroupsHandler{deps: deps}
}

// HandleListGroups handles GET /groups requests. The optional
// classification query parameter filters by label.
func (h *GroupsHandler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	filter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("classification")))
	switch filter {
	case "", model.Impossible.String(), model.Possible.String(), model.Guaranteed.String():
	default:
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	analyses := h.deps.Analyses(r.Context())
	out := make([]groupSummary, 0, len(analyses))
	for _, a := range analyses {
		if filter != "" && a.Classification.String() != filter {
			continue
		}
		out = append(out, summarize(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetGroup handles GET /groups/{id} requests.
func (h *GroupsHandler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/groups/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	a, err := h.deps.Analysis(r.Context(), model.GroupID(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, detail(a, h.deps.Names()))
}
