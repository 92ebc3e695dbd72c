package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/server/auth"
	"github.com/dmitrijs2005/brandforge/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// fail writes err to the client and logs anything that is not the caller's
// fault.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if common.KindOf(err) == common.KindInternal {
		s.logger.Error(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeError(w, r, err)
}

func userID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func (s *Server) handleTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tiers": s.catalog.List()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.designs.Generate(r.Context(), userID(r), req.BrandDescription, req.Tier)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse{Artifact: res.Artifact, CreditsRemaining: res.CreditsRemaining})
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.designs.Refine(r.Context(), userID(r), services.RefineRequest{
		ParentVersionID: req.ParentVersionID,
		Previous:        req.PreviousArtifact,
		Constraints:     req.Constraints,
		Instruction:     req.Instruction,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Degraded {
		status = http.StatusOK
	}
	writeJSON(w, status, refineResponse{
		RefinedArtifact:  res.Refined,
		Comparison:       res.Comparison,
		Explanation:      res.Explanation,
		Version:          res.Refined.Version,
		Degraded:         res.Degraded,
		Conflicts:        res.Conflicts,
		Applied:          res.Applied,
		Skipped:          res.Skipped,
		CreditsRemaining: res.CreditsRemaining,
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	a, err := s.credits.Account(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := balanceResponse{
		UserID:      a.UserID,
		Tier:        string(a.Tier),
		Balance:     a.Balance,
		Unlimited:   a.Unlimited(),
		TotalEarned: a.TotalEarned,
		TotalSpent:  a.TotalSpent,
	}
	if a.ResetDate != nil {
		d := a.ResetDate.UTC().Format(time.RFC3339)
		resp.ResetDate = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.credits.Transactions(r.Context(), userID(r), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": list})
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := s.designs.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if a.Metadata.Fingerprint != "" {
		w.Header().Set("ETag", strconv.Quote(a.Metadata.Fingerprint))
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.designs.History(r.Context(), userID(r), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": list})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	list, err := s.designs.Versions(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": list})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	c, err := s.designs.Compare(r.Context(), userID(r), chi.URLParam(r, "id"), chi.URLParam(r, "otherID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.designs.Export(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}
