package main

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xtding233/trdeg/internal/config"
	"github.com/xtding233/trdeg/internal/ladder"
	"github.com/xtding233/trdeg/internal/markov"
	"github.com/xtding233/trdeg/internal/sweep"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type levelResp struct {
	Dan           int                        `json:"dan"`
	Efficiency    float64                    `json:"efficiency"`
	Rank          string                     `json:"rank,omitempty"`
	Kind          string                     `json:"kind,omitempty"`
	Schedule      markov.PointSchedule       `json:"schedule"`
	Probabilities markov.OutcomeDistribution `json:"probabilities"`
	Start         int                        `json:"start"`
	Up            int                        `json:"up"`
	Scale         int                        `json:"scale"`
	UpProb        float64                    `json:"up_prob"`
	UpCount       *float64                   `json:"up_count"`
	DownProb      float64                    `json:"down_prob"`
	DownCount     *float64                   `json:"down_count"`
	Err           string                     `json:"err,omitempty"`
}

type tierResp struct {
	Tier       string   `json:"tier"`
	Efficiency float64  `json:"efficiency"`
	Kind       string   `json:"kind,omitempty"`
	Points     *float64 `json:"points"`
	Games      float64  `json:"games"`
	Err        string   `json:"err,omitempty"`
}

// server holds the model built from the current configuration. reload swaps it
// under the write lock; handlers only read.
type server struct {
	loader     *config.Loader
	ladderName string
	sweepName  string

	mu    sync.RWMutex
	model *sweep.Model
}

func newServer(loader *config.Loader, ladderName, sweepName string) (*server, error) {
	s := &server{loader: loader, ladderName: ladderName, sweepName: sweepName}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *server) reload() error {
	s.loader.Invalidate()
	_, params, err := s.loader.Resolve(s.ladderName, s.sweepName, config.Overrides{})
	if err != nil {
		return err
	}
	m := sweep.NewModel(params)
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	zap.L().Info("model loaded", zap.String("ladder", s.ladderName), zap.String("version", params.Version), zap.Int("tiers", len(params.Tiers)))
	return nil
}

func (s *server) current() *sweep.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/level", s.handleLevel)
	r.Get("/tier", s.handleTier)
	return r
}

func parseFloat(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseKind(r *http.Request) (ladder.TableKind, error) {
	s := r.URL.Query().Get("kind")
	if s == "" {
		return ladder.Han4, nil
	}
	return ladder.ParseTableKind(s)
}

// nullable maps a count of an unreachable boundary to JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// status maps model errors onto HTTP status codes.
func status(err error) int {
	var rankErr *ladder.InvalidTableRankError
	var kindErr *ladder.InvalidTableKindError
	switch {
	case errors.Is(err, sweep.ErrUnknownLevel):
		return http.StatusNotFound
	case errors.As(err, &rankErr), errors.As(err, &kindErr),
		errors.Is(err, ladder.ErrProbabilityFloor),
		errors.Is(err, markov.ErrInvalidProb),
		errors.Is(err, markov.ErrInvalidLattice),
		errors.Is(err, markov.ErrInvalidBounds),
		errors.Is(err, markov.ErrLatticeTooLarge):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.current()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": m.Params.Version})
}

func (s *server) handleLevel(w http.ResponseWriter, r *http.Request) {
	dan, ok, msg := parseInt(r, "dan")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok || dan <= 0 {
		http.Error(w, "missing/invalid param dan", http.StatusBadRequest)
		return
	}
	e, ok, msg := parseFloat(r, "efficiency")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "missing param efficiency", http.StatusBadRequest)
		return
	}
	kind, err := parseKind(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, levelResp{Dan: dan, Efficiency: e, Err: err.Error()})
		return
	}

	m := s.current()
	table, err := m.Table(dan, kind)
	if rs := r.URL.Query().Get("rank"); rs != "" {
		// an explicit rank also reaches dans outside the configured ladder
		var rank ladder.TableRank
		rank, err = ladder.ParseTableRank(rs)
		table = ladder.Table{Rank: rank, Kind: kind}
	}
	if err != nil {
		writeJSON(w, status(err), levelResp{Dan: dan, Efficiency: e, Kind: kind.String(), Err: err.Error()})
		return
	}

	row, err := m.EvaluateLevel(m.Degree(dan), table, ladder.ConstantEfficiency(e))
	if err != nil {
		zap.L().Debug("level failed", zap.Int("dan", dan), zap.Stringer("table", table), zap.Error(err))
		writeJSON(w, status(err), levelResp{Dan: dan, Efficiency: e, Rank: table.Rank.String(), Kind: kind.String(), Err: err.Error()})
		return
	}
	res := row.Result
	writeJSON(w, http.StatusOK, levelResp{
		Dan:           dan,
		Efficiency:    e,
		Rank:          table.Rank.String(),
		Kind:          kind.String(),
		Schedule:      row.Schedule,
		Probabilities: row.Distribution,
		Start:         row.Lattice.Start,
		Up:            row.Lattice.Up,
		Scale:         row.Lattice.Scale,
		UpProb:        res.UpProb,
		UpCount:       nullable(res.UpCount),
		DownProb:      res.DownProb,
		DownCount:     nullable(res.DownCount),
	})
}

func (s *server) handleTier(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing param name", http.StatusBadRequest)
		return
	}
	e, ok, msg := parseFloat(r, "efficiency")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "missing param efficiency", http.StatusBadRequest)
		return
	}
	kind, err := parseKind(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, tierResp{Tier: name, Efficiency: e, Err: err.Error()})
		return
	}

	row, err := s.current().Tier(name, sweep.Combo{Efficiency: e, Kind: kind})
	if err != nil {
		zap.L().Debug("tier failed", zap.String("tier", name), zap.Error(err))
		writeJSON(w, status(err), tierResp{Tier: name, Efficiency: e, Kind: kind.String(), Err: err.Error()})
		return
	}
	resp := tierResp{Tier: name, Efficiency: e, Kind: kind.String(), Games: row.Outcome.Games}
	if row.Outcome.HasPoints {
		resp.Points = nullable(row.Outcome.Points)
	}
	writeJSON(w, http.StatusOK, resp)
}
