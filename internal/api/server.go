// Package api serves the catalog, compiler, build and inspection operations
// over HTTP for the configuration UI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/compose-network/rollup-configurator/internal/build"
	"github.com/compose-network/rollup-configurator/internal/bundle"
	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/input"
	"github.com/compose-network/rollup-configurator/internal/inspect"
	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/logger"
	"github.com/compose-network/rollup-configurator/internal/metrics"
	"github.com/compose-network/rollup-configurator/internal/schema"
	"github.com/compose-network/rollup-configurator/internal/slot"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	slotBuild = "build"

	defaultMaxUploadBytes = 100 << 20
	maxCompileBodyBytes   = 1 << 20
)

type (
	Compiler interface {
		Compile(raw map[string]any, chainID uint64) (*bundle.Bundle, error)
	}

	Builder interface {
		Submit(ctx context.Context, b *bundle.Bundle) (*build.Payload, error)
	}

	ChainLister interface {
		Supported() []l1.Chain
	}

	Options struct {
		DefaultChainID uint64
		AllowedOrigins []string
		MaxUploadBytes int64
	}

	Server struct {
		catalog     *catalog.Catalog
		chains      ChainLister
		compiler    Compiler
		builder     Builder
		inspections *inspect.Session
		builds      *slot.Slot[*build.Payload]
		metrics     *metrics.Metrics
		opts        Options
		logger      *slog.Logger
	}

	compileRequest struct {
		L1ChainID *uint64        `json:"l1_chain_id"`
		Config    map[string]any `json:"config"`
	}

	catalogResponse struct {
		Mode     catalog.Mode      `json:"mode"`
		Sections []catalog.Section `json:"sections"`
	}

	slotResponse struct {
		Slot      string     `json:"slot"`
		State     slot.State `json:"state"`
		Error     string     `json:"error,omitempty"`
		Result    any        `json:"result,omitempty"`
		StartedAt *time.Time `json:"startedAt,omitempty"`
		EndedAt   *time.Time `json:"endedAt,omitempty"`
	}

	buildSummary struct {
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
		Bytes       int    `json:"bytes"`
		RequestID   string `json:"requestId"`
	}
)

func NewServer(
	c *catalog.Catalog,
	chains ChainLister,
	compiler Compiler,
	builder Builder,
	inspector inspect.Inspector,
	m *metrics.Metrics,
	opts Options,
) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.DefaultChainID == 0 {
		opts.DefaultChainID = 1
	}

	return &Server{
		catalog:     c,
		chains:      chains,
		compiler:    compiler,
		builder:     builder,
		inspections: inspect.NewSession(inspector),
		builds:      slot.New[*build.Payload](),
		metrics:     m,
		opts:        opts,
		logger:      logger.Named("api"),
	}
}

// Routes returns the full router, including health and metrics endpoints.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.opts.AllowedOrigins))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", s.getCatalog)
		r.Get("/l1-chains", s.listChains)
		r.Post("/compile", s.compile)
		r.Post("/build", s.build)
		r.Post("/inspect/{kind}", s.inspect)
		r.Get("/slots/{slot}", s.getSlot)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]string{"status": "ok"})
}

// getCatalog handles GET /v1/catalog?mode=basic|advanced. Advanced is the
// default and returns every parameter.
func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	mode := catalog.ModeAdvanced
	if q := r.URL.Query().Get("mode"); q != "" {
		m, err := catalog.ParseMode(q)
		if err != nil {
			fail(w, badRequest(err.Error()))
			return
		}
		mode = m
	}

	ok(w, catalogResponse{Mode: mode, Sections: s.catalog.Visible(mode)})
}

func (s *Server) listChains(w http.ResponseWriter, _ *http.Request) {
	ok(w, s.chains.Supported())
}

// compile handles POST /v1/compile.
func (s *Server) compile(w http.ResponseWriter, r *http.Request) {
	b, err := s.compileRequest(r)
	if err != nil {
		fail(w, err)
		return
	}

	ok(w, map[string]any{"bundle": b})
}

// build handles POST /v1/build. The artifact is streamed back as an attachment.
func (s *Server) build(w http.ResponseWriter, r *http.Request) {
	b, err := s.compileRequest(r)
	if err != nil {
		fail(w, err)
		return
	}

	ticket := s.builds.Begin()
	started := time.Now()
	payload, err := s.builder.Submit(r.Context(), b)
	s.metrics.RecordBackendCall("build", started, err)
	s.builds.Complete(ticket, payload, err)
	if err != nil {
		s.logger.With("err", err.Error()).Warn("build request failed")
		fail(w, err)
		return
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/zip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, bytes.NewReader(payload.Data)); err != nil {
		s.logger.With("err", err.Error()).Warn("failed to stream build artifact")
	}
}

// inspect handles POST /v1/inspect/{kind} with the artifact in the multipart
// field "file".
func (s *Server) inspect(w http.ResponseWriter, r *http.Request) {
	kind, err := inspect.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		fail(w, notFound(err.Error()))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, badRequest(fmt.Sprintf("missing artifact upload: %v", err)))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, badRequest(fmt.Sprintf("failed to read artifact upload: %v", err)))
		return
	}

	started := time.Now()
	result, err := s.inspections.Inspect(r.Context(), kind, header.Filename, data)
	s.metrics.RecordBackendCall("inspect_"+string(kind), started, err)
	if err != nil {
		s.logger.With("err", err.Error(), "kind", kind).Warn("inspection failed")
		fail(w, err)
		return
	}

	ok(w, result)
}

// getSlot handles GET /v1/slots/{slot} for build, contracts and infra.
func (s *Server) getSlot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "slot")

	if name == slotBuild {
		snap := s.builds.Snapshot()
		resp := newSlotResponse(name, snap.State, snap.Err, snap.StartedAt, snap.EndedAt)
		if snap.Result != nil {
			resp.Result = buildSummary{
				FileName:    snap.Result.FileName,
				ContentType: snap.Result.ContentType,
				Bytes:       len(snap.Result.Data),
				RequestID:   snap.Result.RequestID,
			}
		}
		ok(w, resp)
		return
	}

	kind, err := inspect.ParseKind(name)
	if err != nil {
		fail(w, notFound(fmt.Sprintf("unknown slot %q", name)))
		return
	}
	snap, err := s.inspections.Snapshot(kind)
	if err != nil {
		fail(w, err)
		return
	}

	resp := newSlotResponse(name, snap.State, snap.Err, snap.StartedAt, snap.EndedAt)
	if snap.Result != nil {
		resp.Result = snap.Result
	}
	ok(w, resp)
}

func newSlotResponse(name string, state slot.State, err error, started, ended time.Time) slotResponse {
	resp := slotResponse{Slot: name, State: state}
	if err != nil {
		resp.Error = err.Error()
	}
	if !started.IsZero() {
		resp.StartedAt = &started
	}
	if !ended.IsZero() {
		resp.EndedAt = &ended
	}
	return resp
}

// compileRequest decodes a compile body and runs the compiler. The chain id may
// be given at the top level or inside config, as the build endpoint expects.
func (s *Server) compileRequest(r *http.Request) (*bundle.Bundle, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxCompileBodyBytes))
	dec.UseNumber()

	var req compileRequest
	if err := dec.Decode(&req); err != nil {
		return nil, badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Config == nil {
		req.Config = map[string]any{}
	}

	chainID := s.opts.DefaultChainID
	embedded, found, err := input.SplitChainID(req.Config)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	switch {
	case req.L1ChainID != nil:
		chainID = *req.L1ChainID
	case found:
		chainID = embedded
	}

	b, err := s.compiler.Compile(req.Config, chainID)
	s.recordCompilation(err)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Server) recordCompilation(err error) {
	var validationErr *schema.Errors
	switch {
	case err == nil:
		s.metrics.RecordCompilation(metrics.OutcomeSuccess)
	case errors.As(err, &validationErr):
		s.metrics.RecordCompilation(metrics.OutcomeInvalid)
		for id, fe := range validationErr.Fields {
			s.metrics.RecordInvalidField(s.fieldLabel(id), string(fe.Reason))
		}
		for id := range validationErr.Configuration {
			s.metrics.RecordInvalidField(s.fieldLabel(id), "no_default")
		}
	case errors.Is(err, l1.ErrNotSupported):
		s.metrics.RecordCompilation(metrics.OutcomeNotSupported)
	default:
		s.metrics.RecordCompilation(metrics.OutcomeError)
	}
}

// fieldLabel keeps the field label set bounded by the catalog. Request keys
// that are not parameters all share metrics.UnknownField.
func (s *Server) fieldLabel(id string) string {
	if _, ok := s.catalog.Lookup(id); ok {
		return id
	}
	return metrics.UnknownField
}
