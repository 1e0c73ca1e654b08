package server

import (
	"context"
	"encoding/base64"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/propwrite/propwrite/internal/brand"
	"github.com/propwrite/propwrite/internal/compliance"
	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/enrich"
	"github.com/propwrite/propwrite/internal/generate"
	"github.com/propwrite/propwrite/internal/history"
	"github.com/propwrite/propwrite/internal/lengths"
	"github.com/propwrite/propwrite/internal/session"
	"github.com/propwrite/propwrite/internal/vision"
)

// Handler carries the wired pipeline components behind the HTTP surface.
type Handler struct {
	Generator *generate.Generator
	Shrinker  *lengths.Shrinker
	Checker   *compliance.Checker
	Enricher  *enrich.Enricher
	Vision    *vision.Adapter
	Sessions  *session.Store
	Brands    *brand.Store
	History   *history.Store // optional; nil disables run recording
}

// ── Generation ──────────────────────────────────────────────────────────────

type generateRequest struct {
	core.GenerateRequest
	Variants int `json:"variants,omitempty"`
}

type generateResponse struct {
	Variants   []core.GeneratedVariant  `json:"variants"`
	Enrichment *core.EnrichmentReport   `json:"enrichment,omitempty"`
	Compliance []core.ComplianceReport  `json:"compliance,omitempty"`
	Lengths    []core.LengthReport      `json:"lengths"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	if req.Variants < 1 {
		req.Variants = 3
	}
	if err := req.Validate(); err != nil {
		coreErrorToHTTP(w, err)
		return
	}

	resp, err := h.runGeneration(r.Context(), req.GenerateRequest, req.Variants)
	if err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// runGeneration is the shared pipeline behind the JSON endpoint and the
// websocket progress stream.
func (h *Handler) runGeneration(ctx context.Context, req core.GenerateRequest, n int) (*generateResponse, error) {
	var enrichment *core.EnrichmentReport
	if req.IncludeEnrichment && req.Location.Postcode != "" {
		report, err := h.Enricher.Enrich(ctx, req.Location.Postcode, nil, nil)
		if err != nil {
			log.Printf("server: enrichment for %s failed: %v", req.Location.Postcode, err)
		} else {
			enrichment = &report
		}
	}

	variants, err := h.Generator.Generate(ctx, req, n, enrichment)
	if err != nil {
		return nil, err
	}

	resp := &generateResponse{Variants: variants, Enrichment: enrichment}
	for _, v := range variants {
		resp.Lengths = append(resp.Lengths, lengths.Validate(v.Body, req.Channel))
		if req.IncludeCompliance {
			resp.Compliance = append(resp.Compliance, h.Checker.Check(v.Body, req.Channel.Channel, &req.Property))
		}
	}

	h.recordRun(ctx, req, resp)
	return resp, nil
}

func (h *Handler) recordRun(ctx context.Context, req core.GenerateRequest, resp *generateResponse) {
	if h.History == nil {
		return
	}
	entry := history.Entry{
		Address:      req.Location.Address,
		Channel:      req.Channel.Channel,
		Tone:         req.Tone,
		BrandID:      req.BrandID,
		VariantCount: len(resp.Variants),
	}
	for _, v := range resp.Variants {
		entry.WordCounts = append(entry.WordCounts, v.WordCount)
	}
	if len(resp.Compliance) > 0 {
		entry.Compliant = true
		for _, c := range resp.Compliance {
			entry.ComplianceScore += c.Score
			entry.Compliant = entry.Compliant && c.Compliant
		}
		entry.ComplianceScore /= float64(len(resp.Compliance))
	}
	if err := h.History.Record(ctx, entry); err != nil {
		// Recording is best-effort and must not fail the request.
		log.Printf("server: recording run: %v", err)
	}
}

// ── Shrink, compliance, coverage, lengths ───────────────────────────────────

type shrinkRequest struct {
	Text     string           `json:"text"`
	Target   int              `json:"target_words,omitempty"`
	Channel  core.ChannelSpec `json:"channel"`
	Keywords []string         `json:"keywords,omitempty"`
	Tone     core.Tone        `json:"tone,omitempty"`
}

func (h *Handler) Shrink(w http.ResponseWriter, r *http.Request) {
	var req shrinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "text is required")
		return
	}
	target := req.Target
	if target <= 0 {
		target = lengths.Resolve(req.Channel).Target
	}
	writeJSON(w, http.StatusOK, h.Shrinker.Shrink(r.Context(), req.Text, target, req.Keywords, req.Tone))
}

type checkRequest struct {
	Text     string              `json:"text"`
	Channel  core.Channel        `json:"channel"`
	Property *core.PropertyFacts `json:"property,omitempty"`
}

func (h *Handler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "text is required")
		return
	}
	writeJSON(w, http.StatusOK, h.Checker.Check(req.Text, req.Channel, req.Property))
}

func (h *Handler) FilterText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": compliance.Filter(req.Text)})
}

type coverageRequest struct {
	Text     string       `json:"text"`
	Channel  core.Channel `json:"channel"`
	Features []string     `json:"features,omitempty"`
}

func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	var req coverageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Checker.Coverage.Analyse(req.Text, req.Channel, req.Features))
}

type lengthRequest struct {
	Text    string           `json:"text"`
	Channel core.ChannelSpec `json:"channel"`
}

func (h *Handler) ValidateLength(w http.ResponseWriter, r *http.Request) {
	var req lengthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lengths.Validate(req.Text, req.Channel))
}

// ── Enrichment ──────────────────────────────────────────────────────────────

type enrichRequest struct {
	Postcode  string   `json:"postcode,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	report, err := h.Enricher.Enrich(r.Context(), req.Postcode, req.Latitude, req.Longitude)
	if err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ── Vision ──────────────────────────────────────────────────────────────────

type analyzeRequest struct {
	Photos []struct {
		Filename string `json:"filename"`
		Data     string `json:"data"` // raw base64 or data URL
	} `json:"photos"`
}

func (h *Handler) AnalyzePhotos(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	if len(req.Photos) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "at least one photo is required")
		return
	}

	photos := make(map[string][]byte, len(req.Photos))
	for _, p := range req.Photos {
		raw, err := decodePhotoPayload(p.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", p.Filename+": "+err.Error())
			return
		}
		photos[p.Filename] = raw
	}

	analyses, err := h.Vision.AnalyzeBatch(r.Context(), photos)
	if err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
}

// decodePhotoPayload accepts either a bare base64 string or a full
// data:<type>;base64,<payload> URL.
func decodePhotoPayload(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		if comma := strings.Index(data, ","); comma >= 0 {
			data = data[comma+1:]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, core.Validationf("invalid base64 payload")
	}
	return raw, nil
}

// ── Sessions ────────────────────────────────────────────────────────────────

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var sess core.BrochureSession
	if err := decodeJSON(r, &sess); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	res, err := h.Sessions.Create(sess)
	if err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Load(chi.URLParam(r, "sessionID"))
	if err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var sess core.BrochureSession
	if err := decodeJSON(r, &sess); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	id := chi.URLParam(r, "sessionID")
	if err := h.Sessions.Update(id, sess); err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "session_id": id})
}

func (h *Handler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	path, err := h.Sessions.GetPhotoPath(chi.URLParam(r, "sessionID"), chi.URLParam(r, "photoID"))
	if err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeFile(w, r, path)
}

// ── Brands and history ──────────────────────────────────────────────────────

func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"brands": h.Brands.List()})
}

func (h *Handler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "brandID")
	p := h.Brands.Get(id)
	if p == nil {
		writeError(w, http.StatusNotFound, "BRAND_NOT_FOUND", "unknown brand "+id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeJSON(w, http.StatusOK, map[string]any{"runs": []history.Entry{}, "total": 0})
		return
	}
	p := parsePagination(r)
	entries, total, err := h.History.List(r.Context(), history.ListOptions{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		coreErrorToHTTP(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": entries, "total": total})
}
