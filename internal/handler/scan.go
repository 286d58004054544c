package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/nutrition"
	"github.com/voraviaadmin/voravia/internal/score"
	"github.com/voraviaadmin/voravia/internal/store"
	"github.com/voraviaadmin/voravia/internal/websocket"
)

// ScanHandler resolves scanned barcodes to products and scores them
// against the member's health profile.
type ScanHandler struct {
	scans    *store.ScanStore
	members  *store.MemberStore
	profiles *store.ProfileStore
	products *nutrition.Client
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewScanHandler(ss *store.ScanStore, ms *store.MemberStore, ps *store.ProfileStore, products *nutrition.Client, hub *websocket.Hub, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		scans:    ss,
		members:  ms,
		profiles: ps,
		products: products,
		hub:      hub,
		logger:   logger,
	}
}

func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"member_id"`
		Barcode  string `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.Barcode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "barcode is required"})
		return
	}
	if req.MemberID == "" {
		req.MemberID = model.HeadMemberID
	}

	member, err := h.members.GetByID(req.MemberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	product, err := h.products.Lookup(r.Context(), req.Barcode)
	if err != nil {
		if errors.Is(err, nutrition.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found for barcode"})
			return
		}
		h.logger.Error("product lookup", "barcode", req.Barcode, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "product database unavailable"})
		return
	}

	profile, err := h.profiles.Get(member.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}

	rating := score.ScoreProduct(product.Facts, profile)

	scan, err := h.scans.Create(model.Scan{
		ID:          uuid.NewString(),
		MemberID:    member.ID,
		Barcode:     product.Barcode,
		ProductName: product.Name,
		Brand:       product.Brand,
		Facts:       product.Facts,
		Score:       rating.Score,
		Verdict:     rating.Verdict,
	})
	if err != nil {
		h.logger.Error("create scan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save scan"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("scan", "created", scan.ID, map[string]any{
		"member_id": scan.MemberID,
		"score":     scan.Score,
	}))

	writeJSON(w, http.StatusCreated, map[string]any{
		"scan":    scan,
		"reasons": rating.Reasons,
	})
}

func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	scan, err := h.scans.GetByID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get scan"})
		return
	}
	if scan == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (h *ScanHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("id")

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	scans, err := h.scans.ListByMember(memberID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list scans"})
		return
	}
	if scans == nil {
		scans = []model.Scan{}
	}
	writeJSON(w, http.StatusOK, scans)
}

func (h *ScanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.scans.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get scan"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scan not found"})
		return
	}

	if err := h.scans.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete scan"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("scan", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
