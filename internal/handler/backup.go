package handler

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/voraviaadmin/voravia/internal/backup"
	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/store"
)

type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
	state   *store.AppStateStore
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, state *store.AppStateStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backups: bs, state: state, logger: logger}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backups.List(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

// Configure stores the backup schedule and derives the passphrase salt.
// The passphrase itself is never persisted; it is cached in memory for
// scheduled runs.
func (h *BackupHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled       bool   `json:"enabled"`
		ScheduleHour  int    `json:"schedule_hour"`
		RetentionDays int    `json:"retention_days"`
		Passphrase    string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.ScheduleHour < 0 || req.ScheduleHour > 23 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "schedule_hour must be 0-23"})
		return
	}
	if len(req.Passphrase) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase must be at least 8 characters"})
		return
	}

	salt, err := backup.GenerateSalt()
	if err != nil {
		h.logger.Error("generate salt", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to configure backups"})
		return
	}

	enabled := "false"
	if req.Enabled {
		enabled = "true"
	}
	settings := map[string]string{
		backup.KeyEnabled:        enabled,
		backup.KeyScheduleHour:   strconv.Itoa(req.ScheduleHour),
		backup.KeyRetentionDays:  strconv.Itoa(req.RetentionDays),
		backup.KeyPassphraseSalt: hex.EncodeToString(salt),
	}
	for key, value := range settings {
		if err := h.state.Set(key, value); err != nil {
			h.logger.Error("save backup setting", "key", key, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
			return
		}
	}

	h.manager.CacheKey(req.Passphrase, salt)
	writeJSON(w, http.StatusOK, map[string]string{"status": "configured"})
}

func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	id, err := h.manager.RunNow(r.Context(), req.Passphrase)
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int64{"backup_id": id})
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	// On success the process exits to restart on the restored database,
	// so a response is only written on failure.
	if err := h.manager.Restore(r.Context(), id, req.Passphrase); err != nil {
		h.logger.Error("restore backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="voravia-backup-%d.db.enc"`, id))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	io.Copy(w, body)
}
