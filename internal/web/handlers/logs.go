package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/trinexa/trinexa-web/internal/logsink"
)

// SettingLogSinkLevel is the settings key holding the admin-adjusted sink
// verbosity, applied over the config value at startup.
const SettingLogSinkLevel = "log_sink_level"

// LogsAdmin shows the log console. Without a date filter it shows the
// in-memory ring; with one it shows the persisted day bucket.
func (h *Handlers) LogsAdmin(w http.ResponseWriter, r *http.Request) {
	levelParam := r.URL.Query().Get("level")
	date := r.URL.Query().Get("date")

	var entries []logsink.Entry
	if date != "" {
		entries = h.sink.StoredLogs(date)
		if levelParam != "" {
			if level, err := logsink.ParseLevel(levelParam); err == nil {
				want := level.String()
				filtered := entries[:0]
				for _, e := range entries {
					if e.Level == want {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
		}
	} else {
		var filter *logsink.Level
		if levelParam != "" {
			if level, err := logsink.ParseLevel(levelParam); err == nil {
				filter = &level
			}
		}
		entries = h.sink.Logs(filter)
	}

	// Newest first for the console.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	h.render(w, r, "logs", map[string]any{
		"Entries":   entries,
		"Level":     levelParam,
		"Date":      date,
		"SinkLevel": strings.ToLower(h.sink.Level().String()),
	})
}

// LogsExport downloads a day bucket as plain text.
func (h *Handlers) LogsExport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	name := date
	if name == "" {
		name = time.Now().Format(logsink.DayFormat)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="logs-`+name+`.txt"`)
	w.Write([]byte(h.sink.Export(date)))
}

// LogsSetLevel changes the sink verbosity threshold.
func (h *Handlers) LogsSetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := logsink.ParseLevel(r.FormValue("level"))
	if err != nil {
		h.error(w, http.StatusBadRequest, "unknown log level")
		return
	}
	h.sink.SetLevel(level)
	// Persist so the chosen level survives restarts.
	if err := h.settings.Set(SettingLogSinkLevel, strings.ToLower(level.String())); err != nil {
		h.logger.Warn("failed to persist log level", "error", err)
	}
	h.auditLog(r, "logs.level", "logsink", level.String())
	http.Redirect(w, r, "/admin/logs", http.StatusSeeOther)
}

// LogsCleanup prunes persisted day buckets past the retention window.
func (h *Handlers) LogsCleanup(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.FormValue("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	removed := h.sink.ClearOld(days)
	h.logger.Info("log buckets pruned", "removed", removed)
	h.auditLog(r, "logs.cleanup", "logsink", strconv.Itoa(removed))
	http.Redirect(w, r, "/admin/logs", http.StatusSeeOther)
}
