package server

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hyperjump/tabiji/internal/models"
	"github.com/hyperjump/tabiji/internal/storage"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	query := models.EventQuery{Query: r.URL.Query().Get("query")}
	if err := validateStruct(&query); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Debug("events request", zap.String("query", query.Query))
	records, ok, err := s.rec.Events(r.Context(), query.Query)
	if err != nil {
		s.logger.Error("event recommendation failed", zap.String("query", query.Query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		s.respondJSON(w, http.StatusOK, nil)
		return
	}
	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	query := models.LocationQuery{Location: r.URL.Query().Get("location")}
	if err := validateStruct(&query); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Debug("locations request", zap.String("location", query.Location))
	records, err := s.rec.Locations(r.Context(), query.Location)
	if err != nil {
		s.logger.Error("location recommendation failed", zap.String("location", query.Location), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.rec.Status()
	status.DataPath = s.config.Data.Path
	status.BundlePath = s.config.Model.BundlePath

	diskBytes, err := storage.DiskUsageBytes(
		s.config.Data.Path,
		s.config.Storage.DatabasePath,
		s.config.Model.BundlePath,
	)
	if err == nil {
		status.DiskUsageBytes = &diskBytes
	} else {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}

	if s.storage != nil {
		imp, err := s.storage.LastImport(r.Context())
		if err != nil {
			s.logger.Error("status: last import failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		status.LastImport = imp
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Detail: message})
}
