package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lojf/enrollments/internal/db"
	"github.com/lojf/enrollments/internal/metrics"
	svc "github.com/lojf/enrollments/internal/services"
)

const maxFormBytes = 1 << 20

// CreateEnrollment handles POST /enrollments.
// 400 with an empty body on any coercion failure, 500 with an empty body if
// the store rejects the row, otherwise 201 + Location + the stored record.
func CreateEnrollment(store db.Store, schema *svc.Schema, log *zap.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(zap.String("request_id", middleware.GetReqID(r.Context())))

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := parseForm(r); err != nil {
			log.Debug("enrollment form unreadable", zap.Error(err))
			m.EnrollmentRejected(metrics.ReasonValidation)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		rec, err := schema.Parse(r.PostForm)
		if err != nil {
			log.Debug("enrollment rejected", zap.Error(err))
			m.EnrollmentRejected(metrics.ReasonValidation)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		sess, err := store.Open(r.Context())
		if err != nil {
			storageFailure(w, log, m, err)
			return
		}
		defer sess.Close()

		id, err := sess.Insert(rec)
		if err != nil {
			storageFailure(w, log, m, err)
			return
		}
		if err := sess.Commit(); err != nil {
			storageFailure(w, log, m, err)
			return
		}

		m.EnrollmentCreated()
		log.Info("enrollment created", zap.Uint("id", id), zap.String("variant", string(schema.Variant)))

		w.Header().Set("Location", fmt.Sprintf("/enrollments/%d", id))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	}
}

// parseForm fills r.PostForm from either a url-encoded or a multipart body.
func parseForm(r *http.Request) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormBytes)
	}
	return r.ParseForm()
}

func storageFailure(w http.ResponseWriter, log *zap.Logger, m *metrics.Metrics, err error) {
	log.Error("enrollment not persisted", zap.Error(err))
	m.EnrollmentRejected(metrics.ReasonStorage)
	w.WriteHeader(http.StatusInternalServerError)
}
