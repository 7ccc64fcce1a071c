package adapthttp

import (
	"net/http"

	"go.uber.org/zap"

	"weighttrack/internal/domain"
	"weighttrack/internal/logging"
)

func (s *Server) handleWeightList(w http.ResponseWriter, r *http.Request) {
	items, err := s.weight.List(r.Context())
	if err != nil {
		s.fail(w, r, logging.OpList, err)
		return
	}
	if items == nil {
		items = []domain.WeightEntry{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleWeightCreate(w http.ResponseWriter, r *http.Request) {
	var body domain.WeightInput
	if err := parseJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.weight.Create(r.Context(), body)
	if err != nil {
		s.fail(w, r, logging.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleWeightUpdate(w http.ResponseWriter, r *http.Request) {
	var body domain.WeightInput
	if err := parseJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.weight.Update(r.Context(), r.PathValue("id"), body)
	if err != nil {
		s.fail(w, r, logging.OpUpdate, err, zap.String(logging.FieldEntryID, r.PathValue("id")))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleWeightDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.weight.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, logging.OpDelete, err, zap.String(logging.FieldEntryID, r.PathValue("id")))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error, fields ...zap.Field) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", append(fields,
			zap.String(logging.FieldOperation, op),
			zap.String("principal", Principal(r.Context())),
			zap.String(logging.FieldErrorType, logging.ErrorTypeInternal),
			zap.Error(err))...)
	}
	writeError(w, status, err)
}
