// internal/app/features/announcements/handler.go
package announcements

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/hsms/internal/app/system/authz"
	"github.com/dalemusser/hsms/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; announcements are short.
const maxBodyBytes = 64 << 10

// Handler owns the announcement HTTP endpoints.
type Handler struct {
	Svc *Service
	Log *zap.Logger
}

// NewHandler constructs an announcements Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{
		Svc: svc,
		Log: logger,
	}
}

func username(r *http.Request) string {
	return r.URL.Query().Get("username")
}

// decode reads a JSON body into v. An empty body decodes as {}.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeError maps service errors onto status codes. Unknown errors are
// logged and reported as 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	switch {
	case errors.Is(err, authz.ErrUnauthorized):
		jsonutil.Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrNotFound):
		jsonutil.Error(w, http.StatusNotFound, "Announcement not found")
	case errors.As(err, &ve):
		jsonutil.ValidationError(w, ve.Detail, ve.Fields)
	case errors.Is(err, ErrInvalidInput):
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("announcement request failed", zap.Error(err), zap.String("path", r.URL.Path))
		jsonutil.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// rejectBody answers a request whose body did not decode. An unauthorized
// caller gets 401, not a hint about the body.
func (h *Handler) rejectBody(w http.ResponseWriter, r *http.Request, op string) {
	if _, err := h.Svc.Authorize(r.Context(), username(r), op); err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.Error(w, http.StatusBadRequest, "Invalid request body")
}

// ListActive handles GET /announcements.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Svc.ListActive(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, recs)
}

// ListAll handles GET /announcements/all?username=.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Svc.ListAll(r.Context(), username(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, recs)
}

// Create handles POST /announcements?username=.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := decode(r, &in); err != nil {
		h.rejectBody(w, r, OpCreate)
		return
	}

	rec, err := h.Svc.Create(r.Context(), username(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, rec)
}

// Update handles PUT /announcements/{id}?username=.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := decode(r, &in); err != nil {
		h.rejectBody(w, r, OpUpdate)
		return
	}

	rec, err := h.Svc.Update(r.Context(), username(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, rec)
}

type deleteResponse struct {
	Message string `json:"message"`
}

// Delete handles DELETE /announcements/{id}?username=.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), username(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, deleteResponse{Message: "Announcement deleted successfully"})
}
