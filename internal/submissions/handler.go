package submissions

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/image-intake/pkg/decode"
	"github.com/JaimeStill/image-intake/pkg/handlers"
	"github.com/JaimeStill/image-intake/pkg/pagination"
	"github.com/JaimeStill/image-intake/pkg/routes"
)

const (
	// formMemory is the multipart size kept in memory; larger parts spill to disk.
	formMemory = 1 << 20

	// formOverhead allows for the email field and multipart framing on top of
	// the image itself.
	formOverhead = 64 << 10

	sniffLen = 512
)

// SubmitResponse acknowledges an accepted upload.
type SubmitResponse struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Status       Status    `json:"status"`
	Message      string    `json:"message"`
}

// StatusResponse reports processing progress. ResultURL is only set once the
// submission is completed.
type StatusResponse struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Status       Status    `json:"status"`
	ResultURL    *string   `json:"result_url"`
}

// Handler provides HTTP endpoints for submission operations.
type Handler struct {
	sys        System
	uploader   *Uploader
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a submission handler.
func NewHandler(sys System, uploader *Uploader, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		uploader:   uploader,
		logger:     logger.With("handler", "submissions"),
		pagination: pagination,
	}
}

// Routes returns the submission endpoint route groups.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Tags:        []string{"Intake"},
			Description: "Image submission and status polling",
			Routes: []routes.Route{
				{Method: "POST", Pattern: "/submit-image", Handler: h.Submit, OpenAPI: Spec.Submit},
				{Method: "GET", Pattern: "/status/{id}", Handler: h.Status, OpenAPI: Spec.Status},
			},
		},
		{
			Prefix:      "/submissions",
			Tags:        []string{"Submissions"},
			Description: "Submission records and processing updates",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
				{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
				{Method: "GET", Pattern: "/{id}/image", Handler: h.Image, OpenAPI: Spec.Image},
				{Method: "PUT", Pattern: "/{id}/status", Handler: h.UpdateStatus, OpenAPI: Spec.UpdateStatus},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
			},
		},
	}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploader.MaxSize()+formOverhead)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(w, fmt.Errorf("%w (%d bytes)", ErrPayloadTooLarge, h.uploader.MaxSize()))
			return
		}
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidForm, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: image required", ErrInvalidForm))
		return
	}
	defer file.Close()

	body := bufio.NewReaderSize(file, sniffLen)
	cmd := AcceptCommand{
		Email:       r.FormValue("email"),
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), body),
		Body:        body,
	}

	receipt, err := h.uploader.Accept(r.Context(), cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SubmitResponse{
		SubmissionID: receipt.SubmissionID,
		Status:       StatusReceived,
		Message:      "Image received and processing",
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	sub, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := StatusResponse{SubmissionID: sub.ID, Status: sub.Status}
	if sub.Status == StatusCompleted {
		resp.ResultURL = sub.ResultImagePath
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, err)
		return
	}
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.Page(r.Context(), page, filters)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	sub, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sub)
}

// Image streams the stored original image.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rc, contentType, err := h.sys.Image(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("image stream interrupted", "id", id, "error", err)
	}
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	cmd, err := decode.JSON[UpdateStatusCommand](r.Body)
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidForm, err))
		return
	}

	sub, err := h.sys.UpdateStatus(r.Context(), id, cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sub)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.sys.Delete(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !deleted {
		h.respondError(w, ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: invalid submission id", ErrInvalidForm))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

// detectContentType trusts the part header unless it is missing or generic,
// in which case the leading bytes are sniffed.
func detectContentType(header string, body *bufio.Reader) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	head, _ := body.Peek(sniffLen)
	return http.DetectContentType(head)
}
