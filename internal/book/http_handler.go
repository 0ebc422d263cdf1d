package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register mounts the book routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("GET /books/{id}", h.Get)
	mux.HandleFunc("PUT /books/{id}", h.Update)
	mux.HandleFunc("PATCH /books/{id}", h.Update)
	mux.HandleFunc("DELETE /books/{id}", h.Delete)
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	httpx.JSON(w, http.StatusOK, books)
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFoundPath(w, r)
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Update handles PUT and PATCH /books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	// A non-numeric id reaches the service as 0, which it rejects as invalid.
	id, _ := pathID(r)
	b, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFoundPath(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation:
			httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, e.Message, details(e.Fields))
			return
		case KindNotFound:
			httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, e.Message, nil)
			return
		}
	}

	httpx.LoggerFrom(r.Context()).Error("book request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
}

// pathID parses the {id} path segment. ok is false when it is not an integer.
func pathID(r *http.Request) (id int64, ok bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func notFoundPath(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound,
		fmt.Sprintf("book %q not found", r.PathValue("id")), nil)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&in)
	if errors.Is(err, io.EOF) {
		return Input{}, true
	}
	if err == nil {
		// Anything after the object makes the body malformed.
		if err = dec.Decode(&struct{}{}); errors.Is(err, io.EOF) {
			return in, true
		}
		if err == nil {
			err = errors.New("trailing data after JSON object")
		}
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, httpx.CodeValidation, "Request body too large", nil)
		return Input{}, false
	}
	httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid data - malformed JSON body", nil)
	return Input{}, false
}

func details(fields []FieldError) []httpx.ErrorDetail {
	if len(fields) == 0 {
		return nil
	}
	out := make([]httpx.ErrorDetail, len(fields))
	for i, f := range fields {
		out[i] = httpx.ErrorDetail{Field: f.Field, Message: f.Message}
	}
	return out
}
