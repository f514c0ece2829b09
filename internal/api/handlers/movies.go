package handlers

import (
	"errors"
	"net/http"

	"github.com/amaumene/goflicks/internal/services/imdb"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	msgUpstreamFailure = "error - internal server error: cannot send request"
	msgNoResults       = "No results found."
)

// MovieHandler proxies catalog lookups to the IMDB API
type MovieHandler struct {
	catalog *imdb.Client
	logger  *logrus.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(catalog *imdb.Client, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// GetTitle handles GET /movies/{id}
func (h *MovieHandler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body, err := h.catalog.Title(r.Context(), id)
	if errors.Is(err, imdb.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, statusResponse{
			ID:      id,
			Status:  http.StatusNotFound,
			Message: "error - movie not found",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("movie_id", id).Error("Failed to fetch title")
		writeMessage(w, http.StatusInternalServerError, msgUpstreamFailure)
		return
	}

	writeRaw(w, http.StatusOK, body)
}

// Search handles GET /movies?expression=
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	expression := r.URL.Query().Get("expression")
	if expression == "" {
		// An empty expression can never match anything; answer without
		// bothering the upstream.
		writeMessage(w, http.StatusOK, msgNoResults)
		return
	}

	body, err := h.catalog.Search(r.Context(), expression)
	if errors.Is(err, imdb.ErrNoResults) {
		writeMessage(w, http.StatusOK, msgNoResults)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("expression", expression).Error("Failed to search movies")
		writeMessage(w, http.StatusInternalServerError, msgUpstreamFailure)
		return
	}

	writeRaw(w, http.StatusOK, body)
}

// TopMovies handles GET /top-movies
func (h *MovieHandler) TopMovies(w http.ResponseWriter, r *http.Request) {
	body, err := h.catalog.Top250(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch top movies")
		writeMessage(w, http.StatusInternalServerError, msgUpstreamFailure)
		return
	}

	writeRaw(w, http.StatusOK, body)
}

// GetTrailer handles GET /trailer/{id}
func (h *MovieHandler) GetTrailer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body, err := h.catalog.Trailer(r.Context(), id)
	if errors.Is(err, imdb.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, statusResponse{
			ID:      id,
			Status:  http.StatusNotFound,
			Message: "error - trailer not found",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("movie_id", id).Error("Failed to fetch trailer")
		writeMessage(w, http.StatusInternalServerError, msgUpstreamFailure)
		return
	}

	writeRaw(w, http.StatusOK, body)
}
