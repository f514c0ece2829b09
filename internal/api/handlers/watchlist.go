package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amaumene/goflicks/internal/api/middleware"
	"github.com/amaumene/goflicks/internal/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// WatchlistHandler owns the per-user watchlist endpoints
type WatchlistHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(db *models.Database, logger *logrus.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		db:     db,
		logger: logger,
	}
}

// createResponse is the shape of the create acknowledgement
type createResponse struct {
	ID      string `json:"_id"`
	Message string `json:"message"`
}

// Create handles POST /watchlist. Called on every login; creating a list
// that already exists is success, not an error.
func (h *WatchlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	created, err := h.db.CreateWatchlist(userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to create watchlist")
		writeMessage(w, http.StatusInternalServerError, "error - internal server error: cannot create watchlist")
		return
	}

	message := "watchlist already exists"
	if created {
		message = "successfully created"
	}

	writeJSON(w, http.StatusOK, createResponse{ID: userID, Message: message})
}

// AddMovie handles PUT /watchlist/add
func (h *WatchlistHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var movie models.Movie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		writeMessage(w, http.StatusBadRequest, "error - invalid request body")
		return
	}

	err := h.db.AddMovie(userID, movie)
	if errors.Is(err, models.ErrWatchlistNotFound) {
		h.writeWatchlistNotFound(w, userID)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to add movie")
		writeMessage(w, http.StatusInternalServerError, "error - internal server error: cannot add movie")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:      userID,
		Status:  http.StatusOK,
		Message: "successfully added movie to watchlist",
	})
}

// DeleteMovie handles PUT /watchlist/delete
func (h *WatchlistHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "error - invalid request body")
		return
	}

	err := h.db.RemoveMovie(userID, body.ID)
	if errors.Is(err, models.ErrWatchlistNotFound) {
		h.writeWatchlistNotFound(w, userID)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to delete movie")
		writeMessage(w, http.StatusInternalServerError, "error - internal server error: cannot delete movie")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:      userID,
		Status:  http.StatusOK,
		Message: "successfully deleted movie from watchlist",
	})
}

// GetAll handles GET /watchlist
func (h *WatchlistHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	movies, err := h.db.GetWatchlist(userID)
	if errors.Is(err, models.ErrWatchlistNotFound) {
		h.writeWatchlistNotFound(w, userID)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to fetch watchlist")
		writeMessage(w, http.StatusInternalServerError, "error - internal server error: cannot fetch")
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// GetOne handles GET /watchlist/{id}. A movie that is not on the list is a
// valid outcome answered with an empty object, telling the client to fetch
// the title from the catalog instead.
func (h *WatchlistHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	movieID := mux.Vars(r)["id"]

	movie, err := h.db.FindMovie(userID, movieID)
	if errors.Is(err, models.ErrWatchlistNotFound) {
		h.writeWatchlistNotFound(w, userID)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to query watchlist")
		writeMessage(w, http.StatusInternalServerError, "error - internal server error: cannot fetch")
		return
	}

	if movie == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

func (h *WatchlistHandler) writeWatchlistNotFound(w http.ResponseWriter, userID string) {
	writeJSON(w, http.StatusNotFound, statusResponse{
		ID:      userID,
		Status:  http.StatusNotFound,
		Message: "error - watchlist not found",
	})
}
