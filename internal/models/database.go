package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// ErrWatchlistNotFound is returned when an operation targets a user that has
// no watchlist document yet.
var ErrWatchlistNotFound = errors.New("watchlist not found")

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Watchlist operations

// CreateWatchlist inserts an empty watchlist for the user. The insert is a
// single atomic operation: if a document already exists for the user the key
// collision is reported as created=false, never as a duplicate document.
func (db *Database) CreateWatchlist(userID string) (bool, error) {
	watchlist := &Watchlist{
		UserID:    userID,
		MovieList: []Movie{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := db.store.Insert(userID, watchlist)
	if errors.Is(err, bolthold.ErrKeyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert watchlist: %w", err)
	}

	return true, nil
}

// AddMovie appends a movie to the user's watchlist. The read-modify-write runs
// inside one write transaction. Duplicate entries are not rejected; the client
// is expected to consult FindMovie before adding.
func (db *Database) AddMovie(userID string, movie Movie) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var watchlist Watchlist
		if err := db.store.TxGet(tx, userID, &watchlist); err != nil {
			if errors.Is(err, bolthold.ErrNotFound) {
				return ErrWatchlistNotFound
			}
			return fmt.Errorf("failed to load watchlist: %w", err)
		}

		watchlist.MovieList = append(watchlist.MovieList, movie)
		watchlist.UpdatedAt = time.Now()

		return db.store.TxUpdate(tx, userID, &watchlist)
	})
}

// RemoveMovie removes every entry matching the movie ID from the user's
// watchlist. Removing a movie that is not on the list is a no-op, not an
// error.
func (db *Database) RemoveMovie(userID string, movieID string) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var watchlist Watchlist
		if err := db.store.TxGet(tx, userID, &watchlist); err != nil {
			if errors.Is(err, bolthold.ErrNotFound) {
				return ErrWatchlistNotFound
			}
			return fmt.Errorf("failed to load watchlist: %w", err)
		}

		kept := watchlist.MovieList[:0]
		for _, movie := range watchlist.MovieList {
			if movie.ID != movieID {
				kept = append(kept, movie)
			}
		}
		watchlist.MovieList = kept
		watchlist.UpdatedAt = time.Now()

		return db.store.TxUpdate(tx, userID, &watchlist)
	})
}

// GetWatchlist returns all movies on the user's watchlist
func (db *Database) GetWatchlist(userID string) ([]Movie, error) {
	var watchlist Watchlist
	err := db.store.Get(userID, &watchlist)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, ErrWatchlistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	// An empty list decodes as nil; hand back a slice so callers always
	// serialize it as a JSON array.
	if watchlist.MovieList == nil {
		watchlist.MovieList = []Movie{}
	}

	return watchlist.MovieList, nil
}

// FindMovie returns the first watchlist entry matching the movie ID, or nil
// when the movie is not on the list. An absent movie is a valid outcome, not
// an error; it tells the caller to fetch the title from the catalog instead.
func (db *Database) FindMovie(userID string, movieID string) (*Movie, error) {
	var watchlist Watchlist
	err := db.store.Get(userID, &watchlist)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, ErrWatchlistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	for i := range watchlist.MovieList {
		if watchlist.MovieList[i].ID == movieID {
			return &watchlist.MovieList[i], nil
		}
	}

	return nil, nil
}
