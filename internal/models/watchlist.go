package models

import "time"

// Watchlist holds one user's saved movies. There is exactly one document per
// user, keyed by the identifier the token verifier resolved.
type Watchlist struct {
	UserID    string  `boltholdKey:"UserID" json:"_id"`
	MovieList []Movie `json:"movieList"`

	// Metadata
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Movie is a catalog entry persisted inside a watchlist. Field names follow
// the upstream title payload so the store keeps exactly what the client sent.
type Movie struct {
	ID               string    `json:"id"`
	Image            string    `json:"image"`
	FullTitle        string    `json:"fullTitle"`
	RuntimeStr       string    `json:"runtimeStr"`
	Genres           string    `json:"genres"`
	IMDbRating       string    `json:"imDbRating"`
	MetacriticRating string    `json:"metacriticRating"`
	BoxOffice        BoxOffice `json:"boxOffice"`
	ContentRating    string    `json:"contentRating"`
	Plot             string    `json:"plot"`
}

// BoxOffice mirrors the nested boxOffice object of the upstream title payload.
type BoxOffice struct {
	Budget            string `json:"budget"`
	OpeningWeekendUSA string `json:"openingWeekendUSA"`
	GrossUSA          string `json:"grossUSA"`
	WorldwideGross    string `json:"cumWorldwideGross"`
}
