package tmdb

// FindResponse is the response from TMDB /find/{external_id}.
type FindResponse struct {
	MovieResults []MovieResult `json:"movie_results"`
}

// MovieResult is a movie from TMDB list endpoints (find, trending).
type MovieResult struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    *string `json:"poster_path"`
	BackdropPath  *string `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	MediaType     string  `json:"media_type,omitempty"`
}

// TrendingResponse is the response from TMDB /trending/movie/{window}.
type TrendingResponse struct {
	Page    int           `json:"page"`
	Results []MovieResult `json:"results"`
}

// MovieDetails is the detailed movie info from TMDB /movie/{id}.
// Credits and Videos are only present when requested via append_to_response.
type MovieDetails struct {
	ID               int              `json:"id"`
	Title            string           `json:"title"`
	OriginalTitle    string           `json:"original_title"`
	Overview         string           `json:"overview"`
	ReleaseDate      string           `json:"release_date"`
	PosterPath       *string          `json:"poster_path"`
	BackdropPath     *string          `json:"backdrop_path"`
	VoteAverage      float64          `json:"vote_average"`
	VoteCount        int              `json:"vote_count"`
	Runtime          int              `json:"runtime"`
	Budget           int64            `json:"budget"`
	Revenue          int64            `json:"revenue"`
	Status           string           `json:"status"`
	Tagline          string           `json:"tagline"`
	ImdbID           string           `json:"imdb_id"`
	OriginalLanguage string           `json:"original_language"`
	Genres           []Genre          `json:"genres"`
	SpokenLanguages  []SpokenLanguage `json:"spoken_languages"`
	Credits          *CreditsResponse `json:"credits,omitempty"`
	Videos           *VideosResponse  `json:"videos,omitempty"`
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SpokenLanguage represents a spoken language entry from TMDB.
type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	Iso6391     string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// CreditsResponse is the response from TMDB credits endpoint.
type CreditsResponse struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember represents a cast member from TMDB credits.
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	Order       int     `json:"order"`
	ProfilePath *string `json:"profile_path"`
}

// CrewMember represents a crew member from TMDB credits.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// VideosResponse is the response from TMDB /movie/{id}/videos.
type VideosResponse struct {
	Results []Video `json:"results"`
}

// Video represents a video (trailer, teaser, etc.) from TMDB.
type Video struct {
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Official bool   `json:"official"`
}

// ErrorResponse is an error from the TMDB API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
