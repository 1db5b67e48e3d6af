package metadata

// NotAvailable is the placeholder for any display field the provider did not supply.
const NotAvailable = "N/A"

// Image sizes requested from the provider.
const (
	PosterSize  = "w500"
	ProfileSize = "w500"
)

// MaxCast is the number of cast members kept in a details bundle.
const MaxCast = 5

// TrendingLimit is the number of trending movies returned.
const TrendingLimit = 5

// Details is the enrichment bundle shown for a selected movie.
type Details struct {
	TMDBID      int          `json:"tmdbId"`
	Title       string       `json:"title"`
	Rating      float64      `json:"rating"`
	VoteCount   int          `json:"voteCount"`
	ReleaseDate string       `json:"releaseDate"`
	Runtime     int          `json:"runtime,omitempty"`
	Tagline     string       `json:"tagline,omitempty"`
	Overview    string       `json:"overview"`
	Director    string       `json:"director"`
	Cast        []CastMember `json:"cast"`
	Genres      string       `json:"genres"`
	Budget      string       `json:"budget"`
	Revenue     string       `json:"revenue"`
	AvailableIn string       `json:"availableIn"`
	PosterURL   string       `json:"posterUrl,omitempty"`
	TrailerURL  string       `json:"trailerUrl,omitempty"`
}

// CastMember is one credited actor in a details bundle.
type CastMember struct {
	Name       string `json:"name"`
	Character  string `json:"character"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// TrendingMovie is an entry of the provider's weekly trending list.
type TrendingMovie struct {
	TMDBID    int    `json:"tmdbId"`
	Title     string `json:"title"`
	PosterURL string `json:"posterUrl,omitempty"`
}
