package watchbot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmptyTitle     = errors.New("empty title")
	ErrDuplicate      = errors.New("already on the list")
	ErrNotFound       = errors.New("movie not found")
	ErrAlreadyWatched = errors.New("already watched")
	ErrEmptyList      = errors.New("watchlist is empty")
	ErrAllWatched     = errors.New("everything has been watched")
)

// Watchlist owns the store and serializes every load-modify-save cycle.
type Watchlist struct {
	mu    sync.Mutex
	store Store
	rnd   *rand.Rand
	now   func() time.Time
}

func NewWatchlist(store Store) *Watchlist {
	return &Watchlist{
		store: store,
		rnd:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:   time.Now,
	}
}

func (w *Watchlist) load(ctx context.Context, chatID int64) ([]Movie, error) {
	movies, err := w.store.Load(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist for chat %d: %w", chatID, err)
	}
	return movies, nil
}

func (w *Watchlist) save(ctx context.Context, chatID int64, movies []Movie) error {
	if err := w.store.Save(ctx, chatID, movies); err != nil {
		return fmt.Errorf("failed to save watchlist for chat %d: %w", chatID, err)
	}
	return nil
}

// Add appends an unwatched record. On ErrDuplicate the stored record is
// returned.
func (w *Watchlist) Add(ctx context.Context, chatID int64, title, addedBy string) (Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Movie{}, ErrEmptyTitle
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	movies, err := w.load(ctx, chatID)
	if err != nil {
		return Movie{}, err
	}

	for _, m := range movies {
		if strings.EqualFold(m.Title, title) {
			return m, ErrDuplicate
		}
	}

	movie := Movie{
		Title:   title,
		AddedBy: addedBy,
		AddedAt: w.now(),
	}
	if err := w.save(ctx, chatID, append(movies, movie)); err != nil {
		return Movie{}, err
	}
	return movie, nil
}

// MarkWatched flags the record matching search as watched. Unwatched
// records are searched first; a match among watched records only yields
// ErrAlreadyWatched.
func (w *Watchlist) MarkWatched(ctx context.Context, chatID int64, search, by string) (Movie, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return Movie{}, ErrEmptyTitle
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	movies, err := w.load(ctx, chatID)
	if err != nil {
		return Movie{}, err
	}

	idx := findMovie(movies, search, func(m Movie) bool { return !m.Watched })
	if idx < 0 {
		if idx := findMovie(movies, search, func(m Movie) bool { return m.Watched }); idx >= 0 {
			return movies[idx], ErrAlreadyWatched
		}
		return Movie{}, ErrNotFound
	}

	movies[idx].Watched = true
	movies[idx].WatchedBy = by
	movies[idx].WatchedAt = w.now()
	if err := w.save(ctx, chatID, movies); err != nil {
		return Movie{}, err
	}
	return movies[idx], nil
}

// Remove deletes the record matching search.
func (w *Watchlist) Remove(ctx context.Context, chatID int64, search string) (Movie, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return Movie{}, ErrEmptyTitle
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	movies, err := w.load(ctx, chatID)
	if err != nil {
		return Movie{}, err
	}

	idx := findMovie(movies, search, func(Movie) bool { return true })
	if idx < 0 {
		return Movie{}, ErrNotFound
	}

	removed := movies[idx]
	movies = append(movies[:idx], movies[idx+1:]...)
	if err := w.save(ctx, chatID, movies); err != nil {
		return Movie{}, err
	}
	return removed, nil
}

// List returns the chat's records in insertion order.
func (w *Watchlist) List(ctx context.Context, chatID int64) ([]Movie, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx, chatID)
}

// Random picks one unwatched record uniformly.
func (w *Watchlist) Random(ctx context.Context, chatID int64) (Movie, error) {
	picked, err := w.Pick(ctx, chatID, 1)
	if err != nil {
		return Movie{}, err
	}
	return picked[0], nil
}

// Pick samples up to n distinct unwatched records without replacement.
// The result is capped at the number of unwatched records.
func (w *Watchlist) Pick(ctx context.Context, chatID int64, n int) ([]Movie, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	movies, err := w.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrEmptyList
	}

	var unwatched []Movie
	for _, m := range movies {
		if !m.Watched {
			unwatched = append(unwatched, m)
		}
	}
	if len(unwatched) == 0 {
		return nil, ErrAllWatched
	}

	n = max(1, min(n, len(unwatched)))
	picked := make([]Movie, 0, n)
	for _, i := range w.rnd.Perm(len(unwatched))[:n] {
		picked = append(picked, unwatched[i])
	}
	return picked, nil
}

// findMovie returns the index of the first record accepted by keep whose
// title equals search ignoring case, falling back to the first whose title
// contains it. It returns -1 when nothing matches.
func findMovie(movies []Movie, search string, keep func(Movie) bool) int {
	for i, m := range movies {
		if keep(m) && strings.EqualFold(m.Title, search) {
			return i
		}
	}
	lower := strings.ToLower(search)
	for i, m := range movies {
		if keep(m) && strings.Contains(strings.ToLower(m.Title), lower) {
			return i
		}
	}
	return -1
}
