package watchbot

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

func newTestWatchlist(t *testing.T) *Watchlist {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "movie_data.json"))
	if err != nil {
		t.Fatal(err)
	}
	w := NewWatchlist(db)
	w.rnd = rand.New(rand.NewPCG(1, 2))
	w.now = func() time.Time { return testNow }
	return w
}

func addMovies(t *testing.T, w *Watchlist, chatID int64, titles ...string) {
	t.Helper()
	for _, title := range titles {
		if _, err := w.Add(context.Background(), chatID, title, "Ann"); err != nil {
			t.Fatalf("Add(%q): %v", title, err)
		}
	}
}

func titles(movies []Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestWatchlistAdd(t *testing.T) {
	w := newTestWatchlist(t)
	ctx := context.Background()

	movie, err := w.Add(ctx, 1, "  Inception ", "Ann")
	if err != nil {
		t.Fatal(err)
	}
	if movie.Title != "Inception" || movie.Watched || movie.AddedBy != "Ann" || !movie.AddedAt.Equal(testNow) {
		t.Errorf("Unexpected movie: %+v", movie)
	}

	t.Run("Duplicate", func(t *testing.T) {
		existing, err := w.Add(ctx, 1, "inception", "Bob")
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("Expected ErrDuplicate, got %v", err)
		}
		if existing.Title != "Inception" {
			t.Errorf("Expected stored title, got %q", existing.Title)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := w.Add(ctx, 1, "   ", "Ann"); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("Expected ErrEmptyTitle, got %v", err)
		}
	})

	t.Run("SeparateChats", func(t *testing.T) {
		if _, err := w.Add(ctx, 2, "Inception", "Bob"); err != nil {
			t.Errorf("Same title in another chat should be accepted: %v", err)
		}
	})

	movies, err := w.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 1 {
		t.Errorf("Expected 1 movie, got %d", len(movies))
	}
}

func TestWatchlistMarkWatched(t *testing.T) {
	w := newTestWatchlist(t)
	ctx := context.Background()
	addMovies(t, w, 1, "The Matrix", "The Matrix Reloaded", "Heat")

	tests := []struct {
		name    string
		search  string
		want    string
		wantErr error
	}{
		{name: "exact match beats substring", search: "the matrix reloaded", want: "The Matrix Reloaded"},
		{name: "substring match", search: "matrix", want: "The Matrix"},
		{name: "already watched", search: "The Matrix", want: "The Matrix", wantErr: ErrAlreadyWatched},
		{name: "unknown", search: "Alien", wantErr: ErrNotFound},
		{name: "empty", search: " ", wantErr: ErrEmptyTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movie, err := w.MarkWatched(ctx, 1, tt.search, "Bob")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MarkWatched(%q) error = %v, want %v", tt.search, err, tt.wantErr)
			}
			if movie.Title != tt.want {
				t.Errorf("MarkWatched(%q) = %q, want %q", tt.search, movie.Title, tt.want)
			}
		})
	}

	movies, err := w.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range movies {
		wantWatched := m.Title != "Heat"
		if m.Watched != wantWatched {
			t.Errorf("%s: watched = %v, want %v", m.Title, m.Watched, wantWatched)
		}
		if m.Watched && (m.WatchedBy != "Bob" || !m.WatchedAt.Equal(testNow)) {
			t.Errorf("%s: unexpected watched metadata %+v", m.Title, m)
		}
	}
}

func TestWatchlistRemove(t *testing.T) {
	w := newTestWatchlist(t)
	ctx := context.Background()
	addMovies(t, w, 1, "Inception", "Heat", "Alien")

	removed, err := w.Remove(ctx, 1, "HEAT")
	if err != nil {
		t.Fatal(err)
	}
	if removed.Title != "Heat" {
		t.Errorf("Removed %q, want Heat", removed.Title)
	}

	if _, err := w.Remove(ctx, 1, "Heat"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := w.Remove(ctx, 1, ""); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}

	movies, err := w.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := titles(movies)
	if len(got) != 2 || got[0] != "Inception" || got[1] != "Alien" {
		t.Errorf("List after remove = %v, want [Inception Alien]", got)
	}
}

func TestWatchlistRandom(t *testing.T) {
	w := newTestWatchlist(t)
	ctx := context.Background()

	if _, err := w.Random(ctx, 1); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("Expected ErrEmptyList, got %v", err)
	}

	addMovies(t, w, 1, "Inception", "Heat")
	if _, err := w.MarkWatched(ctx, 1, "Heat", "Ann"); err != nil {
		t.Fatal(err)
	}

	for range 20 {
		movie, err := w.Random(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if movie.Title != "Inception" {
			t.Fatalf("Random returned %q, want only unwatched Inception", movie.Title)
		}
	}

	if _, err := w.MarkWatched(ctx, 1, "Inception", "Ann"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Random(ctx, 1); !errors.Is(err, ErrAllWatched) {
		t.Errorf("Expected ErrAllWatched, got %v", err)
	}
}

func TestWatchlistPick(t *testing.T) {
	w := newTestWatchlist(t)
	ctx := context.Background()
	addMovies(t, w, 1, "A", "B", "C", "D", "E")
	if _, err := w.MarkWatched(ctx, 1, "E", "Ann"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		n    int
		want int
	}{
		{n: 1, want: 1},
		{n: 3, want: 3},
		{n: 4, want: 4},
		{n: 10, want: 4},
		{n: 0, want: 1},
	}

	for _, tt := range tests {
		picked, err := w.Pick(ctx, 1, tt.n)
		if err != nil {
			t.Fatal(err)
		}
		if len(picked) != tt.want {
			t.Errorf("Pick(%d) returned %d movies, want %d", tt.n, len(picked), tt.want)
		}
		seen := make(map[string]bool)
		for _, m := range picked {
			if m.Watched {
				t.Errorf("Pick(%d) returned watched movie %q", tt.n, m.Title)
			}
			if seen[m.Title] {
				t.Errorf("Pick(%d) returned %q twice", tt.n, m.Title)
			}
			seen[m.Title] = true
		}
	}
}

type failingStore struct{ err error }

func (s failingStore) Load(context.Context, int64) ([]Movie, error) { return nil, s.err }
func (s failingStore) Save(context.Context, int64, []Movie) error  { return s.err }
func (s failingStore) Close() error                                { return nil }

func TestWatchlistStoreErrors(t *testing.T) {
	errDisk := errors.New("disk on fire")
	w := NewWatchlist(failingStore{err: errDisk})
	ctx := context.Background()

	if _, err := w.Add(ctx, 1, "Heat", "Ann"); !errors.Is(err, errDisk) {
		t.Errorf("Add: expected wrapped store error, got %v", err)
	}
	if _, err := w.List(ctx, 1); !errors.Is(err, errDisk) {
		t.Errorf("List: expected wrapped store error, got %v", err)
	}
	if _, err := w.Random(ctx, 1); !errors.Is(err, errDisk) {
		t.Errorf("Random: expected wrapped store error, got %v", err)
	}
}
