package watchbot

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
)

// Command is a parsed "/name args" message.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses text of the form "/name[@bot] args...". Names are
// lower-cased and runs of whitespace in args collapse to single spaces.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return Command{}, false
	}

	return Command{
		Name: strings.ToLower(name),
		Args: strings.Join(fields[1:], " "),
	}, true
}

// Dispatcher maps commands onto Watchlist operations and renders replies.
type Dispatcher struct {
	list *Watchlist
}

func NewDispatcher(list *Watchlist) *Dispatcher {
	return &Dispatcher{list: list}
}

// Dispatch runs cmd against the watchlist of chatID. from names the sender.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, from string, cmd Command) Reply {
	switch cmd.Name {
	case "start", "help":
		return Reply{Text: helpText, HTML: true}
	case "add":
		return d.add(ctx, chatID, from, cmd.Args)
	case "watched":
		return d.watched(ctx, chatID, from, cmd.Args)
	case "remove":
		return d.remove(ctx, chatID, cmd.Args)
	case "list":
		return d.listMovies(ctx, chatID)
	case "random":
		return d.random(ctx, chatID)
	case "poll":
		return d.poll(ctx, chatID, cmd.Args)
	default:
		return textReply(textUnknown)
	}
}

func (d *Dispatcher) add(ctx context.Context, chatID int64, from, title string) Reply {
	movie, err := d.list.Add(ctx, chatID, title, from)
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return textReply(textUsageAdd)
	case errors.Is(err, ErrDuplicate):
		return textReply("Already on the list: %s", movie.Title)
	case err != nil:
		return failure(err)
	}
	return textReply("Added: %s", movie.Title)
}

func (d *Dispatcher) watched(ctx context.Context, chatID int64, from, search string) Reply {
	movie, err := d.list.MarkWatched(ctx, chatID, search, from)
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return textReply(textUsageWatch)
	case errors.Is(err, ErrNotFound):
		return textReply("Not found: %s", search)
	case errors.Is(err, ErrAlreadyWatched):
		return textReply("Already watched: %s", movie.Title)
	case err != nil:
		return failure(err)
	}
	return textReply("Marked watched: %s", movie.Title)
}

func (d *Dispatcher) remove(ctx context.Context, chatID int64, search string) Reply {
	movie, err := d.list.Remove(ctx, chatID, search)
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return textReply(textUsageRemove)
	case errors.Is(err, ErrNotFound):
		return textReply("Not found: %s", search)
	case err != nil:
		return failure(err)
	}
	return textReply("Removed: %s", movie.Title)
}

func (d *Dispatcher) listMovies(ctx context.Context, chatID int64) Reply {
	movies, err := d.list.List(ctx, chatID)
	if err != nil {
		return failure(err)
	}
	if len(movies) == 0 {
		return textReply(textEmptyList)
	}
	return Reply{Text: formatList(movies)}
}

func (d *Dispatcher) random(ctx context.Context, chatID int64) Reply {
	movie, err := d.list.Random(ctx, chatID)
	if err != nil {
		return pickFailure(err)
	}
	return Reply{Text: formatRandom(movie), HTML: true}
}

func (d *Dispatcher) poll(ctx context.Context, chatID int64, args string) Reply {
	n := defaultPollSize
	if args != "" {
		v, err := strconv.Atoi(strings.Fields(args)[0])
		if err != nil || v < 1 {
			return textReply(textUsagePoll)
		}
		n = min(v, maxPollOptions)
	}

	movies, err := d.list.Pick(ctx, chatID, n)
	if err != nil {
		return pickFailure(err)
	}
	if len(movies) == 1 {
		return textReply("Only one option: %s", movies[0].Title)
	}
	return pollReply(movies)
}

func pickFailure(err error) Reply {
	switch {
	case errors.Is(err, ErrEmptyList):
		return textReply(textEmptyList)
	case errors.Is(err, ErrAllWatched):
		return textReply(textAllWatched)
	}
	return failure(err)
}

func failure(err error) Reply {
	log.Printf("Watchlist error: %v", err)
	return textReply(textFailure)
}
