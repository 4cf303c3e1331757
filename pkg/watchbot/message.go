package watchbot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	maxMessageLen   = 4096
	maxPollOptions  = 10
	maxPollOption   = 100
	defaultPollSize = 3

	pollQuestion = "What are we watching?"

	textEmptyList   = "The watchlist is empty. Add movies with /add <title>."
	textAllWatched  = "Everything on the watchlist has been watched."
	textFailure     = "Something went wrong, please try again later."
	textUnknown     = "Unknown command. Use /help to see available commands."
	textRestricted  = "Sorry, this is a private bot. Access is restricted to authorized users only."
	textUsageAdd    = "Usage: /add <title>"
	textUsageWatch  = "Usage: /watched <title>"
	textUsageRemove = "Usage: /remove <title>"
	textUsagePoll   = "Usage: /poll N (1-10)"
)

const helpText = "🎬 <b>Movie Watchlist Bot</b>\n\n" +
	"<b>Commands:</b>\n" +
	"<code>/add title</code> - add a movie to the list\n" +
	"<code>/watched title</code> - mark a movie as watched\n" +
	"<code>/remove title</code> - remove a movie\n" +
	"<code>/list</code> - show all movies\n" +
	"<code>/random</code> - pick a random unwatched movie\n" +
	"<code>/poll N</code> - start a poll among N unwatched movies (1-10)\n\n" +
	"<b>Examples:</b>\n" +
	"<code>/add Inception</code>\n" +
	"<code>/watched Inception</code>\n" +
	"<code>/poll 3</code>"

// Reply is the response to a single command: either text or a poll.
type Reply struct {
	Text string
	HTML bool
	Poll *Poll
}

type Poll struct {
	Question string
	Options  []string
}

func textReply(format string, args ...any) Reply {
	if len(args) == 0 {
		return Reply{Text: format}
	}
	return Reply{Text: fmt.Sprintf(format, args...)}
}

func formatList(movies []Movie) string {
	var sb strings.Builder
	for i, m := range movies {
		status := "not watched"
		if m.Watched {
			status = "watched"
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s (%s)", i+1, m.Title, status)
	}
	return sb.String()
}

func formatRandom(m Movie) string {
	return fmt.Sprintf("🎲 <b>%s</b>", escapeHTML(m.Title))
}

func pollReply(movies []Movie) Reply {
	options := make([]string, 0, len(movies))
	for _, m := range movies {
		options = append(options, truncate(m.Title, maxPollOption))
	}
	return Reply{Poll: &Poll{Question: pollQuestion, Options: options}}
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// splitMessage breaks text into chunks of at most maxMessageLen runes,
// preferring line boundaries.
func splitMessage(text string) []string {
	if utf8.RuneCountInString(text) <= maxMessageLen {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > maxMessageLen {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:maxMessageLen]))
			line = string(runes[maxMessageLen:])
		}

		n := utf8.RuneCountInString(line)
		if curLen > 0 && curLen+1+n > maxMessageLen {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte('\n')
			curLen++
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()

	return chunks
}
