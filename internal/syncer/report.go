package syncer

import (
	"strings"

	"blade-trans-sync/internal/textutil"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogResult reports a finished pass: written files at info level, skips at
// debug level.
func LogResult(res Result) {
	var ev *zerolog.Event
	switch res.Status {
	case StatusWritten, StatusDryRun:
		ev = log.Info()
	default:
		ev = log.Debug()
	}

	ev.Str("template", res.Template).
		Str("document", res.Document).
		Str("status", string(res.Status)).
		Int("keys", len(res.Keys)).
		Int("added", len(res.Added)).
		Int("removed", len(res.Removed)).
		Str("new_keys", textutil.Truncate(strings.Join(res.Added, ", "), 120)).
		Msg("Translation file synchronized")
}

// Summary counts results by status.
func Summary(results []Result) map[Status]int {
	out := make(map[Status]int)
	for _, r := range results {
		out[r.Status]++
	}
	return out
}
