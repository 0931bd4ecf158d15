package search

import (
	"log/slog"

	"github.com/Alb-O/frz/internal/data"
)

// StreamDataset runs one query over a dataset, delivering ranked batches
// on the stream. It checks for supersession between chunks and abandons
// the computation silently when a newer query exists. The return value
// is false when the stream's receiver is gone.
func StreamDataset(query string, d data.Dataset, s Stream, ctx QueryContext, m Matcher) bool {
	if query == "" {
		return streamAll(d, s, ctx)
	}
	return streamRanked(query, d, s, ctx, m)
}

// streamAll lists the dataset in its natural order, bounded to the
// render limit.
func streamAll(d data.Dataset, s Stream, ctx QueryContext) bool {
	collector := NewAlphabeticalCollector(d, MaxRenderedResults)
	total := d.Len()

	for i := 0; i < total; i++ {
		if collector.Advance() {
			if ctx.Superseded(s.ID()) {
				return true
			}
			if !s.Send(collector.Flush(), false) {
				return false
			}
		}
		if collector.Full() {
			break
		}
	}

	if ctx.Superseded(s.ID()) {
		return true
	}
	return s.Send(collector.Flush(), true)
}

// streamRanked scores the dataset chunk by chunk, aggregating the top
// matches and flushing after each chunk that changed the ranking.
func streamRanked(query string, d data.Dataset, s Stream, ctx QueryContext, m Matcher) bool {
	aggregator := NewScoreAggregator(MaxRenderedResults)
	total := d.Len()

	for from := 0; from < total; from += matchChunkSize {
		if ctx.Superseded(s.ID()) {
			slog.Debug("query superseded", slog.Uint64("id", s.ID()), slog.String("mode", s.Mode()))
			return true
		}

		to := from + matchChunkSize
		if to > total {
			to = total
		}
		for _, match := range m.Match(query, d, from, to) {
			aggregator.Add(match.Index, match.Score, d.IDFor(match.Index))
		}

		if batch, ok := aggregator.FlushPartial(); ok {
			if !s.Send(batch, false) {
				return false
			}
		}
	}

	if ctx.Superseded(s.ID()) {
		return true
	}
	return s.Send(aggregator.Finish(), true)
}
