// Package delimiter guesses a field delimiter from a sample of input
// by probing a handful of candidates and scoring how consistently each
// one splits the sample into same-width rows.
package delimiter

import (
	"math"

	"github.com/brinkdata/csvstream/internal/scanner"
)

// DefaultCandidates are tried, in this order, when the caller does not
// override them.
var DefaultCandidates = []string{",", "\t", "|", ";", "\x1e", "\x1f"}

// ProbeLines bounds how many non-comment, non-empty logical lines of
// the sample are inspected per candidate.
const ProbeLines = 10

// Options configures a single detection pass.
type Options struct {
	Candidates []string
	Quote      byte
	Escape     byte
	Newline    string
	Comment    string
	// FinalChunk reports whether sample is the entire input rather than
	// a possibly-truncated prefix of a larger stream. When true, a
	// trailing row that runs to the end of sample without a newline is
	// scored like any other row instead of being withheld as presumably
	// incomplete.
	FinalChunk bool
}

// Detect scores each candidate delimiter against sample and returns the
// best one. ok is false only when no candidate produced more than one
// field on any probed row, in which case Detect also reports that via
// the returned bool so the caller can fall back to its own default and
// emit UndetectableDelimiter.
func Detect(sample string, opts Options) (best string, ok bool) {
	candidates := opts.Candidates
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	type score struct {
		delim      string
		avgFields  float64
		deviation  float64
		sawMultple bool
	}

	var scores []score
	for _, c := range candidates {
		quote := opts.Quote
		if quote == 0 {
			quote = '"'
		}
		escape := opts.Escape
		if escape == 0 {
			escape = quote
		}
		sc := scanner.New(scanner.Config{
			Delimiter: c,
			Quote:     quote,
			Escape:    escape,
			Newline:   opts.Newline,
			Comment:   opts.Comment,
		})
		res := sc.Scan(sample, 0, !opts.FinalChunk)

		rows := make([]scanner.Row, 0, ProbeLines)
		for _, r := range res.Rows {
			if len(r.Fields) == 1 && r.Fields[0] == "" {
				continue
			}
			rows = append(rows, r)
			if len(rows) == ProbeLines {
				break
			}
		}
		if len(rows) == 0 {
			scores = append(scores, score{delim: c})
			continue
		}

		sum := 0
		sawMultiple := false
		counts := make([]int, len(rows))
		for i, r := range rows {
			counts[i] = len(r.Fields)
			sum += len(r.Fields)
			if len(r.Fields) > 1 {
				sawMultiple = true
			}
		}
		avg := float64(sum) / float64(len(rows))
		var dev float64
		for _, n := range counts {
			dev += math.Abs(float64(n) - avg)
		}
		dev /= float64(len(rows))

		scores = append(scores, score{delim: c, avgFields: avg, deviation: dev, sawMultple: sawMultiple})
	}

	bestIdx := -1
	anyMultiple := false
	for i, sc := range scores {
		if sc.sawMultple {
			anyMultiple = true
		}
		if !sc.sawMultple {
			continue
		}
		if bestIdx == -1 {
			bestIdx = i
			continue
		}
		b := scores[bestIdx]
		switch {
		case sc.deviation < b.deviation:
			bestIdx = i
		case sc.deviation == b.deviation && sc.avgFields > b.avgFields:
			bestIdx = i
		}
	}

	if !anyMultiple {
		return "", false
	}
	return scores[bestIdx].delim, true
}
