package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/wwdc-sessions/internal/events"
	"github.com/Zuo-Peng/wwdc-sessions/internal/parse"
	"github.com/Zuo-Peng/wwdc-sessions/internal/scan"
)

// ErrYearsFailed is wrapped by Result.Err when at least one year did not decode.
var ErrYearsFailed = errors.New("years failed to decode")

type Options struct {
	URLBase  string
	Jobs     int  // parallel year parses, <=1 means sequential
	FailFast bool // abort on the first decode error instead of skipping the year
	Logger   zerolog.Logger
}

type Stats struct {
	Years    int
	Parsed   int
	Failed   int
	Sessions int
}

func (s Stats) String() string {
	return fmt.Sprintf("years=%d parsed=%d failed=%d sessions=%d",
		s.Years, s.Parsed, s.Failed, s.Sessions)
}

type Result struct {
	Document events.Document
	Data     []byte
	Stats    Stats
	Failures []error
}

// Err reports skipped years, one line per failure naming its year and file;
// nil when every year decoded.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	summary := fmt.Errorf("%w: %d of %d", ErrYearsFailed, len(r.Failures), r.Stats.Years)
	return errors.Join(append([]error{summary}, r.Failures...)...)
}

type yearOutcome struct {
	result *parse.ParseResult
	err    error
}

// Run scans root, decodes every year and serializes the aggregated document.
// Scan and encode failures are returned as errors. Decode failures are logged
// and collected in Result.Failures unless FailFast is set.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	log := opts.Logger

	years, err := scan.ScanYears(root)
	if err != nil {
		return nil, err
	}
	files := years.Sorted()

	outcomes, err := parseAll(ctx, files, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: Stats{Years: len(files)}}
	records := make([]events.YearRecord, 0, len(files))
	for i, o := range outcomes {
		if o.err != nil {
			res.Stats.Failed++
			res.Failures = append(res.Failures, o.err)
			log.Warn().Err(o.err).
				Uint("year", files[i].Year).
				Str("path", files[i].Path).
				Msg("skipping year")
			continue
		}
		res.Stats.Parsed++
		records = append(records, events.FromResult(o.result))
	}

	res.Document = events.NewDocument(records...)
	res.Stats.Sessions = res.Document.SessionCount()

	res.Data, err = events.Encode(res.Document, events.EncodeOptions{URLBase: opts.URLBase})
	if err != nil {
		return nil, err
	}

	log.Info().Stringer("stats", res.Stats).Msg("converted")
	return res, nil
}

func parseAll(ctx context.Context, files []scan.FileInfo, opts Options) ([]yearOutcome, error) {
	outcomes := make([]yearOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, fi := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			opts.Logger.Debug().Uint("year", fi.Year).Str("path", fi.Path).Msg("Decoding")

			res, err := parse.ParseFile(fi.Year, fi.Path)
			outcomes[i] = yearOutcome{result: res, err: err}
			if err != nil && opts.FailFast {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
