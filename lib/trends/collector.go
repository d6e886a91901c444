// Package trends downloads interest-over-time exports for any number of
// terms and stitches them into one normalized series.
package trends

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gtrends/lib/chrono"
	"gtrends/lib/persist"
	"gtrends/lib/reportcache"
	"gtrends/lib/scrapers/trends/core"
	"gtrends/lib/telemetry"
	"gtrends/lib/trends/series"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_collect_windows  = "collect.windows"
	report_collect_validate = "collect.validate"
	report_collect_session  = "collect.session"
	report_collect_download = "collect.download"
	report_collect_cache    = "collect.cache"
	report_collect_save     = "collect.save"
)

var tracer = otel.Tracer("gtrends/trends")

const sessionTTL = time.Minute * 15

// Fetcher downloads the raw csv export of a query.
type Fetcher interface {
	Fetch(ctx context.Context, q core.Query) (string, error)
}

// Authenticator creates logged in fetchers.
type Authenticator interface {
	Login(ctx context.Context, creds core.Credentials) (Fetcher, error)
}

type clientAuthenticator struct {
	client *core.Client
}

func (a clientAuthenticator) Login(ctx context.Context, creds core.Credentials) (Fetcher, error) {
	session, err := a.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// FromClient logs in through the trends site.
func FromClient(client *core.Client) Authenticator {
	return clientAuthenticator{client: client}
}

type Options struct {
	// Rescale defaults to series.DefaultRescaleOptions when nil.
	Rescale *series.RescaleOptions
	// Cache is consulted before every download when set.
	Cache *reportcache.Store
	// DumpDir receives a copy of every downloaded window when set.
	DumpDir string
	Clock   chrono.API
}

type Collector struct {
	auth     Authenticator
	sessions *expirable.LRU[string, Fetcher]
	cache    *reportcache.Store
	dump     *persist.RawDir
	rescale  series.RescaleOptions
	clock    chrono.API
	tel      telemetry.API
}

func NewCollector(auth Authenticator, opts Options, tel telemetry.API) (*Collector, error) {
	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardImpl(nil)
	}
	rescale := series.DefaultRescaleOptions()
	if opts.Rescale != nil {
		rescale = *opts.Rescale
	}

	c := &Collector{
		auth:     auth,
		sessions: expirable.NewLRU[string, Fetcher](16, nil, sessionTTL),
		cache:    opts.Cache,
		rescale:  rescale,
		clock:    opts.Clock,
		tel:      telemetry.NewScopedAPI("trends", tel),
	}
	if opts.DumpDir != "" {
		dump, err := persist.NewRawDir(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		c.dump = &dump
	}
	return c, nil
}

// sessionKey identifies a session by the full credentials, so a session is
// only reused for the exact username and password that logged it in.
func sessionKey(creds core.Credentials) string {
	sum := sha256.Sum256([]byte(creds.Password))
	return creds.Username + ":" + hex.EncodeToString(sum[:])
}

// session returns a logged in fetcher for the credentials and the key it is
// cached under, logging in only when there is no live session for them.
func (c *Collector) session(ctx context.Context, creds core.Credentials) (Fetcher, string, error) {
	key := sessionKey(creds)
	fetcher, ok := c.sessions.Get(key)
	if ok {
		return fetcher, key, nil
	}
	fetcher, err := c.auth.Login(ctx, creds)
	if err != nil {
		c.tel.ReportWarning(report_collect_session, err, creds.Username)
		return nil, "", err
	}
	c.sessions.Add(key, fetcher)
	return fetcher, key, nil
}

// fetch downloads a query, going through the cache when there is one. A
// session the site no longer accepts is forgotten.
func (c *Collector) fetch(ctx context.Context, key string, fetcher Fetcher, q core.Query) (raw string, cached bool, err error) {
	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, q.Path())
		if err != nil {
			c.tel.ReportWarning(report_collect_cache, fmt.Errorf("get: %w", err))
		}
		if ok {
			return body, true, nil
		}
	}

	raw, err = fetcher.Fetch(ctx, q)
	var signIn *core.SignInRequiredError
	if errors.As(err, &signIn) {
		c.sessions.Remove(key)
	}
	return raw, false, err
}

func (c *Collector) remember(ctx context.Context, q core.Query, raw string) {
	if c.cache == nil {
		return
	}
	err := c.cache.Put(ctx, q.Path(), raw)
	if err != nil {
		c.tel.ReportWarning(report_collect_cache, fmt.Errorf("put: %w", err))
	}
}

func queryFor(req Request, terms []string, window series.Window) core.Query {
	return core.Query{
		Terms:    terms,
		Geo:      req.Geo,
		Category: req.Category,
		Property: req.Property,
		Timezone: req.Timezone,
		Month:    int(window.Start.Month()),
		Year:     window.Start.Year(),
		Span:     window.Span,
	}
}

// downloadBatch fetches and parses every window of one batch.
func (c *Collector) downloadBatch(ctx context.Context, key string, fetcher Fetcher, req Request, index int, batch []string, windows []series.Window) (series.Report, error) {
	gran := req.Granularity
	report := make(series.Report, 0, len(windows))
	c.tel.ReportCount(report_collect_windows, int64(len(windows)))

	for i, window := range windows {
		q := queryFor(req, batch, window)
		raw, cached, err := c.fetch(ctx, key, fetcher, q)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		if c.dump != nil {
			c.dump.Write(fmt.Sprintf("%d-%d.csv", index, i), raw)
		}

		parsed, err := series.ParseWindow(raw, window, len(batch), gran)
		if err != nil {
			c.tel.ReportBroken(report_collect_download, err, q.Path())
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		if parsed.Overridden {
			c.tel.ReportWarning(
				report_collect_download,
				fmt.Sprintf("requested granularity %q but the export has %q, using %q", gran, parsed.Granularity, parsed.Granularity),
				q.Path(),
			)
			gran = parsed.Granularity
		}
		if !cached {
			c.remember(ctx, q, raw)
		}

		report = append(report, parsed.Rows)
	}
	return report, nil
}

// Collect downloads every term and returns one normalized table covering
// [Start, End), one column per term or a single column when summed.
func (c *Collector) Collect(ctx context.Context, creds core.Credentials, req Request) (series.Table, error) {
	ctx, span := tracer.Start(ctx, "Collect", trace.WithAttributes(
		attribute.StringSlice("terms", req.Terms),
		attribute.String("granularity", string(req.Granularity)),
	))
	defer span.End()

	fail := func(err error) (series.Table, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return series.Table{}, err
	}

	err := validateStruct(req)
	if err == nil {
		err = checkRange(req.Start, req.End, c.clock.Now())
	}
	if err != nil {
		c.tel.ReportWarning(report_collect_validate, err)
		return fail(err)
	}

	fetcher, key, err := c.session(ctx, creds)
	if err != nil {
		return fail(err)
	}

	batches := series.PackTerms(req.Terms)
	windows := series.PlanWindows(req.Start, req.End, req.Granularity)

	reports := make([]series.Report, len(batches))
	for i, batch := range batches {
		c.tel.ReportDebug("downloading batch", strings.Join(batch, ","), len(windows))
		reports[i], err = c.downloadBatch(ctx, key, fetcher, req, i, batch, windows)
		if err != nil {
			return fail(fmt.Errorf("batch download failed: %w", err))
		}
	}

	factors := series.Rescale(reports, c.rescale)
	c.tel.ReportDebug("rescaled batches", factors)

	merged, err := series.Merge(reports)
	if err != nil {
		c.tel.ReportBroken(report_collect_download, err)
		return fail(fmt.Errorf("batch download failed: %w", err))
	}

	rows := series.Reconstruct(series.PercentChange(merged), merged[0][0].Values)
	rows = series.StripAnchors(rows, batches)
	if req.Sum {
		rows = series.Sum(rows)
	}
	rows = series.Normalize(rows)
	rows = series.Trim(rows, req.End)
	table := series.WithHeader(rows, req.Terms, req.Sum)

	if req.SavePath != "" {
		err = persist.Save(req.SavePath, table)
		if err != nil {
			c.tel.ReportBroken(report_collect_save, err, req.SavePath)
			return fail(err)
		}
	}
	return table, nil
}

// CollectRaw downloads a single untransformed export for at most 5 terms.
func (c *Collector) CollectRaw(ctx context.Context, creds core.Credentials, req RawRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "CollectRaw", trace.WithAttributes(
		attribute.StringSlice("terms", req.Terms),
	))
	defer span.End()

	fail := func(err error) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	err := validateStruct(req)
	if err == nil {
		err = checkRange(req.Start, req.End, c.clock.Now())
	}
	if err != nil {
		c.tel.ReportWarning(report_collect_validate, err)
		return fail(err)
	}

	fetcher, key, err := c.session(ctx, creds)
	if err != nil {
		return fail(err)
	}

	q := core.Query{
		Terms:    req.Terms,
		Geo:      req.Geo,
		Category: req.Category,
		Property: req.Property,
		Timezone: req.Timezone,
		Month:    int(req.Start.Month()),
		Year:     req.Start.Year(),
		Span:     fmt.Sprintf("%dm", series.MonthsBetween(req.Start, req.End)),
	}
	raw, cached, err := c.fetch(ctx, key, fetcher, q)
	if err != nil {
		return fail(err)
	}
	if !cached {
		c.remember(ctx, q, raw)
	}

	if req.SavePath != "" {
		err = persist.SaveRaw(req.SavePath, raw)
		if err != nil {
			c.tel.ReportBroken(report_collect_save, err, req.SavePath)
			return fail(err)
		}
	}
	return raw, nil
}
