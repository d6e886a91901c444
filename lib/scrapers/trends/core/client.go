// client.go contains the login flow and raw export download for the trends
// site. It knows nothing about how the exported csv is interpreted.

package core

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"gtrends/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	report_client_login = "client.login"
	report_client_fetch = "client.fetch"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Credentials struct {
	Username string `json:"username" envconfig:"USERNAME"`
	Password string `json:"password" envconfig:"PASSWORD"`
}

type ClientOptions struct {
	// AccountsUrl hosts the login form, ex. https://accounts.google.com
	AccountsUrl string
	// TrendsUrl hosts the export endpoint, ex. http://www.google.com
	TrendsUrl string
	// RequestsPerSecond limits how fast every session of this client talks
	// to the site, 0 means 2 per second.
	RequestsPerSecond float64
	Timeout           time.Duration
	BypassCloudflare  bool
}

// Client creates sessions, it holds no login state itself.
type Client struct {
	accountsUrl *url.URL
	trendsUrl   *url.URL
	limiter     *rate.Limiter
	opts        ClientOptions
	tel         telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	accountsUrl, err := url.Parse(opts.AccountsUrl)
	if err != nil {
		return nil, fmt.Errorf("parse accounts url: %w", err)
	}
	trendsUrl, err := url.Parse(opts.TrendsUrl)
	if err != nil {
		return nil, fmt.Errorf("parse trends url: %w", err)
	}

	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	return &Client{
		accountsUrl: accountsUrl,
		trendsUrl:   trendsUrl,
		// max burst >= 2 just means that no requests will be dropped
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2),
		opts:    opts,
		tel:     telemetry.NewScopedAPI("trends_scraper", tel),
	}, nil
}

func (c *Client) newHttp() (*resty.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetCookieJar(jar)
	if c.opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetHeader("referer", c.accountsUrl.JoinPath("ServiceLoginBoxAuth").String())
	httpClient.SetHeader("accept", "text/plain")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(
		c.accountsUrl.Hostname(),
		c.trendsUrl.Hostname(),
	))
	httpClient.SetTimeout(c.opts.Timeout)

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.limiter.Wait(req.Context())
	})
	telemetry.InstrumentResty(httpClient, c.tel)

	return httpClient, nil
}

// Session is a logged in cookie jar. It is owned by whoever called Login
// and is not safe for concurrent use.
type Session struct {
	http      *resty.Client
	trendsUrl *url.URL
	tel       telemetry.API
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginError := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("trends scraper: login: %w", err)
	}

	httpClient, err := c.newHttp()
	if err != nil {
		return nil, loginError(err)
	}

	loginUrl := c.accountsUrl.JoinPath("ServiceLoginBoxAuth").String()

	res, err := httpClient.R().
		SetContext(ctx).
		Get(loginUrl)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("not-logged-in page request: %w", err),
		)
		return nil, loginError(err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse not-logged-in page: %w", err),
		)
		return nil, loginError(err)
	}

	galx := doc.Find("input[name=GALX]").AttrOr("value", "")
	if galx == "" {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("could not find login token"))
		return nil, loginError(fmt.Errorf("could not find login token: %w", ErrLoginFailed))
	}

	res, err = httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"continue":         c.trendsUrl.JoinPath("trends").String(),
			"PersistentCookie": "yes",
			"Email":            creds.Username,
			"Passwd":           creds.Password,
			"GALX":             galx,
		}).
		Post(loginUrl)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login request: %w", err),
		)
		return nil, loginError(err)
	}
	doc, err = goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse login response: %w", err),
		)
		return nil, loginError(err)
	}
	// being shown the password box again means the credentials were rejected
	if len(doc.Find("input[name=Passwd]").Nodes) > 0 {
		c.tel.ReportWarning(report_client_login, "login form shown again after submitting", creds.Username)
		return nil, loginError(ErrLoginFailed)
	}

	followups := []string{
		c.accountsUrl.JoinPath("CheckCookie").String() + "?chtml=LoginDoneHtml",
		c.trendsUrl.String(),
	}
	for _, link := range followups {
		_, err = httpClient.R().
			SetContext(ctx).
			Get(link)
		if err != nil {
			c.tel.ReportBroken(
				report_client_login,
				fmt.Errorf("request %s: %w", link, err),
			)
			return nil, loginError(err)
		}
	}

	return &Session{
		http:      httpClient,
		trendsUrl: c.trendsUrl,
		tel:       c.tel,
	}, nil
}

// Url is the absolute url a query is fetched from.
func (s *Session) Url(q Query) string {
	return strings.TrimSuffix(s.trendsUrl.String(), "/") + q.Path()
}

// Fetch downloads the raw csv export of a query.
func (s *Session) Fetch(ctx context.Context, q Query) (string, error) {
	link := s.Url(q)

	ctx, span := tracer.Start(ctx, "session:Fetch", trace.WithAttributes(
		attribute.String("url", link),
	))
	defer span.End()

	s.tel.ReportDebug(report_client_fetch, link)

	res, err := s.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		s.tel.ReportBroken(report_client_fetch, fmt.Errorf("fetch: %w", err), link)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch report")
		return "", err
	}

	body := res.String()
	if strings.TrimSpace(body) == SignInMessage {
		err := &SignInRequiredError{Message: SignInMessage}
		s.tel.ReportBroken(report_client_fetch, err, link)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("fetch %s: unexpected status %s", link, res.Status())
		s.tel.ReportBroken(report_client_fetch, err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	downloadCounter.Add(ctx, 1)
	return body, nil
}
