package facebook

import (
	"context"
	"errors"
	"fbwatch/internal/components/assert"
	"fbwatch/internal/components/telemetry"
	"fmt"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_downloader_fetch = "downloader.fetch"
)

type FetchRequest struct {
	Cookie  string
	Url     string
	Timeout time.Duration
	// Retries is the total number of attempts, values below 1 mean a single attempt.
	Retries int
}

type Response struct {
	Status int
	Body   string
	Header http.Header
}

// Downloader fetches pages, it fails with a TransportError on anything but a
// non empty 200 response.
//
// note: fault injection point
type Downloader interface {
	Fetch(ctx context.Context, req FetchRequest) (Response, error)
}

var defaultHeaders = map[string]string{
	"accept": "*/*",
	// resty only decodes gzip bodies on its own
	"accept-encoding": "gzip",
	"accept-language": "en-GB,en-US;q=0.9,en;q=0.8",
	"user-agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/64.0.3282.167 Safari/537.36",
}

type HttpDownloaderOptions struct {
	// RequestsPerSecond limits how fast pages are requested, 0 disables the limit.
	RequestsPerSecond float64
}

// HttpDownloader is the Downloader backed by resty.
type HttpDownloader struct {
	http *resty.Client
	tel  telemetry.API
}

func NewHttpDownloader(opts HttpDownloaderOptions, tel telemetry.API) HttpDownloader {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("facebook_downloader", tel)

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeaders(defaultHeaders)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	if opts.RequestsPerSecond > 0 {
		// max burst >= 1 just means that no requests will be dropped
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, "fbwatch/internal/scrapers/facebook", tel)

	return HttpDownloader{http: client, tel: tel}
}

var errServer = errors.New("server error")

func (d HttpDownloader) Fetch(ctx context.Context, req FetchRequest) (Response, error) {
	attempts := req.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return Response{}, TransportError{Url: req.Url, Cause: ctx.Err()}
		}
		d.tel.ReportDebug("fetch", req.Url, "attempt", attempt)

		res, retryable, err := d.attempt(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		d.tel.ReportWarning(report_downloader_fetch, err, "attempt", attempt)
	}
	return Response{}, lastErr
}

// attempt performs a single request, timeouts and server errors are retryable.
func (d HttpDownloader) attempt(ctx context.Context, req FetchRequest) (Response, bool, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	res, err := d.http.R().
		SetContext(ctx).
		SetHeader("cookie", req.Cookie).
		Get(req.Url)
	if err != nil {
		// the caller's own cancellation is not worth retrying
		retryable := !errors.Is(err, context.Canceled)
		return Response{}, retryable, TransportError{Url: req.Url, Cause: err}
	}

	if res.StatusCode() >= 500 {
		return Response{}, true, TransportError{Url: req.Url, Status: res.StatusCode(), Cause: errServer}
	}
	body := res.String()
	if res.StatusCode() != http.StatusOK || body == "" {
		return Response{}, false, TransportError{
			Url:    req.Url,
			Status: res.StatusCode(),
			Cause:  fmt.Errorf("unexpected response, %d bytes, headers %v", len(body), res.Header()),
		}
	}

	return Response{
		Status: res.StatusCode(),
		Body:   body,
		Header: res.Header(),
	}, false, nil
}
