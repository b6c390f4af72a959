package cadprev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rpps-dados/carteira/internal/domain"
)

// DefaultURL is the DAIR portfolio endpoint of the CADPREV API.
const DefaultURL = "https://apicadprev.trabalho.gov.br/DAIR_CARTEIRA"

// DefaultTimeout bounds the single request made per run.
const DefaultTimeout = 60 * time.Second

const bodyExcerptLen = 200

// Client is an HTTP client for the CADPREV DAIR_CARTEIRA endpoint. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new CADPREV API client. A non-positive timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPortfolio retrieves every asset record declared by the entity for the year.
func (c *Client) FetchPortfolio(ctx context.Context, q domain.Query) ([]domain.Record, error) {
	params := url.Values{
		"nr_cnpj_entidade": {q.CNPJ},
		"sg_uf":            {q.UF},
		"dt_ano":           {strconv.Itoa(q.Year)},
	}

	slog.Info("cadprev: requesting portfolio", "cnpj", q.CNPJ, "uf", q.UF, "year", q.Year)

	body, reqURL, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, &FetchError{Kind: KindMalformedResponse, URL: reqURL, Err: err}
	}
	return records, nil
}

// get performs the GET request and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, c.baseURL, &FetchError{Kind: KindConnection, URL: c.baseURL, Err: fmt.Errorf("parsing base URL: %w", err)}
	}
	query := u.Query()
	for k, vs := range params {
		query[k] = vs
	}
	u.RawQuery = query.Encode()
	reqURL := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, reqURL, &FetchError{Kind: KindConnection, URL: reqURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, reqURL, &FetchError{Kind: transportKind(err), URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, reqURL, &FetchError{Kind: transportKind(err), URL: reqURL, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, reqURL, &FetchError{
			Kind:       KindHTTPStatus,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Body:       excerpt(body),
		}
	}

	slog.Info("cadprev: request succeeded", "status", resp.StatusCode, "bytes", len(body))
	checkHost(u, resp)

	return body, reqURL, nil
}

// checkHost warns when redirects moved the request away from the configured host.
func checkHost(want *url.URL, resp *http.Response) {
	if resp.Request == nil || resp.Request.URL == nil {
		return
	}
	if got := resp.Request.URL.Host; got != want.Host {
		slog.Warn("cadprev: unexpected response host", "want", want.Host, "got", got, "url", resp.Request.URL.String())
	}
}

func transportKind(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

func excerpt(body []byte) string {
	if len(body) <= bodyExcerptLen {
		return string(body)
	}
	return string(body[:bodyExcerptLen]) + "..."
}
