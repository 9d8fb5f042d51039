package dailymed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/retry"
)

const (
	// DefaultBaseURL is the DailyMed REST services root.
	DefaultBaseURL = "https://dailymed.nlm.nih.gov/dailymed/services/v2"
	// DefaultLabelURL serves rendered label pages.
	DefaultLabelURL = "https://dailymed.nlm.nih.gov/dailymed/fda"

	searchPageSize = 100
	userAgent      = "labelmap/1.0"
)

// Config holds client settings.
type Config struct {
	BaseURL    string
	LabelURL   string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// DefaultConfig returns a Config pointing at the public DailyMed service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		LabelURL:   DefaultLabelURL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Validate checks that both URLs are absolute http(s) URLs and the retry
// settings are usable.
func (c *Config) Validate() error {
	for _, raw := range []string{c.BaseURL, c.LabelURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: %q is not an absolute http url", ErrInvalidConfig, raw)
		}
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: max retries %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.Timeout < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}

// Client talks to the DailyMed label service. It is safe for concurrent use.
type Client struct {
	http       *resty.Client
	labelURL   string
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewClient creates a client. A nil config uses DefaultConfig.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dailymed")

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", userAgent).
		SetLogger(&restyLogger{logger: logger})

	return &Client{
		http:       rc,
		labelURL:   strings.TrimRight(cfg.LabelURL, "/"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}, nil
}

// flexInt decodes page counts the service sends either as numbers or as
// quoted numbers. Anything else decodes as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	n, err := strconv.Atoi(strings.Trim(string(b), `"`))
	if err != nil {
		n = 0
	}
	*f = flexInt(n)
	return nil
}

type pageMetadata struct {
	TotalPages flexInt `json:"total_pages"`
}

type drugNamesResponse struct {
	Data []struct {
		DrugName string `json:"drug_name"`
	} `json:"data"`
	Metadata pageMetadata `json:"metadata"`
}

type splsResponse struct {
	Data []struct {
		SetID         string `json:"setid"`
		Title         string `json:"title"`
		PublishedDate string `json:"published_date"`
	} `json:"data"`
}

// DrugNamesPage is one page of the drug name listing.
type DrugNamesPage struct {
	Names      []string
	Page       int
	TotalPages int
}

// DrugNames lists drug names, one page of 100 at a time. Pages start at 1.
func (c *Client) DrugNames(ctx context.Context, page int) (*DrugNamesPage, error) {
	if page < 1 {
		page = 1
	}

	var out drugNamesResponse
	_, err := c.get(ctx, "/drugnames.json", map[string]string{
		"page":     strconv.Itoa(page),
		"pagesize": strconv.Itoa(searchPageSize),
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list drug names: %w", err)
	}

	result := &DrugNamesPage{Page: page, TotalPages: int(out.Metadata.TotalPages)}
	for _, d := range out.Data {
		if name := strings.TrimSpace(d.DrugName); name != "" {
			result.Names = append(result.Names, name)
		}
	}
	return result, nil
}

// SearchSPLs returns up to 100 labels for a drug name, in service order.
func (c *Client) SearchSPLs(ctx context.Context, name string) ([]core.SPLSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	var out splsResponse
	_, err := c.get(ctx, "/spls.json", map[string]string{
		"drug_name": name,
		"pagesize":  strconv.Itoa(searchPageSize),
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to search labels for %q: %w", name, err)
	}

	summaries := make([]core.SPLSummary, 0, len(out.Data))
	for _, d := range out.Data {
		if d.SetID == "" {
			continue
		}
		summaries = append(summaries, core.SPLSummary{
			SetID:         d.SetID,
			Title:         d.Title,
			PublishedDate: d.PublishedDate,
		})
	}
	return summaries, nil
}

// LatestSPL returns the first label the service lists for a drug name.
func (c *Client) LatestSPL(ctx context.Context, name string) (*core.SPLSummary, error) {
	summaries, err := c.SearchSPLs(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: no label for %q", ErrNotFound, name)
	}
	return &summaries[0], nil
}

// SPLDocument downloads the SPL XML for a set id.
func (c *Client) SPLDocument(ctx context.Context, setID string) ([]byte, error) {
	setID = strings.TrimSpace(setID)
	if setID == "" {
		return nil, ErrEmptyName
	}
	body, err := c.get(ctx, "/spls/"+url.PathEscape(setID)+".xml", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch label %s: %w", setID, err)
	}
	return body, nil
}

// LabelHTML downloads the rendered label page for a set id.
func (c *Client) LabelHTML(ctx context.Context, setID string) ([]byte, error) {
	setID = strings.TrimSpace(setID)
	if setID == "" {
		return nil, ErrEmptyName
	}
	body, err := c.get(ctx, c.labelURL+"/fdaDrugXsl.cfm", map[string]string{"setid": setID}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch label page %s: %w", setID, err)
	}
	return body, nil
}

// get issues a GET with retries. Transport failures and retryable
// statuses are retried with backoff; a 404 and other client errors are
// returned at once. When result is non-nil the body is decoded as JSON.
func (c *Client) get(ctx context.Context, path string, query map[string]string, result any) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, func() error {
		req := c.http.R().SetContext(ctx)
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
		if result != nil {
			req.SetResult(result).ForceContentType("application/json")
		}

		resp, err := req.Get(path)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			c.logger.Debug("request failed", "path", path, "err", err)
			return err
		}

		code := resp.StatusCode()
		switch {
		case code == http.StatusNotFound:
			return retry.Permanent(fmt.Errorf("%w: %s", ErrNotFound, resp.Request.URL))
		case retryableStatus(code):
			c.logger.Debug("retryable status", "path", path, "status", code)
			return &StatusError{StatusCode: code, URL: resp.Request.URL}
		case code >= 300:
			return retry.Permanent(&StatusError{StatusCode: code, URL: resp.Request.URL})
		}

		body = resp.Body()
		return nil
	}, c.maxRetries, c.retryDelay)
	return body, err
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// restyLogger adapts slog.Logger to resty.Logger interface.
type restyLogger struct {
	logger *slog.Logger
}

var _ resty.Logger = (*restyLogger)(nil)

func (l *restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
