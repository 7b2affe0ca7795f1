// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package puppetdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/marionette/puppetdb/query"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Errors that can be returned by this package. Since some of these errors are returned wrapped, it
// is safest to use errors.Is() to check for them.
var (
	ErrNilMeasures          = errors.New("measures cannot be nil")
	ErrAddressEmpty         = errors.New("puppetdb address is required")
	ErrInvalidPageSize      = errors.New("page size cannot be negative")
	ErrQueryRequired        = errors.New("a query expression is required")
	ErrAuthAcquirerFailure  = errors.New("failed acquiring auth token")
	ErrFailedAuthentication = errors.New("failed to authenticate with puppetdb")
	ErrBadRequest           = errors.New("puppetdb rejected the query as invalid")
)

var (
	errNonSuccessResponse = errors.New("puppetdb responded with a non-success status code")
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errDoRequestFailure   = errors.New("http client failed while sending request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONUnmarshal      = errors.New("failed unmarshaling JSON response payload")
	errQueryMarshal       = errors.New("failed marshaling query expression")
)

const (
	queryAPIPath     = "/pdb/query/v4"
	nodesEndpoint    = "nodes"
	factsEndpoint    = "facts"
	errWrappedFmt    = "%w: %s"
	errStatusCodeFmt = "%w: received status %v"
	errorHeaderKey   = "errorHeader"
	errorHeader      = "X-Puppetdb-Error"
)

// ClientConfig contains config data for the client that will be used to
// query PuppetDB.
type ClientConfig struct {
	// Address is the PuppetDB URL (i.e. https://puppetdb.example.io:8081)
	Address string `validate:"required,url"`

	// PageSize is the number of records requested per page.
	// (Optional) Zero disables paging and fetches each collection in one request.
	PageSize int `validate:"gte=0"`

	// Timeout bounds every request sent to PuppetDB.
	// (Optional) Only applied when HTTPClient is not provided.
	Timeout time.Duration

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to http.DefaultClient, or a client with Timeout if one is set.
	HTTPClient *http.Client `mapstructure:"-"`

	// Auth provides the mechanism to add auth headers to outgoing requests.
	// (Optional) If not provided, no auth headers are added.
	Auth Auth

	// Logger to be used by the client.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger `mapstructure:"-"`
}

// Auth contains authorization data for requests to PuppetDB.
type Auth struct {
	JWT   acquire.RemoteBearerTokenAcquirerOptions
	Basic string
}

// Client queries the PuppetDB v4 API.
type Client struct {
	client       *http.Client
	auth         acquire.Acquirer
	queryBaseURL string
	pageSize     int
	logger       *zap.Logger
	measures     *Measures
	getLogger    func(context.Context) *zap.Logger
}

type response struct {
	Body        []byte
	ErrorHeader string
	Code        int
}

// NewClient creates a new Client that can be used to query PuppetDB.
func NewClient(config ClientConfig, measures *Measures, getLogger func(context.Context) *zap.Logger) (*Client, error) {
	err := validateConfig(&config)
	if err != nil {
		return nil, err
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if getLogger == nil {
		getLogger = sallust.Get
	}

	tokenAcquirer, err := buildTokenAcquirer(config.Auth)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:       config.HTTPClient,
		auth:         tokenAcquirer,
		queryBaseURL: strings.TrimSuffix(config.Address, "/") + queryAPIPath,
		pageSize:     config.PageSize,
		logger:       config.Logger,
		measures:     measures,
		getLogger:    getLogger,
	}, nil
}

// ListActiveNodes fetches the active nodes, optionally narrowed by filter.
func (c *Client) ListActiveNodes(ctx context.Context, filter query.Expression) (Nodes, error) {
	var nodes Nodes
	err := c.list(ctx, nodesEndpoint, filter, []string{"certname"}, func(body []byte) (int, error) {
		var page Nodes
		if err := decode(body, &page); err != nil {
			return 0, err
		}
		nodes = append(nodes, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// ListFacts fetches the facts matching q.
func (c *Client) ListFacts(ctx context.Context, q query.Expression) (Facts, error) {
	if q == nil {
		return nil, ErrQueryRequired
	}
	var facts Facts
	err := c.list(ctx, factsEndpoint, q, []string{"certname", "name"}, func(body []byte) (int, error) {
		var page Facts
		if err := decode(body, &page); err != nil {
			return 0, err
		}
		facts = append(facts, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// list walks every page of an endpoint, handing each response body to
// collect. Without a page size the whole collection is requested at once.
func (c *Client) list(ctx context.Context, endpoint string, q query.Expression, orderBy []string, collect func([]byte) (int, error)) (err error) {
	start := time.Now()
	defer func() {
		outcome := SuccessOutcome
		if err != nil {
			outcome = FailureOutcome
		}
		c.measures.Requests.With(prometheus.Labels{EndpointLabel: endpoint, OutcomeLabel: outcome}).Inc()
		c.measures.RequestDuration.With(prometheus.Labels{EndpointLabel: endpoint}).Observe(time.Since(start).Seconds())
	}()

	params, err := queryParams(q)
	if err != nil {
		return err
	}

	for offset := 0; ; offset += c.pageSize {
		if c.pageSize > 0 {
			params.Set("limit", strconv.Itoa(c.pageSize))
			params.Set("offset", strconv.Itoa(offset))
			params.Set("order_by", orderByParam(orderBy))
		}

		resp, err := c.sendRequest(ctx, c.endpointURL(endpoint, params))
		if err != nil {
			return errors.WithDetails(err, "endpoint", endpoint)
		}

		if resp.Code != http.StatusOK {
			c.loggerFor(ctx).Error("PuppetDB responded with non-200 response for query request",
				zap.String("endpoint", endpoint), zap.Int("code", resp.Code), zap.String(errorHeaderKey, resp.ErrorHeader))
			return errors.WithDetails(
				fmt.Errorf(errStatusCodeFmt, translateNonSuccessStatusCode(resp.Code), resp.Code),
				"endpoint", endpoint,
			)
		}

		n, err := collect(resp.Body)
		if err != nil {
			return errors.WithDetails(fmt.Errorf("%s: %w", endpoint, err), "endpoint", endpoint)
		}

		if c.pageSize <= 0 || n < c.pageSize {
			return nil
		}
	}
}

func (c *Client) endpointURL(endpoint string, params url.Values) string {
	u := fmt.Sprintf("%s/%s", c.queryBaseURL, endpoint)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) loggerFor(ctx context.Context) *zap.Logger {
	if l := c.getLogger(ctx); l != nil {
		return l
	}
	return c.logger
}

func (c *Client) sendRequest(ctx context.Context, url string) (response, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	err = acquire.AddAuth(r, c.auth)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, ErrAuthAcquirerFailure, err.Error())
	}
	r.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(r)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errDoRequestFailure, err.Error())
	}
	defer resp.Body.Close()
	var pdbResp = response{
		Code:        resp.StatusCode,
		ErrorHeader: resp.Header.Get(errorHeader),
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return pdbResp, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}
	pdbResp.Body = bodyBytes
	return pdbResp, nil
}

func queryParams(q query.Expression) (url.Values, error) {
	params := url.Values{}
	if q == nil {
		return params, nil
	}
	data, err := q.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, errQueryMarshal, err.Error())
	}
	params.Set("query", string(data))
	return params, nil
}

func orderByParam(fields []string) string {
	order := make([]map[string]string, 0, len(fields))
	for _, f := range fields {
		order = append(order, map[string]string{"field": f, "order": "asc"})
	}
	data, _ := json.Marshal(order)
	return string(data)
}

func decode(body []byte, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(body))
	d.UseNumber()
	if err := d.Decode(v); err != nil {
		return fmt.Errorf(errWrappedFmt, errJSONUnmarshal, err.Error())
	}
	return nil
}

func isEmpty(options acquire.RemoteBearerTokenAcquirerOptions) bool {
	return len(options.AuthURL) < 1 || options.Buffer == 0 || options.Timeout == 0
}

// translateNonSuccessStatusCode returns as specific error
// for known PuppetDB status codes.
func translateNonSuccessStatusCode(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrFailedAuthentication
	default:
		return errNonSuccessResponse
	}
}

func buildTokenAcquirer(auth Auth) (acquire.Acquirer, error) {
	if !isEmpty(auth.JWT) {
		return acquire.NewRemoteBearerTokenAcquirer(auth.JWT)
	} else if len(auth.Basic) > 0 {
		return acquire.NewFixedAuthAcquirer(auth.Basic)
	}
	return &acquire.DefaultAcquirer{}, nil
}

func validateConfig(config *ClientConfig) error {
	if config.Address == "" {
		return ErrAddressEmpty
	}

	if config.PageSize < 0 {
		return ErrInvalidPageSize
	}

	if config.HTTPClient == nil {
		if config.Timeout > 0 {
			config.HTTPClient = &http.Client{Timeout: config.Timeout}
		} else {
			config.HTTPClient = http.DefaultClient
		}
	}

	if config.Logger == nil {
		config.Logger = sallust.Default()
	}
	return nil
}
