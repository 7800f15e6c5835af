package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/scc-digitalhub/custom-resource-manager/pkg/types"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

const jsonPatchContentType = "application/json-patch+json"

// httpClient implements the Client interface using HTTP
type httpClient struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
}

// NewClient creates a new HTTP client for the custom resource manager API
func NewClient(config *Config) (Client, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	if config.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
	}

	if config.TLS.InsecureSkipVerify || config.TLS.CertFile != "" || config.TLS.KeyFile != "" || config.TLS.CAFile != "" {
		tlsConfig, err := buildTLSConfig(config.TLS)
		if err != nil {
			return nil, err
		}
		client.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
	}

	return &httpClient{
		config:  config,
		client:  client,
		baseURL: baseURL,
	}, nil
}

func buildTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load client certificate")
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" {
		ca, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CA file")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, errors.Errorf("no certificates found in %s", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

func (c *httpClient) ListResources(ctx context.Context, crdID string, opts ListOptions) (*types.ResourcePage, error) {
	query := pageQuery(opts)
	if opts.Namespace != "" {
		query.Set("namespace", opts.Namespace)
	}

	var page types.ResourcePage
	if err := c.do(ctx, http.MethodGet, resourcePath(crdID), query, nil, "", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *httpClient) ListDefinitions(ctx context.Context, opts ListOptions) (*types.ResourcePage, error) {
	var page types.ResourcePage
	if err := c.do(ctx, http.MethodGet, "/api/v1/crd", pageQuery(opts), nil, "", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *httpClient) GetDefinition(ctx context.Context, crdID string) (Object, error) {
	var definition Object
	if err := c.do(ctx, http.MethodGet, "/api/v1/crd/"+crdID, nil, nil, "", &definition); err != nil {
		return nil, err
	}
	return definition, nil
}

func pageQuery(opts ListOptions) url.Values {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Size > 0 {
		query.Set("size", strconv.Itoa(opts.Size))
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	return query
}

func (c *httpClient) GetResource(ctx context.Context, crdID, namespace, name string) (Object, error) {
	if name == "" {
		return nil, errors.New("resource name is required")
	}

	var obj Object
	if err := c.do(ctx, http.MethodGet, resourcePath(crdID, name), namespaceQuery(namespace), nil, "", &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *httpClient) CreateResource(ctx context.Context, crdID, namespace string, resource Object) (Object, error) {
	if resource == nil {
		return nil, errors.New("resource cannot be nil")
	}

	var created Object
	if err := c.doJSON(ctx, http.MethodPost, resourcePath(crdID), namespaceQuery(namespace), resource, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *httpClient) UpdateResource(ctx context.Context, crdID, namespace, name string, resource Object) (Object, error) {
	if name == "" {
		return nil, errors.New("resource name is required")
	}
	if resource == nil {
		return nil, errors.New("resource cannot be nil")
	}

	var updated Object
	if err := c.doJSON(ctx, http.MethodPut, resourcePath(crdID, name), namespaceQuery(namespace), resource, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *httpClient) PatchResource(ctx context.Context, crdID, namespace, name string, patch []byte) (Object, error) {
	if name == "" {
		return nil, errors.New("resource name is required")
	}

	var patched Object
	err := c.do(ctx, http.MethodPatch, resourcePath(crdID, name), namespaceQuery(namespace),
		bytes.NewReader(patch), jsonPatchContentType, &patched)
	if err != nil {
		return nil, err
	}
	return patched, nil
}

func (c *httpClient) DeleteResource(ctx context.Context, crdID, namespace, name string) error {
	if name == "" {
		return errors.New("resource name is required")
	}
	return c.do(ctx, http.MethodDelete, resourcePath(crdID, name), namespaceQuery(namespace), nil, "", nil)
}

func (c *httpClient) ListSchemas(ctx context.Context, crdID string) ([]*schema.VersionedSchema, error) {
	query := url.Values{}
	if crdID != "" {
		query.Set("crdId", crdID)
	}

	var schemas []*schema.VersionedSchema
	if err := c.do(ctx, http.MethodGet, "/api/v1/schemas", query, nil, "", &schemas); err != nil {
		return nil, err
	}
	return schemas, nil
}

func (c *httpClient) GetSchema(ctx context.Context, crdID, version string) (*schema.VersionedSchema, error) {
	var s schema.VersionedSchema
	if err := c.do(ctx, http.MethodGet, schemaPath(crdID, version), nil, nil, "", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *httpClient) PutSchema(ctx context.Context, crdID, version string, document map[string]interface{}) (*schema.VersionedSchema, error) {
	if document == nil {
		return nil, errors.New("schema document cannot be nil")
	}

	var s schema.VersionedSchema
	if err := c.doJSON(ctx, http.MethodPut, schemaPath(crdID, version), nil, document, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *httpClient) DeleteSchema(ctx context.Context, crdID, version string) error {
	return c.do(ctx, http.MethodDelete, schemaPath(crdID, version), nil, nil, "", nil)
}

func (c *httpClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request body")
	}
	return c.do(ctx, method, path, query, bytes.NewReader(data), "application/json", out)
}

func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.setCustomHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func (c *httpClient) setCustomHeaders(req *http.Request) {
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}
}

func (c *httpClient) handleErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    "failed to read error response",
		}
	}

	var errorResponse types.ErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil || errorResponse.Error == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(body)),
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errorResponse.Error,
		Violations: errorResponse.Violations,
	}
}

func resourcePath(crdID string, name ...string) string {
	return strings.Join(append([]string{"/api/v1/crs", crdID}, name...), "/")
}

func schemaPath(crdID, version string) string {
	return fmt.Sprintf("/api/v1/schemas/%s/%s", crdID, version)
}

func namespaceQuery(namespace string) url.Values {
	query := url.Values{}
	if namespace != "" {
		query.Set("namespace", namespace)
	}
	return query
}
