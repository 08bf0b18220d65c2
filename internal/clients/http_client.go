package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// HTTPClient implements RemoteCatalogClient against the remote platform's
// REST API. One client per configured platform account.
type HTTPClient struct {
	httpClient  *http.Client
	baseURL     string
	bearerToken string
	rateLimiter *rate.Limiter
	retrier     *Retrier
}

// NewHTTPClient creates a remote catalog client. requestsPerSecond bounds the
// call rate against the platform's limits.
func NewHTTPClient(baseURL, bearerToken string, requestsPerSecond int) *HTTPClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &HTTPClient{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		bearerToken: bearerToken,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retrier:     NewRetrier(DefaultRetryConfig()),
	}
}

// TestConnection verifies the connection is working
func (c *HTTPClient) TestConnection(ctx context.Context) error {
	_, err := c.get(ctx, "/api/products", url.Values{"limit": {"1"}})
	return err
}

// GetProductByCode queries the remote catalog by product code
func (c *HTTPClient) GetProductByCode(ctx context.Context, code string) (*RemoteProduct, error) {
	body, err := c.get(ctx, "/api/products", url.Values{"code": {code}})
	if err != nil {
		return nil, err
	}

	var response struct {
		Products []remoteProductDTO `json:"products"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &RemoteTransportError{Op: "existence check", Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	if len(response.Products) == 0 {
		return nil, nil
	}
	product := response.Products[0].toRemoteProduct()
	return &product, nil
}

// CreateProduct submits the creation payload and returns the assigned remote ID.
// The call is made exactly once: creation is not idempotent, so transport
// failures surface to the caller instead of being retried here.
func (c *HTTPClient) CreateProduct(ctx context.Context, req *CreateProductRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode creation payload: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/products", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &RemoteTransportError{Op: "create", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteTransportError{Op: "create", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RemoteTransportError{Op: "create", StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", truncateBody(body))}
	}

	var created remoteProductDTO
	if err := json.Unmarshal(body, &created); err != nil {
		return "", &RemoteTransportError{Op: "create", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if created.ID == "" {
		return "", &RemoteTransportError{Op: "create", Err: fmt.Errorf("remote response carries no product identifier")}
	}

	return created.ID, nil
}

// GetProductWithVariants fetches a product expanded with its variant records
func (c *HTTPClient) GetProductWithVariants(ctx context.Context, remoteID string) (*RemoteProduct, error) {
	body, err := c.get(ctx, "/api/products/"+url.PathEscape(remoteID), url.Values{"expand": {"variants"}})
	if err != nil {
		return nil, err
	}

	var dto remoteProductDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &RemoteTransportError{Op: "read-back", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	product := dto.toRemoteProduct()
	return &product, nil
}

// get performs an idempotent read with rate limiting and bounded retries
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	resp, err := c.retrier.DoHTTP(ctx, func(ctx context.Context) (*http.Response, error) {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, &RemoteTransportError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteTransportError{Op: "GET " + path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteTransportError{Op: "GET " + path, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", truncateBody(body))}
	}

	return body, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// remoteProductDTO mirrors the remote API's product document
type remoteProductDTO struct {
	ID        string             `json:"id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	ListPrice float64            `json:"listPrice"`
	Variants  []remoteVariantDTO `json:"variants"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type remoteVariantDTO struct {
	ID         string   `json:"id"`
	ProductID  string   `json:"productId"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	ValueNames []string `json:"valueNames"`
	Position   int      `json:"position"`
}

func (d remoteProductDTO) toRemoteProduct() RemoteProduct {
	variants := make([]RemoteVariant, 0, len(d.Variants))
	for _, v := range d.Variants {
		variants = append(variants, RemoteVariant{
			ID:         v.ID,
			ProductID:  v.ProductID,
			Code:       v.Code,
			Name:       v.Name,
			ValueNames: v.ValueNames,
			Position:   v.Position,
		})
	}
	return RemoteProduct{
		ID:        d.ID,
		Code:      d.Code,
		Name:      d.Name,
		ListPrice: d.ListPrice,
		Variants:  variants,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
