package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/techhub-commerce/admin-gateway/pkg/config"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
)

// MediaInput references one uploaded object in a product payload.
type MediaInput struct {
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
	AltText   string `json:"alt_text"`
	SortOrder int    `json:"sort_order"`
	IsPrimary bool   `json:"is_primary"`
}

// CreateProductPayload is the wire shape of the platform's product resource.
type CreateProductPayload struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Specifications   map[string]string `json:"specifications"`
	Brand            string            `json:"brand"`
	Tags             string            `json:"tags"`
	Price            float64           `json:"price"`
	CompareAtPrice   float64           `json:"compare_at_price"`
	CategoryID       string            `json:"category_id"`
	SKU              string            `json:"sku"`
	StockQuantity    int               `json:"stock_quantity"`
	Status           string            `json:"status"`
	IsFeatured       bool              `json:"is_featured"`
	ShippingWeightKG float64           `json:"shipping_weight_kg"`
	ShippingLengthCM string            `json:"shipping_length_cm"`
	ShippingWidthCM  string            `json:"shipping_width_cm"`
	ShippingHeightCM string            `json:"shipping_height_cm"`
	Media            []MediaInput      `json:"media"`
}

// CreatedProduct is the confirmation returned by the platform on create.
type CreatedProduct struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	IsActive bool    `json:"is_active"`
}

// Client talks to the remote TechHub REST API. Every call takes the caller's
// bearer credential explicitly; the client holds no ambient session state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logg       *logger.Logger
}

func NewClient(cfg config.ProductAPIConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("product api base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logg:       logg,
	}, nil
}

// CreateProduct persists an assembled product. Non-2xx responses surface the
// server's own message as a submission error.
func (c *Client) CreateProduct(ctx context.Context, payload CreateProductPayload, bearer string) (*CreatedProduct, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode product payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build create request")
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSubmission, err, "product api unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, pkgerrors.New(pkgerrors.CodeSubmission, serverMessage(resp)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var created CreatedProduct
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSubmission, err, "decode create response")
	}
	if created.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeSubmission, "create response missing product id")
	}
	return &created, nil
}

// ListCategories fetches the category options for the product form. Callers
// treat a failure here as soft (empty selector), so the error is returned
// rather than wrapped into a terminal outcome.
func (c *Client) ListCategories(ctx context.Context, bearer string) ([]Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/categories", nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build categories request")
	}
	req.Header.Set("Accept", "application/json")
	setBearer(req, bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product api unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, serverMessage(resp)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var categories []Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode categories response")
	}
	return categories, nil
}

// Ping reports whether the API is reachable. Any HTTP response counts as
// healthy; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func setBearer(req *http.Request, bearer string) {
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

// serverMessage digs a human-readable message out of an error response,
// falling back to the raw body or HTTP status.
func serverMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("product api returned %s", resp.Status)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error.Message != "":
			return envelope.Error.Message
		case envelope.Detail != "":
			return envelope.Detail
		case envelope.Message != "":
			return envelope.Message
		}
	}
	return trimmed
}
