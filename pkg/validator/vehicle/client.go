package vehicle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultBaseURL is the public NHTSA vPIC API.
const DefaultBaseURL = "https://vpic.nhtsa.dot.gov"

// ErrRegistryUnavailable is returned when the registry cannot be reached or answers non-200.
var ErrRegistryUnavailable = errors.New("vehicle registry unavailable")

// Client talks to a vPIC compatible registry.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.http.Timeout = d
	}
}

// NewClient creates a registry client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DecodedVIN holds the variables of a VIN decode.
type DecodedVIN struct {
	ErrorCode string
	ErrorText string
	Make      string
	Model     string
	ModelYear string
	BodyClass string
}

type vinResponse struct {
	Results []struct {
		Variable string  `json:"Variable"`
		Value    *string `json:"Value"`
	} `json:"Results"`
}

type modelsResponse struct {
	Results []struct {
		ModelName string `json:"Model_Name"`
	} `json:"Results"`
}

// DecodeVIN decodes a VIN.
func (c *Client) DecodeVIN(ctx context.Context, vin string) (DecodedVIN, error) {
	var resp vinResponse
	if err := c.get(ctx, "/api/vehicles/DecodeVin/"+url.PathEscape(vin), &resp); err != nil {
		return DecodedVIN{}, err
	}

	var out DecodedVIN
	for _, r := range resp.Results {
		if r.Value == nil {
			continue
		}
		switch r.Variable {
		case "Error Code":
			out.ErrorCode = *r.Value
		case "Error Text":
			out.ErrorText = *r.Value
		case "Make":
			out.Make = *r.Value
		case "Model":
			out.Model = *r.Value
		case "Model Year":
			out.ModelYear = *r.Value
		case "Body Class":
			out.BodyClass = *r.Value
		}
	}
	return out, nil
}

// ModelsForMakeYear lists the model names a make produced in a model year.
func (c *Client) ModelsForMakeYear(ctx context.Context, manufacturer string, year int) ([]string, error) {
	var resp modelsResponse
	path := "/api/vehicles/GetModelsForMakeYear/make/" + url.PathEscape(manufacturer) + "/modelyear/" + strconv.Itoa(year)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	models := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		models = append(models, r.ModelName)
	}
	return models, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?format=json", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRegistryUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrRegistryUnavailable, err)
	}
	return nil
}
