// Package viacep resolves Brazilian postal codes through the public
// ViaCEP API.
package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
)

type Config struct {
	URL     string        `split_words:"true" default:"https://viacep.com.br/ws"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

var (
	// ErrNotFound is returned when the postal code does not exist.
	ErrNotFound = fmt.Errorf("viacep: cep not found: %w", contractx.ErrNotFound)
	// ErrBadCEP is returned when the input is not an eight-digit CEP.
	ErrBadCEP = fmt.Errorf("viacep: malformed cep: %w", contractx.ErrValidation)

	cepDigitsRe = regexp.MustCompile(`\d`)
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contractx.AddressLookup = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("viacep url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Normalize strips punctuation from a CEP and validates the digit count.
func Normalize(raw string) (string, error) {
	digits := strings.Join(cepDigitsRe.FindAllString(raw, -1), "")
	if len(digits) != 8 {
		return "", ErrBadCEP
	}
	return digits, nil
}

type payload struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// Erro shows up as bool or string depending on the API version, so
	// only its presence matters.
	Erro json.RawMessage `json:"erro"`
}

// Lookup fetches the address for a CEP. The input may carry punctuation.
func (c *Client) Lookup(ctx context.Context, postalCode string) (*contractx.Address, error) {
	cep, err := Normalize(postalCode)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", c.baseURL, cep), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viacep: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viacep: unexpected status %d", resp.StatusCode)
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("viacep: decode: %w", err)
	}
	if len(body.Erro) > 0 {
		return nil, ErrNotFound
	}

	return &contractx.Address{
		Street:   body.Logradouro,
		District: body.Bairro,
		City:     body.Localidade,
		Region:   body.UF,
	}, nil
}
