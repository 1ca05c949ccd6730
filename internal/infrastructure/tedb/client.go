package tedb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// DefaultURL raíz pública del API REST de TEDB.
const DefaultURL = "https://ec.europa.eu/taxation_customs/tedb/rest-api"

// TaxTypeVAT tipo de impuesto consultado por el motor.
const TaxTypeVAT = "VAT"

// API las tres llamadas TEDB. CachedClient la implementa por delegación.
type API interface {
	GetConfigurations(ctx context.Context) (*Configurations, error)
	SearchTaxes(ctx context.Context, tedbCountryID, taxType string, date time.Time) (*SearchResult, error)
	GetTaxRate(ctx context.Context, taxID, versionDate string) (*TaxRate, error)
}

// Client cliente HTTP directo, sin caché.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option ajuste opcional del cliente.
type Option func(*Client)

// WithBaseURL cambia la raíz del servicio (tests, proxys).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sustituye el cliente HTTP.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger asigna el logger del cliente.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.Zerolog() }
}

// NewClient cliente contra la URL pública de TEDB, con timeout de 30s.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetConfigurations descarga el mapa de países de TEDB.
func (c *Client) GetConfigurations(ctx context.Context) (*Configurations, error) {
	var out Configurations
	if err := c.getJSON(ctx, c.baseURL+"/configurations", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type searchForm struct {
	SelectedTaxTypes     []string `json:"selectedTaxTypes"`
	SelectedMemberStates []string `json:"selectedMemberStates"`
	SituationOn          string   `json:"situationOn"`
	Historized           string   `json:"historized"`
	Keywords             string   `json:"keywords"`
}

type searchRequest struct {
	SearchForm      searchForm `json:"searchForm"`
	AvailableFacets any        `json:"availableFacets"`
	SelectedFacets  any        `json:"selectedFacets"`
	Sort            any        `json:"sort"`
}

// SearchTaxes busca los impuestos de un tipo vigentes en un país a una
// fecha. El país va como id interno de TEDB, no como ISO.
func (c *Client) SearchTaxes(ctx context.Context, tedbCountryID, taxType string, date time.Time) (*SearchResult, error) {
	// TEDB espera la fecha sin ceros a la izquierda: 2026/3/7.
	situationOn := fmt.Sprintf("%d/%d/%d", date.Year(), int(date.Month()), date.Day())

	body, err := json.Marshal(searchRequest{
		SearchForm: searchForm{
			SelectedTaxTypes:     []string{taxType},
			SelectedMemberStates: []string{tedbCountryID},
			SituationOn:          situationOn,
			Historized:           "false",
			Keywords:             "",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tedb: serializar búsqueda: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/simpleSearch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tedb: petición simpleSearch: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	var out SearchResult
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("tedb: simpleSearch país %s tipo %s fecha %s: %w", tedbCountryID, taxType, situationOn, err)
	}
	return &out, nil
}

// GetTaxRate consulta los tipos de un impuesto concreto. El país ya viene
// codificado dentro del taxId.
func (c *Client) GetTaxRate(ctx context.Context, taxID, versionDate string) (*TaxRate, error) {
	q := url.Values{}
	q.Set("taxId", taxID)
	q.Set("versionDate", versionDate)
	q.Set("isEuro", "true")

	var out TaxRate
	if err := c.getJSON(ctx, c.baseURL+"/tax/rate?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("tedb: tax/rate impuesto %s versión %s: %w", taxID, versionDate, err)
	}
	if out.VatRateStructure == nil {
		return nil, fmt.Errorf("tedb: tax/rate impuesto %s versión %s: respuesta sin estructura de tipos", taxID, versionDate)
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("tedb: petición %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("llamada TEDB")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("estado HTTP %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("leer respuesta: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("respuesta no interpretable: %w", err)
	}
	return nil
}
