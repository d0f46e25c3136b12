// Package scryfall implements the external card catalog over the
// Scryfall search API. Lookup failures are fatal to deck construction.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/card"
)

// DefaultBaseURL is the public Scryfall API endpoint.
const DefaultBaseURL = "https://api.scryfall.com"

// Client fetches card definitions by exact name.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a catalog client. An empty baseURL uses the public
// API; tests point it at a local server.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// SetTimeout overrides the default HTTP timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// wire types mirror the subset of the Scryfall card schema we consume.
type searchResponse struct {
	Data []cardResponse `json:"data"`
}

type cardResponse struct {
	Name          string         `json:"name"`
	Layout        string         `json:"layout"`
	CMC           float64        `json:"cmc"`
	Colors        []string       `json:"colors"`
	ColorIdentity []string       `json:"color_identity"`
	ManaCost      string         `json:"mana_cost"`
	TypeLine      string         `json:"type_line"`
	OracleText    string         `json:"oracle_text"`
	Power         string         `json:"power"`
	Toughness     string         `json:"toughness"`
	Loyalty       string         `json:"loyalty"`
	Defence       string         `json:"defense"`
	CardFaces     []faceResponse `json:"card_faces"`
}

type faceResponse struct {
	Name       string   `json:"name"`
	ManaCost   string   `json:"mana_cost"`
	TypeLine   string   `json:"type_line"`
	OracleText string   `json:"oracle_text"`
	Colors     []string `json:"colors"`
	Power      string   `json:"power"`
	Toughness  string   `json:"toughness"`
	Loyalty    string   `json:"loyalty"`
	Defence    string   `json:"defense"`
}

// FetchCard looks up a card by exact name.
func (c *Client) FetchCard(ctx context.Context, name string) (*card.Card, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("!%q", name))
	endpoint := fmt.Sprintf("%s/cards/search?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("scryfall: building request for %q: %w", name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scryfall: fetching %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("scryfall: card %q not found", name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall: fetching %q: unexpected status %d", name, resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("scryfall: decoding response for %q: %w", name, err)
	}
	if len(search.Data) == 0 {
		return nil, fmt.Errorf("scryfall: card %q not found", name)
	}

	result := toCard(search.Data[0])
	c.logger.Debug("fetched card",
		zap.String("name", result.Name),
		zap.String("layout", result.Layout),
		zap.Int("faces", len(result.Faces)),
	)
	return result, nil
}

func toCard(resp cardResponse) *card.Card {
	out := &card.Card{
		Name:          resp.Name,
		Layout:        resp.Layout,
		CMC:           resp.CMC,
		Colors:        resp.Colors,
		ColorIdentity: resp.ColorIdentity,
	}
	if len(resp.CardFaces) > 0 {
		for _, face := range resp.CardFaces {
			out.Faces = append(out.Faces, card.Face{
				Name:       face.Name,
				ManaCost:   face.ManaCost,
				TypeLine:   face.TypeLine,
				OracleText: face.OracleText,
				Colors:     face.Colors,
				Power:      face.Power,
				Toughness:  face.Toughness,
				Loyalty:    face.Loyalty,
				Defence:    face.Defence,
			})
		}
		return out
	}
	// Single-faced cards carry their face data at the top level.
	out.Faces = []card.Face{{
		Name:       resp.Name,
		ManaCost:   resp.ManaCost,
		TypeLine:   resp.TypeLine,
		OracleText: resp.OracleText,
		Colors:     resp.Colors,
		Power:      resp.Power,
		Toughness:  resp.Toughness,
		Loyalty:    resp.Loyalty,
		Defence:    resp.Defence,
	}}
	return out
}
