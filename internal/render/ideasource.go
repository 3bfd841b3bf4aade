package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"meridian/internal/catalog"
	"meridian/internal/ideas"
)

// HTTPIdeaSource asks the external generative service for idea drafts.
type HTTPIdeaSource struct {
	BaseURL string
	Client  *http.Client
}

func (s *HTTPIdeaSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *HTTPIdeaSource) Drafts(ctx context.Context, category catalog.Category, n int) ([]ideas.Draft, error) {
	body, err := json.Marshal(map[string]any{
		"category": category,
		"count":    n,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/ideas", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request drafts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("idea service returned %s", resp.Status)
	}

	var out struct {
		Drafts []ideas.Draft `json:"drafts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode drafts: %w", err)
	}
	return out.Drafts, nil
}
