package drill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/rampart/internal/auth"
	"github.com/okian/rampart/internal/domain/model"
)

// Client talks to a running instance, minting a bearer token per identity.
type Client struct {
	baseURL  string
	http     *http.Client
	secret   []byte
	tokenTTL time.Duration

	mu     sync.Mutex
	tokens map[string]string // user id -> signed token
}

// NewClient creates a Client for baseURL signing tokens with secret.
func NewClient(baseURL string, timeout time.Duration, secret []byte, tokenTTL time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		secret:   secret,
		tokenTTL: tokenTTL,
		tokens:   make(map[string]string),
	}
}

func (c *Client) token(id model.Identity) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok, ok := c.tokens[id.UserID]; ok {
		return tok, nil
	}
	tok, err := auth.GenerateToken(id, c.secret, c.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("mint token for %q: %w", id.UserID, err)
	}
	c.tokens[id.UserID] = tok
	return tok, nil
}

// SubmitScore posts one submission on behalf of its identity.
func (c *Client) SubmitScore(ctx context.Context, sub Submission) error {
	tok, err := c.token(sub.Identity)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"module_id": sub.ModuleID,
		"score":     sub.Score,
	})
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/progress", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submission rejected: %s", resp.Status)
	}
	return nil
}

// LeaderboardRow mirrors the public read shape.
type LeaderboardRow struct {
	Name        string    `json:"name"`
	TotalScore  int       `json:"total_score"`
	LastUpdated time.Time `json:"last_updated"`
}

// FetchLeaderboard reads the public table.
func (c *Client) FetchLeaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/leaderboard", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard fetch failed: %s", resp.Status)
	}
	var rows []LeaderboardRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return rows, nil
}
