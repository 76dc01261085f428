// Package social provides the LinkedIn posting client. Live posts go through
// the Posts API with a cached author URN and a one-shot token refresh on
// expiry; there is no retry loop, the caller gets a single bounded attempt.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

const maxPostChars = 3000

// Poster defines the interface for publishing a content piece live.
type Poster interface {
	// Post publishes the piece and returns the remote post id.
	Post(ctx context.Context, piece domain.ContentPiece) (string, error)
}

// Credentials holds the OAuth material for the posting API.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// Client posts to LinkedIn.
type Client struct {
	apiURL     string
	oauthURL   string
	httpClient *http.Client

	mu        sync.Mutex
	creds     Credentials
	cachedURN string
}

// NewClient creates a new posting client. apiURL and oauthURL default to the
// public LinkedIn endpoints when empty.
func NewClient(creds Credentials, apiURL, oauthURL string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = "https://api.linkedin.com"
	}
	if oauthURL == "" {
		oauthURL = "https://www.linkedin.com/oauth/v2/accessToken"
	}
	return &Client{
		apiURL:   strings.TrimSuffix(apiURL, "/"),
		oauthURL: oauthURL,
		creds:    creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure Client implements Poster interface.
var _ Poster = (*Client)(nil)

// Post publishes a piece. Hashtags are appended to the body and the combined
// text is capped at the platform limit. A 401 triggers one token refresh and
// one re-attempt; any other failure is final.
func (c *Client) Post(ctx context.Context, piece domain.ContentPiece) (string, error) {
	token := c.accessToken()
	if token == "" {
		return "", fmt.Errorf("no access token configured")
	}

	text := piece.Content
	if len(piece.Hashtags) > 0 {
		tags := make([]string, len(piece.Hashtags))
		for i, t := range piece.Hashtags {
			tags[i] = "#" + t
		}
		text = text + "\n\n" + strings.Join(tags, " ")
	}
	if len(text) > maxPostChars {
		text = text[:maxPostChars]
	}

	postID, status, err := c.createPost(ctx, text)
	if err == nil {
		return postID, nil
	}
	if status != http.StatusUnauthorized {
		return "", err
	}

	log.Printf("INFO: access token expired, attempting refresh")
	if refreshErr := c.refreshToken(ctx); refreshErr != nil {
		return "", fmt.Errorf("token refresh failed: %w", refreshErr)
	}

	postID, _, err = c.createPost(ctx, text)
	return postID, err
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.AccessToken
}

// createPost performs one Posts API call. Returns the post id, the HTTP
// status, and an error for any non-2xx outcome.
func (c *Client) createPost(ctx context.Context, text string) (string, int, error) {
	author, err := c.userURN(ctx)
	if err != nil {
		return "", 0, err
	}

	payload := map[string]interface{}{
		"author":     author,
		"commentary": text,
		"visibility": "PUBLIC",
		"distribution": map[string]interface{}{
			"feedDistribution":               "MAIN_FEED",
			"targetEntities":                 []string{},
			"thirdPartyDistributionChannels": []string{},
		},
		"lifecycleState": "PUBLISHED",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/rest/posts", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("LinkedIn-Version", "202401")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to send post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		// The Posts API returns the post id in the x-restli-id header.
		return resp.Header.Get("x-restli-id"), resp.StatusCode, nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	return "", resp.StatusCode, fmt.Errorf("post API error [%d]: %s", resp.StatusCode, string(respBody))
}

// userURN fetches and caches the author URN for the current token.
func (c *Client) userURN(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.cachedURN != "" {
		urn := c.cachedURN
		c.mu.Unlock()
		return urn, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v2/userinfo", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("userinfo error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var info struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return "", fmt.Errorf("userinfo returned empty sub")
	}

	urn := "urn:li:person:" + info.Sub
	c.mu.Lock()
	c.cachedURN = urn
	c.mu.Unlock()
	return urn, nil
}

// refreshToken exchanges the refresh token for a new access token and
// invalidates the cached URN.
func (c *Client) refreshToken(ctx context.Context) error {
	c.mu.Lock()
	creds := c.creds
	c.mu.Unlock()

	if creds.RefreshToken == "" || creds.ClientID == "" {
		return fmt.Errorf("missing refresh_token or client_id")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("refresh error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}

	c.mu.Lock()
	c.creds.AccessToken = data.AccessToken
	if data.RefreshToken != "" {
		c.creds.RefreshToken = data.RefreshToken
	}
	c.cachedURN = ""
	c.mu.Unlock()

	log.Printf("INFO: access token refreshed")
	return nil
}
