// Package github reads public repository listings from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

// RepoLimit is how many repositories a listing returns.
const RepoLimit = 5

// ErrUserNotFound is returned when GitHub has no account with the username.
var ErrUserNotFound = errors.New("github: user not found")

// Repo is the portion of GitHub's repository object the profile page shows.
// GitHub returns a much larger object; only these fields are decoded.
type Repo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Watchers    int       `json:"watchers_count"`
	Forks       int       `json:"forks_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Client calls the GitHub API, authenticated when a token is configured.
//
// Unauthenticated requests work but share a 60/hour rate limit per source IP,
// so production deployments should set a token.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL (DefaultBaseURL when empty). A non-empty
// token is sent as a bearer token on every request through oauth2's transport.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	hc := &http.Client{Timeout: 10 * time.Second}
	if token != "" {
		// oauth2.NewClient returns an *http.Client whose transport adds
		// "Authorization: Bearer <token>". The static source never refreshes.
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), src)
		hc.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// Repos returns the user's RepoLimit oldest-first public repositories, as
// GitHub sorts them with sort=created&direction=asc.
func (c *Client) Repos(ctx context.Context, username string) ([]Repo, error) {
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(RepoLimit))
	q.Set("sort", "created")
	q.Set("direction", "asc")
	endpoint := c.baseURL + "/users/" + url.PathEscape(username) + "/repos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "devconnector")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: listing repos of %s: %w", username, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("github: listing repos of %s: status %d", username, resp.StatusCode)
	}

	repos := []Repo{}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decoding repos: %w", err)
	}
	return repos, nil
}
