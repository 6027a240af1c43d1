// Package strava talks to the Strava v3 REST API on behalf of a single
// athlete's bearer token.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"StravaFriendsDashboard/internal/domain"
)

const DefaultAPIURL = "https://www.strava.com/api/v3"

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultAPIURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
	}
}

type athleteResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Profile   string `json:"profile"`
}

type activityResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Distance   float64 `json:"distance"`
	MovingTime int     `json:"moving_time"`
	StartDate  string  `json:"start_date"`
}

func (c *Client) GetAthlete(ctx context.Context, accessToken string) (domain.Athlete, error) {
	var resp athleteResponse
	if err := c.get(ctx, accessToken, "/athlete", nil, &resp); err != nil {
		return domain.Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	if resp.ID == 0 {
		return domain.Athlete{}, fmt.Errorf("get athlete: %w: response has no athlete id", domain.ErrRemoteUnavailable)
	}
	return domain.Athlete{
		ID:        strconv.FormatInt(resp.ID, 10),
		FirstName: strings.TrimSpace(resp.FirstName),
		LastName:  strings.TrimSpace(resp.LastName),
		Image:     resp.Profile,
	}, nil
}

// ListActivities fetches one page of the athlete's activities. A non-zero after
// asks the API to only return activities that started later.
func (c *Client) ListActivities(ctx context.Context, accessToken string, page, perPage int, after time.Time) ([]domain.Activity, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if !after.IsZero() {
		q.Set("after", strconv.FormatInt(after.Unix(), 10))
	}

	var resp []activityResponse
	if err := c.get(ctx, accessToken, "/athlete/activities", q, &resp); err != nil {
		return nil, fmt.Errorf("list activities page %d: %w", page, err)
	}

	out := make([]domain.Activity, 0, len(resp))
	for _, a := range resp {
		start, err := time.Parse(time.RFC3339, a.StartDate)
		if err != nil {
			return nil, fmt.Errorf("list activities page %d: %w: activity %d start_date: %v", page, domain.ErrRemoteUnavailable, a.ID, err)
		}
		out = append(out, domain.Activity{
			ID:         strconv.FormatInt(a.ID, 10),
			Name:       a.Name,
			Type:       a.Type,
			Distance:   a.Distance,
			MovingTime: a.MovingTime,
			StartDate:  start.UTC(),
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, q url.Values, dst any) error {
	if strings.TrimSpace(accessToken) == "" {
		return fmt.Errorf("%w: missing access token", domain.ErrAuthentication)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.bearerClient(ctx, accessToken).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return statusError(res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrRemoteUnavailable, path, err)
	}
	return nil
}

func (c *Client) bearerClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

func statusError(status int, body string) error {
	kind := domain.ErrRemoteUnavailable
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = domain.ErrAuthentication
	}
	if body == "" {
		return fmt.Errorf("%w: status %d", kind, status)
	}
	return fmt.Errorf("%w: status %d: %s", kind, status, body)
}
