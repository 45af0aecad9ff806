// Package meta is a thin adapter over the Meta Marketing (Graph) API.
// It fetches campaign metadata and hourly insights and pushes budget
// changes; it holds no scoring logic.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Client talks to one ad account.
type Client struct {
	c           HTTPClient
	baseURL     string
	accessToken string
	adAccountID string
}

func NewClient(c HTTPClient, baseURL, accessToken, adAccountID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{c: c, baseURL: strings.TrimRight(baseURL, "/"), accessToken: accessToken, adAccountID: adAccountID}
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// getJSON issues a GET with bounded retry and decodes the payload.
// Graph API errors come back as 200-or-4xx bodies with an error object, so
// both paths are checked.
func (cl *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		resp, err := cl.c.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				var ae apiError
				if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
					return fmt.Errorf("meta api: %s", ae.Error.Message)
				}
				return json.Unmarshal(body, dst)
			} else if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				var ae apiError
				if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
					return fmt.Errorf("meta api: %s", ae.Error.Message)
				}
				return fmt.Errorf("meta api: status %d", resp.StatusCode)
			} else {
				lastErr = fmt.Errorf("meta api: status %d", resp.StatusCode)
			}
		}
		// backoff exponencial + jitter
		sleep := time.Duration((1<<i)*100) * time.Millisecond
		sleep += time.Duration(rand.Intn(150)) * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return lastErr
}

func (cl *Client) postForm(ctx context.Context, endpoint string, form url.Values) error {
	form.Set("access_token", cl.accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := cl.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return fmt.Errorf("meta api: %s", ae.Error.Message)
		}
		return fmt.Errorf("meta api: status %d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

func (cl *Client) endpoint(path string, params url.Values) string {
	params.Set("access_token", cl.accessToken)
	return cl.baseURL + path + "?" + params.Encode()
}

var errNoCredentials = errors.New("missing meta access token or ad account id")

// Configured reports whether the client has credentials to act with.
func (cl *Client) Configured() bool {
	return cl.accessToken != "" && cl.adAccountID != ""
}
