package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Registration is the payload for creating a password-based account.
type Registration struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Login exchanges a username and password for a bearer token. The token is
// returned, not stored; call SetToken to start sending it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, "login", "login failed")
	if err != nil {
		return "", err
	}
	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.AccessToken == "" {
		return "", &Error{Op: "login", Detail: "server returned no access token"}
	}
	return parsed.AccessToken, nil
}

// Register creates a new account. The caller signs in separately afterwards.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	_, err := c.postJSON(ctx, "/api/auth/register", reg, "register", "registration failed")
	return err
}

// RequestPasswordReset asks the server to start a reset for the given email
// and returns the server's acknowledgement message.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	payload := map[string]string{"email": email}
	body, err := c.postJSON(ctx, "/api/auth/forgot-password", payload, "forgot-password", "password reset request failed")
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}

// CompletePasswordReset sets a new password for the given email.
func (c *Client) CompletePasswordReset(ctx context.Context, email, newPassword string) (string, error) {
	payload := map[string]string{"email": email, "new_password": newPassword}
	body, err := c.postJSON(ctx, "/api/auth/reset-password", payload, "reset-password", "password reset failed")
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}

// GoogleLoginURL is the address a browser must visit to start the Google
// sign-in flow. The server completes the exchange and redirects back with
// the token in the URL fragment; see session.CaptureFromRedirect.
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + "/api/auth/google/login"
}
