package api

import (
	"context"
	"net/url"
)

// Scopes requested during device authorization.
const cliScopes = "user:read,user:write," +
	"project:read,project:write," +
	"worklog:read,worklog:write," +
	"repo:read,repo:write"

// InitiateDeviceCode starts the OAuth device authorization flow.
func (c *Client) InitiateDeviceCode(ctx context.Context, clientID string) (*DeviceCode, error) {
	body := map[string]string{
		"client_id": clientID,
		"scope":     cliScopes,
	}
	var out DeviceCode
	if err := c.postJSON(ctx, "auth/device/code", nil, body, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeDeviceCode trades an approved device code for an access token.
// While the user has not approved yet the server answers 400 with an
// "authorization_pending" body, surfaced as ErrValidation.
func (c *Client) ExchangeDeviceCode(ctx context.Context, clientID, deviceCode string) (*Token, error) {
	body := map[string]string{
		"client_id":   clientID,
		"device_code": deviceCode,
		"grant_type":  "urn:ietf:params:oauth:grant-type:device_code",
	}
	var out Token
	if err := c.postJSON(ctx, "auth/device/token", nil, body, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckTokenInfo introspects an access token.
func (c *Client) CheckTokenInfo(ctx context.Context, token string) (*TokenInfo, error) {
	query := url.Values{}
	query.Set("token", token)
	var out TokenInfo
	if err := c.getJSON(ctx, "auth/token/info", query, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
