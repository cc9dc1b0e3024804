package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"subsctl/internal/models"
)

// Login authenticates the admin with the server and stores the token
func (c *Client) Login(ctx context.Context, email, password string) (*models.Auth, error) {
	res, err := c.send(ctx, http.MethodPost, "auth/signin", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	var responseMap map[string]interface{}
	if len(res.Body) > 0 {
		if err := json.Unmarshal(res.Body, &responseMap); err != nil {
			return nil, fmt.Errorf("error parsing response JSON: %w", err)
		}
	}

	authResponse := &models.Auth{}
	authResponse.UserID, authResponse.Email, authResponse.Name = extractUserInfo(responseMap)
	authResponse.Token = findAuthToken(res.Cookies, responseMap)

	if authResponse.Token == "" {
		return nil, fmt.Errorf("no authentication token found in server response")
	}
	if authResponse.Email == "" {
		authResponse.Email = email
	}

	c.AuthToken = authResponse.Token
	if c.tokenStore != nil {
		if err := c.tokenStore.SaveToken(authResponse.Token); err != nil {
			return nil, fmt.Errorf("failed to save auth token: %w", err)
		}
	}

	return authResponse, nil
}

// Logout notifies the server and always clears the local token
func (c *Client) Logout(ctx context.Context) error {
	var serverErr error
	if c.token() != "" {
		if _, err := c.send(ctx, http.MethodPost, "auth/signout", nil, nil); err != nil {
			serverErr = fmt.Errorf("server signout failed: %w", err)
			c.logger.Warn("Server signout failed", "error", err)
		}
	}

	c.AuthToken = ""
	if c.tokenStore != nil {
		if err := c.tokenStore.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear auth token: %w", err)
		}
	}

	return serverErr
}

// CurrentUser fetches the admin account the token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*models.Member, error) {
	var response struct {
		User models.Member `json:"user"`
	}

	if err := c.do(ctx, http.MethodGet, "account/me", nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &response.User, nil
}

// extractUserInfo extracts user id, email and name from a sign-in response
func extractUserInfo(responseMap map[string]interface{}) (string, string, string) {
	userID, email, name := "", "", ""

	if userObj, ok := responseMap["user"].(map[string]interface{}); ok {
		// Extract user ID from various possible fields
		for _, field := range []string{"id", "_id", "uid"} {
			switch id := userObj[field].(type) {
			case string:
				userID = id
			case float64:
				userID = fmt.Sprintf("%.0f", id)
			}
			if userID != "" {
				break
			}
		}

		if userEmail, ok := userObj["email"].(string); ok {
			email = userEmail
		}
		if userName, ok := userObj["name"].(string); ok {
			name = userName
		}
	}

	return userID, email, name
}

// findAuthToken looks for an authentication token in cookies and response body
func findAuthToken(cookies []*http.Cookie, responseMap map[string]interface{}) string {
	for _, cookie := range cookies {
		if cookie.Value == "" {
			continue
		}
		cookieName := strings.ToLower(cookie.Name)
		if strings.Contains(cookieName, "auth") ||
			strings.Contains(cookieName, "token") ||
			strings.Contains(cookieName, "session") ||
			strings.Contains(cookieName, "jwt") {
			return cookie.Value
		}
	}

	// If not found in cookies, check response body
	for _, key := range []string{"token", "access_token"} {
		if token, ok := responseMap[key].(string); ok && token != "" {
			return token
		}
	}

	return ""
}
