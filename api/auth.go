package api

import (
	"context"
	"fmt"
	"net/http"
)

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Error   string `json:"error"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", payload, &out); err != nil {
		return "", err
	}
	if !out.Success || out.Token == "" {
		return "", fmt.Errorf("login failed: %s", orUnknown(out.Error))
	}
	return out.Token, nil
}

// Register creates an account; the backend sends a confirmation email.
func (c *Client) Register(ctx context.Context, email, password string) error {
	payload := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/register", payload, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("registration failed: %s", orUnknown(out.Error))
	}
	return nil
}

func (c *Client) ConfirmEmail(ctx context.Context, token string) error {
	payload := map[string]string{"token": token}
	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/confirm-email", payload, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("email confirmation failed: %s", orUnknown(out.Error))
	}
	return nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/forgot-password", payload, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("password reset request failed: %s", orUnknown(out.Error))
	}
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	payload := map[string]string{"token": token, "password": newPassword}
	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/reset-password", payload, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("password reset failed: %s", orUnknown(out.Error))
	}
	return nil
}

func orUnknown(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}
