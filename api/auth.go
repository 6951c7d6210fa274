package api

import (
	"context"
	"net/http"

	"github.com/dinehall/dinehall/core"
)

// Credentials is the email/password login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what the customer backend returns on a successful
// login, registration, or identity-token exchange: an opaque bearer
// token plus the customer profile.
type AuthResult struct {
	Token    string        `json:"token"`
	Customer core.Customer `json:"customer"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, "auth.Login", http.MethodPost, c.customerURL("/auth/login"), "", creds, &result)
	return result, err
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, "auth.Register", http.MethodPost, c.customerURL("/auth/register"), "", reg, &result)
	return result, err
}

// ForgotPassword starts a password reset by emailing an OTP.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "auth.ForgotPassword", http.MethodPost, c.customerURL("/auth/forgot-password"), "", body, nil)
}

// verifyOTPResponse carries the short-lived reset token.
type verifyOTPResponse struct {
	Token string `json:"token"`
}

// VerifyOTP checks the emailed code and returns a temporary token for
// ResetPassword.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	body := map[string]string{"email": email, "otp": otp}
	var resp verifyOTPResponse
	err := c.do(ctx, "auth.VerifyOTP", http.MethodPost, c.customerURL("/auth/verify-otp"), "", body, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ResetPassword sets a new password using the token from VerifyOTP.
func (c *Client) ResetPassword(ctx context.Context, tempToken, newPassword string) error {
	body := map[string]string{"token": tempToken, "newPassword": newPassword}
	return c.do(ctx, "auth.ResetPassword", http.MethodPost, c.customerURL("/auth/reset-password"), "", body, nil)
}

// GoogleExchange trades a Google identity token for a backend session.
func (c *Client) GoogleExchange(ctx context.Context, idToken string) (AuthResult, error) {
	body := map[string]string{"credential": idToken}
	var result AuthResult
	err := c.do(ctx, "auth.GoogleExchange", http.MethodPost, c.customerURL("/auth/google"), "", body, &result)
	return result, err
}
