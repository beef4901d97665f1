package client

import (
	"context"
	"net/http"
)

// statusResponse is the backend's generic {"message": ...} envelope.
// Token fields also present on login/refresh responses are deliberately
// not decoded; the cookies are the only credential the client keeps.
type statusResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type updatePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// Login exchanges email/password for a credential. On success the
// backend sets the access and refresh cookies on this client's jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var res statusResponse
	if err := c.postJSON(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &res); err != nil {
		return err
	}
	c.logger.Debug("login accepted", "message", res.Message)
	return nil
}

// Register creates an account. It does not log the new user in.
func (c *Client) Register(ctx context.Context, email, password, confirmPassword string) error {
	req := registerRequest{Email: email, Password: password, ConfirmPassword: confirmPassword}
	return c.postJSON(ctx, "/auth/register", req, nil)
}

// Logout invalidates the server-side session. The backend clears the
// auth cookies via Set-Cookie, which the jar honors.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/auth/logout", "", nil, nil)
}

// RefreshToken renews the access credential using the ambient refresh
// cookie. Exposed for completeness; call sites normally rely on the
// transparent renewal inside call().
func (c *Client) RefreshToken(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, refreshPath, "", nil, nil)
}

// UpdatePassword changes the password of the authenticated user.
func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword, confirmNewPassword string) error {
	req := updatePasswordRequest{
		OldPassword:        oldPassword,
		NewPassword:        newPassword,
		ConfirmNewPassword: confirmNewPassword,
	}
	return c.postJSON(ctx, "/auth/update-password", req, nil)
}
