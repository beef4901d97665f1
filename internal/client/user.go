package client

import (
	"context"

	"github.com/danielwetzel/ragchat/internal/models"
)

// CurrentUser probes the backend for the identity behind the ambient
// credential. A 401 that survives the transport's renewal means the
// session is gone.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/user/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
