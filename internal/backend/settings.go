package backend

import (
	"context"
	"net/http"

	"github.com/iurnickita/bakery/internal/model"
)

func (c *client) GetSettings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	if err := c.do(c.request(ctx), http.MethodGet, "/settings", &settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func (c *client) SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	var saved model.Settings
	if err := c.do(c.request(ctx).SetBody(settings), http.MethodPut, "/settings", &saved); err != nil {
		return model.Settings{}, err
	}
	return saved, nil
}
