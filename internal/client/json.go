package client

import (
	"context"

	"github.com/bytedance/sonic"

	"github.com/oshokin/aigc-client/internal/model"
)

const (
	opEncodeJSON = "encode json"
	opDecodeJSON = "decode json"
)

// SendJSON encodes payload as the JSON body of a request to rawURL.
func (c *ClientImpl) SendJSON(
	ctx context.Context,
	method model.Method,
	rawURL string,
	payload any,
) (*model.Response, error) {
	req := model.NewRequest(method, rawURL).WithHeader(model.HeaderContentType, "application/json")

	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, model.NewInvalidRequestError(opEncodeJSON, req, err)
	}

	return c.Send(ctx, req.WithBody(body))
}

// DecodeJSON decodes the response body into T.
func DecodeJSON[T any](resp *model.Response) (T, error) {
	var value T

	if resp == nil {
		return value, model.NewDecodeError(opDecodeJSON, ErrNoResponse)
	}

	if err := sonic.Unmarshal(resp.Body, &value); err != nil {
		return value, model.NewDecodeError(opDecodeJSON, err)
	}

	return value, nil
}
