package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samvad-hq/drawing-uploader/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of a register call. Email is optional.
type RegisterRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Email          string `json:"email,omitempty"`
	ActivationCode string `json:"activation_code"`
}

// authResponse is the login/register reply: {success, token?, user?, message?}.
type authResponse struct {
	Success *bool           `json:"success"`
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
	Message string          `json:"message"`
}

// Login signs in. Arguments are forwarded as given; the server validates them.
func (c *Client) Login(ctx context.Context, username, password string) Result[domain.Credentials] {
	return c.authenticate(ctx, "login", LoginPath, loginRequest{Username: username, Password: password},
		MsgLoginParseFailed, MsgLoginFailed)
}

// Register creates an account with an activation code and signs in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) Result[domain.Credentials] {
	return c.authenticate(ctx, "register", RegisterPath, req, MsgRegParseFailed, MsgRegisterFailed)
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any, parseMsg, failMsg string) Result[domain.Credentials] {
	url := c.url(path)
	resp, err := c.transport.SendJSON(ctx, http.MethodPost, url, body, nil)
	if err != nil {
		return fail[domain.Credentials](c.failureMessage(op, url, err))
	}

	creds, appMsg, err := decodeAuth(resp.Body())
	if err != nil {
		c.logMalformed(op, resp.StatusCode(), resp.Body(), err)
		return fail[domain.Credentials](parseMsg)
	}
	if appMsg != nil {
		c.log.DebugObj("api request refused", "api_refused", map[string]any{
			"op":      op,
			"status":  resp.StatusCode(),
			"message": *appMsg,
		})
		if *appMsg == "" {
			return fail[domain.Credentials](failMsg)
		}
		return fail[domain.Credentials](*appMsg)
	}
	return ok(creds)
}

// decodeAuth parses an auth reply. A non-nil message pointer means the server
// reported success:false.
func decodeAuth(body []byte) (domain.Credentials, *string, error) {
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Credentials{}, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Success == nil {
		return domain.Credentials{}, nil, fmt.Errorf("%w: success flag missing", ErrMalformedResponse)
	}
	if !*resp.Success {
		msg := resp.Message
		return domain.Credentials{}, &msg, nil
	}
	if resp.Token == "" {
		return domain.Credentials{}, nil, fmt.Errorf("%w: token missing", ErrMalformedResponse)
	}
	if !domain.HasUser(resp.User) {
		return domain.Credentials{}, nil, fmt.Errorf("%w: user missing", ErrMalformedResponse)
	}
	return domain.Credentials{Token: resp.Token, User: resp.User}, nil, nil
}
