package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/logging"
	"github.com/dmitrijs2005/sessionkeeper/models"
)

// Actions the adapter sends to the remote endpoint.
const (
	actionLogin         = "login"
	actionVerifySession = "verify_session"
	actionLogout        = "logout"
	actionForceLogout   = "force_logout"
	actionPing          = "ping"
)

// errorDisabled is the wire error code for a disabled account.
const errorDisabled = "account_disabled"

// request is the wire request envelope. Every call carries the action,
// the device identity, and a client timestamp in epoch milliseconds.
type request struct {
	Action         string `json:"action"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	TargetUsername string `json:"target_username,omitempty"`
	DeviceID       string `json:"deviceId"`
	Timestamp      int64  `json:"timestamp"`
}

// response is the wire response envelope. ExpiresAt is epoch
// milliseconds; Valid is only meaningful for verify_session.
type response struct {
	Success   bool                `json:"success"`
	Valid     bool                `json:"valid"`
	User      *models.UserProfile `json:"user,omitempty"`
	ExpiresAt int64               `json:"expires_at,omitempty"`
	Token     string              `json:"token,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// HTTPVerifier talks to the remote authority over its JSON-over-POST
// contract.
type HTTPVerifier struct {
	endpointURL string
	client      *http.Client
	log         logging.Logger
	now         func() time.Time
}

// NewHTTPVerifier creates an adapter for the given endpoint. The
// timeout is a hard per-call cutoff; pass 0 to rely solely on caller
// context deadlines.
func NewHTTPVerifier(endpointURL string, timeout time.Duration, log logging.Logger) *HTTPVerifier {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &HTTPVerifier{
		endpointURL: endpointURL,
		client:      &http.Client{Timeout: timeout},
		log:         log,
		now:         time.Now,
	}
}

// call posts req and decodes the response envelope. Transport
// failures, timeouts, non-2xx statuses and undecodable bodies all
// normalize to ErrUnreachable.
func (v *HTTPVerifier) call(ctx context.Context, req request) (*response, error) {
	req.Timestamp = v.now().UnixMilli()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := v.client.Do(httpReq)
	if err != nil {
		v.log.Warn(ctx, "verifier call failed", "action", req.Action, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		v.log.Warn(ctx, "verifier returned unexpected status",
			"action", req.Action, "status", httpResp.StatusCode)
		return nil, fmt.Errorf("%w: status %s", ErrUnreachable, httpResp.Status)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: undecodable response", ErrUnreachable)
	}
	return &resp, nil
}

func (v *HTTPVerifier) Authenticate(ctx context.Context, username, password, deviceID string) (*AuthResult, error) {
	resp, err := v.call(ctx, request{
		Action:   actionLogin,
		Username: username,
		Password: password,
		DeviceID: deviceID,
	})
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		if resp.Error == errorDisabled {
			return nil, ErrDisabled
		}
		return nil, fmt.Errorf("%w: %s", ErrDenied, resp.Error)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: success without user", ErrUnreachable)
	}
	if resp.User.Status == models.StatusDisabled {
		return nil, ErrDisabled
	}

	res := &AuthResult{User: *resp.User, Token: resp.Token}
	if resp.ExpiresAt > 0 {
		res.ExpiresAt = time.UnixMilli(resp.ExpiresAt)
	}
	return res, nil
}

func (v *HTTPVerifier) CheckSession(ctx context.Context, username, deviceID string) (bool, error) {
	resp, err := v.call(ctx, request{
		Action:   actionVerifySession,
		Username: username,
		DeviceID: deviceID,
	})
	if err != nil {
		return false, err
	}
	return resp.Success && resp.Valid, nil
}

func (v *HTTPVerifier) Logout(ctx context.Context, username string) error {
	_, err := v.call(ctx, request{
		Action:   actionLogout,
		Username: username,
	})
	return err
}

func (v *HTTPVerifier) ForceLogout(ctx context.Context, username string) error {
	resp, err := v.call(ctx, request{
		Action:         actionForceLogout,
		TargetUsername: username,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrDenied, resp.Error)
	}
	return nil
}

func (v *HTTPVerifier) Ping(ctx context.Context) error {
	_, err := v.call(ctx, request{Action: actionPing})
	return err
}
