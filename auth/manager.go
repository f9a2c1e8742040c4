package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/sessionkeeper/device"
	"github.com/dmitrijs2005/sessionkeeper/logging"
	"github.com/dmitrijs2005/sessionkeeper/models"
	"github.com/dmitrijs2005/sessionkeeper/store"
	"github.com/dmitrijs2005/sessionkeeper/verifier"
)

const (
	// DefaultSessionTTL bounds a session that the server assigned no
	// explicit expiry.
	DefaultSessionTTL = 60 * time.Minute

	// DefaultRenewalWindow is the sliding-window threshold: a verify
	// with less than this much lifetime left extends the session.
	DefaultRenewalWindow = 5 * time.Minute

	// DefaultRemoteTimeout is the hard cutoff for any remote call.
	DefaultRemoteTimeout = 10 * time.Second
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,}$`)

// Options tunes the lifecycle manager. The zero value is valid; unset
// durations take the defaults above.
type Options struct {
	SessionTTL    time.Duration
	RenewalWindow time.Duration
	RemoteTimeout time.Duration

	// VerifyMinInterval spaces out remote cross-checks during Verify.
	// Zero consults the remote authority on every call.
	VerifyMinInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o *Options) withDefaults() {
	if o.SessionTTL == 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.RenewalWindow == 0 {
		o.RenewalWindow = DefaultRenewalWindow
	}
	if o.RemoteTimeout == 0 {
		o.RemoteTimeout = DefaultRemoteTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// LoginResult is what a successful login yields. Degraded marks a
// login granted by the local fallback while the remote authority was
// unreachable; callers must be able to tell the two apart.
type LoginResult struct {
	User      models.UserProfile
	ExpiresAt time.Time
	Token     string
	Degraded  bool
}

// Manager owns the authoritative session state transitions: login,
// verification with sliding-window renewal, logout, and administrative
// force-logout. It is wired from injected dependencies and holds no
// global state; teardown is closing the store.
//
// Lifecycle operations are expected to be serialized by the caller.
type Manager struct {
	store    store.Store
	remote   verifier.Verifier
	devices  *device.Provider
	fallback *verifier.Fallback
	log      logging.Logger
	opts     Options

	checkLimiter *rate.Limiter
}

// NewManager wires a lifecycle manager. fallback may be nil, in which
// case an unreachable authority always fails the login. log may be nil.
func NewManager(s store.Store, remote verifier.Verifier, devices *device.Provider, fallback *verifier.Fallback, log logging.Logger, opts Options) *Manager {
	opts.withDefaults()
	if log == nil {
		log = logging.NewNopLogger()
	}

	m := &Manager{
		store:    s,
		remote:   remote,
		devices:  devices,
		fallback: fallback,
		log:      log,
		opts:     opts,
	}
	if opts.VerifyMinInterval > 0 {
		m.checkLimiter = rate.NewLimiter(rate.Every(opts.VerifyMinInterval), 1)
	}
	return m
}

func validateCredentials(username, password string) error {
	if !usernameRe.MatchString(username) {
		return ErrInvalidLoginFormat
	}
	if len(password) < 6 {
		return ErrInvalidPasswordFormat
	}
	return nil
}

// Login authenticates username/password for this installation's
// device. Credential shape and device conflicts are checked locally
// first and never reach the network. If the remote authority is
// unreachable, the fallback allow-list (when configured) may grant a
// degraded login, flagged in the result.
func (m *Manager) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	now := m.opts.Now()
	deviceID := m.devices.DeviceID(ctx)

	reg, err := m.store.Registry(ctx)
	if err != nil {
		return nil, err
	}

	decision := EvaluateConflict(username, deviceID, reg, now)
	if decision.Purged {
		if err := m.store.SaveRegistry(ctx, reg); err != nil {
			return nil, err
		}
	}
	if !decision.Allow {
		m.log.Info(ctx, "login denied by device binding",
			"user", username, "bound_device", decision.BoundDeviceID)
		return nil, &ConflictError{
			Username:    username,
			DeviceID:    decision.BoundDeviceID,
			MinutesLeft: decision.RemainingMinutes(),
		}
	}

	res, degraded, err := m.authenticate(ctx, username, password, deviceID)
	if err != nil {
		return nil, err
	}

	expiresAt := res.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(m.opts.SessionTTL)
	}

	rec := &models.SessionRecord{
		User:      res.User,
		DeviceID:  deviceID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		Token:     res.Token,
	}
	reg[username] = models.RegistryEntry{DeviceID: deviceID, ExpiresAt: expiresAt}

	if err := m.store.SaveLoginState(ctx, rec, reg); err != nil {
		return nil, err
	}

	m.log.Info(ctx, "login succeeded", "user", username, "degraded", degraded,
		"expires_at", expiresAt)

	return &LoginResult{
		User:      res.User,
		ExpiresAt: expiresAt,
		Token:     res.Token,
		Degraded:  degraded,
	}, nil
}

// authenticate asks the remote authority, falling back to the local
// allow-list only on an unreachable signal, never on a denial.
func (m *Manager) authenticate(ctx context.Context, username, password, deviceID string) (*verifier.AuthResult, bool, error) {
	rctx, cancel := context.WithTimeout(ctx, m.opts.RemoteTimeout)
	defer cancel()

	res, err := m.remote.Authenticate(rctx, username, password, deviceID)
	if err == nil {
		return res, false, nil
	}

	switch {
	case errors.Is(err, verifier.ErrDisabled):
		return nil, false, ErrAccountDisabled
	case errors.Is(err, verifier.ErrDenied):
		return nil, false, ErrAuthenticationFailed
	case errors.Is(err, verifier.ErrUnreachable):
		// Fallback-eligible failure.
	default:
		return nil, false, err
	}

	if m.fallback == nil {
		return nil, false, ErrRemoteUnreachable
	}

	m.log.Warn(ctx, "remote verifier unreachable, trying local fallback", "user", username)

	profile, ferr := m.fallback.Authenticate(username, password)
	switch {
	case ferr == nil:
		return &verifier.AuthResult{User: *profile}, true, nil
	case errors.Is(ferr, verifier.ErrDenied):
		return nil, false, ErrAuthenticationFailed
	case errors.Is(ferr, verifier.ErrDisabled):
		return nil, false, ErrAccountDisabled
	default:
		return nil, false, ErrRemoteUnreachable
	}
}

// Verify evaluates the stored session against the clock and,
// best-effort, against the remote authority. Expiry is terminal: the
// record is cleared before returning false. A still-valid session
// inside the renewal window is extended to a full TTL, so active users
// are never logged out mid-use while idle sessions stay bounded.
func (m *Manager) Verify(ctx context.Context) bool {
	now := m.opts.Now()

	rec, err := m.store.Session(ctx)
	if err != nil || rec == nil {
		return false
	}

	if rec.Expired(now) {
		m.log.Info(ctx, "session expired", "user", rec.User.Username)
		m.clearLocal(ctx, rec)
		return false
	}

	// The record must belong to this installation's device; a mismatch
	// means the storage was transplanted or tampered with.
	if rec.DeviceID != m.devices.DeviceID(ctx) {
		m.log.Warn(ctx, "session bound to a different device, invalidating",
			"user", rec.User.Username)
		m.clearLocal(ctx, rec)
		return false
	}

	if !m.remoteSessionOK(ctx, rec) {
		m.clearLocal(ctx, rec)
		return false
	}

	if rec.TimeLeft(now) < m.opts.RenewalWindow {
		if err := m.renew(ctx, rec, now); err != nil {
			m.log.Error(ctx, "session renewal failed", "error", err)
		}
	}

	return true
}

// remoteSessionOK cross-checks the session with the remote authority.
// The remote is authoritative when reachable: an explicit "invalid"
// invalidates a locally unexpired session. Unreachability keeps the
// local verdict (availability over strict consistency). Cross-checks
// are rate-limited by VerifyMinInterval.
func (m *Manager) remoteSessionOK(ctx context.Context, rec *models.SessionRecord) bool {
	if m.checkLimiter != nil && !m.checkLimiter.Allow() {
		return true
	}

	rctx, cancel := context.WithTimeout(ctx, m.opts.RemoteTimeout)
	defer cancel()

	ok, err := m.remote.CheckSession(rctx, rec.User.Username, rec.DeviceID)
	if err != nil {
		m.log.Warn(ctx, "session cross-check skipped, verifier unreachable", "error", err)
		return true
	}
	if !ok {
		m.log.Info(ctx, "session invalidated by remote verifier", "user", rec.User.Username)
	}
	return ok
}

func (m *Manager) renew(ctx context.Context, rec *models.SessionRecord, now time.Time) error {
	rec.ExpiresAt = now.Add(m.opts.SessionTTL)

	reg, err := m.store.Registry(ctx)
	if err != nil {
		return err
	}
	reg[rec.User.Username] = models.RegistryEntry{DeviceID: rec.DeviceID, ExpiresAt: rec.ExpiresAt}

	if err := m.store.SaveLoginState(ctx, rec, reg); err != nil {
		return err
	}

	m.log.Debug(ctx, "session renewed", "user", rec.User.Username, "expires_at", rec.ExpiresAt)
	return nil
}

// clearLocal drops the session record and its registry binding.
// Failures are logged, not propagated: callers treat the session as
// gone either way.
func (m *Manager) clearLocal(ctx context.Context, rec *models.SessionRecord) {
	if err := m.store.ClearSession(ctx); err != nil {
		m.log.Error(ctx, "failed to clear session", "error", err)
	}

	reg, err := m.store.Registry(ctx)
	if err != nil {
		return
	}
	if entry, ok := reg[rec.User.Username]; ok && entry.DeviceID == rec.DeviceID {
		delete(reg, rec.User.Username)
		if err := m.store.SaveRegistry(ctx, reg); err != nil {
			m.log.Error(ctx, "failed to update registry", "error", err)
		}
	}
}

// Logout notifies the remote authority best-effort and unconditionally
// clears local state. The returned error reflects local storage
// problems only; a failed or timed-out remote call never leaves the
// local session stuck.
func (m *Manager) Logout(ctx context.Context) error {
	rec, err := m.store.Session(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		// Nothing readable; still drop whatever is physically there.
		return m.store.ClearSession(ctx)
	}

	rctx, cancel := context.WithTimeout(ctx, m.opts.RemoteTimeout)
	if rerr := m.remote.Logout(rctx, rec.User.Username); rerr != nil {
		m.log.Warn(ctx, "remote logout notification failed", "error", rerr)
	}
	cancel()

	if err := m.store.ClearSession(ctx); err != nil {
		return err
	}

	reg, err := m.store.Registry(ctx)
	if err != nil {
		return err
	}
	delete(reg, rec.User.Username)
	if err := m.store.SaveRegistry(ctx, reg); err != nil {
		return err
	}

	m.log.Info(ctx, "logged out", "user", rec.User.Username)
	return nil
}

// ForceLogout removes the named user's device binding and asks the
// server to invalidate the session. Only a caller holding a valid
// admin session may use it. Remote failure does not undo the local
// removal; the displaced session still dies remotely or by expiry.
func (m *Manager) ForceLogout(ctx context.Context, username string) error {
	now := m.opts.Now()

	current, err := m.store.Session(ctx)
	if err != nil {
		return err
	}
	if current == nil || current.Expired(now) || !current.User.IsAdmin() {
		return ErrUnauthorized
	}

	reg, err := m.store.Registry(ctx)
	if err != nil {
		return err
	}
	delete(reg, username)
	if err := m.store.SaveRegistry(ctx, reg); err != nil {
		return err
	}

	if username == current.User.Username {
		if err := m.store.ClearSession(ctx); err != nil {
			return err
		}
	}

	rctx, cancel := context.WithTimeout(ctx, m.opts.RemoteTimeout)
	defer cancel()
	if rerr := m.remote.ForceLogout(rctx, username); rerr != nil {
		m.log.Warn(ctx, "remote force-logout failed", "user", username, "error", rerr)
	}

	m.log.Info(ctx, "forced logout", "user", username, "by", current.User.Username)
	return nil
}

// TimeLeft returns the whole minutes until the stored session expires,
// floored at zero. Display only; never an authorization input.
func (m *Manager) TimeLeft(ctx context.Context) int {
	rec, err := m.store.Session(ctx)
	if err != nil || rec == nil {
		return 0
	}
	return int(rec.TimeLeft(m.opts.Now()) / time.Minute)
}

// CurrentUser returns the profile snapshot of the stored session, or
// nil if the session is absent or expired. Read-only: it never mutates
// stored state.
func (m *Manager) CurrentUser(ctx context.Context) *models.UserProfile {
	rec, err := m.store.Session(ctx)
	if err != nil || rec == nil || rec.Expired(m.opts.Now()) {
		return nil
	}
	user := rec.User
	return &user
}

// IsAuthenticated reports whether an unexpired session is stored.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.CurrentUser(ctx) != nil
}

// IsAdmin reports whether the current session belongs to an admin.
func (m *Manager) IsAdmin(ctx context.Context) bool {
	user := m.CurrentUser(ctx)
	return user != nil && user.IsAdmin()
}

// Ping proxies a liveness probe to the remote authority.
func (m *Manager) Ping(ctx context.Context) error {
	rctx, cancel := context.WithTimeout(ctx, m.opts.RemoteTimeout)
	defer cancel()
	return m.remote.Ping(rctx)
}
