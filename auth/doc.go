// Package auth owns the session lifecycle: login, verification with
// sliding-window renewal, logout, and administrative force-logout,
// together with the device-binding conflict resolution that keeps one
// account active on at most one device.
//
// # Overview
//
// The package provides:
//  1. Manager — the lifecycle orchestrator, wired from an injected
//     store.Store, verifier.Verifier, device.Provider, and an optional
//     verifier.Fallback for degraded logins during outages.
//  2. EvaluateConflict — the single decision point for whether a login
//     may displace an existing device binding (it never may: a denied
//     login resolves only by natural expiry or ForceLogout).
//  3. Sentinel errors and ConflictError for callers to match with
//     errors.Is / errors.As.
//
// # Consistency Model
//
// The remote verifier is authoritative when reachable: an explicit
// "invalid" from it ends a locally unexpired session. When the remote
// is unreachable, the local verdict stands and login may degrade to
// the fallback allow-list, flagged in the result. A timeout is always
// treated as "could not ask", never as "denied".
//
// # Concurrency
//
// Lifecycle operations (Login, Verify, Logout, ForceLogout) are
// expected to be serialized by the calling client; the manager holds
// no persistent cross-call lock. Read-only accessors may be called at
// any time.
package auth
