// Package auth manages local email/password accounts and the signed-in user.
//
// Passwords are hashed with bcrypt and never stored in the clear. The active
// session is a single row in the sessions table, so signing in survives
// process restarts; signing out clears it.
//
// # Observation
//
// [Service.Observe] returns a channel that receives the current user (or nil)
// immediately on subscription and again on every sign-in and sign-out, so
// views can re-render account state without polling.
package auth
