// Package api talks to the portal backend and turns every response into an
// Outcome: a decoded success payload or a classified Failure whose message
// can be shown to the user.
package api
