// Package session persists the signed-in identity for the portal.
//
// A Store writes into two scopes: a durable scope that survives restarts
// (a YAML file or Redis) and a transient scope bound to the running process
// (memory, or Redis keys under a per-process namespace). The durable scope is
// authoritative; the transient scope only mirrors the bearer token.
package session
