// Package credentials holds the local password checks run before anything
// is sent to the backend: strength scoring and temporary-password detection.
package credentials
