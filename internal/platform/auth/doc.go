// Package auth issues and validates signed tokens and hashes passwords using
// the secrets, algorithm, lifetimes and bcrypt cost from SecurityConfig.
package auth
