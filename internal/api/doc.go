// Package api exposes the resolved configuration over HTTP: a health probe
// for every environment and, outside production, a masked summary of the
// effective settings for operators.
package api
