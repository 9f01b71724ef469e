// Package postgres opens PostgreSQL connection pools from the resolved
// database configuration.
package postgres
