// Package querykit is a backend-agnostic query translation core.
//
// Callers describe reads with query.Filter, query.Query and
// query.AggregateQuery values tagged with the record type they address.
// The assembler package renames those values between the DTO type a caller
// sees and the entity type a store keeps, and the service package composes
// query services: relation fan-out, statistics, caching. The memory package
// is an in-memory backend and privacy narrows operations by policy.
//
// This package holds the error types and the Cache contract shared by the
// others.
package querykit
