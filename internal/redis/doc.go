// Package redis implements Redis-backed caches for the inventory.
//
// Provides SearchCache (read-through caching of trait search results plus a
// per-user recent-search list). All operations go through hooks that collect
// metrics and trip a circuit breaker when Redis misbehaves.
package redis
