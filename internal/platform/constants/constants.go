// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token issuer/audience and session defaults.
  - Scanning: Worker pool and checkpoint cadence for the library scan.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "tosho-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Sized for book streaming, which can push tens of megabytes per response.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "tosho.app"

	// AuthAudience is the standard 'aud' claim in session tokens.
	AuthAudience = "tosho-clients"

	// DefaultSessionTTL is the token lifetime when SESSION_TTL is not configured.
	DefaultSessionTTL = 24 * time.Hour
)

// # Library Scanning

const (
	// ScanCheckpointEvery is how many processed files trigger a progress log line.
	ScanCheckpointEvery = 100

	// ScanStartupDelay is how long after boot the initial scan is kicked off.
	ScanStartupDelay = 10 * time.Second

	// DefaultScanInterval is the periodic re-scan cadence when SCAN_INTERVAL is not set.
	DefaultScanInterval = 1 * time.Hour

	// WatchDebounce coalesces bursts of filesystem events into a single rescan request.
	WatchDebounce = 30 * time.Second
)

// # Scheduler

const (
	// SchedulerGracePeriod bounds how long Stop waits for in-flight tasks.
	SchedulerGracePeriod = 30 * time.Second
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Database Schemas

const (
	SchemaCatalog = "catalog"
	SchemaUsers   = "users"
	SchemaLibrary = "library"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixEffectivePerms caches a user's resolved permission set.
	RedisPrefixEffectivePerms = "authz:effective:"
)

// # Redis TTLs

const (
	// EffectivePermsTTL bounds staleness if an invalidation is ever missed.
	EffectivePermsTTL = 10 * time.Minute
)
