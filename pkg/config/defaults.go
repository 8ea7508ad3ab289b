package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "staybook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultTrustedProxyHops  = 0

	DefaultRequestTimeout       = 30 * time.Second
	DefaultIdempotencyTTL       = 24 * time.Hour
	DefaultMaxRequestSize       = 1 * 1024 * 1024  // 1MB
	DefaultMaxUploadRequestSize = 10 * 1024 * 1024 // 10MB, multipart overhead included

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingCodePrefix   = "BK"
	DefaultBookingCodeLength   = 10
	DefaultMaxPaymentProofSize = 5 * 1024 * 1024 // 5MiB
	DefaultBookingLockTTL      = 10 * time.Second

	DefaultRedisDB = 0

	DefaultBookingEventsTopic   = "booking-events"
	DefaultBookingEventsEnabled = false

	DefaultPaginationLimit = 500
)
