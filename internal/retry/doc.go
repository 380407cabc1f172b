// Package retry provides exponential backoff retry functionality.
//
// It is used where navrouter depends on an external service at startup,
// such as connecting to the redis lookup cache backend.
//
// # Usage
//
//	cfg := retry.DefaultConfig()
//	err := retry.Do(ctx, "redis_connect", cfg, func() error {
//	    return client.Ping(ctx).Err()
//	}, nil)
package retry
