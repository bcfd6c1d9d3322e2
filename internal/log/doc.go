// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// Site configurations may carry authentication cookies and custom headers
// so gated pages can be audited. The SecureHandler masks those values
// before they reach log output, even in verbose mode:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, JWTs)
//   - Session identifiers and passwords
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("probing page",
//	    "cookie", "session=abc123",  // masked in output
//	    "url", "https://example.com/account",
//	)
//	slog.SetDefault(logger)
package log
