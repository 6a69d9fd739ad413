// Package logging provides structured logging utilities for the contactkeeper application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (user identifier hashing)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "people.search")
//	logger.Info("searching contacts",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("token refreshed",
//	    logging.UserHash(userID),
//	    "token", logging.SanitizeToken(token))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - User identifiers are hashed to prevent PII leakage while allowing correlation
//   - Credential material is never logged directly
package logging
