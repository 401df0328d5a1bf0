// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Rate Limiting

RateLimiter keeps a token bucket per connection peer address, using
golang.org/x/time/rate. Forwarding headers do not choose the bucket.
Idle buckets are swept lazily.

	limiter := middleware.NewRateLimiter(5, 10)
	mux.HandleFunc("POST /polls", limiter.Limit(handler))

Requests over the limit get 429 with Retry-After.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows headers Content-Type, Authorization and X-Session-Token.

# Sessions

SessionToken returns the X-Session-Token header, or "" when it is
missing or malformed.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used for the hashed IP stored
with each ballot.
*/
package middleware
