// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the approval-vote API server.

approval-vote runs approval polls: voters approve any subset of the
options, and the options with the most approvals win the poll's seats.

# Commands

	approvalvote [serve] [flags]   Run the HTTP server (default)
	approvalvote migrate [flags]   Create the schema and exit
	approvalvote tally <poll-id>   Print a poll's current results

Every command accepts the same flags, parsed by package cliparse.

# Starting the Server

	DATABASE_URL=file:approvalvote.db IP_HASH_SALT=... go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -p 3318

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string
  - IP_HASH_SALT (--ip-salt): Secret for hashing client IPs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - BASE_URL (--base-url): Public URL used in share links
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, MAIL_FROM: Mail delivery.
    Without SMTP_HOST codes are written to the log.

Values may also come from a .env file.

# Architecture

  - tally: Ranking and winner selection
  - lifecycle: Poll creation, ballots, deletion rules
  - store: SQL persistence, the only place ballots are upserted
  - verify: Emailed one-time codes
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - models: Request/response and domain types
  - auth: Token, code and ID generation
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
