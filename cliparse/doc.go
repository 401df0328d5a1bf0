// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type (sqlite or postgres)
	--base-url    Public URL used in share links
	--ip-salt     IP hash salt
	--smtp-host   SMTP host
	--smtp-port   SMTP port
	--mail-from   Sender address
	--code-ttl    Verification code lifetime
	--env         Dotenv file (default .env)

# Environment Variables

Flags fall back to environment variables, which may be loaded from the
dotenv file with github.com/joho/godotenv. Variables already set in the
environment are not overridden by the file.

	PORT, DATABASE_URL, DATABASE_TYPE, BASE_URL, IP_HASH_SALT,
	SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, MAIL_FROM,
	CODE_TTL, RATE_LIMIT_RPS, RATE_LIMIT_BURST

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - IP_HASH_SALT is missing
  - DATABASE_TYPE is not sqlite or postgres
  - SMTP_HOST is set without MAIL_FROM or SMTP_USER
  - a numeric or duration variable does not parse
*/
package cliparse
