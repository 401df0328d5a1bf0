// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database connection and creates the schema.

# Drivers

Open picks the driver from Config.DatabaseType:

  - "sqlite": modernc.org/sqlite (pure Go, default)
  - "postgres": github.com/lib/pq

	conn, err := db.Open(cfg)

SQLite connections are capped at one so transactions never fight over the
write lock. Use a DSN like:

	file:approvalvote.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on both drivers, and queries elsewhere use $n
placeholders, which both drivers accept.

# Tables

  - app_user: verified email addresses
  - user_session: per-browser sessions and their verified email
  - verification_code: hashed one-time codes per (session, email)
  - poll_draft: poll forms waiting on creator verification
  - poll: title, description, optional cover URL, seats, verification requirement, creator
  - option: ordered options per poll
  - ballot: one ballot per (poll, voter_key)
  - ballot_choice: approved options per ballot

# Relationships

	app_user 1──* poll
	poll 1──* option
	poll 1──* ballot
	ballot 1──* ballot_choice *──1 option
	user_session 1──* verification_code
	user_session 1──* poll_draft

Foreign keys declare ON DELETE CASCADE, but the store deletes children
explicitly so SQLite databases without foreign_keys(1) stay consistent.
*/
package db
