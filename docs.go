// Package logward configures category-based structured logging on top of
// zerolog, with daily file rotation and environment-driven settings.
//
// Overview:
// Logward is a configuration layer, not a logging engine. JSON serialization,
// colorized console rendering and level machinery come from zerolog; logward
// adds the settings record, four fixed log categories with a conventional
// on-disk layout, a daily rotator over the category files, and helper
// utilities for timing, request and security-event logging.
//
// Key Features:
// - Four fixed categories (error, app, debug, security) plus named debug sublogs
// - Separate console and file log levels
// - JSON file records shaped {event, timestamp, level, logger, ...}
// - Colorized console output via zerolog's ConsoleWriter
// - Daily rotation to {name}-{YYYY-MM-DD}.hist.log with backup pruning
// - ERROR and above from every category teed into error/error.log
// - Optional record rate cap
// - Request/correlation ID helpers and an http middleware
//
// Getting Started:
//
//	package main
//
//	import "github.com/logward/logward"
//
//	func main() {
//	    cfg, err := logward.LoadConfig()
//	    if err != nil {
//	        panic(err)
//	    }
//	    if err := logward.Setup(cfg); err != nil {
//	        panic(err)
//	    }
//	    defer logward.Close()
//
//	    logger := logward.GetLogger("main")
//	    logger.Info("application started", map[string]any{"version": cfg.AppVersion})
//	}
//
// Configuration:
//
// All settings come from environment variables with defaults:
//
//	CONSOLE_LOG_LEVEL     console threshold (default INFO)
//	FILE_LOG_LEVEL        file threshold (default DEBUG)
//	LOG_DIR               root of the log tree (default logs)
//	LOG_ROTATION_TIMEOUT  seconds between date checks (default 300)
//	LOG_BACKUP_COUNT      archives kept per log name (default 5)
//	LOG_MAX_BYTES         intra-day overflow threshold (default 10MB)
//	LOG_MAX_RATE          records/second cap, 0 = off (default 0)
//	LOG_NO_COLOR          disable ANSI colors on the console
//
// File Layout:
//
// The current file for a category is {LOG_DIR}/{category}/{category}.log;
// debug sublogs live next to debug.log as {LOG_DIR}/debug/{sublog}.log.
// When the UTC date advances, each non-empty current file is renamed to
// {name}-{YYYY-MM-DD}.hist.log and a fresh current file is created.
//
// Factories auto-initialize from the environment, so the simplest programs
// can skip Setup entirely:
//
//	logward.GetDebugLogger("db", "database").Debug("connected")
package logward
