// Package context contains the state shared by all dbadmin commands: the
// resolved database settings, the logger, the configuration and the standard
// streams.
//
// It's a separate package so that both the app and cli packages can depend on
// it without importing each other.
package context
