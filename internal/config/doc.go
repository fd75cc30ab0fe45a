// Package config loads and resolves per-application test configuration.
//
// Each target application is described by one YAML document in the app
// configuration directory. The Registry loads all documents once at startup
// and hands out deep copies on lookup; Resolve narrows an AppConfig to a
// single environment's base URL and credentials.
//
// Configuration-time errors (malformed document, duplicate name, unknown
// environment key) are fatal by design: a run against a wrong or absent
// target is worse than no run at all.
package config
