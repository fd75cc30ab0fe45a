// Package appcontext binds a resolved application configuration to a live
// session for the duration of one scenario.
//
// Browser apps get a playwright-driven page, API apps an HTTP client scoped
// to the resolved base URL. Contexts are never shared between scenarios; the
// runner creates one per scenario and guarantees Close on every exit path.
// Close is idempotent, and any operation after the first Close fails with a
// ContextClosedError.
package appcontext
