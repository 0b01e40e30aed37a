// Package shared holds cross-cutting test helpers used by multiple packages.
// It must stay free of business logic and of dependencies on other internal
// packages so that anything can import it without cycles.
package shared
