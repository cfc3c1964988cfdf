// Package bridge connects native objects to Go companions.
//
// A Wrapper turns a pinned native reference into typed property access.
// A Schema is the data-driven property table of one snapshot type: Apply
// pushes a snapshot through the native setters in table order and Snapshot
// reads every property back, substituting defaults for values Go cannot
// represent. Dispatch routes a native change notification to the
// companion's ChangeHandler. A Binding ties a declaration, a companion
// factory and an initialiser together and Register installs it on a
// runtime.
package bridge
