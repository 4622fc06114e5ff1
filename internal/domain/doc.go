// Package domain defines core data models, errors and interfaces shared across
// the module. It contains plain types (wire/state), sentinel errors and
// contracts (interfaces) only.
package domain
