// Package domain defines the core data models, error taxonomy and collaborator
// contracts shared across raiap. It contains plain types (wire/state),
// interfaces and sentinel errors only; no cryptography lives here.
package domain
