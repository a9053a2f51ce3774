// Package app is the application layer — the only component that references
// multiple domain repositories. It orchestrates all use cases: catalog
// browsing, trait search, the tagging/review workflow, harmonization recipes,
// and account management.
package app
