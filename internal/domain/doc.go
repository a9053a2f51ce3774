// Package domain holds the core entities of the phenotype inventory —
// studies, datasets, traits, tags, the curation workflow records — and the
// repository interfaces the adapters implement. It has no dependencies on
// the storage or HTTP layers.
package domain
