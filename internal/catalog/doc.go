// Package catalog is the client for the local extraction service that owns
// the question inventory: it hands out pending questions, receives extraction
// outcomes, and offers an assisted statement cleanup for image-heavy
// questions.
package catalog
