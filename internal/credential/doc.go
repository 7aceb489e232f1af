// Package credential manages the renewable bearer token for the question
// bank: persisted state on disk, validity checks with a refresh leeway, and
// serialized renewal through an external login helper.
package credential
