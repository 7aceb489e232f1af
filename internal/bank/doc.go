// Package bank talks to the third-party question bank: multi-strategy text
// search, candidate scoring by textual similarity, and extraction of the
// hierarchical classification paths attached to matched questions.
package bank
