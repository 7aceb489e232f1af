// Package agent runs the unattended extraction loop: pending questions come
// from the catalog round-robin across categories, get classified against the
// question bank with bounded concurrency, and every outcome is reported
// back. A circuit breaker pauses the run while the bank is down and gives up
// when it stays down.
package agent
