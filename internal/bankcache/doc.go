// Package bankcache persists question bank responses in SQLite so repeated
// runs over the same material skip the network. Entries expire after a
// configurable TTL; the bank's corpus changes slowly but it does change.
package bankcache
