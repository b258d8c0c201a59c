// Package testbed holds end-to-end scenarios exercising the runtime
// across package boundaries: streaming pipelines, cross-worker joins,
// timer interleaving and teardown under load. Unit-level behavior
// lives with its package; what belongs here is the interplay.
package testbed
