// Package overrides owns the content override tree.
//
// The tree is persisted as one JSON document under StorageKey in a
// store.KVStore. Readers never hold the live tree: Load returns a deep copy
// decoded from storage, so a full re-read is the only way to observe a
// change.
//
// # Writes
//
// Save replaces the whole tree (last writer wins). SetField and SetFields
// perform load, set, save under a mutex so concurrent requests cannot lose
// each other's edits. SaveIfRevision is the conditional form used by the
// admin console when stale publishes should be rejected.
//
// Every write completes persistence and notification before returning.
//
// # Notifications
//
// Subscribe returns a channel of Change values. A Change carries no delta;
// it tells the subscriber to re-read. Delivery is non-blocking, so a slow
// subscriber may miss intermediate changes but will still observe the latest
// tree on its next read.
//
// # Failure handling
//
// A missing key, a backend read error, or malformed JSON all load as an
// empty tree with a warning in the log. Write failures are returned.
package overrides
