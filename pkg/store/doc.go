// Package store persists chart documents under generated IDs.
//
// # Backends
//
// Every backend implements [Store]:
//
//   - memory: a map, for tests and single-process servers
//   - file: zstd-compressed JSON files under a directory, for the CLI
//   - sqlite: a single database file in WAL mode
//   - redis: one key per chart plus an index set, for shared deployments
//   - mongo: one document per chart in a collection
//
// [Open] builds a backend from a [Config] and wraps it with ID validation
// and the registered [observability.StoreHooks].
//
// # Expiry
//
// A positive TTL stamps each chart with an expiry time on Put. Expired
// charts behave as missing: Get returns [ErrNotFound] and List skips them.
// Redis drops them on its own; the other backends remove them lazily.
//
// [observability.StoreHooks]: github.com/matzehuels/stackflow/pkg/observability.StoreHooks
package store
