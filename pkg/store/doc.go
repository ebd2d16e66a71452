// Package store implements the persistence gateway.
//
// A [Store] is a plain key/value blob store with six backends:
//
//   - [MemoryStore]: a map, for tests and throwaway sessions
//   - [NullStore]: accepts writes, never returns data
//   - [FileStore]: one JSON file per key under a data directory
//   - [SQLiteStore]: a single blobs(key, data, updated_at) table
//   - [RedisStore]: one Redis string per key
//   - [MongoStore]: one document per key
//
// [Open] picks a backend from a [config.StoreConfig].
//
// A [Gateway] layers the intent-graph vocabulary on top: the tree model and
// the raw records of one namespace, stored under "<namespace>:intent-tree"
// and "<namespace>:records". Gateway errors carry the engine error codes:
// NOT_FOUND for a missing tree, INVALID_TREE_STRUCTURE for undecodable data
// and PERSISTENCE_FAILURE when the backend itself fails.
package store
