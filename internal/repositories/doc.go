// package repositories contains the SQLite-backed local stores: the
// persisted session token and the offline publication snapshot cache.
package repositories
