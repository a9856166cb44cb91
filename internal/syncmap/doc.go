// Package syncmap offers a lightweight, generic, concurrency-safe map guarded
// by a sync.RWMutex. It backs the issued token store.
package syncmap
