// Package common contains shared functionality for command handlers
package common

import (
	"fjacquet/spendsense/cmd/root"
	"fjacquet/spendsense/internal/store"
)

// OpenStore connects to the configured database. On failure it terminates
// the process; commands cannot do anything useful without storage.
func OpenStore() *store.Store {
	s, err := store.Open(root.Cfg.Database.Driver, root.Cfg.Database.DSN, root.Logger())
	if err != nil {
		root.Log.Fatalf("Error opening database: %v", err)
	}
	return s
}

// Scope builds the batch/user scope from the shared flags.
func Scope() store.Scope {
	return store.Scope{
		BatchID: root.SharedFlags.Batch,
		UserID:  root.SharedFlags.User,
	}
}
