package storage

import "docraster/internal/ports"

// Store is the object store contract used by the upload fan-out.
// It is an alias to ports.ObjectStore to keep call-sites simple.
type Store = ports.ObjectStore
