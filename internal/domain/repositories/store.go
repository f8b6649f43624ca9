package repositories

import "io"

// Store bundles one persistence backend. It is opened at startup and must be
// closed on shutdown.
type Store struct {
	SpecFiles    SpecFileRepository
	SpecVersions SpecVersionRepository
	Workspaces   WorkspaceRepository
	TxManager    TransactionManager

	io.Closer
}
