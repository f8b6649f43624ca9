package config

const (
	// MaxWorkspaceMutationAttempts bounds the reload-and-retry loop when a
	// workspace save loses a race with another writer.
	MaxWorkspaceMutationAttempts = 3

	// MaxFileTypeLength is the maximum length for a spec document type.
	MaxFileTypeLength = 64

	// MaxSpecContentBytes caps a single spec document body.
	MaxSpecContentBytes = 1 << 20

	// MaxFileContentBytes caps a single workspace file body.
	MaxFileContentBytes = 1 << 20

	// MaxBatchFiles is the maximum number of files in one batch write
	// (an AI generation result applied as one mutation).
	MaxBatchFiles = 500

	// MaxRequestBodyBytes caps JSON request bodies. A full batch of large
	// files can exceed it; such generations must be split.
	MaxRequestBodyBytes = 8 << 20
)
