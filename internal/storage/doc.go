package storage

// Package storage implements the destination-naming and cleanup collaborator:
// sanitized filename suggestion, partial-output cleanup after failed or
// cancelled transfers, and disk-space queries for the download directory.
