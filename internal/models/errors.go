package models

import "errors"

// Sentinel errors callers branch on.
var (
	// ErrNotFound is returned when a tab or group does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a group name is already taken.
	ErrDuplicateName = errors.New("group name already exists")

	// ErrSyncInProgress is returned when a sync is triggered while another
	// run holds the single-flight guard. It is benign and expected.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrNotConfigured is returned when no remote storage is configured.
	ErrNotConfigured = errors.New("remote storage not configured")
)
