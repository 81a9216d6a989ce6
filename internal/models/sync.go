package models

// Sync run states persisted in the sync metadata record.
const (
	SyncStateIdle    = "idle"
	SyncStateSyncing = "syncing"
	SyncStateError   = "error"
)

// SyncResult summarizes one sync run. The orchestrator always returns a
// result, never an error: failures are reported through Success and Error.
// Counts cover both collections (tabs and groups).
type SyncResult struct {
	Success          bool   `json:"success"`
	AddedToLocal     int    `json:"addedToLocal"`
	DeletedFromLocal int    `json:"deletedFromLocal"`
	AddedToRemote    int    `json:"addedToRemote"`
	DeletedFromRemote int   `json:"deletedFromRemote"`
	Conflicts        int    `json:"conflicts"`
	IntegrityRepairs int    `json:"integrityRepairs"`
	Error            string `json:"error,omitempty"`
	Timestamp        int64  `json:"timestamp"`
}

// SyncMetadata is the small local bookkeeping record kept next to the
// snapshot: when the last sync finished, how it went, and a local change
// counter.
type SyncMetadata struct {
	LastSyncTime int64  `json:"lastSyncTime"`
	LocalVersion int64  `json:"localVersion"`
	State        string `json:"state"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
