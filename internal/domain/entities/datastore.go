package entities

// DataEntry is one named value in a user's keyed datastore.
type DataEntry struct {
	Key       string `json:"key"`
	Value     []byte `json:"-"`
	Checksum  string `json:"checksum"`
	Version   int64  `json:"version"`
	SizeBytes int64  `json:"size_bytes"`
	UpdatedAt int64  `json:"updated_at"`
}

// ManifestEntry describes a datastore entry without its value.
type ManifestEntry struct {
	Key       string `json:"key"`
	Version   int64  `json:"version"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
	UpdatedAt int64  `json:"updated_at"`
}

// Manifest lists every entry a user has stored plus their combined size.
type Manifest struct {
	Entries   []ManifestEntry `json:"entries"`
	TotalSize int64           `json:"total_size"`
}

// ClientManifestEntry is the client's view of one key during delta sync.
type ClientManifestEntry struct {
	Key      string `json:"key"`
	Version  int64  `json:"version"`
	Checksum string `json:"checksum"`
}

// UploadEntry is a value the client pushes during delta sync.
type UploadEntry struct {
	Key      string `json:"key"`
	Value    []byte `json:"value"` // base64 on the wire
	Checksum string `json:"checksum"`
}

// DownloadEntry is a value the server hands back during delta sync.
type DownloadEntry struct {
	Key      string `json:"key"`
	Value    []byte `json:"value"` // base64 on the wire
	Version  int64  `json:"version"`
	Checksum string `json:"checksum"`
}

// UploadResult acknowledges one accepted upload.
type UploadResult struct {
	Key      string `json:"key"`
	Version  int64  `json:"version"`
	Checksum string `json:"checksum"`
}

// SyncError reports a per-key failure during delta sync.
type SyncError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// SyncRequest is the delta-sync request body.
type SyncRequest struct {
	ClientManifest []ClientManifestEntry `json:"client_manifest"`
	Uploads        []UploadEntry         `json:"uploads"`
}

// SyncResponse is the delta-sync response body.
type SyncResponse struct {
	ServerManifest []ManifestEntry `json:"server_manifest"`
	Downloads      []DownloadEntry `json:"downloads"`
	Uploaded       []UploadResult  `json:"uploaded"`
	Errors         []SyncError     `json:"errors"`
}
