package entities

import "strconv"

// SettingsRecord is one user's backed-up settings blob. The blob is opaque:
// the service never parses or validates its contents.
type SettingsRecord struct {
	StorageKey string `json:"-"`
	Blob       []byte `json:"-"`
	CreatedAt  int64  `json:"createdAt"` // unix millis, set once on first write
	UpdatedAt  int64  `json:"updatedAt"` // unix millis, refreshed on every write
}

// ETag returns the entity tag used for conditional reads: a stable
// serialization of the update timestamp.
func (r *SettingsRecord) ETag() string {
	return strconv.FormatInt(r.UpdatedAt, 10)
}

// FetchResult is what a settings read yields after cache negotiation.
type FetchResult struct {
	Record      *SettingsRecord
	NotModified bool
}
