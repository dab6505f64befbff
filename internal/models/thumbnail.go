package models

// ThumbnailPhase identifies which variant of ThumbnailState is active.
type ThumbnailPhase string

const (
	// ThumbnailNone means no thumbnail exists and none is being derived
	ThumbnailNone ThumbnailPhase = "none"
	// ThumbnailPending means a derivation is in flight
	ThumbnailPending ThumbnailPhase = "pending"
	// ThumbnailLocalBlob means a client-derived image exists but has not been uploaded
	ThumbnailLocalBlob ThumbnailPhase = "local_blob"
	// ThumbnailRemoteURL means a remote image reference was discovered but not yet stored
	ThumbnailRemoteURL ThumbnailPhase = "remote_url"
	// ThumbnailFailed means derivation failed; the user may supply one manually
	ThumbnailFailed ThumbnailPhase = "failed"
)

// ThumbnailState is a tagged variant: exactly one phase is active at a time.
// LocalBlob and RemoteURL are mutually exclusive; the constructors clear the
// other representation so a stale one can never leak into a submission.
type ThumbnailState struct {
	Phase ThumbnailPhase `json:"phase"`

	// Generation is the derivation generation active when this state was
	// produced. The session discards results whose generation is stale.
	Generation uint64 `json:"generation"`

	// Data holds the derived image bytes (LocalBlob only)
	Data []byte `json:"data,omitempty"`

	// PreviewURL is a UI-servable preview reference for the local blob
	PreviewURL string `json:"preview_url,omitempty"`

	// RemoteURL is a remote image reference discovered via metadata (RemoteURL only)
	RemoteURL string `json:"remote_url,omitempty"`
}

// NoThumbnail returns the empty thumbnail state.
func NoThumbnail() ThumbnailState {
	return ThumbnailState{Phase: ThumbnailNone}
}

// PendingThumbnail marks a derivation in flight for the given generation.
func PendingThumbnail(generation uint64) ThumbnailState {
	return ThumbnailState{Phase: ThumbnailPending, Generation: generation}
}

// LocalBlobThumbnail wraps client-derived image bytes. Clears any remote reference.
func LocalBlobThumbnail(generation uint64, data []byte, previewURL string) ThumbnailState {
	return ThumbnailState{
		Phase:      ThumbnailLocalBlob,
		Generation: generation,
		Data:       data,
		PreviewURL: previewURL,
	}
}

// RemoteURLThumbnail wraps a discovered remote image reference. Clears any local blob.
func RemoteURLThumbnail(generation uint64, url string) ThumbnailState {
	return ThumbnailState{
		Phase:      ThumbnailRemoteURL,
		Generation: generation,
		RemoteURL:  url,
	}
}

// FailedThumbnail marks derivation failure for the given generation.
func FailedThumbnail(generation uint64) ThumbnailState {
	return ThumbnailState{Phase: ThumbnailFailed, Generation: generation}
}

// HasImage reports whether the state carries a usable image reference.
func (t ThumbnailState) HasImage() bool {
	return t.Phase == ThumbnailLocalBlob || t.Phase == ThumbnailRemoteURL
}
