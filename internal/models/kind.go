package models

// ContentKind classifies what a capture draft refers to.
// Thumbnail derivation and extraction routing are both keyed by kind.
type ContentKind string

const (
	KindArticle  ContentKind = "article"
	KindVideo    ContentKind = "video"
	KindPDF      ContentKind = "pdf"
	KindImage    ContentKind = "image"
	KindTweet    ContentKind = "tweet"
	KindIdeation ContentKind = "ideation"
	KindOther    ContentKind = "other"
)

// ParseContentKind maps a backend content_type string to a ContentKind.
// Unrecognized values fall back to KindOther rather than failing.
func ParseContentKind(s string) ContentKind {
	switch ContentKind(s) {
	case KindArticle, KindVideo, KindPDF, KindImage, KindTweet, KindIdeation:
		return ContentKind(s)
	default:
		return KindOther
	}
}

// DerivesLocally reports whether a thumbnail for this kind is computed
// on the client rather than discovered via page metadata.
func (k ContentKind) DerivesLocally() bool {
	switch k {
	case KindVideo, KindPDF, KindImage:
		return true
	default:
		return false
	}
}
