package models

// Tag is a backend-owned label. Tags are resolved by exact case-preserved
// name and never created duplicate-by-name.
type Tag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ColorHex string `json:"color_hex"`
}
