package types

// Track represents a qualifying audio file found in the library.
type Track struct {
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Ordinal  int            `json:"ordinal"` // position in traversal order
	Size     int64          `json:"size"`
	Format   string         `json:"format"` // "flac", "mp3", etc.
	Metadata *TrackMetadata `json:"metadata,omitempty"`
}

// TrackMetadata represents metadata for an audio file.
type TrackMetadata struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Duration    string `json:"duration,omitempty"`
	SampleRate  int    `json:"sampleRate,omitempty"`
	TrackNumber int    `json:"trackNumber,omitempty"`
}
