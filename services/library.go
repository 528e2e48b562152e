package services

import (
	"cadenza/source"
	"cadenza/storage"
	"cadenza/types"
	"fmt"
	"log"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/mewkiz/flac"
)

// LibraryService interface defines methods for track discovery and metadata
type LibraryService interface {
	ListTracks(src *source.Source) ([]types.Track, error)
	ExtractMetadata(trackPath string) *types.TrackMetadata
	ValidateFilePath(path string) error
	GetContentType(filePath string) string
}

// libraryService implements the LibraryService interface
type libraryService struct {
	fs storage.FileSystem
}

// NewLibraryService creates a new library service reading through fs.
func NewLibraryService(fs storage.FileSystem) LibraryService {
	return &libraryService{fs: fs}
}

// ListTracks enumerates the qualifying files of an armed source in
// traversal order, extracting metadata for each one. This walks the whole
// tree once.
func (ls *libraryService) ListTracks(src *source.Source) ([]types.Track, error) {
	var tracks []types.Track

	ordinal := 0
	err := src.Walk(func(trackPath string) bool {
		track := types.Track{
			Filename: path.Base(trackPath),
			Path:     trackPath,
			Ordinal:  ordinal,
			Format:   strings.TrimPrefix(strings.ToLower(path.Ext(trackPath)), "."),
			Metadata: ls.ExtractMetadata(trackPath),
		}
		if info, err := ls.fs.Stat(trackPath); err == nil {
			track.Size = info.Size()
		}

		tracks = append(tracks, track)
		ordinal++
		return true
	})
	if err != nil {
		return nil, err
	}

	return tracks, nil
}

// ExtractMetadata extracts metadata from an audio file with fallback logic
func (ls *libraryService) ExtractMetadata(trackPath string) *types.TrackMetadata {
	file, err := ls.fs.Open(trackPath)
	if err != nil {
		log.Printf("Warning: Could not open audio file %s: %v", trackPath, err)
		// Use filename fallback
		return extractMetadataFromPath(trackPath)
	}
	defer file.Close()

	metadata := &types.TrackMetadata{}

	// Extract tags using dhowden/tag library (supports FLAC, MP3, etc.)
	meta, err := tag.ReadFrom(file)
	if err != nil {
		log.Printf("Warning: Could not parse audio metadata from %s: %v", trackPath, err)
		return extractMetadataFromPath(trackPath)
	}

	metadata.Title = meta.Title()
	metadata.Artist = meta.Artist()
	metadata.Album = meta.Album()

	track, _ := meta.Track()
	metadata.TrackNumber = track

	// Duration is not available through dhowden/tag; for FLAC files the
	// STREAMINFO block has it.
	if strings.EqualFold(path.Ext(trackPath), ".flac") {
		ls.fillFlacStreamInfo(trackPath, metadata)
	}

	// Use filename fallback for missing fields
	if metadata.Title == "" || metadata.Artist == "" || metadata.Album == "" {
		fallback := extractMetadataFromPath(trackPath)
		if metadata.Title == "" {
			metadata.Title = fallback.Title
		}
		if metadata.Artist == "" {
			metadata.Artist = fallback.Artist
		}
		if metadata.Album == "" {
			metadata.Album = fallback.Album
		}
	}

	return metadata
}

// fillFlacStreamInfo reads sample rate and duration from the FLAC
// STREAMINFO block.
func (ls *libraryService) fillFlacStreamInfo(trackPath string, metadata *types.TrackMetadata) {
	file, err := ls.fs.Open(trackPath)
	if err != nil {
		return
	}
	defer file.Close()

	stream, err := flac.Parse(file)
	if err != nil {
		log.Printf("Warning: Could not parse FLAC stream info from %s: %v", trackPath, err)
		return
	}

	info := stream.Info
	metadata.SampleRate = int(info.SampleRate)
	if info.SampleRate > 0 {
		seconds := info.NSamples / uint64(info.SampleRate)
		metadata.Duration = fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
	}
}

// extractMetadataFromPath extracts metadata from file path as fallback
func extractMetadataFromPath(trackPath string) *types.TrackMetadata {
	metadata := &types.TrackMetadata{}

	// Parse path components: Artist/Album/Track.flac or Track.mp3
	parts := strings.Split(strings.TrimPrefix(trackPath, "/"), "/")
	filename := path.Base(trackPath)

	// Extract artist from path (grandparent directory)
	if len(parts) >= 3 {
		metadata.Artist = parts[len(parts)-3]
	}

	// Extract album from path (parent directory)
	if len(parts) >= 2 {
		metadata.Album = parts[len(parts)-2]
	}

	// Extract title from filename, removing track number prefix and extension
	title := strings.TrimSuffix(filename, path.Ext(filename))

	// Remove common track number prefixes like "01 - ", "1. ", etc.
	re := regexp.MustCompile(`^(\d+)[\.\-\s]+(.+)`)
	if matches := re.FindStringSubmatch(title); len(matches) > 2 {
		title = matches[2]
		// Try to extract track number
		if trackNum, err := strconv.Atoi(matches[1]); err == nil {
			metadata.TrackNumber = trackNum
		}
	}

	metadata.Title = title

	return metadata
}

// GetContentType returns the appropriate MIME type for an audio file
func (ls *libraryService) GetContentType(filePath string) string {
	ext := strings.ToLower(path.Ext(filePath))
	switch ext {
	case ".flac":
		return "audio/flac"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// ValidateFilePath checks for path traversal attempts and other security issues
func (ls *libraryService) ValidateFilePath(p string) error {
	// Check for path traversal attempts
	if strings.Contains(p, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Check for empty path
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("empty path not allowed")
	}

	return nil
}
