package fitfile

import (
	"os"
	"path/filepath"
	"strings"

	"training-os-be/internal/entity"
)

// Decoder turns an activity file into at most one candidate.
type Decoder interface {
	Decode(path string) (*entity.Candidate, error)
	DecodeActivity(path string) (*Activity, error)
}

type FileDecoder struct{}

func NewDecoder() *FileDecoder {
	return &FileDecoder{}
}

// Supported reports whether path has an extension the decoder understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit", ".gpx":
		return true
	}
	return false
}

func (d *FileDecoder) Decode(path string) (*entity.Candidate, error) {
	activity, err := d.DecodeActivity(path)
	if err != nil {
		return nil, err
	}
	return activity.Candidate()
}

func (d *FileDecoder) DecodeActivity(path string) (*Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Primary: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit":
		return DecodeFIT(path, data)
	case ".gpx":
		return DecodeGPX(path, data)
	}
	return nil, &DecodeError{Path: path, Primary: ErrUnsupportedFormat}
}
