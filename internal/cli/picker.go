package cli

import (
	"errors"

	"github.com/ncruces/zenity"
)

// ErrPickerCanceled reports that the user dismissed a file picker dialog.
var ErrPickerCanceled = errors.New("selection canceled")

// PickTextFiles opens a native multi-select dialog for text inputs.
func PickTextFiles() ([]string, error) {
	selected, err := zenity.SelectFileMultiple(
		zenity.Title("Select text files"),
		zenity.FileFilters{
			{
				Name:     "Text files",
				Patterns: []string{"*.txt", "*.md", "*.text"},
			},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil, ErrPickerCanceled
		}
		return nil, err
	}
	return selected, nil
}

// PickAudioFiles opens a native multi-select dialog for audio inputs.
func PickAudioFiles() ([]string, error) {
	selected, err := zenity.SelectFileMultiple(
		zenity.Title("Select audio files"),
		zenity.FileFilters{
			{
				Name: "Audio files",
				Patterns: []string{
					"*.mp3", "*.mp4", "*.mpeg", "*.mpga",
					"*.m4a", "*.wav", "*.webm", "*.flac", "*.ogg",
				},
			},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil, ErrPickerCanceled
		}
		return nil, err
	}
	return selected, nil
}

// PickDirectory opens a native folder selection dialog.
func PickDirectory(title string) (string, error) {
	selected, err := zenity.SelectFile(
		zenity.Directory(),
		zenity.Title(title),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrPickerCanceled
		}
		return "", err
	}
	return selected, nil
}
