package scene

import (
	"os"
	"path/filepath"
	"strings"
)

// VideoResolver maps a scene to its video identifier, or reports that the
// scene has no valid video with a *SkipError.
type VideoResolver interface {
	Resolve(sceneName string, rec *Record) (string, error)
}

// VideoFunc adapts a function to VideoResolver.
type VideoFunc func(sceneName string, rec *Record) (string, error)

// Resolve calls f.
func (f VideoFunc) Resolve(sceneName string, rec *Record) (string, error) {
	return f(sceneName, rec)
}

// FileVideos resolves the video from the record's image_filename.
// When Dir is set the referenced file must exist under it.
type FileVideos struct {
	Dir string
}

// Resolve implements VideoResolver.
func (v FileVideos) Resolve(sceneName string, rec *Record) (string, error) {
	if rec == nil || rec.ImageFilename == "" {
		return "", Skip(ReasonMissingField, "%s: image_filename is required", sceneName)
	}
	video := nfc(rec.ImageFilename)
	if filepath.Base(video) != video || strings.ContainsAny(video, ":\r\n") {
		return "", Skip(ReasonInvalidVideo, "%s: video %q is not a plain file name", sceneName, video)
	}
	if v.Dir == "" {
		return video, nil
	}

	info, err := os.Stat(filepath.Join(v.Dir, video))
	if err != nil {
		return "", Skip(ReasonInvalidVideo, "%s: video %q not found", sceneName, video)
	}
	if info.IsDir() || info.Size() == 0 {
		return "", Skip(ReasonInvalidVideo, "%s: video %q is empty", sceneName, video)
	}
	return video, nil
}
