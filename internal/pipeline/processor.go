package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/labelgen/internal/ir"
	"github.com/roach88/labelgen/internal/label"
	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/scene"
	"github.com/roach88/labelgen/internal/vocab"
)

// SceneResult is the outcome of one scene. Exactly one of Label and Skip
// is set.
type SceneResult struct {
	Scene    string           `json:"scene"`
	Video    string           `json:"video,omitempty"`
	Label    *label.Label     `json:"label,omitempty"`
	RecordID string           `json:"record_id,omitempty"`
	Skip     *scene.SkipError `json:"-"`
}

// Accepted reports whether the scene produced a label.
func (r SceneResult) Accepted() bool {
	return r.Label != nil
}

// Reason returns the skip reason, or "" for accepted scenes.
func (r SceneResult) Reason() string {
	if r.Skip == nil {
		return ""
	}
	return string(r.Skip.Reason)
}

// Processor labels individual scenes under one profile.
type Processor struct {
	engine *label.Engine
	videos scene.VideoResolver
	logger *slog.Logger
}

// NewProcessor creates a processor. A nil vocabulary selects
// vocab.Default(); a nil resolver uses the image_filename as is.
func NewProcessor(p *profile.Profile, v *vocab.Vocabulary, videos scene.VideoResolver, logger *slog.Logger) (*Processor, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if v == nil {
		v = vocab.Default()
	}
	if videos == nil {
		videos = scene.FileVideos{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := p.LabelOptions()
	opts.Logger = logger
	eng, err := label.NewEngine(v, opts)
	if err != nil {
		return nil, err
	}
	return &Processor{engine: eng, videos: videos, logger: logger}, nil
}

// Vocabulary returns the processor's vocabulary.
func (p *Processor) Vocabulary() *vocab.Vocabulary {
	return p.engine.Vocabulary()
}

// ProcessFile reads and labels one scene file. The scene name is the file's
// base name. Files that are not valid scene JSON are skipped.
func (p *Processor) ProcessFile(path string) (SceneResult, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneResult{}, fmt.Errorf("failed to read scene file: %w", err)
	}
	rec, err := scene.ParseRecord(data)
	if err != nil {
		return p.skipped(name, "", scene.Skip(scene.ReasonUnreadable, "%s: %v", name, err)), nil
	}
	return p.ProcessRecord(name, rec)
}

// ProcessRecord labels one decoded scene.
//
// Soft failures are reported in SceneResult.Skip with a nil error. Hard
// failures (*vocab.SymbolError, *label.InvariantError) are returned as
// errors.
func (p *Processor) ProcessRecord(name string, rec *scene.Record) (SceneResult, error) {
	video, err := p.videos.Resolve(name, rec)
	if err != nil {
		return p.softOrHard(name, "", err)
	}

	seq, attrs, err := scene.Normalize(rec)
	if err != nil {
		return p.softOrHard(name, video, err)
	}

	lbl, err := p.engine.Derive(seq, attrs)
	if err != nil {
		return p.softOrHard(name, video, err)
	}

	id, err := ir.RecordID(video, lbl.Encoded)
	if err != nil {
		return SceneResult{}, fmt.Errorf("%s: %w", name, err)
	}

	p.logger.Debug("scene labelled",
		"scene", name,
		"video", video,
		"events", (len(lbl.Encoded)-1)/label.GroupSize,
	)
	return SceneResult{Scene: name, Video: video, Label: lbl, RecordID: id}, nil
}

func (p *Processor) softOrHard(name, video string, err error) (SceneResult, error) {
	var skip *scene.SkipError
	if errors.As(err, &skip) {
		return p.skipped(name, video, skip), nil
	}
	return SceneResult{}, fmt.Errorf("%s: %w", name, err)
}

func (p *Processor) skipped(name, video string, skip *scene.SkipError) SceneResult {
	p.logger.Warn("scene skipped",
		"scene", name,
		"reason", string(skip.Reason),
		"detail", skip.Message,
	)
	return SceneResult{Scene: name, Video: video, Skip: skip}
}
