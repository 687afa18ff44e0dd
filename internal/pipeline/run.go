package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/labelgen/internal/metrics"
	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/scene"
	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/store"
	"github.com/roach88/labelgen/internal/vocab"
)

// Config configures a run.
type Config struct {
	ScenesDir string
	// VideosDir, when set, requires every referenced video to exist there.
	VideosDir string
	// OutDir receives the split files. Empty skips writing them.
	OutDir string

	Profile    *profile.Profile
	Vocabulary *vocab.Vocabulary

	// Store, when set, records the run and every scene outcome.
	Store *store.Store
	// Metrics, when set, counts scene outcomes and split sizes.
	Metrics *metrics.Recorder
	// MetricsFile, when set, receives a textfile export of Metrics.
	MetricsFile string

	RunIDs RunIDGenerator
	Logger *slog.Logger
}

// Result is the outcome of a run.
type Result struct {
	RunID   string         `json:"run_id"`
	Scenes  []SceneResult  `json:"scenes"`
	Skipped map[string]int `json:"skipped"`
	Split   *split.Result  `json:"split"`
	Summary split.Summary  `json:"summary"`
	Files   []string       `json:"files,omitempty"`
}

// Accepted returns the number of labelled scenes.
func (r *Result) Accepted() int {
	n := 0
	for _, s := range r.Scenes {
		if s.Accepted() {
			n++
		}
	}
	return n
}

// Input is one scene to label, already decoded.
type Input struct {
	Name   string
	Record *scene.Record
}

// Run discovers the scenes of cfg.ScenesDir and labels them in sorted
// file-name order.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	names, err := scene.Discover(cfg.ScenesDir)
	if err != nil {
		return nil, err
	}
	return run(ctx, cfg, len(names), func(p *Processor, i int) (SceneResult, error) {
		return p.ProcessFile(filepath.Join(cfg.ScenesDir, names[i]))
	})
}

// Process labels in-memory scenes in the given order. cfg.ScenesDir is only
// recorded in the ledger.
func Process(ctx context.Context, cfg Config, inputs []Input) (*Result, error) {
	return run(ctx, cfg, len(inputs), func(p *Processor, i int) (SceneResult, error) {
		return p.ProcessRecord(inputs[i].Name, inputs[i].Record)
	})
}

type processFunc func(p *Processor, i int) (SceneResult, error)

func run(ctx context.Context, cfg Config, n int, process processFunc) (*Result, error) {
	if cfg.Profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	v := cfg.Vocabulary
	if v == nil {
		v = vocab.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	runIDs := cfg.RunIDs
	if runIDs == nil {
		runIDs = UUIDv7Generator{}
	}

	if err := cfg.Profile.Validate(v); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	rules, err := cfg.Profile.Rules(v)
	if err != nil {
		return nil, err
	}
	partitioner, err := split.NewPartitioner(v, rules, cfg.Profile.SplitOptions())
	if err != nil {
		return nil, err
	}
	proc, err := NewProcessor(cfg.Profile, v, scene.FileVideos{Dir: cfg.VideosDir}, logger)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: runIDs.Generate(), Skipped: make(map[string]int)}
	logger = logger.With("run_id", res.RunID)

	if cfg.Store != nil {
		hash, err := cfg.Profile.Hash()
		if err != nil {
			return nil, err
		}
		_, err = cfg.Store.BeginRun(ctx, store.Run{
			ID:          res.RunID,
			Profile:     cfg.Profile.Name,
			ProfileHash: hash,
			ScenesDir:   cfg.ScenesDir,
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Info("run started", "profile", cfg.Profile.Name, "scenes", n)

	if err := labelScenes(ctx, cfg, proc, n, process, res); err != nil {
		logger.Error("run failed", "error", err)
		failRun(cfg.Store, res.RunID, logger)
		return nil, err
	}

	var records []split.Record
	for _, s := range res.Scenes {
		if s.Accepted() {
			records = append(records, split.Record{Scene: s.Scene, Video: s.Video, Label: s.Label.Encoded})
		}
	}

	res.Split, err = partitioner.Partition(records)
	if err != nil {
		logger.Error("run failed", "error", err)
		failRun(cfg.Store, res.RunID, logger)
		return nil, err
	}
	res.Summary = split.Summarize(res.Split)

	if err := finish(ctx, cfg, res); err != nil {
		failRun(cfg.Store, res.RunID, logger)
		return nil, err
	}

	logger.Info("run completed",
		"accepted", res.Accepted(),
		"skipped", len(res.Scenes)-res.Accepted(),
		"train", res.Summary.Counts[split.Train],
		"val", res.Summary.Counts[split.Validation],
		"test", res.Summary.Counts[split.Test],
		"test_val", res.Summary.Counts[split.TestValidation],
	)
	return res, nil
}

// labelScenes processes scenes in order. Cancellation is checked between
// scenes; a scene in progress always completes.
func labelScenes(ctx context.Context, cfg Config, proc *Processor, n int, process processFunc, res *Result) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		sr, err := process(proc, i)
		if err != nil {
			return err
		}
		res.Scenes = append(res.Scenes, sr)

		if sr.Accepted() {
			if cfg.Metrics != nil {
				cfg.Metrics.Accepted()
			}
		} else {
			res.Skipped[sr.Reason()]++
			if cfg.Metrics != nil {
				cfg.Metrics.Skipped(sr.Reason())
			}
		}

		if cfg.Store != nil {
			if err := cfg.Store.WriteRecord(ctx, sceneRecord(res.RunID, int64(i+1), sr)); err != nil {
				return err
			}
		}
	}
	return nil
}

func finish(ctx context.Context, cfg Config, res *Result) error {
	if cfg.OutDir != "" {
		files, err := split.WriteDir(cfg.OutDir, res.Split)
		if err != nil {
			return err
		}
		res.Files = files
	}

	if cfg.Metrics != nil {
		cfg.Metrics.Splits(res.Split)
		if cfg.MetricsFile != "" {
			if err := cfg.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				return err
			}
		}
	}

	if cfg.Store != nil {
		if err := cfg.Store.AssignSplits(ctx, res.RunID, res.Split); err != nil {
			return err
		}
		if err := cfg.Store.FinishRun(ctx, res.RunID, store.RunCompleted); err != nil {
			return err
		}
	}
	return nil
}

// failRun marks the run failed. It uses a fresh context so a cancelled run
// is still recorded.
func failRun(s *store.Store, runID string, logger *slog.Logger) {
	if s == nil {
		return
	}
	if err := s.FinishRun(context.Background(), runID, store.RunFailed); err != nil {
		logger.Error("failed to mark run failed", "error", err)
	}
}

func sceneRecord(runID string, seq int64, sr SceneResult) store.SceneRecord {
	rec := store.SceneRecord{
		RunID: runID,
		Seq:   seq,
		Scene: sr.Scene,
		Video: sr.Video,
	}
	if sr.Accepted() {
		rec.Status = store.StatusAccepted
		rec.Label = sr.Label.Encoded
		rec.RecordID = sr.RecordID
	} else {
		rec.Status = store.StatusSkipped
		rec.Reason = sr.Reason()
	}
	return rec
}
