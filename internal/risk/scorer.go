// Package risk turns raw co-change counts into a ranked, classified
// blast radius: a fixed three-factor weighted score (coupling, churn,
// recency) with a coupling gate that caps weakly-coupled files below
// critical, followed by a threshold ladder into Level bands.
package risk

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/spectra-g/engram/internal/config"
	"github.com/spectra-g/engram/internal/logging"
	"github.com/spectra-g/engram/internal/store"
)

// dataSource is the subset of *store.Store the scorer reads from. Kept
// as an interface so tests can supply a fake without standing up a
// real sqlite file.
type dataSource interface {
	CoChangeCounts(ctx context.Context, targetPath string) ([]store.CoChangeRow, error)
	CommitCount(ctx context.Context, path string) (int, error)
	TotalTargetCommitCount(ctx context.Context, targetPath string) (int, error)
	RepoNewestCommitTS(ctx context.Context) (*time.Time, error)
}

// Scorer computes and ranks blast-radius scores for a target path.
type Scorer struct {
	store dataSource
	cfg   config.AnalysisConfig
	log   *slog.Logger
}

// New creates a Scorer bound to a data source and the tunables from
// config.AnalysisConfig.
func New(store dataSource, cfg config.AnalysisConfig) *Scorer {
	return &Scorer{store: store, cfg: cfg, log: logging.With("component", "risk")}
}

// Rank computes risk.Score for every file historically co-committed
// with targetPath, ranks them (risk desc, coupling desc, path asc as
// the tie-break order), and truncates to cfg.HardCap.
func (s *Scorer) Rank(ctx context.Context, targetPath string) ([]Score, error) {
	rows, err := s.store.CoChangeCounts(ctx, targetPath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	totalTargetCommits, err := s.store.TotalTargetCommitCount(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	newest, err := s.store.RepoNewestCommitTS(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, 0, len(rows))
	for _, row := range rows {
		commitCount, err := s.store.CommitCount(ctx, row.Path)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s.score(row, totalTargetCommits, commitCount, newest))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Risk != scores[j].Risk {
			return scores[i].Risk > scores[j].Risk
		}
		if scores[i].Coupling != scores[j].Coupling {
			return scores[i].Coupling > scores[j].Coupling
		}
		return scores[i].Path < scores[j].Path
	})

	if len(scores) > s.cfg.HardCap {
		s.log.Debug("truncating blast radius to hard cap", "target_path", targetPath, "candidates", len(scores), "hard_cap", s.cfg.HardCap)
		scores = scores[:s.cfg.HardCap]
	}
	return scores, nil
}

// score computes one candidate file's coupling, churn, recency, raw
// weighted sum, coupling-gated risk, and classification level.
func (s *Scorer) score(row store.CoChangeRow, totalTargetCommits, commitCount int, newest *time.Time) Score {
	coupling := coupling(row.Count, totalTargetCommits)
	churn := churn(commitCount, s.cfg.ChurnSaturation)
	recency := recency(newest, row.LastCoCommittedAt, s.cfg.RecencyWindow)

	raw := 0.5*coupling + 0.3*churn + 0.2*recency

	risk := raw
	if coupling < s.cfg.CouplingGateThreshold && risk > 0.79 {
		risk = 0.79
	}

	return Score{
		Path:          row.Path,
		CoChangeCount: row.Count,
		Coupling:      coupling,
		Churn:         churn,
		Recency:       recency,
		Risk:          risk,
		Level:         classify(risk, s.cfg),
	}
}

func coupling(coChangeCount, totalTargetCommits int) float64 {
	denom := totalTargetCommits
	if denom < 1 {
		denom = 1
	}
	return float64(coChangeCount) / float64(denom)
}

func churn(commitCount, saturation int) float64 {
	if saturation < 1 {
		saturation = 1
	}
	v := float64(commitCount) / float64(saturation)
	if v > 1 {
		v = 1
	}
	return v
}

func recency(newest *time.Time, lastCoCommittedAt time.Time, window time.Duration) float64 {
	if newest == nil {
		return 0
	}
	age := newest.Sub(lastCoCommittedAt).Seconds()
	windowSeconds := window.Seconds()
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	frac := age / windowSeconds
	switch {
	case frac < 0:
		frac = 0
	case frac > 1:
		frac = 1
	}
	return 1 - frac
}

// classify buckets a risk score into its classification band via a
// descending threshold ladder.
func classify(riskScore float64, cfg config.AnalysisConfig) Level {
	switch {
	case riskScore >= cfg.CriticalThreshold:
		return LevelCritical
	case riskScore >= cfg.HighThreshold:
		return LevelHigh
	case riskScore >= cfg.MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}
