package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andreaessedj/analyzer/internal/analyzer"
	"github.com/andreaessedj/analyzer/internal/audio"
	"github.com/andreaessedj/analyzer/internal/domain"
	"github.com/andreaessedj/analyzer/internal/feedback"
)

// TrackDirectory resolves track identifiers to catalog rows.
type TrackDirectory interface {
	TrackByID(ctx context.Context, id string) (domain.Track, error)
}

// FileFetcher downloads a source file into local temporary storage and
// returns its path together with a cleanup for the file.
type FileFetcher interface {
	FetchToTemp(ctx context.Context, url string) (string, func(), error)
}

// FeedbackSink persists completed feedback records.
type FeedbackSink interface {
	InsertFeedback(ctx context.Context, rec domain.FeedbackRecord) error
}

// FeatureExtractor turns a decoded buffer into mix features.
type FeatureExtractor interface {
	Extract(buf audio.Buffer) (analyzer.Features, error)
}

// DecodeFunc adapts a plain decode function to the pipeline seam.
type DecodeFunc func(path string) (audio.Buffer, error)

// Deps wires the analysis pipeline. Zero-value Thresholds fall back to the
// stock bounds, a nil Decode to the file decoder.
type Deps struct {
	Tracks     TrackDirectory
	Files      FileFetcher
	Sink       FeedbackSink
	Extractor  FeatureExtractor
	Decode     DecodeFunc
	Thresholds feedback.Thresholds
	Publish    func(domain.FeedbackRecord)
	Log        *logrus.Logger
}

// AnalyzeUseCase runs the lookup, fetch, decode, extract, classify and
// persist stages for one track, strictly in order and without retries.
type AnalyzeUseCase struct {
	tracks     TrackDirectory
	files      FileFetcher
	sink       FeedbackSink
	extractor  FeatureExtractor
	decode     DecodeFunc
	thresholds feedback.Thresholds
	publish    func(domain.FeedbackRecord)
	log        *logrus.Logger
}

// NewAnalyzeUseCase builds the use case from its collaborators.
func NewAnalyzeUseCase(d Deps) *AnalyzeUseCase {
	if d.Decode == nil {
		d.Decode = audio.DecodeFile
	}
	if d.Thresholds == (feedback.Thresholds{}) {
		d.Thresholds = feedback.DefaultThresholds()
	}
	if d.Extractor == nil {
		d.Extractor = analyzer.New(analyzer.Config{})
	}
	if d.Log == nil {
		d.Log = logrus.New()
	}
	return &AnalyzeUseCase{
		tracks:     d.Tracks,
		files:      d.Files,
		sink:       d.Sink,
		extractor:  d.Extractor,
		decode:     d.Decode,
		thresholds: d.Thresholds,
		publish:    d.Publish,
		log:        d.Log,
	}
}

// Analyze runs one full pass and returns the record it persisted. Nothing is
// stored unless every stage succeeded.
func (u *AnalyzeUseCase) Analyze(ctx context.Context, trackID string) (domain.FeedbackRecord, error) {
	if strings.TrimSpace(trackID) == "" {
		return domain.FeedbackRecord{}, domain.ErrEmptyTrackID
	}
	start := time.Now()

	track, err := u.tracks.TrackByID(ctx, trackID)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("lookup track %s: %w", trackID, err)
	}
	if track.FileURL == "" {
		return domain.FeedbackRecord{}, fmt.Errorf("%w: track %s carries no file url", domain.ErrRetrieval, trackID)
	}

	path, cleanup, err := u.files.FetchToTemp(ctx, track.FileURL)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("fetch source for %s: %w", trackID, err)
	}
	defer cleanup()

	buf, err := u.decode(path)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("decode source for %s: %w", trackID, err)
	}

	feats, err := u.extractor.Extract(buf)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("extract features for %s: %w", trackID, err)
	}

	notes := feedback.Classify(feats, u.thresholds)
	rec, err := feedback.Assemble(trackID, feats, notes)
	if err != nil {
		return domain.FeedbackRecord{}, err
	}

	if err := u.sink.InsertFeedback(ctx, rec); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("persist feedback for %s: %w", trackID, err)
	}

	if u.publish != nil {
		u.publish(rec)
	}

	u.log.WithFields(logrus.Fields{
		"track_id": trackID,
		"audio_s":  buf.Seconds(),
		"took":     time.Since(start).Round(time.Millisecond).String(),
		"notes":    rec.Notes,
	}).Info("track analyzed")

	return rec, nil
}
