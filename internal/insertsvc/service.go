// Package insertsvc runs the insertion flow: pick a file, copy it into the
// vault and insert a reference to the copy into a document.
package insertsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/localref/internal/apperr"
	"github.com/starford/localref/internal/attach"
	"github.com/starford/localref/internal/checksum"
	"github.com/starford/localref/internal/editor"
	"github.com/starford/localref/internal/index"
	"github.com/starford/localref/internal/metrics"
	"github.com/starford/localref/internal/models"
	"github.com/starford/localref/internal/notify"
	"github.com/starford/localref/internal/picker"
	"github.com/starford/localref/internal/storage"
)

// Result describes a completed insertion.
type Result struct {
	Source      models.SourceFile  `json:"source"`
	Destination models.Destination `json:"destination"`
	Document    string             `json:"document"`
	Reference   string             `json:"reference"`
	Embedded    bool               `json:"embedded"`
	Size        int64              `json:"size"`
	InsertionID int64              `json:"insertion_id,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithAttachmentDir sets the attachment folder policy (see attach.Folder).
func WithAttachmentDir(dir string) Option {
	return func(s *Service) { s.attachDir = dir }
}

// WithHistory records completed insertions.
func WithHistory(h index.History) Option {
	return func(s *Service) { s.history = h }
}

// WithNotifier sets where user notices go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service sequences picker → read → resolve → write → format → insert.
// Steps run one after another; a failure stops the chain. A file that was
// already copied is left in place when a later step fails.
type Service struct {
	store     storage.Provider
	links     attach.LinkGenerator
	attachDir string
	history   index.History
	notifier  notify.Notifier
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewService creates an insertion service.
func NewService(store storage.Provider, links attach.LinkGenerator, opts ...Option) *Service {
	s := &Service{
		store:    store,
		links:    links,
		notifier: notify.Discard,
		metrics:  metrics.Noop{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert runs the whole flow for the first path p returns. No selection is
// a silent no-op: (nil, nil) with nothing read, written or inserted. Any
// other failure is logged, reported as exactly one error notice and
// returned.
func (s *Service) Insert(ctx context.Context, p picker.Picker, documentPath string, sink editor.Sink) (*Result, error) {
	start := time.Now()
	paths := p.Pick(ctx)
	if len(paths) == 0 || paths[0] == "" {
		s.logger.Debug("insert: no selection")
		return nil, nil
	}

	src := models.NewSourceFile(paths[0])
	res, stage, err := s.insertSource(ctx, src, documentPath, sink)
	return s.finish(res, stage, src.Name, start, err)
}

// InsertData runs the flow from the resolve step for bytes already in hand,
// such as an HTTP upload.
func (s *Service) InsertData(ctx context.Context, name string, data []byte, documentPath string, sink editor.Sink) (*Result, error) {
	start := time.Now()
	name = attach.SanitizeName(name)
	src := models.NewSourceFile(name)
	res, stage, err := s.place(ctx, src, data, documentPath, sink)
	return s.finish(res, stage, name, start, err)
}

func (s *Service) insertSource(ctx context.Context, src models.SourceFile, documentPath string, sink editor.Sink) (*Result, string, error) {
	if !s.store.SourceExists(src.Path) {
		return nil, "read", fmt.Errorf("%w: %s", apperr.ErrSourceNotFound, src.Path)
	}
	data, err := s.store.ReadSource(src.Path)
	if err != nil {
		return nil, "read", err
	}
	return s.place(ctx, src, data, documentPath, sink)
}

func (s *Service) place(ctx context.Context, src models.SourceFile, data []byte, documentPath string, sink editor.Sink) (*Result, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "resolve", err
	}

	folder := s.store.Folder(attach.Folder(s.attachDir, documentPath))
	dest, err := attach.Resolve(attach.SanitizeName(src.Name), folder)
	if err != nil {
		return nil, "resolve", err
	}

	if err := s.store.Create(dest.Path, data); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			// Someone took the name between AvailablePath and Create.
			return nil, "write", fmt.Errorf("%w: %s appeared before it could be written: %w",
				apperr.ErrDestinationUnavailable, dest.Path, err)
		}
		return nil, "write", err
	}
	s.logger.Debug("insert: copied",
		slog.String("source", src.Path),
		slog.String("destination", dest.Path),
		slog.Int("bytes", len(data)))

	ref, err := attach.Format(dest, src.Ext, documentPath, s.links)
	if err != nil {
		if !errors.Is(err, apperr.ErrLinkGeneration) {
			err = fmt.Errorf("%w: %w", apperr.ErrLinkGeneration, err)
		}
		return nil, "format", err
	}

	if err := sink.InsertAtSelection(ctx, ref); err != nil {
		return nil, "insert", err
	}

	return &Result{
		Source:      src,
		Destination: dest,
		Document:    documentPath,
		Reference:   ref,
		Embedded:    attach.IsEmbeddable(src.Ext),
		Size:        int64(len(data)),
		InsertionID: s.record(data, src, dest, documentPath, ref),
	}, "", nil
}

// record is best-effort: a history failure is logged and never fails the
// insertion. It returns the new record ID, or 0.
func (s *Service) record(data []byte, src models.SourceFile, dest models.Destination, documentPath, ref string) int64 {
	if s.history == nil {
		return 0
	}
	in := &models.Insertion{
		Source:      src.Path,
		Destination: dest.Path,
		Document:    documentPath,
		Reference:   ref,
		Embedded:    attach.IsEmbeddable(src.Ext),
		Size:        int64(len(data)),
		Checksum:    checksum.Sum(data),
	}
	if err := s.history.RecordInsertion(in); err != nil {
		s.logger.Warn("insert: history record failed",
			slog.String("destination", dest.Path),
			slog.String("error", err.Error()))
		return 0
	}
	return in.ID
}

func (s *Service) finish(res *Result, stage, name string, start time.Time, err error) (*Result, error) {
	if err != nil {
		s.logger.Error("insert failed",
			slog.String("file", name),
			slog.String("stage", stage),
			slog.String("error", err.Error()))
		s.notifier.Notify(notify.Error("Error inserting file: %s", err.Error()))
		s.metrics.ObserveInsertion(stage, "", 0, time.Since(start))
		return nil, err
	}

	s.logger.Info("inserted",
		slog.String("file", name),
		slog.String("destination", res.Destination.Path),
		slog.String("reference", res.Reference))
	s.notifier.Notify(notify.Info("Inserted: %s", name))
	s.metrics.ObserveInsertion("ok", attach.Classify(res.Source.Ext).String(), res.Size, time.Since(start))
	return res, nil
}
