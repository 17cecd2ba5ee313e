package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/pkg/config"
	"github.com/noah-isme/course-pulse-api/pkg/jobs"
)

type mirrorWriter interface {
	UpsertCourses(ctx context.Context, courses []models.Course) error
	DeleteCourses(ctx context.Context, ids []string) error
	UpsertStudents(ctx context.Context, students []models.Student) error
	UpsertEnrollments(ctx context.Context, enrollments []models.Enrollment) error
	UpsertGrades(ctx context.Context, grades []models.Grade) error
	RecordNudge(ctx context.Context, courseID string, studentIDs []string, at time.Time) error
}

// SyncService ships local mutations to the remote mirror as detached jobs.
// Local mutations never wait on it: enqueue failures and mirror errors are
// logged and counted, and the local state stays authoritative.
type SyncService struct {
	mirror  mirrorWriter
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewSyncService constructs a SyncService. A nil mirror disables syncing
// entirely; every enqueue becomes a no-op.
func NewSyncService(mirror mirrorWriter, cfg config.SyncConfig, callTimeout time.Duration, metrics *MetricsService, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if callTimeout <= 0 {
		callTimeout = 3 * time.Second
	}
	s := &SyncService{
		mirror:  mirror,
		metrics: metrics,
		logger:  logger,
		timeout: callTimeout,
		now:     time.Now,
	}
	if mirror != nil {
		s.queue = jobs.NewQueue("mirror-sync", s.handle, jobs.QueueConfig{
			Workers:    cfg.Workers,
			BufferSize: cfg.BufferSize,
			MaxRetries: cfg.MaxRetries,
			Logger:     logger,
		})
	}
	return s
}

// Start begins background dispatch.
func (s *SyncService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *SyncService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

type mirrorCall func(context.Context) error

func (s *SyncService) handle(ctx context.Context, job jobs.Job) error {
	call, ok := job.Payload.(mirrorCall)
	if !ok {
		return fmt.Errorf("job %s carries no mirror call", job.ID)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := call(callCtx)
	if s.metrics != nil {
		s.metrics.RecordMirrorSync(err == nil)
	}
	return err
}

func (s *SyncService) enqueue(kind string, call mirrorCall) {
	if s == nil || s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    kind,
		Payload: call,
	})
	if err != nil {
		s.logger.Warn("mirror sync enqueue failed", zap.String("type", kind), zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordMirrorSync(false)
		}
	}
}

// SyncCourses mirrors course upserts.
func (s *SyncService) SyncCourses(courses []models.Course) {
	if len(courses) == 0 {
		return
	}
	s.enqueue("courses.upsert", func(ctx context.Context) error {
		return s.mirror.UpsertCourses(ctx, courses)
	})
}

// SyncCourseDeletes mirrors course deletions.
func (s *SyncService) SyncCourseDeletes(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.enqueue("courses.delete", func(ctx context.Context) error {
		return s.mirror.DeleteCourses(ctx, ids)
	})
}

// SyncStudents mirrors student upserts.
func (s *SyncService) SyncStudents(students []models.Student) {
	if len(students) == 0 {
		return
	}
	s.enqueue("students.upsert", func(ctx context.Context) error {
		return s.mirror.UpsertStudents(ctx, students)
	})
}

// SyncEnrollments mirrors enrollment upserts.
func (s *SyncService) SyncEnrollments(enrollments []models.Enrollment) {
	if len(enrollments) == 0 {
		return
	}
	s.enqueue("enrollments.upsert", func(ctx context.Context) error {
		return s.mirror.UpsertEnrollments(ctx, enrollments)
	})
}

// SyncGrades mirrors grade upserts.
func (s *SyncService) SyncGrades(grades []models.Grade) {
	if len(grades) == 0 {
		return
	}
	s.enqueue("grades.upsert", func(ctx context.Context) error {
		return s.mirror.UpsertGrades(ctx, grades)
	})
}

// SyncNudge mirrors a nudge signal.
func (s *SyncService) SyncNudge(courseID string, studentIDs []string) {
	if len(studentIDs) == 0 {
		return
	}
	at := s.now().UTC()
	s.enqueue("nudge.record", func(ctx context.Context) error {
		return s.mirror.RecordNudge(ctx, courseID, studentIDs, at)
	})
}
