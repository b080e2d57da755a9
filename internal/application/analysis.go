package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
	"oring-bot/internal/domain/rating"
)

// ReportFormat формат выгрузки отчёта
type ReportFormat string

const (
	ReportXLSX ReportFormat = "xlsx"
	ReportCSV  ReportFormat = "csv"
)

// ErrReportFormat отчёт в таком формате не настроен
var ErrReportFormat = errors.New("unsupported report format")

// SessionInfo реквизиты проекта для архива сессии
type SessionInfo struct {
	RDMSProjectNumber string
	ProjectName       string
	TechnicianName    string
}

// Replay результат повторной оценки сохранённого анализа
type Replay struct {
	Analysis entity.Analysis
	Metrics  rating.Metrics
	Rating   entity.Rating
	Matches  bool // пересчитанная оценка совпала с сохранённой
}

// AnalysisService работает с завершёнными анализами: история, отчёты,
// повторная оценка и архив сессии.
type AnalysisService struct {
	analyses port.AnalysisRepository
	archive  port.SessionArchive
	reports  map[ReportFormat]port.ReportWriter
	info     SessionInfo
	now      func() time.Time
}

func NewAnalysisService(analyses port.AnalysisRepository, archive port.SessionArchive, reports map[ReportFormat]port.ReportWriter, info SessionInfo) *AnalysisService {
	return &AnalysisService{
		analyses: analyses,
		archive:  archive,
		reports:  reports,
		info:     info,
		now:      time.Now,
	}
}

// History возвращает завершённые анализы пользователя
func (s *AnalysisService) History(ctx context.Context, userID int64) ([]entity.Analysis, error) {
	list, err := s.analyses.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return list, nil
}

// Replay заново оценивает сохранённый анализ пользователя только по парам (тип, %).
func (s *AnalysisService) Replay(ctx context.Context, userID int64, id string) (*Replay, error) {
	analysis, err := s.analyses.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	m := rating.ComputeMetrics(analysis.Cracks)
	r := rating.FromMetrics(m)
	return &Replay{
		Analysis: analysis,
		Metrics:  m,
		Rating:   r,
		Matches:  r == analysis.Rating,
	}, nil
}

// WriteReport пишет отчёт по анализу пользователя в заданном формате
func (s *AnalysisService) WriteReport(ctx context.Context, userID int64, id string, format ReportFormat, w io.Writer) error {
	writer, ok := s.reports[format]
	if !ok {
		return fmt.Errorf("%w: %q", ErrReportFormat, format)
	}
	analysis, err := s.analyses.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return writer.WriteReport(w, analysis)
}

// ExportSession упаковывает все анализы пользователя в архив сессии.
func (s *AnalysisService) ExportSession(ctx context.Context, userID int64, w io.Writer) (entity.Session, error) {
	list, err := s.History(ctx, userID)
	if err != nil {
		return entity.Session{}, err
	}

	session := entity.Session{
		Metadata: entity.NewSessionMetadata(s.info.RDMSProjectNumber, s.info.ProjectName, s.info.TechnicianName, s.now()),
		Analyses: list,
	}
	if err := s.archive.Write(w, session); err != nil {
		return entity.Session{}, fmt.Errorf("export session: %w", err)
	}
	return session, nil
}

// ImportSession загружает архив сессии в историю пользователя. Оценка
// каждого анализа пересчитывается по сохранённым парам, анализы получают новые ID.
func (s *AnalysisService) ImportSession(ctx context.Context, userID int64, r io.ReaderAt, size int64) (entity.Session, error) {
	session, err := s.archive.Read(r, size)
	if err != nil {
		return entity.Session{}, fmt.Errorf("import session: %w", err)
	}

	for i, a := range session.Analyses {
		m := rating.ComputeMetrics(a.Cracks)
		a.ID = uuid.NewString()
		a.UserID = userID
		a.TotalPct = m.TotalPct
		a.Rating = rating.FromMetrics(m)
		if err := s.analyses.Save(ctx, a); err != nil {
			return entity.Session{}, fmt.Errorf("save imported analysis: %w", err)
		}
		session.Analyses[i] = a
	}
	return session, nil
}
