package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/geometry"
	"oring-bot/internal/domain/port"
	"oring-bot/internal/domain/rating"
)

var (
	// ErrNoPhoto у пользователя нет текущей инспекции
	ErrNoPhoto = errors.New("no photo in progress")
	// ErrNoPerimeter периметр ещё не построен
	ErrNoPerimeter = errors.New("perimeter is not defined")
	// ErrCrackIndex номер трещины вне диапазона
	ErrCrackIndex = errors.New("crack index out of range")
	// ErrInvalidEpsilon отрицательный или нечисловой допуск упрощения
	ErrInvalidEpsilon = errors.New("invalid simplification epsilon")
	// ErrInvalidPoint точка с нечисловыми или бесконечными координатами
	ErrInvalidPoint = errors.New("point coordinates must be finite")
	// ErrNoRenderer отрисовка не настроена
	ErrNoRenderer = errors.New("renderer is not configured")
)

// InspectionConfig параметры измерений
type InspectionConfig struct {
	CurveSamples     int     // число точек кривой периметра
	SimplifyEpsilon  float64 // допуск упрощения трасс по умолчанию
	ProximityEpsilon float64 // близость конца трещины к периметру
	SnapRadius       float64 // притяжение концов трассы к вершинам периметра
	DeleteRadius     float64 // радиус поиска опорной точки при удалении
}

// DefaultInspectionConfig параметры по умолчанию
func DefaultInspectionConfig() InspectionConfig {
	return InspectionConfig{
		CurveSamples:     geometry.DefaultCurveSamples,
		SimplifyEpsilon:  1.0,
		ProximityEpsilon: geometry.DefaultProximity,
		SnapRadius:       geometry.DefaultSnapRadius,
		DeleteRadius:     10.0,
	}
}

// Assessment текущая оценка инспекции
type Assessment struct {
	Inspection *entity.Inspection
	Metrics    rating.Metrics
	Rating     entity.Rating
	Degenerate bool // длина периметра нулевая, проценты не имеют смысла
}

// InspectionService ведёт инспекцию одного фото: периметр, трещины, оценка.
type InspectionService struct {
	users       *UserService
	inspections port.InspectionRepository
	analyses    port.AnalysisRepository
	renderer    port.InspectionRenderer
	cfg         InspectionConfig
	newID       func() string
	now         func() time.Time
}

// NewInspectionService создаёт сервис инспекций.
func NewInspectionService(
	users *UserService,
	inspections port.InspectionRepository,
	analyses port.AnalysisRepository,
	renderer port.InspectionRenderer,
	cfg InspectionConfig,
) *InspectionService {
	return &InspectionService{
		users:       users,
		inspections: inspections,
		analyses:    analyses,
		renderer:    renderer,
		cfg:         cfg,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// StartInspection принимает фото уплотнения и начинает ввод периметра.
// Предыдущая незавершённая инспекция пользователя отбрасывается.
func (s *InspectionService) StartInspection(ctx context.Context, userID, chatID int64, imageName string, photo []byte) (*entity.Inspection, error) {
	inspection := entity.NewInspection(userID, imageName, photo, s.cfg.SimplifyEpsilon)
	inspection.StartedAt = s.now()
	if err := s.inspections.Save(ctx, inspection); err != nil {
		return nil, fmt.Errorf("save inspection: %w", err)
	}
	if _, err := s.users.SetState(ctx, userID, chatID, entity.StatePerimeter); err != nil {
		return nil, err
	}
	return inspection, nil
}

// Current возвращает текущую инспекцию или ErrNoPhoto.
func (s *InspectionService) Current(ctx context.Context, userID int64) (*entity.Inspection, error) {
	inspection, err := s.inspections.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get inspection: %w", err)
	}
	if inspection == nil {
		return nil, ErrNoPhoto
	}
	return inspection, nil
}

func (s *InspectionService) save(ctx context.Context, inspection *entity.Inspection) (*entity.Inspection, error) {
	if err := s.inspections.Save(ctx, inspection); err != nil {
		return nil, fmt.Errorf("save inspection: %w", err)
	}
	return inspection, nil
}

// AddControlPoints добавляет опорные точки периметра.
func (s *InspectionService) AddControlPoints(ctx context.Context, userID int64, points []entity.Point2D) (*entity.Inspection, error) {
	if !entity.AllFinite(points) {
		return nil, ErrInvalidPoint
	}
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := append(entity.ClonePoints(current.ControlPoints), points...)
	return s.save(ctx, current.WithControlPoints(next))
}

// DeleteControlPoint удаляет ближайшую к p опорную точку в радиусе DeleteRadius.
func (s *InspectionService) DeleteControlPoint(ctx context.Context, userID int64, p entity.Point2D) (*entity.Inspection, bool, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	next, removed := geometry.RemoveNearestPoint(current.ControlPoints, p, s.cfg.DeleteRadius)
	if !removed {
		return current, false, nil
	}
	saved, err := s.save(ctx, current.WithControlPoints(next))
	return saved, removed, err
}

// FinalizePerimeter строит периметр по опорным точкам и пересчитывает
// все введённые трещины относительно нового периметра.
func (s *InspectionService) FinalizePerimeter(ctx context.Context, userID, chatID int64) (*entity.Inspection, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	perimeter, err := geometry.BuildPerimeter(current.ControlPoints, s.cfg.CurveSamples)
	if err != nil {
		return nil, fmt.Errorf("build perimeter: %w", err)
	}
	if perimeter.Fallback {
		log.Printf("user %d: curve fit failed, using control polygon as perimeter", userID)
	}

	cracks := geometry.ReclassifyAll(current.Cracks, perimeter, s.cfg.ProximityEpsilon)
	next, err := s.save(ctx, current.WithPerimeter(perimeter, cracks))
	if err != nil {
		return nil, err
	}
	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateTracing); err != nil {
		return nil, err
	}
	return next, nil
}

// ClearPerimeter сбрасывает периметр и опорные точки. Трещины остаются
// и становятся внутренними с длиной относительно CSD по умолчанию.
func (s *InspectionService) ClearPerimeter(ctx context.Context, userID, chatID int64) (*entity.Inspection, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	cracks := geometry.ReclassifyAll(current.Cracks, nil, s.cfg.ProximityEpsilon)
	next, err := s.save(ctx, current.WithPerimeter(nil, cracks).WithControlPoints(nil))
	if err != nil {
		return nil, err
	}
	if _, err := s.users.SetState(ctx, userID, chatID, entity.StatePerimeter); err != nil {
		return nil, err
	}
	return next, nil
}

// AddCrack завершает трассу трещины и добавляет её в инспекцию.
func (s *InspectionService) AddCrack(ctx context.Context, userID int64, points []entity.Point2D) (*entity.Inspection, entity.Crack, error) {
	if !entity.AllFinite(points) {
		return nil, entity.Crack{}, ErrInvalidPoint
	}
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, entity.Crack{}, err
	}

	trace, err := geometry.PrepareTrace(points, current.Perimeter, s.cfg.SnapRadius)
	if err != nil {
		return nil, entity.Crack{}, err
	}

	crack := geometry.NewCrack(s.newID(), trace, current.Perimeter, current.Epsilon, s.cfg.ProximityEpsilon)
	cracks := append(append([]entity.Crack(nil), current.Cracks...), crack)
	next, err := s.save(ctx, current.WithCracks(cracks))
	if err != nil {
		return nil, entity.Crack{}, err
	}
	return next, crack, nil
}

// RemoveCrack удаляет трещину по номеру, начиная с 1.
func (s *InspectionService) RemoveCrack(ctx context.Context, userID int64, number int) (*entity.Inspection, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if number < 1 || number > len(current.Cracks) {
		return nil, fmt.Errorf("%w: %d of %d", ErrCrackIndex, number, len(current.Cracks))
	}

	cracks := make([]entity.Crack, 0, len(current.Cracks)-1)
	cracks = append(cracks, current.Cracks[:number-1]...)
	cracks = append(cracks, current.Cracks[number:]...)
	return s.save(ctx, current.WithCracks(cracks))
}

// SetEpsilon меняет допуск упрощения и пересчитывает все трещины.
func (s *InspectionService) SetEpsilon(ctx context.Context, userID int64, epsilon float64) (*entity.Inspection, error) {
	if epsilon < 0 || math.IsNaN(epsilon) || math.IsInf(epsilon, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEpsilon, epsilon)
	}
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	cracks := geometry.Resimplify(current.Cracks, epsilon)
	cracks = geometry.ReclassifyAll(cracks, current.Perimeter, s.cfg.ProximityEpsilon)
	return s.save(ctx, current.WithEpsilon(epsilon, cracks))
}

// Rate оценивает текущую инспекцию.
func (s *InspectionService) Rate(ctx context.Context, userID int64) (*Assessment, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return assess(current), nil
}

func assess(inspection *entity.Inspection) *Assessment {
	m := rating.ComputeMetrics(inspection.Records())
	return &Assessment{
		Inspection: inspection,
		Metrics:    m,
		Rating:     rating.FromMetrics(m),
		Degenerate: inspection.Perimeter.Degenerate(),
	}
}

// Render рисует разметку текущей инспекции.
func (s *InspectionService) Render(ctx context.Context, userID int64) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrNoRenderer
	}
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, current)
}

// Complete сохраняет анализ, закрывает инспекцию и возвращает пользователя в меню.
// Периметр обязателен.
func (s *InspectionService) Complete(ctx context.Context, userID, chatID int64) (entity.Analysis, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return entity.Analysis{}, err
	}
	if !current.Perimeter.Defined() {
		return entity.Analysis{}, ErrNoPerimeter
	}

	a := assess(current)
	analysis := entity.Analysis{
		ID:          s.newID(),
		UserID:      userID,
		ImageName:   current.ImageName,
		CompletedAt: s.now(),
		Cracks:      current.Records(),
		TotalPct:    a.Metrics.TotalPct,
		Rating:      a.Rating,
	}

	if s.renderer != nil {
		snapshot, err := s.renderer.Render(ctx, current)
		if err != nil {
			log.Printf("user %d: snapshot render failed: %v", userID, err)
		} else {
			analysis.Snapshot = snapshot
		}
	}

	if err := s.analyses.Save(ctx, analysis); err != nil {
		return entity.Analysis{}, fmt.Errorf("save analysis: %w", err)
	}
	if err := s.inspections.Delete(ctx, userID); err != nil {
		return entity.Analysis{}, fmt.Errorf("delete inspection: %w", err)
	}
	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu); err != nil {
		return entity.Analysis{}, err
	}
	return analysis, nil
}

// Discard отбрасывает текущую инспекцию без сохранения.
func (s *InspectionService) Discard(ctx context.Context, userID int64) error {
	return s.inspections.Delete(ctx, userID)
}
