package app

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/geometry"
	"oring-bot/internal/infrastructure/storage"
)

type stubRenderer struct {
	calls int
}

func (r *stubRenderer) Render(ctx context.Context, inspection *entity.Inspection) ([]byte, error) {
	r.calls++
	return []byte("png"), nil
}

type fixture struct {
	users       *UserService
	inspections *InspectionService
	analyses    *storage.SQLiteAnalysisRepository
	renderer    *stubRenderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	analyses, err := storage.NewSQLiteAnalysisRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { analyses.Close() })

	users := NewUserService(storage.NewMemoryUserRepository())
	renderer := &stubRenderer{}
	svc := NewInspectionService(users, storage.NewMemoryInspectionRepository(), analyses, renderer, DefaultInspectionConfig())
	return &fixture{users: users, inspections: svc, analyses: analyses, renderer: renderer}
}

// ringPoints опорные точки окружности радиуса 100 с центром (200, 200).
func ringPoints() []entity.Point2D {
	pts := make([]entity.Point2D, 8)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / 8
		pts[i] = entity.Pt(200+100*math.Cos(a), 200+100*math.Sin(a))
	}
	return pts
}

func internalTrace() []entity.Point2D {
	return []entity.Point2D{entity.Pt(200, 150), entity.Pt(210, 160), entity.Pt(220, 170)}
}

func externalTrace() []entity.Point2D {
	return []entity.Point2D{entity.Pt(300, 200), entity.Pt(280, 200), entity.Pt(260, 200)}
}

func TestInspectionService_FullFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", []byte("jpeg"))
	require.NoError(t, err)
	user, err := f.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StatePerimeter, user.State)

	_, err = f.inspections.AddControlPoints(ctx, 1, ringPoints())
	require.NoError(t, err)

	insp, err := f.inspections.FinalizePerimeter(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, insp.Perimeter.Defined())
	require.False(t, insp.Perimeter.Fallback)
	require.InDelta(t, 200, insp.CSD(), 2)

	user, err = f.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateTracing, user.State)

	_, crack, err := f.inspections.AddCrack(ctx, 1, internalTrace())
	require.NoError(t, err)
	require.Equal(t, entity.CrackInternal, crack.Type)
	require.NotEmpty(t, crack.ID)

	assessment, err := f.inspections.Rate(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, assessment.Rating.Value)

	_, crack, err = f.inspections.AddCrack(ctx, 1, externalTrace())
	require.NoError(t, err)
	require.Equal(t, entity.CrackExternal, crack.Type)
	require.InDelta(t, 20, crack.LengthPct, 1)

	assessment, err = f.inspections.Rate(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, assessment.Rating.Value)
	require.Equal(t, entity.VerdictPass, assessment.Rating.Verdict)
	require.False(t, assessment.Degenerate)

	analysis, err := f.inspections.Complete(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, analysis.Rating.Value)
	require.Len(t, analysis.Cracks, 2)
	require.Equal(t, []byte("png"), analysis.Snapshot)
	require.Equal(t, 1, f.renderer.calls)

	_, err = f.inspections.Current(ctx, 1)
	require.ErrorIs(t, err, ErrNoPhoto)

	stored, err := f.analyses.Get(ctx, 1, analysis.ID)
	require.NoError(t, err)
	require.Equal(t, analysis.Cracks, stored.Cracks)
}

func TestInspectionService_RequiresPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.AddControlPoints(ctx, 5, ringPoints())
	require.ErrorIs(t, err, ErrNoPhoto)

	_, _, err = f.inspections.AddCrack(ctx, 5, internalTrace())
	require.ErrorIs(t, err, ErrNoPhoto)
}

func TestInspectionService_FinalizeNeedsThreePoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", nil)
	require.NoError(t, err)
	_, err = f.inspections.AddControlPoints(ctx, 1, []entity.Point2D{entity.Pt(0, 0), entity.Pt(10, 0)})
	require.NoError(t, err)

	_, err = f.inspections.FinalizePerimeter(ctx, 1, 10)
	require.ErrorIs(t, err, geometry.ErrInsufficientPoints)
}

func TestInspectionService_DeleteControlPoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", nil)
	require.NoError(t, err)
	_, err = f.inspections.AddControlPoints(ctx, 1, ringPoints())
	require.NoError(t, err)

	insp, removed, err := f.inspections.DeleteControlPoint(ctx, 1, entity.Pt(303, 198))
	require.NoError(t, err)
	require.True(t, removed)
	require.Len(t, insp.ControlPoints, 7)

	insp, removed, err = f.inspections.DeleteControlPoint(ctx, 1, entity.Pt(0, 0))
	require.NoError(t, err)
	require.False(t, removed)
	require.Len(t, insp.ControlPoints, 7)
}

func TestInspectionService_TraceRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", nil)
	require.NoError(t, err)
	_, err = f.inspections.AddControlPoints(ctx, 1, ringPoints())
	require.NoError(t, err)
	_, err = f.inspections.FinalizePerimeter(ctx, 1, 10)
	require.NoError(t, err)

	_, _, err = f.inspections.AddCrack(ctx, 1, []entity.Point2D{entity.Pt(200, 200), entity.Pt(210, 210)})
	require.ErrorIs(t, err, geometry.ErrShortTrace)

	outside := []entity.Point2D{entity.Pt(400, 400), entity.Pt(210, 210), entity.Pt(200, 200)}
	_, _, err = f.inspections.AddCrack(ctx, 1, outside)
	require.ErrorIs(t, err, geometry.ErrTraceOutsidePerimeter)

	insp, err := f.inspections.Current(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, insp.Cracks)
}

func TestInspectionService_RemoveCrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", nil)
	require.NoError(t, err)
	_, first, err := f.inspections.AddCrack(ctx, 1, internalTrace())
	require.NoError(t, err)
	_, second, err := f.inspections.AddCrack(ctx, 1, externalTrace())
	require.NoError(t, err)

	_, err = f.inspections.RemoveCrack(ctx, 1, 3)
	require.ErrorIs(t, err, ErrCrackIndex)
	_, err = f.inspections.RemoveCrack(ctx, 1, 0)
	require.ErrorIs(t, err, ErrCrackIndex)

	insp, err := f.inspections.RemoveCrack(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, insp.Cracks, 1)
	require.Equal(t, second.ID, insp.Cracks[0].ID)
	require.NotEqual(t, first.ID, insp.Cracks[0].ID)
}

func TestInspectionService_PerimeterChangeReclassifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", nil)
	require.NoError(t, err)

	// без периметра трещина внутренняя, длина относительно CSD = 1
	_, crack, err := f.inspections.AddCrack(ctx, 1, externalTrace())
	require.NoError(t, err)
	require.Equal(t, entity.CrackInternal, crack.Type)
	require.InDelta(t, 4000, crack.LengthPct, 1)

	_, err = f.inspections.AddControlPoints(ctx, 1, ringPoints())
	require.NoError(t, err)
	insp, err := f.inspections.FinalizePerimeter(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.CrackExternal, insp.Cracks[0].Type)
	require.InDelta(t, 20, insp.Cracks[0].LengthPct, 1)

	insp, err = f.inspections.ClearPerimeter(ctx, 1, 10)
	require.NoError(t, err)
	require.Nil(t, insp.Perimeter)
	require.Empty(t, insp.ControlPoints)
	require.Equal(t, entity.CrackInternal, insp.Cracks[0].Type)

	_, err = f.inspections.Complete(ctx, 1, 10)
	require.ErrorIs(t, err, ErrNoPerimeter)
}

func TestInspectionService_SetEpsilon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", nil)
	require.NoError(t, err)
	_, err = f.inspections.AddControlPoints(ctx, 1, ringPoints())
	require.NoError(t, err)
	_, err = f.inspections.FinalizePerimeter(ctx, 1, 10)
	require.NoError(t, err)

	wavy := []entity.Point2D{
		entity.Pt(150, 200), entity.Pt(160, 206), entity.Pt(170, 194),
		entity.Pt(180, 206), entity.Pt(190, 194), entity.Pt(200, 200),
	}
	_, fine, err := f.inspections.AddCrack(ctx, 1, wavy)
	require.NoError(t, err)

	_, err = f.inspections.SetEpsilon(ctx, 1, -1)
	require.ErrorIs(t, err, ErrInvalidEpsilon)

	insp, err := f.inspections.SetEpsilon(ctx, 1, 50)
	require.NoError(t, err)
	require.Equal(t, 50.0, insp.Epsilon)
	coarse := insp.Cracks[0]
	require.Len(t, coarse.SimplifiedPoints, 2)
	require.Equal(t, fine.RawPoints, coarse.RawPoints)
	require.Greater(t, len(fine.SimplifiedPoints), 2)
	require.Less(t, coarse.LengthPct, fine.LengthPct)
	require.Equal(t, entity.CrackInternal, coarse.Type)
}

func TestInspectionService_RejectsNonFinitePoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, 1, 10, "seal.jpg", nil)
	require.NoError(t, err)

	_, err = f.inspections.AddControlPoints(ctx, 1, []entity.Point2D{entity.Pt(math.NaN(), 1)})
	require.ErrorIs(t, err, ErrInvalidPoint)

	trace := []entity.Point2D{entity.Pt(200, 150), entity.Pt(math.Inf(1), 160), entity.Pt(220, 170)}
	_, _, err = f.inspections.AddCrack(ctx, 1, trace)
	require.ErrorIs(t, err, ErrInvalidPoint)

	insp, err := f.inspections.Current(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, insp.ControlPoints)
	require.Empty(t, insp.Cracks)
}
