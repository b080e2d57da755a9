package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
	"oring-bot/internal/infrastructure/archive"
	"oring-bot/internal/infrastructure/report"
)

func completeOne(t *testing.T, f *fixture, userID int64, traces ...[]entity.Point2D) entity.Analysis {
	t.Helper()
	ctx := context.Background()

	_, err := f.inspections.StartInspection(ctx, userID, userID*10, "seal.jpg", []byte("jpeg"))
	require.NoError(t, err)
	_, err = f.inspections.AddControlPoints(ctx, userID, ringPoints())
	require.NoError(t, err)
	_, err = f.inspections.FinalizePerimeter(ctx, userID, userID*10)
	require.NoError(t, err)
	for _, tr := range traces {
		_, _, err = f.inspections.AddCrack(ctx, userID, tr)
		require.NoError(t, err)
	}
	a, err := f.inspections.Complete(ctx, userID, userID*10)
	require.NoError(t, err)
	return a
}

func newAnalysisService(f *fixture) *AnalysisService {
	reports := map[ReportFormat]port.ReportWriter{
		ReportXLSX: report.NewXLSXReportWriter(),
		ReportCSV:  report.NewCSVReportWriter(),
	}
	return NewAnalysisService(f.analyses, archive.NewZipArchive(), reports, SessionInfo{
		RDMSProjectNumber: "1234",
		ProjectName:       "Seal Test",
		TechnicianName:    "Operator",
	})
}

func TestAnalysisService_HistoryAndReplay(t *testing.T) {
	f := newFixture(t)
	svc := newAnalysisService(f)
	ctx := context.Background()

	first := completeOne(t, f, 1, internalTrace())
	second := completeOne(t, f, 1, internalTrace(), externalTrace())
	completeOne(t, f, 2)

	list, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, second.ID, list[1].ID)
	require.Equal(t, 2, list[1].Index)

	replay, err := svc.Replay(ctx, 1, second.ID)
	require.NoError(t, err)
	require.True(t, replay.Matches)
	require.Equal(t, 2, replay.Rating.Value)

	_, err = svc.Replay(ctx, 1, "missing")
	require.ErrorIs(t, err, port.ErrAnalysisNotFound)
}

func TestAnalysisService_WriteReport(t *testing.T) {
	f := newFixture(t)
	svc := newAnalysisService(f)
	ctx := context.Background()

	a := completeOne(t, f, 1, internalTrace(), externalTrace())

	var buf bytes.Buffer
	require.NoError(t, svc.WriteReport(ctx, 1, a.ID, ReportCSV, &buf))
	out := buf.String()
	require.Contains(t, out, "OVERALL RATING,Rating: 2 - Pass")
	require.Contains(t, out, "Crack #,Type,Length (% of CSD)")
	require.Contains(t, out, "\n1,Internal,")
	require.Contains(t, out, "\n2,External,")
}

func TestAnalysisService_ExportImportSession(t *testing.T) {
	f := newFixture(t)
	svc := newAnalysisService(f)
	ctx := context.Background()

	completeOne(t, f, 1, internalTrace())
	completeOne(t, f, 1, internalTrace(), externalTrace())

	var buf bytes.Buffer
	exported, err := svc.ExportSession(ctx, 1, &buf)
	require.NoError(t, err)
	require.Len(t, exported.Analyses, 2)
	require.True(t, strings.HasPrefix(exported.Metadata.ProjectCode, "RT-1234_Seal-Test_"))

	data := buf.Bytes()
	imported, err := svc.ImportSession(ctx, 7, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, imported.Analyses, 2)

	list, err := svc.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for i := range list {
		require.Equal(t, exported.Analyses[i].Rating, list[i].Rating)
		require.Equal(t, exported.Analyses[i].Cracks, list[i].Cracks)
		require.NotEqual(t, exported.Analyses[i].ID, list[i].ID)
	}
}

func TestAnalysisService_ImportRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	svc := newAnalysisService(f)

	data := []byte("not a zip")
	_, err := svc.ImportSession(context.Background(), 1, bytes.NewReader(data), int64(len(data)))
	require.ErrorIs(t, err, archive.ErrSessionFile)
}

func TestAnalysisService_ForeignAnalysisIsHidden(t *testing.T) {
	f := newFixture(t)
	svc := newAnalysisService(f)
	ctx := context.Background()

	owned := completeOne(t, f, 1, internalTrace())

	_, err := svc.Replay(ctx, 2, owned.ID)
	require.ErrorIs(t, err, port.ErrAnalysisNotFound)

	var buf bytes.Buffer
	err = svc.WriteReport(ctx, 2, owned.ID, ReportXLSX, &buf)
	require.ErrorIs(t, err, port.ErrAnalysisNotFound)
	require.Zero(t, buf.Len())

	_, err = svc.Replay(ctx, 1, owned.ID)
	require.NoError(t, err)
}

func TestAnalysisService_WriteReportXLSX(t *testing.T) {
	f := newFixture(t)
	svc := newAnalysisService(f)
	ctx := context.Background()

	a := completeOne(t, f, 1, internalTrace())

	var buf bytes.Buffer
	require.NoError(t, svc.WriteReport(ctx, 1, a.ID, ReportXLSX, &buf))
	// xlsx это zip-контейнер
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	err := svc.WriteReport(ctx, 1, a.ID, ReportFormat("pdf"), &buf)
	require.ErrorIs(t, err, ErrReportFormat)
}
