// Package archive упаковывает сессию анализов в zip-архив с session.json.
package archive

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
)

const (
	// SessionFileName имя JSON-файла внутри архива
	SessionFileName = "session.json"
	// MaxSessionSize предельный распакованный размер session.json
	MaxSessionSize = 64 << 20
)

var (
	// ErrSessionFile архив не удалось прочитать или записать
	ErrSessionFile = errors.New("session file error")
	// ErrSessionVersion архив создан несовместимой версией
	ErrSessionVersion = errors.New("incompatible session file version")
)

type payload struct {
	SchemaVersion int            `json:"schema_version"`
	AppVersion    string         `json:"app_version"`
	Metadata      metadataJSON   `json:"metadata"`
	Analyses      []analysisJSON `json:"analyses"`
}

type metadataJSON struct {
	RDMSProjectNumber string `json:"rdms_project_number"`
	ProjectName       string `json:"project_name"`
	TechnicianName    string `json:"technician_name"`
	ProjectCode       string `json:"project_code"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
	SchemaVersion     int    `json:"schema_version"`
	AppVersion        string `json:"app_version"`
}

type analysisJSON struct {
	ID          string               `json:"id"`
	Index       int                  `json:"index"`
	ImageName   string               `json:"image_name"`
	CompletedAt string               `json:"completed_at"`
	CrackCount  int                  `json:"crack_count"`
	TotalPct    float64              `json:"total_pct"`
	Rating      int                  `json:"rating"`
	Result      string               `json:"result"`
	Cracks      []entity.CrackRecord `json:"cracks"`
	SnapshotPNG []byte               `json:"snapshot_png"`
}

// ZipArchive реализация port.SessionArchive
type ZipArchive struct {
	now     func() time.Time
	maxSize int64
}

// NewZipArchive создаёт архиватор сессий
func NewZipArchive() *ZipArchive {
	return &ZipArchive{now: time.Now, maxSize: MaxSessionSize}
}

// Write записывает сессию. Время обновления метаданных выставляется в текущее.
func (a *ZipArchive) Write(w io.Writer, session entity.Session) error {
	meta := session.Metadata
	meta.UpdatedAt = a.now()

	p := payload{
		SchemaVersion: entity.SessionSchemaVersion,
		AppVersion:    entity.AppVersion,
		Metadata: metadataJSON{
			RDMSProjectNumber: meta.RDMSProjectNumber,
			ProjectName:       meta.ProjectName,
			TechnicianName:    meta.TechnicianName,
			ProjectCode:       meta.ProjectCode,
			CreatedAt:         formatTime(meta.CreatedAt),
			UpdatedAt:         formatTime(meta.UpdatedAt),
			SchemaVersion:     entity.SessionSchemaVersion,
			AppVersion:        entity.AppVersion,
		},
		Analyses: make([]analysisJSON, 0, len(session.Analyses)),
	}
	for _, an := range session.Analyses {
		cracks := an.Cracks
		if cracks == nil {
			cracks = []entity.CrackRecord{}
		}
		p.Analyses = append(p.Analyses, analysisJSON{
			ID:          an.ID,
			Index:       an.Index,
			ImageName:   an.ImageName,
			CompletedAt: formatTime(an.CompletedAt),
			CrackCount:  an.CrackCount(),
			TotalPct:    an.TotalPct,
			Rating:      an.Rating.Value,
			Result:      string(an.Rating.Verdict),
			Cracks:      cracks,
			SnapshotPNG: an.Snapshot,
		})
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode session: %v", ErrSessionFile, err)
	}

	zw := zip.NewWriter(w)
	f, err := zw.Create(SessionFileName)
	if err != nil {
		return fmt.Errorf("%w: create entry: %v", ErrSessionFile, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: write entry: %v", ErrSessionFile, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: close archive: %v", ErrSessionFile, err)
	}
	return nil
}

// Read читает сессию и проверяет совместимость версий: схема не новее
// поддерживаемой и мажорная версия приложения не новее текущей.
func (a *ZipArchive) Read(r io.ReaderAt, size int64) (entity.Session, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return entity.Session{}, fmt.Errorf("%w: open archive: %v", ErrSessionFile, err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == SessionFileName {
			entry = f
			break
		}
	}
	if entry == nil {
		return entity.Session{}, fmt.Errorf("%w: archive missing %s", ErrSessionFile, SessionFileName)
	}
	if entry.UncompressedSize64 > uint64(a.maxSize) {
		return entity.Session{}, fmt.Errorf("%w: %s is %d bytes, limit %d",
			ErrSessionFile, SessionFileName, entry.UncompressedSize64, a.maxSize)
	}

	f, err := entry.Open()
	if err != nil {
		return entity.Session{}, fmt.Errorf("%w: open %s: %v", ErrSessionFile, SessionFileName, err)
	}
	defer f.Close()

	// заголовок может занижать размер, поэтому поток тоже ограничен
	var p payload
	if err := json.NewDecoder(io.LimitReader(f, a.maxSize)).Decode(&p); err != nil {
		return entity.Session{}, fmt.Errorf("%w: decode session: %v", ErrSessionFile, err)
	}

	if p.SchemaVersion > entity.SessionSchemaVersion {
		return entity.Session{}, fmt.Errorf("%w: schema %d is newer than supported %d",
			ErrSessionVersion, p.SchemaVersion, entity.SessionSchemaVersion)
	}

	appVersion := p.AppVersion
	if appVersion == "" {
		appVersion = entity.AppVersion
	}
	fileMajor, err := majorVersion(appVersion)
	if err != nil {
		return entity.Session{}, err
	}
	currentMajor, err := majorVersion(entity.AppVersion)
	if err != nil {
		return entity.Session{}, err
	}
	if fileMajor > currentMajor {
		return entity.Session{}, fmt.Errorf("%w: created with newer major version %s", ErrSessionVersion, appVersion)
	}

	session := entity.Session{
		Metadata: entity.SessionMetadata{
			RDMSProjectNumber: p.Metadata.RDMSProjectNumber,
			ProjectName:       p.Metadata.ProjectName,
			TechnicianName:    p.Metadata.TechnicianName,
			ProjectCode:       p.Metadata.ProjectCode,
			CreatedAt:         a.parseTime(p.Metadata.CreatedAt),
			UpdatedAt:         a.parseTime(p.Metadata.UpdatedAt),
			SchemaVersion:     p.Metadata.SchemaVersion,
			AppVersion:        p.Metadata.AppVersion,
		},
	}
	if session.Metadata.SchemaVersion == 0 {
		session.Metadata.SchemaVersion = entity.SessionSchemaVersion
	}
	if session.Metadata.AppVersion == "" {
		session.Metadata.AppVersion = entity.AppVersion
	}

	for i, an := range p.Analyses {
		session.Analyses = append(session.Analyses, entity.Analysis{
			ID:          an.ID,
			Index:       i + 1,
			ImageName:   an.ImageName,
			CompletedAt: a.parseTime(an.CompletedAt),
			Cracks:      an.Cracks,
			TotalPct:    an.TotalPct,
			Rating:      entity.Rating{Value: an.Rating, Verdict: entity.Verdict(an.Result)},
			Snapshot:    an.SnapshotPNG,
		})
	}
	return session, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// parseTime пустое или битое значение заменяется текущим временем.
func (a *ZipArchive) parseTime(value string) time.Time {
	if value == "" {
		return a.now()
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return a.now()
	}
	return t
}

func majorVersion(v string) (int, error) {
	head, _, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid version string %q", ErrSessionVersion, v)
	}
	return major, nil
}

var _ port.SessionArchive = (*ZipArchive)(nil)
