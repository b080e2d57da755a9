package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// SessionSchemaVersion версия формата архива сессии. Увеличивается при
	// несовместимых изменениях формата.
	SessionSchemaVersion = 1
	// AppVersion версия приложения, записываемая в архив
	AppVersion = "1.0.0"
)

// Analysis завершённый анализ одного фото
type Analysis struct {
	ID          string
	Index       int // порядковый номер в сессии, начиная с 1
	UserID      int64
	ImageName   string
	CompletedAt time.Time
	Cracks      []CrackRecord
	TotalPct    float64
	Rating      Rating
	Snapshot    []byte // PNG с разметкой, может быть пустым
}

// CrackCount возвращает число трещин
func (a Analysis) CrackCount() int {
	return len(a.Cracks)
}

// SessionMetadata метаданные архива сессии
type SessionMetadata struct {
	RDMSProjectNumber string
	ProjectName       string
	TechnicianName    string
	ProjectCode       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SchemaVersion     int
	AppVersion        string
}

// BannerText строка-заголовок для отчёта.
func (m SessionMetadata) BannerText() string {
	return fmt.Sprintf("%s | RDMS %s | Technician: %s", m.ProjectCode, m.RDMSProjectNumber, m.TechnicianName)
}

// Session архив сессии: метаданные и список анализов
type Session struct {
	Metadata SessionMetadata
	Analyses []Analysis
}

var slugPattern = regexp.MustCompile(`[^A-Za-z0-9]+`)

// GenerateProjectCode строит код проекта вида RT-<rdms>_<slug>_<YYYYMMDD>.
func GenerateProjectCode(rdmsNumber, projectName string, when time.Time) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.TrimSpace(projectName), "-"), "-")
	if slug == "" {
		slug = "PROJECT"
	}
	return fmt.Sprintf("RT-%s_%s_%s", rdmsNumber, slug, when.Format("20060102"))
}

// NewSessionMetadata создаёт метаданные новой сессии.
func NewSessionMetadata(rdmsNumber, projectName, technicianName string, now time.Time) SessionMetadata {
	return SessionMetadata{
		RDMSProjectNumber: rdmsNumber,
		ProjectName:       strings.TrimSpace(projectName),
		TechnicianName:    strings.TrimSpace(technicianName),
		ProjectCode:       GenerateProjectCode(rdmsNumber, projectName, now),
		CreatedAt:         now,
		UpdatedAt:         now,
		SchemaVersion:     SessionSchemaVersion,
		AppVersion:        AppVersion,
	}
}
