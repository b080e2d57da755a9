package container

import (
	app "oring-bot/internal/application"
	"oring-bot/internal/domain/port"
)

// Dependencies инфраструктура, из которой собираются сервисы
type Dependencies struct {
	Users       port.UserRepository
	Inspections port.InspectionRepository
	Analyses    port.AnalysisRepository
	Renderer    port.InspectionRenderer
	Photos      port.PhotoChecker
	Archive     port.SessionArchive
	Reports     map[app.ReportFormat]port.ReportWriter
}

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	AnalysisService   *app.AnalysisService
	PhotoChecker      port.PhotoChecker
}

func New(deps Dependencies, cfg app.InspectionConfig, info app.SessionInfo) *Container {
	userService := app.NewUserService(deps.Users)
	inspectionService := app.NewInspectionService(userService, deps.Inspections, deps.Analyses, deps.Renderer, cfg)
	analysisService := app.NewAnalysisService(deps.Analyses, deps.Archive, deps.Reports, info)

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
		AnalysisService:   analysisService,
		PhotoChecker:      deps.Photos,
	}
}
