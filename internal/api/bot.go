package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"oring-bot/internal/container"
	"oring-bot/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для оценки трещин на уплотнительных кольцах.

📸 Отправьте фото кольца, отметьте периметр и трещины координатами в пикселях, и я выставлю оценку 0–5.

📋 Команды:
/check — начать проверку кольца
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /check и фото кольца (лучше файлом, без сжатия)
2️⃣ /point x,y x,y ... — опорные точки периметра, минимум 3
   /delpoint x,y — удалить ближайшую точку
3️⃣ /perimeter — построить периметр
   /clearperimeter — сбросить периметр
4️⃣ /crack x,y x,y x,y ... — трасса трещины от начала к концу
   /delcrack N — удалить трещину N
   /eps E — допуск упрощения трасс
5️⃣ /rate — таблица и оценка
6️⃣ /done — сохранить анализ

📁 Сессия:
/history — завершённые анализы
/replay ID — пересчитать оценку анализа
/report ID [xlsx|csv] — отчёт, по умолчанию Excel
/export — архив сессии (zip)
Отправьте zip-архив сессии файлом, чтобы загрузить его.`

	msgAwaitingPhoto   = "📸 Отправьте фото уплотнения."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото уплотнения или команду. Справка: /help."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgPhotoAccepted   = "✅ Фото получено. Отметьте периметр: /point x,y x,y x,y ... затем /perimeter."
	msgProcessingError = "⚠️ Не удалось загрузить файл. Попробуйте ещё раз."
	msgNoRender        = "⚠️ Не удалось нарисовать разметку."
)

// Bot представляет Telegram-бота
type Bot struct {
	api *tgbotapi.BotAPI
	app *container.Container
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api: api,
		app: app,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	ctx := context.Background()

	for update := range updates {
		if update.Message == nil {
			continue
		}

		b.handleMessage(ctx, update.Message)
	}

	return nil
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handlePhoto(ctx, msg, photo.FileID, fmt.Sprintf("photo_%d.jpg", msg.MessageID))
		return
	}

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	userID := user.ID
	args := strings.TrimSpace(msg.CommandArguments())

	if !commandAllowed(msg.Command(), user.State) {
		b.sendMessage(chatID, stateHint(user.State))
		return
	}

	switch msg.Command() {
	case "start":
		b.app.UserService.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		b.app.UserService.BeginCheck(ctx, userID, chatID)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		if err := b.app.InspectionService.Discard(ctx, userID); err != nil {
			log.Printf("Error discarding inspection: %v", err)
		}
		b.app.UserService.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	case "point":
		b.cmdPoint(ctx, chatID, userID, args)
	case "delpoint":
		b.cmdDelPoint(ctx, chatID, userID, args)
	case "perimeter":
		b.cmdPerimeter(ctx, chatID, userID)
	case "clearperimeter":
		b.cmdClearPerimeter(ctx, chatID, userID)
	case "crack":
		b.cmdCrack(ctx, chatID, userID, args)
	case "delcrack":
		b.cmdDelCrack(ctx, chatID, userID, args)
	case "eps":
		b.cmdEpsilon(ctx, chatID, userID, args)
	case "rate":
		b.cmdRate(ctx, chatID, userID)
	case "done":
		b.cmdDone(ctx, chatID, userID)
	case "history":
		b.cmdHistory(ctx, chatID, userID)
	case "replay":
		b.cmdReplay(ctx, chatID, userID, args)
	case "report":
		b.cmdReport(ctx, chatID, userID, args)
	case "export":
		b.cmdExport(ctx, chatID, userID)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto начинает новую инспекцию по фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID, name string) {
	imageData, err := b.downloadFile(fileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if b.app.PhotoChecker != nil {
		if err := b.app.PhotoChecker.Check(ctx, imageData); err != nil {
			log.Printf("Photo check: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("⚠️ Качество фото под вопросом: %v. Разметку можно продолжить.", err))
		}
	}

	if _, err := b.app.InspectionService.StartInspection(ctx, msg.From.ID, msg.Chat.ID, name, imageData); err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	log.Printf("Received image %s: %d bytes", name, len(imageData))
	b.sendMessage(msg.Chat.ID, msgPhotoAccepted)
}

// handleDocument принимает фото без сжатия или архив сессии
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document
	switch {
	case strings.HasPrefix(doc.MimeType, "image/"):
		b.handlePhoto(ctx, msg, doc.FileID, doc.FileName)

	case strings.HasSuffix(strings.ToLower(doc.FileName), ".zip"):
		data, err := b.downloadFile(doc.FileID)
		if err != nil {
			log.Printf("Error downloading archive: %v", err)
			b.sendMessage(msg.Chat.ID, msgProcessingError)
			return
		}
		session, err := b.app.AnalysisService.ImportSession(ctx, msg.From.ID, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("📁 Загружено анализов: %d\n%s",
			len(session.Analyses), session.Metadata.BannerText()))

	default:
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
	}
}

func (b *Bot) cmdPoint(ctx context.Context, chatID, userID int64, args string) {
	points, err := ParsePoints(args)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	insp, err := b.app.InspectionService.AddControlPoints(ctx, userID, points)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("📍 Опорных точек: %d. Когда все отмечены: /perimeter.", len(insp.ControlPoints)))
}

func (b *Bot) cmdDelPoint(ctx context.Context, chatID, userID int64, args string) {
	p, err := ParsePoint(args)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	insp, removed, err := b.app.InspectionService.DeleteControlPoint(ctx, userID, p)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if !removed {
		b.sendMessage(chatID, "❓ Рядом с этой точкой нет опорных точек.")
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🗑 Точка удалена. Опорных точек: %d.", len(insp.ControlPoints)))
}

func (b *Bot) cmdPerimeter(ctx context.Context, chatID, userID int64) {
	insp, err := b.app.InspectionService.FinalizePerimeter(ctx, userID, chatID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	text := formatPerimeter(insp.Perimeter)
	if len(insp.Cracks) > 0 {
		text += "\n\nТрещины пересчитаны:\n" + formatCracks(insp.Cracks)
	} else {
		text += "\n\nТеперь отметьте трещины: /crack x,y x,y x,y ..."
	}
	b.sendMessage(chatID, text)
	b.sendRender(ctx, chatID, userID)
}

func (b *Bot) cmdClearPerimeter(ctx context.Context, chatID, userID int64) {
	if _, err := b.app.InspectionService.ClearPerimeter(ctx, userID, chatID); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, "🧹 Периметр сброшен. Отметьте опорные точки заново: /point x,y ...")
}

func (b *Bot) cmdCrack(ctx context.Context, chatID, userID int64, args string) {
	points, err := ParsePoints(args)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	insp, crack, err := b.app.InspectionService.AddCrack(ctx, userID, points)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("〰️ Трещина %d: %s, %.2f%% CSD (CSD %.1f px).",
		len(insp.Cracks), crack.Type, crack.LengthPct, insp.CSD()))
}

func (b *Bot) cmdDelCrack(ctx context.Context, chatID, userID int64, args string) {
	n, err := strconv.Atoi(args)
	if err != nil {
		b.sendMessage(chatID, "❓ Укажите номер трещины: /delcrack N")
		return
	}
	insp, err := b.app.InspectionService.RemoveCrack(ctx, userID, n)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, "🗑 Трещина удалена.\n"+formatCracks(insp.Cracks))
}

func (b *Bot) cmdEpsilon(ctx context.Context, chatID, userID int64, args string) {
	eps, err := strconv.ParseFloat(args, 64)
	if err != nil {
		b.sendMessage(chatID, "❓ Укажите допуск числом: /eps 1.5")
		return
	}
	insp, err := b.app.InspectionService.SetEpsilon(ctx, userID, eps)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("⚙️ Допуск упрощения %.2f px.\n%s", insp.Epsilon, formatCracks(insp.Cracks)))
}

func (b *Bot) cmdRate(ctx context.Context, chatID, userID int64) {
	assessment, err := b.app.InspectionService.Rate(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, formatCracks(assessment.Inspection.Cracks)+"\n\n"+
		formatTable(assessment.Metrics, assessment.Rating, assessment.Degenerate))
	b.sendRender(ctx, chatID, userID)
}

func (b *Bot) cmdDone(ctx context.Context, chatID, userID int64) {
	analysis, err := b.app.InspectionService.Complete(ctx, userID, chatID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("💾 Анализ сохранён, трещин %d. %s\nОтчёт: /report %s",
		analysis.CrackCount(), analysis.Rating, analysis.ID))
}

func (b *Bot) cmdHistory(ctx context.Context, chatID, userID int64) {
	list, err := b.app.AnalysisService.History(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, formatHistory(list))
}

func (b *Bot) cmdReplay(ctx context.Context, chatID, userID int64, id string) {
	if id == "" {
		b.sendMessage(chatID, "❓ Укажите ID анализа: /replay ID")
		return
	}
	replay, err := b.app.AnalysisService.Replay(ctx, userID, id)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	text := formatTable(replay.Metrics, replay.Rating, false)
	if !replay.Matches {
		text += fmt.Sprintf("\n⚠️ Сохранённая оценка отличалась: %s", replay.Analysis.Rating)
	}
	b.sendMessage(chatID, replay.Analysis.ImageName+"\n\n"+text)
	if len(replay.Analysis.Snapshot) > 0 {
		b.sendPhoto(chatID, replay.Analysis.Snapshot)
	}
}

func (b *Bot) cmdReport(ctx context.Context, chatID, userID int64, args string) {
	id, format, err := parseReportArgs(args)
	if err != nil {
		b.sendMessage(chatID, "❓ Укажите ID анализа: /report ID [xlsx|csv]")
		return
	}
	var buf bytes.Buffer
	if err := b.app.AnalysisService.WriteReport(ctx, userID, id, format, &buf); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendDocument(chatID, "report_"+id+"."+string(format), buf.Bytes())
}

func (b *Bot) cmdExport(ctx context.Context, chatID, userID int64) {
	var buf bytes.Buffer
	session, err := b.app.AnalysisService.ExportSession(ctx, userID, &buf)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendDocument(chatID, session.Metadata.ProjectCode+".zip", buf.Bytes())
}

// sendRender отправляет картинку с разметкой, если её удалось нарисовать
func (b *Bot) sendRender(ctx context.Context, chatID, userID int64) {
	img, err := b.app.InspectionService.Render(ctx, userID)
	if err != nil {
		log.Printf("Error rendering inspection: %v", err)
		b.sendMessage(chatID, msgNoRender)
		return
	}
	b.sendPhoto(chatID, img)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) replyError(chatID int64, err error) {
	log.Printf("Error handling command: %v", err)
	b.sendMessage(chatID, errorText(err))
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (b *Bot) sendPhoto(chatID int64, data []byte) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "markup.png", Bytes: data})
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending photo: %v", err)
	}
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Error sending document: %v", err)
	}
}
