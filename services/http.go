package services

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	docs "github.com/spectrum-bridge/spectrum_api/docs"
	"github.com/spectrum-bridge/spectrum_api/services/handlers"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc      *AuthService
	userSvc      *UserService
	practiceSvc  *PracticeService
	dialogueSvc  *DialogueService
	contentSvc   *ContentService
	mediaSvc     *MediaService
	rateLimitSvc *RateLimitService
	monitoring   *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.practiceSvc = svc.Service(PRACTICE_SVC).(*PracticeService)
	svc.dialogueSvc = svc.Service(DIALOGUE_SVC).(*DialogueService)
	svc.contentSvc = svc.Service(CONTENT_SVC).(*ContentService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoring, _ = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if svc.monitoring != nil {
		app.Use(MonitoringMiddleware(svc.monitoring))
	}
	app.Use(svc.rateLimitSvc.IPRateLimit())

	docs.SwaggerInfo.BasePath = "/api/v1"

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	svc.registerRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.Printf("HTTP server listening on :%d", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	userHandler := handlers.NewUserHandler(svc.userSvc)
	practiceHandler := handlers.NewPracticeHandler(svc.practiceSvc)
	dialogueHandler := handlers.NewDialogueHandler(svc.dialogueSvc)
	contentHandler := handlers.NewContentHandler(svc.contentSvc)
	mediaHandler := handlers.NewMediaHandler(svc.mediaSvc)

	v1 := app.Group("/api/v1")

	v1.Get("/ping", svc.ping)
	v1.Post("/register", authHandler.Register)
	v1.Post("/login", authHandler.Login)

	auth := v1.Group("", svc.authSvc.RequiredAuth())

	user := auth.Group("/user")
	user.Get("/profile", userHandler.GetProfile)
	user.Put("/profile", userHandler.UpdateProfile)
	user.Post("/related",
		svc.authSvc.RequireRole(shared.RoleParent, shared.RoleHealthcareProvider),
		userHandler.LinkRelatedUser)

	content := auth.Group("/content")
	content.Get("/expressions", contentHandler.GetExpressions)
	content.Get("/scenarios", contentHandler.GetScenarios)
	content.Get("/scenarios/:scenarioId", contentHandler.GetScenario)
	content.Get("/scenarios/:scenarioId/progress", contentHandler.GetSkillProgress)
	content.Put("/scenarios/:scenarioId/progress", contentHandler.UpdateSkillProgress)

	media := auth.Group("/media")
	media.Post("/expressions",
		svc.authSvc.RequireRole(shared.RoleParent, shared.RoleHealthcareProvider),
		mediaHandler.UploadExpression)

	practice := auth.Group("/practice")
	practice.Post("/:feature/start",
		svc.rateLimitSvc.RateLimit("practice_start"),
		practiceHandler.StartSession)
	practice.Get("/sessions/:sessionId/current", practiceHandler.GetCurrentItem)
	practice.Post("/sessions/:sessionId/answer",
		svc.rateLimitSvc.RateLimit("answer_submit"),
		practiceHandler.SubmitAnswer)
	practice.Post("/sessions/:sessionId/close", practiceHandler.CloseSession)

	dialogue := auth.Group("/dialogue")
	dialogue.Post("/conversation/:scenarioId/start", dialogueHandler.StartConversation)
	dialogue.Post("/therapy/start", dialogueHandler.StartTherapy)
	dialogue.Post("/message",
		svc.rateLimitSvc.RateLimit("dialogue_message"),
		dialogueHandler.SendMessage)
	dialogue.Post("/close", dialogueHandler.CloseDialogue)
	dialogue.Get("/reports", dialogueHandler.GetReports)
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, fiber.Map{
			"code": appErr.Code,
		})
	}

	var fiberErr *fiber.Error
	if e, ok := err.(*fiber.Error); ok {
		fiberErr = e
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithField("error", err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
