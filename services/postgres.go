package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/model"
	"github.com/spectrum-bridge/spectrum_api/services/repositories"
	"github.com/spectrum-bridge/spectrum_api/shared"
	"golang.org/x/crypto/bcrypt"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string

	practiceRepo *repositories.PracticeRepository
	dialogueRepo *repositories.DialogueRepository
	contentRepo  *repositories.ContentRepository
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "spectrum_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	models := []interface{}{
		&model.User{},
		&model.RateLimitConfig{},

		// Practice models
		&model.PracticeSession{},
		&model.DialogueSession{},

		// Content models
		&model.Expression{},
		&model.Scenario{},
		&model.SkillProgress{},
	}

	err = ds.db.AutoMigrate(models...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	ds.practiceRepo = repositories.NewPracticeRepository(ds.db)
	ds.dialogueRepo = repositories.NewDialogueRepository(ds.db)
	ds.contentRepo = repositories.NewContentRepository(ds.db)

	if err = ds.createDefaultRateLimitConfigs(); err != nil {
		log.Printf("Failed to seed rate limit configs: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		// Check for PostgreSQL-specific errors
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "relation") && strings.Contains(err.Error(), "does not exist") {
			statusCode = http.StatusInternalServerError
			errorType = "SCHEMA_ERROR"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// ==================== USER METHODS ====================

func (ds *PostgresService) CreateUser(req dto.RegisterRequest) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = shared.RoleUser
	}

	id, _ := uuid.NewV7()
	user := model.User{
		ID:       id.String(),
		Email:    strings.ToLower(req.Email),
		Username: req.Username,
		Password: string(hashed),
		Role:     role,
	}

	if err := ds.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByID(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(email) = LOWER(?) OR username = ?", emailOrUsername, emailOrUsername).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) IsEmailAvailable(email string) (bool, error) {
	var count int64
	if err := ds.db.Model(&model.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func (ds *PostgresService) IsUsernameAvailable(username string) (bool, error) {
	var count int64
	if err := ds.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func (ds *PostgresService) UpdateLastLogin(userID, ip string) error {
	now := time.Now()
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_login_at": &now,
		"last_login_ip": ip,
	}).Error
}

func (ds *PostgresService) UpdateUserProfile(userID string, updates map[string]interface{}) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	return ds.db.Save(user).Error
}

// ==================== PRACTICE SESSION METHODS ====================

func (ds *PostgresService) CreatePracticeSession(session *model.PracticeSession) (*model.PracticeSession, error) {
	return ds.practiceRepo.Create(session)
}

func (ds *PostgresService) GetPracticeSession(userID, sessionID string) (*model.PracticeSession, error) {
	return ds.practiceRepo.GetForUser(userID, sessionID)
}

func (ds *PostgresService) UpdatePracticeSession(session *model.PracticeSession) error {
	return ds.practiceRepo.UpdateVersioned(session)
}

// ==================== DIALOGUE SESSION METHODS ====================

func (ds *PostgresService) CreateDialogueSession(session *model.DialogueSession) (*model.DialogueSession, error) {
	return ds.dialogueRepo.Create(session)
}

func (ds *PostgresService) GetDialogueSession(userID, sessionID string) (*model.DialogueSession, error) {
	return ds.dialogueRepo.GetForUser(userID, sessionID)
}

func (ds *PostgresService) GetOpenDialogueSession(userID, feature string) (*model.DialogueSession, error) {
	return ds.dialogueRepo.GetOpenByFeature(userID, feature)
}

func (ds *PostgresService) GetDialogueSessionByScenario(userID, scenarioID string) (*model.DialogueSession, error) {
	return ds.dialogueRepo.GetByScenario(userID, scenarioID)
}

func (ds *PostgresService) UpdateDialogueSession(session *model.DialogueSession) error {
	return ds.dialogueRepo.Update(session)
}

func (ds *PostgresService) DeleteDialogueSessionByScenario(userID, scenarioID string) error {
	return ds.dialogueRepo.DeleteByScenario(userID, scenarioID)
}

func (ds *PostgresService) GetClosedDialogueSessions(userID, feature string) ([]model.DialogueSession, error) {
	return ds.dialogueRepo.GetClosedByFeature(userID, feature)
}

// ==================== CONTENT METHODS ====================

func (ds *PostgresService) CreateExpression(expression *model.Expression) (*model.Expression, error) {
	return ds.contentRepo.CreateExpression(expression)
}

func (ds *PostgresService) CountExpressions() (int64, error) {
	return ds.contentRepo.CountExpressions()
}

func (ds *PostgresService) GetExpressions() ([]model.Expression, error) {
	return ds.contentRepo.GetExpressions()
}

func (ds *PostgresService) SampleExpressions(limit int) ([]model.Expression, error) {
	return ds.contentRepo.SampleExpressions(limit)
}

func (ds *PostgresService) CreateScenario(scenario *model.Scenario) (*model.Scenario, error) {
	return ds.contentRepo.CreateScenario(scenario)
}

func (ds *PostgresService) GetScenarios() ([]model.Scenario, error) {
	return ds.contentRepo.GetScenarios()
}

func (ds *PostgresService) GetScenario(scenarioID string) (*model.Scenario, error) {
	return ds.contentRepo.GetScenario(scenarioID)
}

func (ds *PostgresService) CountScenarios() (int64, error) {
	return ds.contentRepo.CountScenarios()
}

func (ds *PostgresService) GetOrCreateSkillProgress(userID, scenarioID string) (*model.SkillProgress, error) {
	return ds.contentRepo.GetOrCreateSkillProgress(userID, scenarioID)
}

func (ds *PostgresService) UpdateSkillProgress(progress *model.SkillProgress) error {
	return ds.contentRepo.UpdateSkillProgress(progress)
}

// ==================== RATE LIMIT METHODS ====================

func (ds *PostgresService) GetActiveRateLimitConfigs() ([]model.RateLimitConfig, error) {
	var configs []model.RateLimitConfig
	if err := ds.db.Where("is_active = ?", true).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (ds *PostgresService) createDefaultRateLimitConfigs() error {
	defaults := []model.RateLimitConfig{
		{
			EndpointType: "practice_start",
			MaxRequests:  10,
			WindowSize:   int((15 * time.Minute).Seconds()),
			BlockTime:    int((30 * time.Minute).Seconds()),
			Description:  "Practice session creation rate limit",
		},
		{
			EndpointType: "answer_submit",
			MaxRequests:  120,
			WindowSize:   int(time.Hour.Seconds()),
			BlockTime:    int(time.Hour.Seconds()),
			Description:  "Answer submission rate limit",
		},
		{
			EndpointType: "dialogue_message",
			MaxRequests:  60,
			WindowSize:   int(time.Hour.Seconds()),
			BlockTime:    int(time.Hour.Seconds()),
			Description:  "Dialogue message rate limit",
		},
		{
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   int(time.Hour.Seconds()),
			BlockTime:    int(time.Hour.Seconds()),
			Description:  "General API rate limit per IP",
		},
	}

	for _, cfg := range defaults {
		var existing model.RateLimitConfig
		err := ds.db.Where("endpoint_type = ?", cfg.EndpointType).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		id, _ := uuid.NewV7()
		cfg.ID = id.String()
		cfg.IsActive = true
		if err := ds.db.Create(&cfg).Error; err != nil {
			return err
		}
	}

	return nil
}
