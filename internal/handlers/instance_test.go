package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/database"
	"github.com/kfujiw/raci-task-tracker/internal/dto"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/repository"
	"github.com/kfujiw/raci-task-tracker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InstanceHandlerTestSuite defines the test suite for InstanceHandler
type InstanceHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *InstanceHandler
}

// SetupTest runs before each test
func (suite *InstanceHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.Team{},
		&models.SOP{},
		&models.TaskTemplate{},
		&models.TaskInstance{},
		&models.StatusLogEntry{},
		&models.OutcomeLogEntry{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	templateRepo := repository.NewTemplateRepository(suite.db)
	instanceRepo := repository.NewInstanceRepository(suite.db)
	instanceService := services.NewInstanceService(instanceRepo, templateRepo, userRepo)
	suite.handler = NewInstanceHandler(instanceService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *InstanceHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *InstanceHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		Name:         username,
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *InstanceHandlerTestSuite) createTestTemplate(title string, creatorID uint64) *models.TaskTemplate {
	template := &models.TaskTemplate{
		Title:                    title,
		ProcessIdentifier:        "PROC-" + title,
		PrimaryResponsibleUserID: creatorID,
		AccountableUserID:        creatorID,
		IsActive:                 true,
		CreatedByID:              creatorID,
	}
	suite.db.Create(template)
	return template
}

func (suite *InstanceHandlerTestSuite) createTestInstance(templateID uint64, status models.InstanceStatus) *models.TaskInstance {
	instance := &models.TaskInstance{
		TemplateID:         templateID,
		InstanceIdentifier: "TI-TEST",
		Status:             status,
		Version:            1,
	}
	suite.db.Create(instance)
	return instance
}

// Helper function to create authenticated context
func (suite *InstanceHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

// Helper function to set instance context (simulates RequireInstanceAccess middleware)
func (suite *InstanceHandlerTestSuite) setInstanceContext(c *gin.Context, instance models.TaskInstance) {
	c.Set("instance", instance)
}

func (suite *InstanceHandlerTestSuite) changeStatusBody(status string, comment *string) []byte {
	payload := map[string]interface{}{"status": status}
	if comment != nil {
		payload["comment"] = *comment
	}
	body, _ := json.Marshal(payload)
	return body
}

// TestChangeStatus_Success tests a legal transition from assigned to in_progress
func (suite *InstanceHandlerTestSuite) TestChangeStatus_Success() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusAssigned)

	body := suite.changeStatusBody("in_progress", nil)
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.ChangeStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.InstanceDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusInProgress, response.Status)
	assert.Equal(suite.T(), uint64(2), response.Version)

	// The transition must have appended exactly one log entry
	var logs []models.StatusLogEntry
	suite.db.Where("instance_id = ?", instance.ID).Find(&logs)
	suite.Require().Len(logs, 1)
	suite.Require().NotNil(logs[0].OldStatus)
	assert.Equal(suite.T(), models.StatusAssigned, *logs[0].OldStatus)
	assert.Equal(suite.T(), models.StatusInProgress, logs[0].NewStatus)
	suite.Require().NotNil(logs[0].UserID)
	assert.Equal(suite.T(), user.ID, *logs[0].UserID)

	// No outcome for a non-terminal transition
	var outcomeCount int64
	suite.db.Model(&models.OutcomeLogEntry{}).Where("instance_id = ?", instance.ID).Count(&outcomeCount)
	assert.Equal(suite.T(), int64(0), outcomeCount)
}

// TestChangeStatus_TerminalWritesOutcome tests that completing an instance
// writes the outcome record alongside the status log
func (suite *InstanceHandlerTestSuite) TestChangeStatus_TerminalWritesOutcome() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusInProgress)

	comment := "done ahead of schedule"
	body := suite.changeStatusBody("completed", &comment)
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.ChangeStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var outcome models.OutcomeLogEntry
	err := suite.db.Where("instance_id = ?", instance.ID).First(&outcome).Error
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StatusCompleted, outcome.Outcome)
	suite.Require().NotNil(outcome.CompletedByUserID)
	assert.Equal(suite.T(), user.ID, *outcome.CompletedByUserID)
	suite.Require().NotNil(outcome.Comment)
	assert.Equal(suite.T(), comment, *outcome.Comment)

	var logCount int64
	suite.db.Model(&models.StatusLogEntry{}).Where("instance_id = ?", instance.ID).Count(&logCount)
	assert.Equal(suite.T(), int64(1), logCount)
}

// TestChangeStatus_FailedWritesOutcome tests that failing an instance records
// a failed outcome
func (suite *InstanceHandlerTestSuite) TestChangeStatus_FailedWritesOutcome() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusBlocked)

	body := suite.changeStatusBody("failed", nil)
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.ChangeStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var outcome models.OutcomeLogEntry
	err := suite.db.Where("instance_id = ?", instance.ID).First(&outcome).Error
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StatusFailed, outcome.Outcome)
}

// TestChangeStatus_NoOp tests that re-requesting the current status is rejected
func (suite *InstanceHandlerTestSuite) TestChangeStatus_NoOp() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusInProgress)

	body := suite.changeStatusBody("in_progress", nil)
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.ChangeStatus(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	// Nothing may be written on a rejected transition
	var logCount int64
	suite.db.Model(&models.StatusLogEntry{}).Where("instance_id = ?", instance.ID).Count(&logCount)
	assert.Equal(suite.T(), int64(0), logCount)
}

// TestChangeStatus_TerminalLocked tests that a completed instance rejects
// further transitions
func (suite *InstanceHandlerTestSuite) TestChangeStatus_TerminalLocked() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusCompleted)

	body := suite.changeStatusBody("in_progress", nil)
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.ChangeStatus(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

// TestChangeStatus_UnknownStatus tests a status value outside the enum
func (suite *InstanceHandlerTestSuite) TestChangeStatus_UnknownStatus() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusAssigned)

	body := suite.changeStatusBody("archived", nil)
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.ChangeStatus(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestChangeStatus_ConflictMapsTo409 tests the error mapping for concurrent
// modification
func (suite *InstanceHandlerTestSuite) TestChangeStatus_ConflictMapsTo409() {
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", nil, 1)

	respondInstanceError(c, services.ErrInstanceConflict)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestGetInstance_Success tests instance retrieval with history
func (suite *InstanceHandlerTestSuite) TestGetInstance_Success() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusAssigned)

	c, w := suite.createAuthContext("GET", "/api/instances/1", nil, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.GetInstance(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.InstanceDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), instance.ID, response.ID)
	assert.Equal(suite.T(), models.StatusAssigned, response.Status)
}

// TestListStatusLogs_NewestFirst tests the audit trail ordering
func (suite *InstanceHandlerTestSuite) TestListStatusLogs_NewestFirst() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusAssigned)

	// Walk the instance through two transitions
	for _, status := range []string{"in_progress", "completed"} {
		body := suite.changeStatusBody(status, nil)
		c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
		var current models.TaskInstance
		suite.Require().NoError(suite.db.First(&current, instance.ID).Error)
		suite.setInstanceContext(c, current)
		suite.handler.ChangeStatus(c)
		suite.Require().Equal(http.StatusOK, w.Code)
	}

	c, w := suite.createAuthContext("GET", "/api/instances/1/status-logs", nil, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.ListStatusLogs(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string][]dto.StatusLogDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)
	logs := response["status_logs"]
	suite.Require().Len(logs, 2)
	assert.Equal(suite.T(), models.StatusCompleted, logs[0].NewStatus)
	assert.Equal(suite.T(), models.StatusInProgress, logs[1].NewStatus)
}

// TestGetOutcome_OpenInstance tests that an open instance has no outcome
func (suite *InstanceHandlerTestSuite) TestGetOutcome_OpenInstance() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusInProgress)

	c, w := suite.createAuthContext("GET", "/api/instances/1/outcome", nil, user.ID)
	suite.setInstanceContext(c, *instance)

	suite.handler.GetOutcome(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGetOutcome_ClosedInstance tests outcome retrieval after completion
func (suite *InstanceHandlerTestSuite) TestGetOutcome_ClosedInstance() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	instance := suite.createTestInstance(template.ID, models.StatusInProgress)

	body := suite.changeStatusBody("completed", nil)
	c, w := suite.createAuthContext("POST", "/api/instances/1/status", body, user.ID)
	suite.setInstanceContext(c, *instance)
	suite.handler.ChangeStatus(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	c2, w2 := suite.createAuthContext("GET", "/api/instances/1/outcome", nil, user.ID)
	suite.setInstanceContext(c2, *instance)

	suite.handler.GetOutcome(c2)

	assert.Equal(suite.T(), http.StatusOK, w2.Code)

	var response dto.OutcomeDTO
	err := json.Unmarshal(w2.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusCompleted, response.Outcome)
}

// TestCreateInstance_Success tests manual materialization from a template
func (suite *InstanceHandlerTestSuite) TestCreateInstance_Success() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)

	c, w := suite.createAuthContext("POST", "/api/templates/1/instances", nil, user.ID)
	c.Set("template", *template)

	suite.handler.CreateInstance(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.InstanceDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusAssigned, response.Status)
	assert.Equal(suite.T(), template.ID, response.TemplateID)
	assert.NotEmpty(suite.T(), response.InstanceIdentifier)

	// Materialization must write the creation log entry with no old status
	var logs []models.StatusLogEntry
	suite.db.Where("instance_id = ?", response.ID).Find(&logs)
	suite.Require().Len(logs, 1)
	assert.Nil(suite.T(), logs[0].OldStatus)
	assert.Equal(suite.T(), models.StatusAssigned, logs[0].NewStatus)
}

// TestCreateInstance_InactiveTemplate tests that deactivated templates
// cannot materialize new instances
func (suite *InstanceHandlerTestSuite) TestCreateInstance_InactiveTemplate() {
	user := suite.createTestUser("worker")
	template := suite.createTestTemplate("Weekly Report", user.ID)
	suite.db.Model(&models.TaskTemplate{}).Where("id = ?", template.ID).Update("is_active", false)

	c, w := suite.createAuthContext("POST", "/api/templates/1/instances", nil, user.ID)
	c.Set("template", *template)

	suite.handler.CreateInstance(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

// TestSuite runs the test suite
func TestInstanceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(InstanceHandlerTestSuite))
}
