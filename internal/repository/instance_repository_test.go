package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (InstanceRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewInstanceRepository(db), mock
}

func newSQLiteRepo(t *testing.T) (InstanceRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.SOP{},
		&models.TaskTemplate{},
		&models.TaskInstance{},
		&models.StatusLogEntry{},
		&models.OutcomeLogEntry{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewInstanceRepository(db), db
}

func seedInstance(t *testing.T, db *gorm.DB, status models.InstanceStatus) *models.TaskInstance {
	t.Helper()

	user := &models.User{Username: "worker", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	template := &models.TaskTemplate{
		Title:                    "Monthly Close",
		ProcessIdentifier:        "PROC-CLOSE",
		PrimaryResponsibleUserID: user.ID,
		AccountableUserID:        user.ID,
		IsActive:                 true,
		CreatedByID:              user.ID,
	}
	require.NoError(t, db.Create(template).Error)

	instance := &models.TaskInstance{
		TemplateID:         template.ID,
		InstanceIdentifier: "TI-CLOSE",
		Status:             status,
		Version:            1,
	}
	require.NoError(t, db.Create(instance).Error)
	return instance
}

func TestChangeStatus_VersionConflictRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `task_instances` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.ChangeStatus(ChangeStatusInput{
		InstanceID:      7,
		ExpectedVersion: 3,
		OldStatus:       models.StatusInProgress,
		NewStatus:       models.StatusBlocked,
		At:              time.Now(),
	})

	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_NonTerminalWritesStatusLogOnly(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `task_instances` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `status_log_entries`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entry, err := repo.ChangeStatus(ChangeStatusInput{
		InstanceID:      7,
		ExpectedVersion: 1,
		OldStatus:       models.StatusAssigned,
		NewStatus:       models.StatusInProgress,
		At:              time.Now(),
	})

	require.NoError(t, err)
	require.NotNil(t, entry.OldStatus)
	assert.Equal(t, models.StatusAssigned, *entry.OldStatus)
	assert.Equal(t, models.StatusInProgress, entry.NewStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_TerminalWritesOutcomeInSameTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `task_instances` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `status_log_entries`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `outcome_log_entries`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	actorID := uint64(12)
	_, err := repo.ChangeStatus(ChangeStatusInput{
		InstanceID:      7,
		ExpectedVersion: 2,
		OldStatus:       models.StatusInProgress,
		NewStatus:       models.StatusCompleted,
		ActorID:         &actorID,
		At:              time.Now(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_AppliesCASAndIncrementsVersion(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	instance := seedInstance(t, db, models.StatusAssigned)

	_, err := repo.ChangeStatus(ChangeStatusInput{
		InstanceID:      instance.ID,
		ExpectedVersion: instance.Version,
		OldStatus:       models.StatusAssigned,
		NewStatus:       models.StatusInProgress,
		At:              time.Now(),
	})
	require.NoError(t, err)

	var updated models.TaskInstance
	require.NoError(t, db.First(&updated, instance.ID).Error)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, instance.Version+1, updated.Version)

	// Re-running with the stale version must fail without side effects
	_, err = repo.ChangeStatus(ChangeStatusInput{
		InstanceID:      instance.ID,
		ExpectedVersion: instance.Version,
		OldStatus:       models.StatusAssigned,
		NewStatus:       models.StatusBlocked,
		At:              time.Now(),
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	var logCount int64
	db.Model(&models.StatusLogEntry{}).Where("instance_id = ?", instance.ID).Count(&logCount)
	assert.Equal(t, int64(1), logCount)
}

func TestChangeStatus_OutcomeUniquePerInstance(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	instance := seedInstance(t, db, models.StatusInProgress)

	_, err := repo.ChangeStatus(ChangeStatusInput{
		InstanceID:      instance.ID,
		ExpectedVersion: instance.Version,
		OldStatus:       models.StatusInProgress,
		NewStatus:       models.StatusCompleted,
		At:              time.Now(),
	})
	require.NoError(t, err)

	// A second terminal write for the same instance violates the unique
	// outcome constraint and must be rejected by the database
	_, err = repo.ChangeStatus(ChangeStatusInput{
		InstanceID:      instance.ID,
		ExpectedVersion: instance.Version + 1,
		OldStatus:       models.StatusCompleted,
		NewStatus:       models.StatusFailed,
		At:              time.Now(),
	})
	assert.ErrorIs(t, err, ErrCreateOutcomeLog)

	var outcomeCount int64
	db.Model(&models.OutcomeLogEntry{}).Where("instance_id = ?", instance.ID).Count(&outcomeCount)
	assert.Equal(t, int64(1), outcomeCount)
}

func TestCreate_WritesCreationLogAtomically(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	seeded := seedInstance(t, db, models.StatusAssigned)

	actorID := uint64(1)
	instance := &models.TaskInstance{
		TemplateID:         seeded.TemplateID,
		InstanceIdentifier: "TI-SECOND",
		Status:             models.StatusAssigned,
		Version:            1,
	}
	require.NoError(t, repo.Create(instance, &actorID))

	var logs []models.StatusLogEntry
	db.Where("instance_id = ?", instance.ID).Find(&logs)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].OldStatus)
	assert.Equal(t, models.StatusAssigned, logs[0].NewStatus)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, actorID, *logs[0].UserID)
}

func TestListStatusLogs_NewestFirst(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	instance := seedInstance(t, db, models.StatusAssigned)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, status := range []models.InstanceStatus{models.StatusInProgress, models.StatusBlocked} {
		entry := models.StatusLogEntry{
			InstanceID: instance.ID,
			NewStatus:  status,
			ChangeTime: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(&entry).Error)
	}

	logs, err := repo.ListStatusLogs(instance.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.StatusBlocked, logs[0].NewStatus)
	assert.Equal(t, models.StatusInProgress, logs[1].NewStatus)
}
