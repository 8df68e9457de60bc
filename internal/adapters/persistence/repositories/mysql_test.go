package repositories

import (
	"context"
	"errors"
	"testing"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/core/domain"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestMySQL_DuplicateEntryIsTranslated(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'a@example.org' for key 'idx_users_email'"})

	err := NewUserRepository(db).Create(context.Background(), &models.User{FullName: "A", Email: "a@example.org"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_UpdateWithVersionNoRows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE `applications` SET .* WHERE .*version = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	app := &models.Application{ID: 7, Status: domain.StatusInquiry, Version: 3}
	err := NewApplicationRepository(db).UpdateWithVersion(context.Background(), app, 2)
	assert.ErrorIs(t, err, ErrStaleVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_WithinTxRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	err := NewStore(db).WithinTx(context.Background(), func(r *Repositories) error {
		if err := r.Transactions.Create(context.Background(), &models.Transaction{
			ApplicationID: 1, Action: domain.ActionSubmitted, PerformedBy: 1,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
