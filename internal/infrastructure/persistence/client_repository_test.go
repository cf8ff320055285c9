package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/shared"
)

// newMockClientRepository creates a GormClientRepository with a mocked SQL connection
func newMockClientRepository(t *testing.T) (*GormClientRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormClientRepository(gormDB), mock, mockDB
}

func TestNewGormClientRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormClientRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds client within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "first_name", "last_name", "email", "phone", "active"}).
			AddRow(clientID, tenantID, "Ana", "Silva", "ana@example.com", "+351912345678", true)

		mock.ExpectQuery(`SELECT \* FROM "clients" WHERE tenant_id = \$1 AND id = \$2 AND "clients"\."deleted_at" IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, clientID, 1).
			WillReturnRows(rows)

		client, err := repo.FindByIDForTenant(context.Background(), tenantID, clientID)

		assert.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, clientID, client.ID)
		assert.Equal(t, "Ana", client.FirstName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for foreign tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "clients" WHERE tenant_id = \$1 AND id = \$2 AND "clients"\."deleted_at" IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, clientID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		client, err := repo.FindByIDForTenant(context.Background(), tenantID, clientID)

		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClientRepository_CountForTenant(t *testing.T) {
	t.Run("counts clients for tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "clients" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.CountForTenant(context.Background(), tenantID, crm.ClientFilter{})

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies active filter", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		active := true

		mock.ExpectQuery(`SELECT count\(\*\) FROM "clients" WHERE tenant_id = \$1 AND active = \$2`).
			WithArgs(tenantID, true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountForTenant(context.Background(), tenantID, crm.ClientFilter{Active: &active})

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClientRepository_Save(t *testing.T) {
	t.Run("saves client", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		client, err := crm.NewClient(tenantID, "Ana", "Silva", "ana@example.com", "+351912345678")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "clients" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), client)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClientRepository_DeleteForTenant(t *testing.T) {
	t.Run("soft deletes client within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		clientID := uuid.New()

		mock.ExpectExec(`UPDATE "clients" SET "deleted_at"=\$1 WHERE tenant_id = \$2 AND id = \$3`).
			WithArgs(sqlmock.AnyArg(), tenantID, clientID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteForTenant(context.Background(), tenantID, clientID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing matched", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		clientID := uuid.New()

		mock.ExpectExec(`UPDATE "clients" SET "deleted_at"=\$1 WHERE tenant_id = \$2 AND id = \$3`).
			WithArgs(sqlmock.AnyArg(), tenantID, clientID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteForTenant(context.Background(), tenantID, clientID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClientRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements ClientRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		var _ crm.ClientRepository = repo
	})
}
