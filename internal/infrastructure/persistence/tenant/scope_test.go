package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	shared.TenantEntity
	Name      string `gorm:"size:100"`
	DeletedAt gorm.DeletedAt
}

func (widget) TableName() string { return "widgets" }

// part has no tenant column and is never guarded
type part struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	WidgetID uuid.UUID `gorm:"type:uuid"`
}

func (part) TableName() string { return "parts" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&widget{}, &part{}))
	require.NoError(t, RegisterGuard(db))
	return db
}

func mustScope(t *testing.T, db *gorm.DB) *Scope {
	t.Helper()
	s, err := NewScope(db, shared.MustTenantContext(uuid.New(), shared.TenantSourceSystem))
	require.NoError(t, err)
	return s
}

func newWidget(name string) *widget {
	return &widget{TenantEntity: shared.TenantEntity{BaseEntity: shared.NewBaseEntity()}, Name: name}
}

func TestNewScopeRequiresTenant(t *testing.T) {
	db := openTestDB(t)
	_, err := NewScope(db, shared.TenantContext{})
	assert.ErrorIs(t, err, ErrTenantContextRequired)
}

func TestScopeSQLShape(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, RegisterGuard(db))

	tenantID := uuid.New()
	scope, err := NewScope(db, shared.MustTenantContext(tenantID, shared.TenantSourceHeader))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE "widgets"."tenant_id" = \$1`).
		WithArgs(tenantID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var ws []widget
	require.NoError(t, scope.DB(context.Background()).Find(&ws).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryIsolation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	a, b := mustScope(t, db), mustScope(t, db)
	repoA := NewRepository[widget](a, RepositoryOptions{SearchColumns: []string{"name"}})
	repoB := NewRepository[widget](b, RepositoryOptions{})

	w := newWidget("sprocket")
	w.TenantID = b.TenantID() // caller value is overridden
	require.NoError(t, repoA.Create(ctx, w))
	assert.Equal(t, a.TenantID(), w.TenantID)

	t.Run("owner can read", func(t *testing.T) {
		got, err := repoA.FindByID(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "sprocket", got.Name)
	})

	t.Run("foreign id reads as not found", func(t *testing.T) {
		_, err := repoB.FindByID(ctx, w.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		var cross *CrossTenantAccessError
		require.True(t, errors.As(err, &cross))
		assert.Equal(t, "widgets", cross.Table)
	})

	t.Run("unknown id is a plain miss", func(t *testing.T) {
		_, err := repoB.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		var cross *CrossTenantAccessError
		assert.False(t, errors.As(err, &cross))
	})

	t.Run("listing sees only own rows", func(t *testing.T) {
		items, total, err := repoB.List(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)

		f := shared.DefaultFilter()
		f.Search = "SPROCK"
		items, total, err = repoA.List(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
	})

	t.Run("foreign update and delete leave the row untouched", func(t *testing.T) {
		forged := *w
		forged.Name = "hijacked"
		assert.ErrorIs(t, repoB.Update(ctx, &forged), shared.ErrNotFound)
		assert.ErrorIs(t, repoB.Delete(ctx, w.ID), shared.ErrNotFound)

		got, err := repoA.FindByID(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "sprocket", got.Name)
		assert.Equal(t, a.TenantID(), got.TenantID)
	})

	t.Run("owner update and soft delete", func(t *testing.T) {
		w.Name = "gear"
		require.NoError(t, repoA.Update(ctx, w))
		n, err := repoA.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, repoA.Delete(ctx, w.ID))
		_, err = repoA.FindByID(ctx, w.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGuardRejectsUnscopedAccess(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	scope := mustScope(t, db)
	require.NoError(t, NewRepository[widget](scope, RepositoryOptions{}).Create(ctx, newWidget("bolt")))

	var ws []widget
	assert.ErrorIs(t, db.WithContext(ctx).Find(&ws).Error, ErrUnscopedQuery)
	assert.ErrorIs(t, db.WithContext(ctx).Where("name = ?", "bolt").Delete(&widget{}).Error, ErrUnscopedQuery)
	assert.ErrorIs(t, db.WithContext(ctx).Model(&widget{}).Where("name = ?", "bolt").Update("name", "x").Error, ErrUnscopedQuery)

	t.Run("top-level OR escapes the tenant predicate", func(t *testing.T) {
		err := scope.DB(ctx).Or("name = ?", "bolt").Find(&ws).Error
		assert.ErrorIs(t, err, ErrUnscopedQuery)
	})

	t.Run("explicit predicate passes", func(t *testing.T) {
		err := db.WithContext(ctx).Where("widgets.tenant_id = ?", scope.TenantID()).Find(&ws).Error
		require.NoError(t, err)
		assert.Len(t, ws, 1)
	})

	t.Run("skip guard opts out", func(t *testing.T) {
		require.NoError(t, SkipGuard(db.WithContext(ctx)).Find(&ws).Error)
		assert.Len(t, ws, 1)
	})

	t.Run("tables without tenant column are not guarded", func(t *testing.T) {
		var ps []part
		assert.NoError(t, db.WithContext(ctx).Find(&ps).Error)
	})
}

func TestScopeTransactionNesting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	scope := mustScope(t, db)
	errInner := errors.New("inner failed")

	err := scope.Transaction(ctx, func(tx *Scope) error {
		assert.True(t, tx.InTransaction())
		assert.Equal(t, scope.TenantID(), tx.TenantID())
		repo := NewRepository[widget](tx, RepositoryOptions{})
		if err := repo.Create(ctx, newWidget("kept")); err != nil {
			return err
		}
		innerErr := tx.Transaction(ctx, func(inner *Scope) error {
			if err := NewRepository[widget](inner, RepositoryOptions{}).Create(ctx, newWidget("discarded")); err != nil {
				return err
			}
			return errInner
		})
		assert.ErrorIs(t, innerErr, errInner)
		return nil
	})
	require.NoError(t, err)

	items, total, err := NewRepository[widget](scope, RepositoryOptions{}).List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "kept", items[0].Name)
}

func TestValidateSort(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder(" asc "))
	assert.Equal(t, "DESC", ValidateSortOrder("ASC; DROP TABLE users;--"))

	fields := WithCommonSortFields("name")
	assert.Equal(t, "name", ValidateSortField("name", fields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("name'--", fields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", fields, "created_at"))
}
