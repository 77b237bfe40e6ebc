package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/291e/bogofit-verify/domain"
)

func newTestRepository(t *testing.T) domain.AccountRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&DBAccount{}))

	return NewAccountRepository(db)
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	account := &domain.Account{Email: "user@example.com", Phone: "+15550100000"}
	require.NoError(t, repo.Create(ctx, account))
	assert.NotZero(t, account.ID, "Create must backfill the generated ID")

	byEmail, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
	assert.Equal(t, "+15550100000", byEmail.Phone)
	assert.False(t, byEmail.EmailVerified)

	byPhone, err := repo.FindByPhone(ctx, "+15550100000")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byPhone.ID)

	byID, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", byID.Email)
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = repo.FindByPhone(ctx, "+19990000000")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Account{Email: "user@example.com"}))
	err := repo.Create(ctx, &domain.Account{Email: "user@example.com"})
	assert.Error(t, err, "the unique index on email must reject duplicates")
}

func TestAccountRepository_MarkEmailVerified(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	account := &domain.Account{Email: "user@example.com"}
	require.NoError(t, repo.Create(ctx, account))
	require.NoError(t, repo.MarkEmailVerified(ctx, account.ID))

	got, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.False(t, got.PhoneVerified)
}

func TestAccountRepository_MarkPhoneVerified(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	account := &domain.Account{Email: "user@example.com", Phone: "+15550100000"}
	require.NoError(t, repo.Create(ctx, account))
	require.NoError(t, repo.MarkPhoneVerified(ctx, account.ID))

	got, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, got.PhoneVerified)
	assert.False(t, got.EmailVerified)
}
