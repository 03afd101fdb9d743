package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpaws/shelter-api/internal/models"
)

func donationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "amount", "purpose", "donor_name", "donor_email", "donor_phone", "message", "user_id", "created_at"}).
		AddRow("don-1", "50.00", nil, "Alex", "alex@example.com", nil, nil, "user-1", time.Now())
}

func TestDonationRepositoryListScopedToOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	owner := "user-1"
	mock.ExpectQuery(regexp.QuoteMeta("FROM donations WHERE 1=1 AND user_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(owner).
		WillReturnRows(donationRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM donations WHERE 1=1 AND user_id = $1")).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	donations, total, err := repo.List(context.Background(), models.DonationFilter{OwnerID: &owner})
	require.NoError(t, err)
	assert.Len(t, donations, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationRepositoryTotalAmount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(amount) FROM donations")).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("123.45"))

	total, err := repo.TotalAmount(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "123.45", total.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationRepositoryTotalAmountEmptyTable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(amount) FROM donations")).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	total, err := repo.TotalAmount(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationRepositoryListAllSkipsPagination(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	rows := donationRows().
		AddRow("don-2", "10.00", nil, "Dana", "dana@example.com", nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM donations ORDER BY created_at DESC LIMIT $1")).
		WithArgs(10000).
		WillReturnRows(rows)

	donations, err := repo.ListAll(context.Background(), 10000)
	require.NoError(t, err)
	assert.Len(t, donations, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM donations WHERE user_id = $1 ORDER BY created_at DESC")).
		WithArgs("user-1").
		WillReturnRows(donationRows())

	donations, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, donations, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
