package main

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRunInsertsProductsOnFreshDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("demo@storefront.local", sqlmock.AnyArg(), "Demo Seller").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("owner-1"))

	for _, p := range demoProducts {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("owner-1", p.Title).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`INSERT INTO products`).
			WithArgs(p.Title, p.Price, p.Description, p.ImageURL, "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, run(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSkipsProductsAlreadySeeded(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("demo@storefront.local", sqlmock.AnyArg(), "Demo Seller").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("owner-1"))

	// Every title already exists, so no product insert may run.
	for _, p := range demoProducts {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("owner-1", p.Title).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	}

	require.NoError(t, run(db))
	require.NoError(t, mock.ExpectationsWereMet())
}
