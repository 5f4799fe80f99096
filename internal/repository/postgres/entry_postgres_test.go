package postgres

import (
	"context"
	"testing"
	"time"

	"pdfgate/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestEntryPostgres_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := NewEntryPostgres(db)
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "form_id", "created_by", "ip", "date_created", "fields"}).
		AddRow("entry-1", "form-1", "42", "203.0.113.7", created, []byte(`{"3":"paid"}`))

	mock.ExpectQuery("SELECT (.+) FROM entries").
		WithArgs("entry-1").
		WillReturnRows(rows)

	e, err := store.Get(context.Background(), "entry-1")

	assert.NoError(t, err)
	assert.Equal(t, "entry-1", e.ID)
	assert.Equal(t, "42", e.CreatedBy)
	assert.Equal(t, "paid", e.Field("3"))
	assert.True(t, e.HasOwner())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryPostgres_Get_AnonymousSubmission(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := NewEntryPostgres(db)

	rows := sqlmock.NewRows([]string{"id", "form_id", "created_by", "ip", "date_created", "fields"}).
		AddRow("entry-2", "form-1", nil, "203.0.113.7", time.Now(), nil)

	mock.ExpectQuery("SELECT (.+) FROM entries").
		WithArgs("entry-2").
		WillReturnRows(rows)

	e, err := store.Get(context.Background(), "entry-2")

	assert.NoError(t, err)
	assert.Empty(t, e.CreatedBy)
	assert.False(t, e.HasOwner())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryPostgres_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := NewEntryPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM entries").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "form_id", "created_by", "ip", "date_created", "fields"}))

	_, err = store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCapabilityPostgres_HasCapability(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := NewCapabilityPostgres(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("42", "manage_documents").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := store.HasCapability(context.Background(), "42", "manage_documents")

	assert.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}
