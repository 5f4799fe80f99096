package shortcode

import (
	"context"
	"errors"
	"testing"
	"time"

	"pdfgate/internal/model"
	"pdfgate/internal/pdfurl"
	"pdfgate/internal/repository"
	repoMocks "pdfgate/internal/repository/mocks"
	"pdfgate/internal/resolver"
	"pdfgate/internal/signing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	entries   *repoMocks.MockEntryStore
	configs   *repoMocks.MockConfigStore
	processor *Processor
	signer    *signing.Signer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		entries: new(repoMocks.MockEntryStore),
		configs: new(repoMocks.MockConfigStore),
	}

	signer, err := signing.New("shortcode-test-secret")
	require.NoError(t, err)
	f.signer = signer

	builder := pdfurl.NewBuilder("https://example.com", false, signer, 24*time.Hour)
	f.processor = NewProcessor(f.entries, resolver.New(f.configs), builder)
	return f
}

func (f *fixture) stubEntry() {
	f.entries.On("Get", mock.Anything, "entry-1").
		Return(&model.Entry{ID: "entry-1", FormID: "form-1"}, nil)
}

func TestProcess(t *testing.T) {
	t.Run("view url", func(t *testing.T) {
		f := newFixture(t)
		f.stubEntry()
		f.configs.On("Get", mock.Anything, "form-1", "cfg-1").
			Return(&model.DocumentConfiguration{ID: "cfg-1", Active: true}, nil)

		u, err := f.processor.Process(context.Background(), Params{ConfigID: "cfg-1", EntryID: "entry-1"})

		assert.NoError(t, err)
		assert.Equal(t, "https://example.com/?gpdf=1&pid=cfg-1&lid=entry-1", u)
	})

	t.Run("signed download url", func(t *testing.T) {
		f := newFixture(t)
		f.stubEntry()
		f.configs.On("Get", mock.Anything, "form-1", "cfg-1").
			Return(&model.DocumentConfiguration{ID: "cfg-1", Active: true}, nil)

		u, err := f.processor.Process(context.Background(), Params{
			ConfigID: "cfg-1",
			EntryID:  "entry-1",
			Type:     model.ActionDownload,
			Signed:   true,
			Expires:  "1 week",
			Print:    true,
		})

		assert.NoError(t, err)
		assert.Contains(t, u, "action=download")
		assert.True(t, f.signer.Verify(u))
	})

	t.Run("missing entry id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.processor.Process(context.Background(), Params{ConfigID: "cfg-1"})

		assert.ErrorIs(t, err, ErrNoEntryID)
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newFixture(t)
		f.entries.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

		_, err := f.processor.Process(context.Background(), Params{ConfigID: "cfg-1", EntryID: "missing"})

		assert.ErrorIs(t, err, ErrNoEntryID)
	})

	t.Run("unknown config", func(t *testing.T) {
		f := newFixture(t)
		f.stubEntry()
		f.configs.On("Get", mock.Anything, "form-1", "nope").Return(nil, repository.ErrNotFound)

		_, err := f.processor.Process(context.Background(), Params{ConfigID: "nope", EntryID: "entry-1"})

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("inactive config", func(t *testing.T) {
		f := newFixture(t)
		f.stubEntry()
		f.configs.On("Get", mock.Anything, "form-1", "cfg-1").
			Return(&model.DocumentConfiguration{ID: "cfg-1", Active: false}, nil)

		_, err := f.processor.Process(context.Background(), Params{ConfigID: "cfg-1", EntryID: "entry-1"})

		assert.ErrorIs(t, err, ErrNotActive)
	})

	t.Run("conditional logic not met", func(t *testing.T) {
		f := newFixture(t)
		f.stubEntry()
		f.configs.On("Get", mock.Anything, "form-1", "cfg-1").
			Return(&model.DocumentConfiguration{
				ID:     "cfg-1",
				Active: true,
				ConditionalLogic: &model.ConditionalLogic{
					ActionType: "show",
					LogicType:  "all",
					Rules:      []model.ConditionalRule{{FieldID: "3", Operator: "is", Value: "paid"}},
				},
			}, nil)

		_, err := f.processor.Process(context.Background(), Params{ConfigID: "cfg-1", EntryID: "entry-1"})

		assert.ErrorIs(t, err, ErrConditionalLogicFail)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		f := newFixture(t)
		storeErr := errors.New("connection refused")
		f.entries.On("Get", mock.Anything, "entry-1").Return(nil, storeErr)

		_, err := f.processor.Process(context.Background(), Params{ConfigID: "cfg-1", EntryID: "entry-1"})

		assert.ErrorIs(t, err, storeErr)
	})
}
