package shorts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

type fakeShortRepo struct {
	shorts map[string]*model.Short
}

func newFakeShortRepo() *fakeShortRepo {
	return &fakeShortRepo{shorts: make(map[string]*model.Short)}
}

func (f *fakeShortRepo) List(ctx context.Context) ([]model.Short, error) {
	out := make([]model.Short, 0, len(f.shorts))
	for _, s := range f.shorts {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeShortRepo) Create(ctx context.Context, short *model.Short) error {
	f.shorts[short.ID] = short
	return nil
}

func (f *fakeShortRepo) Update(ctx context.Context, id string, patch model.ShortPatch) (*model.Short, error) {
	s, ok := f.shorts[id]
	if !ok {
		return nil, apperrors.NotFound("short", nil)
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	return s, nil
}

func (f *fakeShortRepo) Delete(ctx context.Context, id string) (int, error) {
	if _, ok := f.shorts[id]; !ok {
		return 0, nil
	}
	delete(f.shorts, id)
	return 1, nil
}

func TestCreateStartsAsIdea(t *testing.T) {
	repo := newFakeShortRepo()
	svc := NewService(repo, "", zerolog.Nop())

	short, err := svc.Create(context.Background(), CreateShortRequest{Topic: "부동산", Subtopic: "전세 사기"})

	require.NoError(t, err)
	assert.Equal(t, model.ShortStatusIdea, short.Status)
	assert.NotEmpty(t, short.ID)
	assert.Len(t, repo.shorts, 1)
}

func TestTriggerWorkflowRequiresWebhookURL(t *testing.T) {
	svc := NewService(newFakeShortRepo(), "", zerolog.Nop())

	_, err := svc.TriggerWorkflow(context.Background(), CreateShortRequest{Topic: "t", Subtopic: "s"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
}

func TestTriggerWorkflowPostsAndRecordsScript(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := newFakeShortRepo()
	svc := NewService(repo, server.URL, zerolog.Nop())

	short, err := svc.TriggerWorkflow(context.Background(), CreateShortRequest{
		Topic:    "부동산",
		Subtopic: "전세 사기",
		Hook:     "이것만 확인하세요",
	})

	require.NoError(t, err)
	assert.Equal(t, model.ShortStatusScript, short.Status)
	assert.Equal(t, "부동산", received["topic"])
	assert.Equal(t, "전세 사기", received["subtopic"])
	assert.NotEmpty(t, received["requestedAt"])
	assert.Len(t, repo.shorts, 1)
}

func TestTriggerWorkflowFailureDoesNotRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := newFakeShortRepo()
	svc := NewService(repo, server.URL, zerolog.Nop())

	_, err := svc.TriggerWorkflow(context.Background(), CreateShortRequest{Topic: "t", Subtopic: "s"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstream))
	assert.Empty(t, repo.shorts)
}

func TestDeleteAbsentShortReportsZero(t *testing.T) {
	repo := newFakeShortRepo()
	svc := NewService(repo, "", zerolog.Nop())

	a, _ := svc.Create(context.Background(), CreateShortRequest{Topic: "a", Subtopic: "a"})

	removed, err := svc.Delete(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Deleting the same id again is idempotent, not an error.
	removed, err = svc.Delete(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
