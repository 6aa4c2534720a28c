package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

type fakeCommentRepo struct {
	comments []*entity.Comment
	nextID   int64
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *entity.Comment) error {
	f.nextID++
	c.ID = f.nextID
	clone := *c
	f.comments = append(f.comments, &clone)
	return nil
}

func (f *fakeCommentRepo) ListByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.Comment, error) {
	var out []*entity.Comment
	for _, c := range f.comments {
		if c.WorkflowID == workflowID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestAddComment(t *testing.T) {
	env := newTestEnv()
	comments := &fakeCommentRepo{}
	svc := NewCommentService(env.workflows, comments, zap.NewNop())
	id := env.newRequest(t)

	comment, err := svc.AddComment(context.Background(), id, "hop-1", "  needs a site visit  ")
	require.NoError(t, err)
	assert.Equal(t, "needs a site visit", comment.Text)
	assert.NotZero(t, comment.ID)

	listed, err := svc.ListComments(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "hop-1", listed[0].UserID)
}

func TestAddCommentValidation(t *testing.T) {
	env := newTestEnv()
	svc := NewCommentService(env.workflows, &fakeCommentRepo{}, zap.NewNop())
	id := env.newRequest(t)

	_, err := svc.AddComment(context.Background(), id, "hop-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)

	_, err = svc.AddComment(context.Background(), 404, "hop-1", "hello")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestCommentsRemainWritableAfterCompletion(t *testing.T) {
	env := newTestEnv()
	comments := &fakeCommentRepo{}
	svc := NewCommentService(env.workflows, comments, zap.NewNop())
	id := env.advanceToExecutiveApproval(t)

	_, err := env.svc.SubmitExecutiveApproval(context.Background(), id, actorCeo, false, "")
	require.NoError(t, err)

	_, err = svc.AddComment(context.Background(), id, "applicant-1", "thanks for reviewing")
	assert.NoError(t, err)
}
