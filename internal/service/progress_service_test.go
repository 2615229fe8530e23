package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
)

// fakeProgressRepo 以 (userID, lesson) / (userID, name) 为键模拟幂等写入。
type fakeProgressRepo struct {
	progresses map[string]model.Progress
	badges     map[string]model.Badge
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{
		progresses: make(map[string]model.Progress),
		badges:     make(map[string]model.Badge),
	}
}

func (f *fakeProgressRepo) UpsertProgress(_ context.Context, p *model.Progress) error {
	f.progresses[p.UserID+"/"+p.Lesson] = *p
	return nil
}

func (f *fakeProgressRepo) UpsertBadge(_ context.Context, b *model.Badge) error {
	key := b.UserID + "/" + b.Name
	if _, ok := f.badges[key]; !ok {
		f.badges[key] = *b
	}
	return nil
}

func (f *fakeProgressRepo) FindProgressByUser(_ context.Context, userID string) ([]model.Progress, error) {
	var out []model.Progress
	for _, p := range f.progresses {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) FindBadgesByUser(_ context.Context, userID string) ([]model.Badge, error) {
	var out []model.Badge
	for _, b := range f.badges {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func TestSaveProgressRequiresPayload(t *testing.T) {
	svc := NewProgressService(newFakeProgressRepo())

	err := svc.SaveProgress(context.Background(), "user-1", nil, nil)
	var vErr *apperr.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestSaveProgressUpsertsByLesson(t *testing.T) {
	repo := newFakeProgressRepo()
	svc := NewProgressService(repo)

	require.NoError(t, svc.SaveProgress(context.Background(), "user-1",
		&ProgressUpdate{Lesson: "loops", Completed: false, Score: 60}, nil))
	require.NoError(t, svc.SaveProgress(context.Background(), "user-1",
		&ProgressUpdate{Lesson: "loops", Completed: true, Score: 90}, nil))

	// 同一课程重复上报是覆盖而不是新增
	require.Len(t, repo.progresses, 1)
	p := repo.progresses["user-1/loops"]
	assert.True(t, p.Completed)
	assert.Equal(t, 90, p.Score)
}

func TestSaveProgressGrantsBadgeOnce(t *testing.T) {
	repo := newFakeProgressRepo()
	svc := NewProgressService(repo)

	require.NoError(t, svc.SaveProgress(context.Background(), "user-1", nil, &BadgeUpdate{Name: "first-loop"}))
	require.NoError(t, svc.SaveProgress(context.Background(), "user-1", nil, &BadgeUpdate{Name: "first-loop"}))

	assert.Len(t, repo.badges, 1)
}

func TestGetUserDataAveragesScores(t *testing.T) {
	repo := newFakeProgressRepo()
	svc := NewProgressService(repo)

	require.NoError(t, svc.SaveProgress(context.Background(), "user-1",
		&ProgressUpdate{Lesson: "loops", Completed: true, Score: 80}, nil))
	require.NoError(t, svc.SaveProgress(context.Background(), "user-1",
		&ProgressUpdate{Lesson: "variables", Completed: true, Score: 90}, nil))

	data, err := svc.GetUserData(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 85.0, data.Progress, 0.001)
}

func TestGetUserDataEmpty(t *testing.T) {
	svc := NewProgressService(newFakeProgressRepo())

	data, err := svc.GetUserData(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, data.Progress)
	// 没有徽章时返回空切片而不是 nil，序列化为 [] 而不是 null
	assert.NotNil(t, data.Badges)
	assert.Empty(t, data.Badges)
}
