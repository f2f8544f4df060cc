package showcase_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/internal/showcase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) (*showcase.Service, projects.Service) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	svc := projects.NewService(projects.NewMemoryProjectRepository(), projects.WithClock(clock))
	ctx := context.Background()
	for _, title := range []string{"Sales dashboard", "Energy forecast", "Churn model"} {
		_, err := svc.Create(ctx, projects.CreateProjectRequest{Fields: projects.Fields{
			Title:            title,
			ShortDescription: title + " summary",
			Technologies:     map[string]string{"Sales dashboard": "Power BI", "Energy forecast": "Python", "Churn model": "scikit-learn"}[title],
		}})
		require.NoError(t, err)
	}
	return showcase.NewService(svc, showcase.NewBuilder(&recordingRenderer{})), svc
}

func TestServiceCardsNewestFirst(t *testing.T) {
	svc, _ := seededService(t)

	cards, err := svc.Cards(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "Churn model", cards[0].Title)
	assert.Equal(t, "Sales dashboard", cards[2].Title)
}

func TestServiceCardsFuzzyQuery(t *testing.T) {
	svc, _ := seededService(t)

	cards, err := svc.Cards(context.Background(), "enfc")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Energy forecast", cards[0].Title)

	none, err := svc.Cards(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestServiceDetailAndDescription(t *testing.T) {
	svc, projectService := seededService(t)
	ctx := context.Background()

	list, err := projectService.List(ctx)
	require.NoError(t, err)

	detail, err := svc.Detail(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].Title, detail.Title)
	assert.Equal(t, list[0].ShortDescription, detail.DescriptionHTML)

	_, err = svc.Description(ctx, uuid.New())
	assert.True(t, projects.IsNotFound(err))
}
