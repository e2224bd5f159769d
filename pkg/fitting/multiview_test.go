package fitting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMultiviewFullSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	person := env.storePerson(t, ctx)

	set, err := env.service.GenerateMultiview(ctx, person)
	require.NoError(t, err)

	assert.Equal(t, person, set.Source)
	assert.Equal(t, "multiview_person_front_v1.png", set.Views[ViewFront])
	assert.Equal(t, "multiview_person_side_v1.png", set.Views[ViewSide])
	assert.Equal(t, "multiview_person_back_v1.png", set.Views[ViewBack])
	assert.Empty(t, set.Failures)

	// Front is a copy of the source; side/back are generated.
	front, err := env.store.Read(ctx, set.Views[ViewFront])
	require.NoError(t, err)
	assert.Equal(t, []byte("person-bytes"), front)
	side, err := env.store.Read(ctx, set.Views[ViewSide])
	require.NoError(t, err)
	assert.Equal(t, []byte("generated-image"), side)

	// Two generation calls: side and back, never front.
	assert.Equal(t, 2, env.gen.calls())

	latest, ok := env.service.LatestMultiview()
	require.True(t, ok)
	assert.Equal(t, set.Views, latest.Views)
}

func TestGenerateMultiviewDegradesPerView(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	person := env.storePerson(t, ctx)
	env.gen.fn = func(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
		if strings.Contains(prompt, "side profile") {
			return nil, errors.New("side view refused")
		}
		return []byte("generated-image"), nil
	}

	set, err := env.service.GenerateMultiview(ctx, person)
	require.NoError(t, err)

	assert.Empty(t, set.Views[ViewSide])
	assert.Contains(t, set.Failures[ViewSide], "side view refused")
	assert.NotEmpty(t, set.Views[ViewBack])
}

func TestGenerateMultiviewAllViewsFailing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	person := env.storePerson(t, ctx)
	env.gen.fn = func(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
		return nil, errors.New("model offline")
	}

	var ge *GenerationError
	_, err := env.service.GenerateMultiview(ctx, person)
	require.Error(t, err)
	assert.True(t, errors.As(err, &ge))

	_, ok := env.service.LatestMultiview()
	assert.False(t, ok)
}

func TestGenerateMultiviewMissingSource(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)

	var nf *NotFoundError
	_, err := env.service.GenerateMultiview(ctx, "reference_image_v1.png")
	assert.True(t, errors.As(err, &nf))
}

func TestGenerateMultiviewWaitsOutCooldown(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 15*time.Millisecond)
	person := env.storePerson(t, ctx)

	// Two generation calls behind a real cooldown: the second must wait.
	start := time.Now()
	set, err := env.service.GenerateMultiview(ctx, person)
	require.NoError(t, err)
	require.Len(t, set.Views, 3)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestBatchTryOnRequiresMultiviewSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)

	_, err := env.service.BatchTryOn(ctx, "1", GarmentAuto)
	assert.ErrorIs(t, err, ErrNoMultiviewSet)
}

func TestBatchTryOnCoversEveryView(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	person := env.storePerson(t, ctx)

	_, err := env.service.GenerateMultiview(ctx, person)
	require.NoError(t, err)

	batch, err := env.service.BatchTryOn(ctx, "catalog/blue_tee.png", GarmentAuto)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Succeeded)
	require.Len(t, batch.Items, 3)
	views := map[View]bool{}
	for _, item := range batch.Items {
		require.NotNil(t, item.Result, "view %s", item.View)
		assert.Equal(t, string(item.View), item.Result.Record.View)
		views[item.View] = true
	}
	assert.True(t, views[ViewFront] && views[ViewSide] && views[ViewBack])

	// Three result versions allocated in order.
	results, err := env.service.ListResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, results.Total)
}

func TestBatchTryOnReportsPerViewFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	person := env.storePerson(t, ctx)

	_, err := env.service.GenerateMultiview(ctx, person)
	require.NoError(t, err)

	// Fail only the try-on for the back view's source image.
	calls := 0
	env.gen.fn = func(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
		calls++
		if calls == 3 {
			return nil, errors.New("transient provider error")
		}
		return []byte("generated-image"), nil
	}

	batch, err := env.service.BatchTryOn(ctx, "1", GarmentAuto)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Succeeded)
	require.Len(t, batch.Items, 3)
	assert.NotEmpty(t, batch.Items[2].Error)
	assert.Nil(t, batch.Items[2].Result)
}

func TestBatchTryOnSkipsMissingViews(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 0)
	person := env.storePerson(t, ctx)
	env.gen.fn = func(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
		if strings.Contains(prompt, "back view") {
			return nil, errors.New("back view refused")
		}
		return []byte("generated-image"), nil
	}

	_, err := env.service.GenerateMultiview(ctx, person)
	require.NoError(t, err)

	env.gen.fn = nil
	batch, err := env.service.BatchTryOn(ctx, "1", GarmentAuto)
	require.NoError(t, err)
	// Only front and side exist in the degraded set.
	assert.Len(t, batch.Items, 2)
	assert.Equal(t, 2, batch.Succeeded)
}
