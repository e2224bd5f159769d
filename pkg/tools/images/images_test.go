package images

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wearlab/tryon-agent/pkg/artifacts"
	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/pkg/imagegen"
	"github.com/wearlab/tryon-agent/pkg/imaging"
	"github.com/wearlab/tryon-agent/pkg/ratelimit"
	"github.com/wearlab/tryon-agent/pkg/tools/toolerr"
	"github.com/wearlab/tryon-agent/toolkit"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newTestTools(t *testing.T) (*Tools, *fitting.Service) {
	t.Helper()
	store := artifacts.NewMemStore()
	limiter, err := ratelimit.New(ratelimit.Config{})
	require.NoError(t, err)
	svc, err := fitting.New(fitting.Deps{
		Store:   store,
		Namer:   artifacts.NewNamer(store),
		Limiter: limiter,
		Generator: imagegen.Func(func(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
			return []byte("generated"), nil
		}),
		Validator: imaging.DefaultValidator(),
	})
	require.NoError(t, err)

	tools, err := New(svc)
	require.NoError(t, err)
	return tools, svc
}

func TestListReferenceImages(t *testing.T) {
	tools, svc := newTestTools(t)
	ctx := context.Background()

	_, err := svc.Intake(ctx, pngBytes(t, 1080, 1920))
	require.NoError(t, err)
	_, err = svc.Intake(ctx, pngBytes(t, 1080, 1920))
	require.NoError(t, err)

	out, err := tools.ListReferenceImages(ctx, ListReferenceImagesArgs{})
	require.NoError(t, err)
	list := out.(fitting.ReferenceList)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "reference_image_v1.png", list.Images[0].Filename)
	assert.Equal(t, "reference_image_v2.png", list.Images[1].Filename)
}

func TestCheckImageRatio(t *testing.T) {
	tools, svc := newTestTools(t)
	ctx := context.Background()

	_, err := svc.Intake(ctx, pngBytes(t, 1080, 1920))
	require.NoError(t, err)

	out, err := tools.CheckImageRatio(ctx, CheckImageRatioArgs{Filename: "reference_image_v1.png"})
	require.NoError(t, err)
	check := out.(fitting.RatioCheck)
	assert.Equal(t, imaging.ClassExact, check.Report.Classification)

	_, err = tools.CheckImageRatio(ctx, CheckImageRatioArgs{Filename: "reference_image_v9.png"})
	require.Error(t, err)
	var tkErr toolkit.Error
	require.ErrorAs(t, err, &tkErr)
	assert.Equal(t, toolerr.CodeNotFound, tkErr.Code)
}

func TestClearReferenceImagesTwoPhase(t *testing.T) {
	tools, svc := newTestTools(t)
	ctx := context.Background()

	_, err := svc.Intake(ctx, pngBytes(t, 1080, 1920))
	require.NoError(t, err)

	out, err := tools.ClearReferenceImages(ctx, ClearReferenceImagesArgs{})
	require.NoError(t, err)
	warn := out.(ClearResponse)
	assert.False(t, warn.Cleared)
	assert.NotEmpty(t, warn.Warning)

	list, err := svc.ListReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total, "unconfirmed clear must not delete")

	out, err = tools.ClearReferenceImages(ctx, ClearReferenceImagesArgs{Confirm: true})
	require.NoError(t, err)
	done := out.(ClearResponse)
	assert.True(t, done.Cleared)
	assert.Equal(t, 1, done.Deleted)

	list, err = svc.ListReferences(ctx)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}
