package tryon

import (
	"context"
	"encoding/json"
	"testing"
	"time"

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

func newTestTools(t *testing.T, cooldown time.Duration) (*Tools, *artifacts.Namer, *ratelimit.Limiter) {
	t.Helper()
	store := artifacts.NewMemStore()
	namer := artifacts.NewNamer(store)
	limiter, err := ratelimit.New(ratelimit.Config{Cooldown: cooldown})
	require.NoError(t, err)

	svc, err := fitting.New(fitting.Deps{
		Store:   store,
		Namer:   namer,
		Limiter: limiter,
		Generator: imagegen.Func(func(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
			return []byte("generated-image"), nil
		}),
		Validator: imaging.DefaultValidator(),
	})
	require.NoError(t, err)

	tools, err := New(svc)
	require.NoError(t, err)
	return tools, namer, limiter
}

func dispatch(t *testing.T, tk *toolkit.Toolkit, payload string) toolkit.Result {
	t.Helper()
	result, err := tk.Dispatch(context.Background(), json.RawMessage(payload))
	require.NoError(t, err)
	return result
}

func TestVirtualTryOnThroughDispatch(t *testing.T) {
	tools, namer, _ := newTestTools(t, 0)
	_, err := namer.Save(context.Background(), fitting.DefaultReferenceClass, "png", []byte("person"))
	require.NoError(t, err)
	_, err = namer.Save(context.Background(), "garment_image", "png", []byte("garment"))
	require.NoError(t, err)

	tk := toolkit.New("wardrobe", tools.Group())
	result := dispatch(t, tk, `{
		"name": "wardrobe",
		"groups": [{
			"name": "tryon",
			"tools": [
				{"name": "virtual_tryon", "args": {"person_image_filename": "reference_image_v1.png", "garment_filename": "garment_image_v1.png", "garment_type": "dress"}},
				{"name": "list_tryon_results", "args": {}}
			]
		}]
	}`)

	require.Len(t, result.Groups, 1)
	require.Len(t, result.Groups[0].Tools, 2)

	tryOn, ok := result.Groups[0].Tools[0].Output.(fitting.TryOnResult)
	require.True(t, ok, "got %T", result.Groups[0].Tools[0].Output)
	assert.Equal(t, "tryon_result_v1.png", tryOn.Result.Filename)

	list, ok := result.Groups[0].Tools[1].Output.(fitting.ResultList)
	require.True(t, ok)
	assert.Equal(t, 1, list.Total)
}

func TestVirtualTryOnErrorsKeepTheirCodes(t *testing.T) {
	tools, _, limiter := newTestTools(t, time.Hour)
	tk := toolkit.New("wardrobe", tools.Group())

	// Missing person image.
	result := dispatch(t, tk, `{"name":"wardrobe","groups":[{"name":"tryon","tools":[
		{"name":"virtual_tryon","args":{"person_image_filename":"reference_image_v1.png","garment_filename":"x.png"}}]}]}`)
	tkErr, ok := result.Groups[0].Tools[0].Output.(toolkit.Error)
	require.True(t, ok, "got %T", result.Groups[0].Tools[0].Output)
	assert.Equal(t, toolerr.CodeNotFound, tkErr.Code)

	// Bad garment type.
	result = dispatch(t, tk, `{"name":"wardrobe","groups":[{"name":"tryon","tools":[
		{"name":"virtual_tryon","args":{"person_image_filename":"p.png","garment_filename":"g.png","garment_type":"cape"}}]}]}`)
	tkErr, ok = result.Groups[0].Tools[0].Output.(toolkit.Error)
	require.True(t, ok)
	assert.Equal(t, "invalid_arguments", tkErr.Code)

	// Rate limited: consume the slot, then try with existing artifacts.
	require.True(t, limiter.TryAcquire().Accepted)
	result = dispatch(t, tk, `{"name":"wardrobe","groups":[{"name":"tryon","tools":[
		{"name":"get_rate_limit_status","args":{}}]}]}`)
	status, ok := result.Groups[0].Tools[0].Output.(RateLimitStatusResponse)
	require.True(t, ok)
	assert.Equal(t, string(ratelimit.StateCoolingDown), status.State)
	assert.Greater(t, status.SecondsUntilReady, 0.0)
}

func TestClearTryOnResultsTwoPhase(t *testing.T) {
	tools, namer, _ := newTestTools(t, 0)
	ctx := context.Background()
	_, err := namer.Save(ctx, fitting.DefaultResultClass, "png", []byte("r"))
	require.NoError(t, err)

	unconfirmed, err := tools.ClearTryOnResults(ctx, ClearTryOnResultsArgs{})
	require.NoError(t, err)
	warn := unconfirmed.(ClearResponse)
	assert.False(t, warn.Cleared)
	assert.NotEmpty(t, warn.Warning)

	// The warning call must not have deleted anything.
	versions, err := namer.List(ctx, fitting.DefaultResultClass)
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	confirmed, err := tools.ClearTryOnResults(ctx, ClearTryOnResultsArgs{Confirm: true})
	require.NoError(t, err)
	done := confirmed.(ClearResponse)
	assert.True(t, done.Cleared)
	assert.Equal(t, 1, done.Deleted)
}

func TestCompareRejectsEmptyArgs(t *testing.T) {
	tools, _, _ := newTestTools(t, 0)

	_, err := tools.CompareTryOnResults(context.Background(), CompareTryOnResultsArgs{})
	require.Error(t, err)
	tkErr, ok := err.(toolkit.Error)
	require.True(t, ok)
	assert.Equal(t, "invalid_arguments", tkErr.Code)
}
