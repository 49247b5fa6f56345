package repository

import (
	"context"
	"testing"

	"brai/internal/artifact"
	"brai/internal/models"
	"brai/internal/regressor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStaticModelRepository(t *testing.T) {
	ctx := context.Background()
	r := NewStaticModelRepository()

	ids, err := r.ListModels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keti_ai", "sj_rf"}, ids)

	m, err := r.GetModel(ctx, "sj_rf")
	require.NoError(t, err)
	assert.Equal(t, "radomforest", m.ModelDetail)
	assert.False(t, m.Advanced)

	set, err := r.Regressors(ctx, "sj_rf")
	require.NoError(t, err)
	assert.Nil(t, set)

	_, err = r.Regressors(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func newTestModelRepository(t *testing.T, files map[string]string) ModelRepository {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)
	source, err := artifact.NewFSSource(root)
	require.NoError(t, err)
	return NewFileModelRepository(source, nil, regressor.NewClient(0), zap.NewNop())
}

var rfModelFiles = map[string]string{
	"rf/description.json": `{"name":"Random forest","modelType":"combiationAbility","modelDetail":"randomforest","trainedBy":"TC1"}`,
	"rf/model_meta.json":  `{"traits":["weight","brix"],"nPcs":2,"confidence":{"weight":0.8},"artifacts":{"brix":"brix_linear.json"}}`,
	"rf/line_pcs.csv":     "id,PC1,PC2,PC3\nTC1_001,1,2,3\nTC1_022,3,4,5\n",
	"rf/weight.json": `{"kind":"forest","trees":[{"nodes":[
		{"feature":0,"threshold":1.5,"left":1,"right":2},
		{"left":-1,"right":-1,"value":10},
		{"left":-1,"right":-1,"value":20}]}]}`,
	"rf/brix_linear.json": `{"kind":"linear","intercept":1,"coefficients":[1,0,0,1]}`,
	"half/description.json": `{"name":"incomplete"}`,
}

func TestFileModelRepositoryDiscovery(t *testing.T) {
	ctx := context.Background()
	r := newTestModelRepository(t, rfModelFiles)

	ids, err := r.ListModels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rf"}, ids)

	m, err := r.GetModel(ctx, "rf")
	require.NoError(t, err)
	assert.Equal(t, "rf", m.ID)
	assert.Equal(t, "Random forest", m.Name)
	assert.Equal(t, []string{"weight", "brix"}, m.Traits)
	assert.Equal(t, 2, m.NPcs)
	assert.True(t, m.Advanced)

	for _, id := range []string{"half", "absent", "../rf"} {
		_, err = r.GetModel(ctx, id)
		assert.ErrorIs(t, err, models.ErrNotFound, id)
	}
}

func TestFileModelRepositoryRegressors(t *testing.T) {
	ctx := context.Background()
	r := newTestModelRepository(t, rfModelFiles)

	set, err := r.Regressors(ctx, "rf")
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 2, set.NPcs)
	assert.Equal(t, 0.8, set.ConfidenceFor("weight"))
	assert.Equal(t, regressor.DefaultConfidence, set.ConfidenceFor("brix"))

	features, err := set.PCs.Features("TC1_001", "TC1_022", set.NPcs)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 2, 2}, features)

	weight, err := set.ByTrait["weight"].Predict(ctx, features)
	require.NoError(t, err)
	assert.Equal(t, 20.0, weight)

	brix, err := set.ByTrait["brix"].Predict(ctx, features)
	require.NoError(t, err)
	assert.Equal(t, 5.0, brix)

	again, err := r.Regressors(ctx, "rf")
	require.NoError(t, err)
	assert.Same(t, set, again)
}

func TestFileModelRepositoryMissingArtifact(t *testing.T) {
	files := map[string]string{}
	for k, v := range rfModelFiles {
		files[k] = v
	}
	delete(files, "rf/brix_linear.json")
	r := newTestModelRepository(t, files)

	_, err := r.Regressors(context.Background(), "rf")
	require.Error(t, err)
	assert.ErrorIs(t, err, artifact.ErrNotExist)
	assert.Contains(t, err.Error(), "trait brix")
}

func TestFileModelRepositoryRejectsTooManyPCs(t *testing.T) {
	files := map[string]string{}
	for k, v := range rfModelFiles {
		files[k] = v
	}
	files["rf/model_meta.json"] = `{"traits":["weight"],"nPcs":9}`
	r := newTestModelRepository(t, files)

	_, err := r.Regressors(context.Background(), "rf")
	assert.ErrorContains(t, err, "nPcs is 9")
}
