package manifests_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/adapters/repository/manifests"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

func newRepo(t *testing.T) (*manifests.FileRepository, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.RuntimeConfig{DeploymentsDir: dir}
	return manifests.NewFileRepository(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))), dir
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		repo, _ := newRepo(t)

		m := models.NewManifest("sepolia", 11155111, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
		m.Set(models.RoleTokenA, &models.ContractRecord{
			Address:         "0x1000000000000000000000000000000000000001",
			ABI:             &models.ABIRef{Path: "abi/TokenA.json"},
			TransactionHash: "0xabc",
		})
		m.Set(models.RolePool, &models.ContractRecord{
			Address:              "0x3000000000000000000000000000000000000003",
			Token0:               "0x1000000000000000000000000000000000000001",
			Token1:               "0x2000000000000000000000000000000000000002",
			Fee:                  500,
			LiquidityTransaction: "0xdef",
			ABI:                  &models.ABIRef{Inline: []byte(`[{"type":"function","name":"fee","inputs":[],"outputs":[]}]`)},
		})

		require.NoError(t, repo.Save(ctx, "sepolia", models.PoolManifest, m))
		loaded, err := repo.Load(ctx, "sepolia", models.PoolManifest)
		require.NoError(t, err)
		assert.Equal(t, m, loaded)
	})

	t.Run("missing manifest", func(t *testing.T) {
		repo, dir := newRepo(t)

		_, err := repo.Load(ctx, "localhost", models.Pool2Manifest)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingManifest)

		var missing domain.MissingManifestError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, filepath.Join(dir, "localhost", "pool2-deployment.json"), missing.Path)
	})

	t.Run("path layout", func(t *testing.T) {
		repo, dir := newRepo(t)
		assert.Equal(t, filepath.Join(dir, "localhost", "deployment.json"), repo.Path("localhost", models.CoreManifest))
		assert.Equal(t, filepath.Join(dir, "localhost", "daibi2-deployment.json"), repo.Path("localhost", models.TokensManifest))
	})

	t.Run("list", func(t *testing.T) {
		repo, dir := newRepo(t)
		for _, name := range []string{models.PoolManifest, models.CoreManifest, models.Pool2Manifest} {
			require.NoError(t, repo.Save(ctx, "localhost", name, models.NewManifest("localhost", 31337, common.Address{})))
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost", "notes.txt"), []byte("x"), 0644))

		names, err := repo.List(ctx, "localhost")
		require.NoError(t, err)
		assert.Equal(t, []string{"deployment", "pool", "pool2"}, names)

		names, err = repo.List(ctx, "sepolia")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("save leaves no temporary file", func(t *testing.T) {
		repo, dir := newRepo(t)
		require.NoError(t, repo.Save(ctx, "localhost", models.PoolManifest, models.NewManifest("localhost", 31337, common.Address{})))

		_, err := os.Stat(filepath.Join(dir, "localhost", "pool-deployment.json.tmp"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("abi files", func(t *testing.T) {
		repo, dir := newRepo(t)
		abiJSON := []byte(`[{"type":"function","name":"symbol","inputs":[],"outputs":[{"type":"string"}]}]`)

		ref, err := repo.WriteABI(ctx, "localhost", models.RoleTokenA, abiJSON)
		require.NoError(t, err)
		assert.Equal(t, "abi/TokenA.json", ref.Path)
		assert.FileExists(t, filepath.Join(dir, "localhost", "abi", "TokenA.json"))

		data, err := repo.ReadABI(ctx, "localhost", ref)
		require.NoError(t, err)
		assert.Equal(t, abiJSON, data)
	})
}

func TestFileRepository_ReadsManifestsWithInlineABI(t *testing.T) {
	ctx := context.Background()
	repo, dir := newRepo(t)

	legacy := `{
  "network": "localhost",
  "chainId": 31337,
  "deployer": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
  "timestamp": "2024-05-01T10:00:00.000Z",
  "contracts": {
    "TokenA": {
      "address": "0x1000000000000000000000000000000000000001",
      "abi": [ {"type": "function", "name": "symbol", "inputs": [], "outputs": [{"type": "string"}]} ]
    }
  }
}`
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "localhost"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost", "pool-deployment.json"), []byte(legacy), 0644))

	m, err := repo.Load(ctx, "localhost", models.PoolManifest)
	require.NoError(t, err)

	rec := m.Contract(models.RoleTokenA)
	require.NotNil(t, rec)
	require.NotNil(t, rec.ABI)
	assert.Empty(t, rec.ABI.Path)

	data, err := repo.ReadABI(ctx, "localhost", rec.ABI)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"function","name":"symbol","inputs":[],"outputs":[{"type":"string"}]}]`, string(data))
}
