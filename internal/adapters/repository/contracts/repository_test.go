package contracts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

func writeArtifact(t *testing.T, dir, rel string, artifact any) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func newRepository(t *testing.T, dirs ...string) *Repository {
	t.Helper()
	cfg := &config.RuntimeConfig{ProjectRoot: t.TempDir(), ArtifactDirs: dirs}
	return NewRepository(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// placeholder is what solc leaves where a library address goes
var placeholder = "__$" + strings.Repeat("a", 34) + "$__"

func TestRepository_Load(t *testing.T) {
	ctx := context.Background()
	core := t.TempDir()
	periphery := t.TempDir()

	writeArtifact(t, core, "contracts/UniswapV3Factory.sol/UniswapV3Factory.json", map[string]any{
		"contractName": "UniswapV3Factory",
		"sourceName":   "contracts/UniswapV3Factory.sol",
		"abi":          []any{},
		"bytecode":     "0x6080",
	})
	writeArtifact(t, core, "contracts/UniswapV3Factory.sol/UniswapV3Factory.dbg.json", map[string]any{"buildInfo": "x"})
	writeArtifact(t, core, "build-info/abc.json", map[string]any{"contractName": "Ignored", "abi": []any{}})
	writeArtifact(t, periphery, "contracts/interfaces/ISwapRouter.sol/ISwapRouter.json", map[string]any{
		"contractName": "ISwapRouter",
		"sourceName":   "contracts/interfaces/ISwapRouter.sol",
		"abi":          []any{},
		"bytecode":     "0x",
	})
	writeArtifact(t, periphery, "contracts/UniswapV3Factory.sol/UniswapV3Factory.json", map[string]any{
		"contractName": "UniswapV3Factory",
		"sourceName":   "contracts/test/UniswapV3Factory.sol",
		"abi":          []any{},
		"bytecode":     "0x6081",
	})

	repo := newRepository(t, core, periphery)

	names, err := repo.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"ISwapRouter", "UniswapV3Factory"}, names)

	tests := []struct {
		name     string
		lookup   string
		bytecode string
		wantErr  string
	}{
		{name: "first directory wins", lookup: "UniswapV3Factory", bytecode: "0x6080"},
		{name: "qualified by source", lookup: "contracts/test/UniswapV3Factory.sol:UniswapV3Factory", bytecode: "0x6081"},
		{name: "interface has no bytecode", lookup: "ISwapRouter", wantErr: "no bytecode"},
		{name: "unknown", lookup: "Nope", wantErr: "no artifact for Nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact, err := repo.Load(ctx, tt.lookup)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bytecode, artifact.Bytecode)
			assert.NotEmpty(t, artifact.Path)
		})
	}
}

func TestRepository_Link(t *testing.T) {
	repo := newRepository(t)
	lib := common.HexToAddress("0xABCDEFabcdef0123456789ABCDEFabcdef012345")

	// 2 bytes of code, a 20 byte placeholder, 1 trailing byte
	artifact := &models.Artifact{
		ContractName: "NonfungibleTokenPositionDescriptor",
		Bytecode:     "0x6080" + placeholder + "ff",
		LinkReferences: map[string]map[string][]models.LinkReference{
			"contracts/libraries/NFTDescriptor.sol": {
				"NFTDescriptor": {{Start: 2, Length: 20}},
			},
		},
	}

	t.Run("by name", func(t *testing.T) {
		code, err := repo.Link(artifact, map[string]common.Address{"NFTDescriptor": lib})
		require.NoError(t, err)
		require.Len(t, code, 23)
		assert.Equal(t, []byte{0x60, 0x80}, code[:2])
		assert.Equal(t, lib.Bytes(), code[2:22])
		assert.Equal(t, byte(0xff), code[22])
	})

	t.Run("by qualified name", func(t *testing.T) {
		code, err := repo.Link(artifact, map[string]common.Address{"contracts/libraries/NFTDescriptor.sol:NFTDescriptor": lib})
		require.NoError(t, err)
		assert.Equal(t, lib.Bytes(), code[2:22])
	})

	t.Run("missing library", func(t *testing.T) {
		_, err := repo.Link(artifact, nil)
		assert.ErrorContains(t, err, "needs library")
	})

	t.Run("no link references", func(t *testing.T) {
		code, err := repo.Link(&models.Artifact{Bytecode: "0x6080"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x60, 0x80}, code)
	})

	t.Run("unlinked placeholder is invalid hex", func(t *testing.T) {
		_, err := repo.Link(&models.Artifact{Bytecode: "0x" + placeholder}, nil)
		assert.Error(t, err)
	})
}
