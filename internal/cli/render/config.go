package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// ConfigRenderer renders the local configuration commands
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{out: out}
}

// RenderShow prints the stored overrides and the settings in effect
func (r *ConfigRenderer) RenderShow(result *usecase.ShowConfigResult) error {
	if !result.Exists {
		fmt.Fprintf(r.out, "No local config at %s\n", relativePath(result.ConfigPath))
	} else {
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Local config (%s)", relativePath(result.ConfigPath)))
		for _, key := range config.ValidConfigKeys() {
			value := result.Config.Get(key)
			if value == "" {
				value = labelStyle.Sprint("(not set)")
			}
			keyValue(r.out, string(key), value)
		}
	}

	if eff := result.Effective; eff != nil {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("Effective"))
		if eff.Network != nil {
			keyValue(r.out, "network", fmt.Sprintf("%s (chain %d)", eff.Network.Name, eff.Network.ChainID))
			keyValue(r.out, "rpc", eff.Network.RPCURL)
		}
		keyValue(r.out, "timeout", eff.Timeout)
		keyValue(r.out, "deployments", relativePath(eff.DeploymentsDir))
		keyValue(r.out, "journal", relativePath(eff.JournalPath))
		if eff.MetricsFile != "" {
			keyValue(r.out, "metrics-file", relativePath(eff.MetricsFile))
		}
		signer := "none (read-only)"
		if eff.HasSigner() {
			signer = "configured"
		}
		keyValue(r.out, "signer", signer)
		if eff.ConfigSource != "" {
			keyValue(r.out, "project file", relativePath(eff.ConfigSource))
		}
	}

	if eff := result.Effective; eff != nil && eff.Network != nil {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Protocol on %s", eff.Network.Name))
		if len(result.Protocol) == 0 {
			fmt.Fprintln(r.out, labelStyle.Sprint("  no Uniswap V3 addresses: run deploy core or configure them in v3ops.toml"))
		} else {
			renderProtocol(r.out, result.Protocol)
		}
		if len(result.Manifests) > 0 {
			keyValue(r.out, "manifests", strings.Join(result.Manifests, ", "))
		}
	}
	return nil
}

// RenderSet confirms a stored value
func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set %s to %s", result.Key, result.Value)))
	fmt.Fprintf(r.out, "📁 saved %s\n", relativePath(result.ConfigPath))
	return nil
}

// RenderRemove confirms a removed value
func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	if result.RemovedValue == "" {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%s was not set", result.Key)))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %s (was %s)", result.Key, result.RemovedValue)))
	return nil
}
