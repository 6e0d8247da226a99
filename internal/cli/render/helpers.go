package render

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	abiadapter "github.com/trebuchet-org/v3ops/internal/adapters/abi"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color styles shared by the renderers
var (
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	addressStyle       = color.New(color.FgWhite)
	labelStyle         = color.New(color.Faint)
	successStyle       = color.New(color.FgGreen)
	warningStyle       = color.New(color.FgYellow)
	errorStyle         = color.New(color.FgRed)
	hashStyle          = color.New(color.FgCyan)
)

var titleCaser = cases.Title(language.English)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return warningStyle.Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon.
// Only the innermost message of a wrapped chain is kept.
func FormatError(message string) string {
	parts := strings.Split(message, ": ")
	msg := parts[len(parts)-1]

	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return errorStyle.Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return successStyle.Sprintf("✅ %s", message)
}

// Title capitalizes operation and stage names for headings
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "-", " "))
}

// FormatAmount renders base units with the token's decimals and symbol
func FormatAmount(token models.Token, amount *big.Int) string {
	symbol := token.Symbol
	if symbol == "" {
		symbol = shortAddress(token.Address.Hex())
	}
	return fmt.Sprintf("%s %s", uniswapv3.FormatUnits(amount, token.Decimals), symbol)
}

// FormatDelta renders the signed difference of two balances
func FormatDelta(token models.Token, before, after *big.Int) string {
	if before == nil || after == nil {
		return "-"
	}
	delta := new(big.Int).Sub(after, before)
	sign := ""
	if delta.Sign() > 0 {
		sign = "+"
	}
	return sign + FormatAmount(token, delta)
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortHash(hash string) string {
	if len(hash) <= 14 {
		return hash
	}
	return hash[:10] + "…" + hash[len(hash)-4:]
}

// newTable creates a borderless table in the style of the list views
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box.PaddingRight = "  "
	return t
}

// keyValue prints an aligned "label: value" line
func keyValue(out io.Writer, label string, value any) {
	fmt.Fprintf(out, "  %s %v\n", labelStyle.Sprintf("%-16s", label+":"), value)
}

// RenderError prints a failed command, expanding decoded reverts and strict verification failures
func RenderError(out io.Writer, err error) {
	fmt.Fprintln(out, FormatError(err.Error()))

	var revert *domain.RevertError
	if errors.As(err, &revert) {
		if revert.Contract != "" || revert.Method != "" {
			keyValue(out, "call", fmt.Sprintf("%s.%s", revert.Contract, revert.Method))
		}
		switch {
		case revert.ErrorName != "":
			keyValue(out, "error", revert.ErrorName)
			for i, arg := range revert.Args {
				keyValue(out, fmt.Sprintf("arg %d", i), abiadapter.FormatValue(arg))
			}
		case revert.Reason != "":
			keyValue(out, "reason", revert.Reason)
		case len(revert.Data) > 0:
			keyValue(out, "data", abiadapter.FormatValue(revert.Data))
		}
	}

	var failed domain.TxFailedError
	if errors.As(err, &failed) {
		keyValue(out, "transaction", failed.Hash)
		keyValue(out, "gas used", failed.GasUsed)
	}

	var verification domain.VerificationError
	if errors.As(err, &verification) {
		for _, w := range verification.Warnings {
			fmt.Fprintf(out, "  • %s\n", w.String())
		}
	}
}
