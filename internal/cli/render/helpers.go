package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

var (
	headerStyle   = color.New(color.FgCyan, color.Bold)
	sectionStyle  = color.New(color.Bold, color.FgHiWhite)
	labelStyle    = color.New(color.Faint)
	idStyle       = color.New(color.FgYellow)
	nameStyle     = color.New(color.FgWhite, color.Bold)
	pendingStyle  = color.New(color.FgYellow)
	executedStyle = color.New(color.FgGreen)
	mismatchStyle = color.New(color.FgRed)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	// Keep the innermost part of an error chain
	parts := strings.Split(message, ": ")
	msg := parts[len(parts)-1]

	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// StatusLabel renders a proposal status as title cased, colored text
func StatusLabel(s models.ProposalStatus) string {
	label := cases.Title(language.English).String(strings.ReplaceAll(string(s.Kind), "_", " "))
	switch s.Kind {
	case models.StatusActive:
		return color.New(color.FgCyan).Sprint(label)
	case models.StatusReadyForEvaluation:
		return color.New(color.FgYellow).Sprint(label)
	case models.StatusPassed:
		return color.New(color.FgGreen).Sprintf("%s (option %d)", label, s.WinningOption)
	default:
		return color.New(color.FgRed).Sprint(label)
	}
}

// FormatLovelace renders lovelace as ADA with six decimals
func FormatLovelace(n uint64) string {
	return fmt.Sprintf("%d.%06d ADA", n/1_000_000, n%1_000_000)
}

// FormatValue renders lovelace followed by tokens in unit order
func FormatValue(v cardano.Value) string {
	parts := []string{FormatLovelace(v.Lovelace)}
	for _, id := range v.Assets.Sorted() {
		parts = append(parts, fmt.Sprintf("%d %s", v.Assets[id], FormatAsset(id)))
	}
	return strings.Join(parts, " + ")
}

// FormatAsset renders an asset as policy prefix and readable name
func FormatAsset(id cardano.AssetID) string {
	name := id.Name
	if !printable(name) {
		name = "0x" + id.NameHex()
	}
	return fmt.Sprintf("%s.%s", id.Policy.String()[:8], name)
}

// FormatAddress renders an address in bech32, falling back to its credential
func FormatAddress(a cardano.Address, network cardano.Network) string {
	s, err := a.Bech32(network)
	if err != nil {
		return fmt.Sprintf("%s:%s", a.Payment.Kind, a.Payment.Hash)
	}
	return s
}

// FormatTime renders a chain timestamp in UTC
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatTimeMs renders milliseconds since epoch, or "-" for an unbounded value
func FormatTimeMs(ms uint64) string {
	if ms == 0 {
		return "-"
	}
	return FormatTime(time.UnixMilli(int64(ms)))
}

// ShortID returns the first eight hex digits of an identifier
func ShortID(id cardano.Hash32) string {
	return id.String()[:8]
}

func printable(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// newTable returns a borderless table in the CLI's list style
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box.PaddingRight = "  "
	t.Style().Box.PaddingLeft = ""
	t.Style().Format.Header = text.FormatUpper
	return t
}
