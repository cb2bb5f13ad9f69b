package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/waterborne-cli/internal/config"
	"github.com/KaramelBytes/waterborne-cli/internal/logging"
	"github.com/spf13/cobra"
)

// Loader flags shared by every command that reads the dataset.
var (
	ldDelimiter  string
	ldDecimal    string
	ldThousands  string
	ldMaxRows    int
	ldSheetName  string
	ldSheetIndex int
)

func addLoadFlags(c *cobra.Command) {
	c.Flags().StringVar(&ldDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab' (auto by default)")
	c.Flags().StringVar(&ldDecimal, "decimal", "", "decimal separator: '.'|'comma'")
	c.Flags().StringVar(&ldThousands, "thousands", "", "thousands separator: ','|'.'|'space'")
	c.Flags().IntVar(&ldMaxRows, "max-rows", 0, "limit rows loaded (0 = all)")
	c.Flags().StringVar(&ldSheetName, "sheet-name", "", "XLSX: sheet name to load")
	c.Flags().IntVar(&ldSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index")
}

// loadOptions merges configuration with loader flags set on cmd.
func loadOptions(cmd *cobra.Command, c *cfgpkg.Global) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	opt.MaxRows = c.MaxRows
	opt.Delimiter = cfgpkg.Rune(c.Delimiter)
	opt.DecimalSeparator = cfgpkg.Rune(c.Decimal)
	opt.ThousandsSeparator = cfgpkg.Rune(c.Thousands)
	opt.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}

	f := cmd.Flags()
	if f.Changed("max-rows") {
		if ldMaxRows < 0 {
			return opt, fmt.Errorf("invalid --max-rows: %d", ldMaxRows)
		}
		opt.MaxRows = ldMaxRows
	}
	if f.Changed("delimiter") {
		switch ldDelimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|":
			opt.Delimiter = '|'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", ldDelimiter)
		}
	}
	if f.Changed("decimal") {
		switch strings.ToLower(strings.TrimSpace(ldDecimal)) {
		case ",", "comma":
			opt.DecimalSeparator = ','
		case ".", "dot":
			opt.DecimalSeparator = '.'
		default:
			return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", ldDecimal)
		}
	}
	if f.Changed("thousands") {
		switch strings.ToLower(ldThousands) {
		case ",":
			opt.ThousandsSeparator = ','
		case ".":
			opt.ThousandsSeparator = '.'
		case "space", " ":
			opt.ThousandsSeparator = ' '
		default:
			return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", ldThousands)
		}
	}
	if f.Changed("sheet-name") {
		opt.SheetName = ldSheetName
	}
	if f.Changed("sheet-index") {
		if ldSheetIndex < 1 {
			return opt, fmt.Errorf("invalid --sheet-index: %d (must be >= 1)", ldSheetIndex)
		}
		opt.SheetIndex = ldSheetIndex
	}
	return opt, nil
}

// loadTable reads the dataset named by args[0], or the configured default.
func loadTable(ctx context.Context, cmd *cobra.Command, args []string) (*analysis.Table, error) {
	path := cfg.Dataset
	if len(args) > 0 {
		path = args[0]
	}
	opt, err := loadOptions(cmd, cfg)
	if err != nil {
		return nil, err
	}
	t, err := analysis.Load(path, opt)
	if err != nil {
		return nil, err
	}
	log := logging.WithContext(ctx, "loader")
	log.Info("dataset loaded", "path", path, "rows", t.Rows(), "columns", len(t.Names()))
	for _, w := range t.Warnings {
		log.Warn(w, "path", path)
	}
	return t, nil
}
