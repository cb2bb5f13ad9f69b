package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/waterborne-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set waterborne configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		for _, k := range cfgpkg.Keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, configValue(cfg, k))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		if err := setConfigValue(&next, key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*cfg = next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "dataset":
		return c.Dataset
	case "output_dir":
		return c.OutputDir
	case "format":
		return c.Format
	case "width":
		return strconv.Itoa(c.Width)
	case "height":
		return strconv.Itoa(c.Height)
	case "size_min":
		return strconv.FormatFloat(c.SizeMin, 'g', -1, 64)
	case "size_max":
		return strconv.FormatFloat(c.SizeMax, 'g', -1, 64)
	case "parallel":
		return strconv.Itoa(c.Parallel)
	case "strict":
		return strconv.FormatBool(c.Strict)
	case "max_rows":
		return strconv.Itoa(c.MaxRows)
	case "delimiter":
		return quoteEmpty(c.Delimiter)
	case "decimal":
		return quoteEmpty(c.Decimal)
	case "thousands":
		return quoteEmpty(c.Thousands)
	case "sheet_name":
		return quoteEmpty(c.SheetName)
	case "sheet_index":
		return strconv.Itoa(c.SheetIndex)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	}
	return ""
}

func quoteEmpty(s string) string {
	if s == "" {
		return `""`
	}
	return s
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	atof := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	var err error
	switch key {
	case "dataset":
		c.Dataset = val
	case "output_dir":
		c.OutputDir = val
	case "format":
		c.Format = strings.ToLower(val)
	case "width":
		c.Width, err = atoi()
	case "height":
		c.Height, err = atoi()
	case "size_min":
		c.SizeMin, err = atof()
	case "size_max":
		c.SizeMax, err = atof()
	case "parallel":
		c.Parallel, err = atoi()
	case "strict":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for strict: %v", val)
		}
		c.Strict = b
	case "max_rows":
		c.MaxRows, err = atoi()
	case "delimiter":
		if val == "tab" {
			val = "\t"
		}
		c.Delimiter = val
	case "decimal":
		c.Decimal = val
	case "thousands":
		c.Thousands = val
	case "sheet_name":
		c.SheetName = val
	case "sheet_index":
		c.SheetIndex, err = atoi()
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
	}
	return err
}
