// =============================================================================
// Scanned File Audit - Configuration Module
// =============================================================================
//
// This module is responsible for loading the audit configuration. A single
// YAML file describes where the scanned files live, how their names are
// structured, which reports are produced, and where the reports are written.
//
// CONFIGURATION FILE:
//   scanaudit.yaml (override with --config)
//
// DEFAULTS:
//   Every option has a default reproducing the settings of the scanning
//   project (prefix "slls", key universe 1..60000, years 1982..2018). A run
//   without any configuration file uses these defaults.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flinders-library/scanaudit/internal/logger"
)

// DefaultConfigFile is used when --config is not given.
const DefaultConfigFile = "scanaudit.yaml"

// =============================================================================
// REPORT NAMES
// =============================================================================

// Report names, in the fixed order they are generated.
const (
	ReportKeys             = "keys"
	ReportKeyOverlap       = "key_overlap"
	ReportKeyGap           = "key_gap"
	ReportNoKeys           = "no_keys"
	ReportKnownDuplicates  = "known_dup_keys"
	ReportTripDup          = "trip_dup"
	ReportTripGap          = "trip_gap"
	ReportNumPagesActual   = "num_pages_actual"
	ReportNumPagesExpected = "num_pages_expected"
	ReportNumPagesFileReg  = "num_pages_file_reg"
)

// AllReports lists every report in generation order.
var AllReports = []string{
	ReportKeys,
	ReportKeyOverlap,
	ReportKeyGap,
	ReportNoKeys,
	ReportKnownDuplicates,
	ReportTripDup,
	ReportTripGap,
	ReportNumPagesActual,
	ReportNumPagesExpected,
	ReportNumPagesFileReg,
}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete audit configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory containing the scanned files.
	// Default: "./src"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where the CSV reports are written.
	// Default: "./results"
	OutputDir string `yaml:"output_dir"`

	// =========================================================================
	// FILE SELECTION
	// =========================================================================

	// MinFileIndex and MaxFileIndex select a 1-based inclusive slice of the
	// sorted directory listing, typically for debugging. To process only the
	// third file, set both to 3.
	// Default: 1 and 99999
	MinFileIndex int `yaml:"min_file_index"`
	MaxFileIndex int `yaml:"max_file_index"`

	// Naming describes the filename wire format.
	Naming Naming `yaml:"naming"`

	// Register describes the optional page-count register.
	Register Register `yaml:"register"`

	// Outputs maps report names to output file names.
	Outputs Outputs `yaml:"outputs"`

	// Reports lists the reports to generate. Unknown names are rejected.
	// Default: all reports
	Reports []string `yaml:"reports"`

	// PageCount configures the external page-count tool.
	PageCount PageCount `yaml:"page_count"`

	// KnownDuplicates is the manually curated list of keys known to be
	// captured twice.
	KnownDuplicates []KnownDuplicate `yaml:"known_duplicates"`

	// MaxConcurrency bounds the number of concurrent page-count lookups.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// NAMING STRUCTURE
// =============================================================================

// Naming describes how a scanned filename is structured:
//
//	<prefix>_d<YYYYMMDD>_t<TRIP>_k<BEGIN>-<END>.<ext>
type Naming struct {
	// Prefix is the literal first field.
	// Default: "slls"
	Prefix string `yaml:"prefix"`

	// Separator divides the fields. Must be a single character.
	// Default: "_"
	Separator string `yaml:"separator"`

	// Extensions are the permitted file extensions (matched case-insensitively).
	// Default: ["pdf"]
	Extensions []string `yaml:"extensions"`

	// KeyRange is the global key universe.
	// Default: 1..60000
	KeyRange Range `yaml:"key_range"`

	// YearRange restricts the year of the date field.
	// Default: 1982..2018
	YearRange Range `yaml:"year_range"`

	// TripRange is the trip-number universe. When End is 0 the universe
	// ends at the highest trip number observed and trip numbers are not
	// range checked.
	// Default: 1..0
	TripRange Range `yaml:"trip_range"`
}

// Range is an inclusive integer range.
type Range struct {
	Begin int `yaml:"begin"`
	End   int `yaml:"end"`
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.Begin && n <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Begin, r.End)
}

// =============================================================================
// REGISTER STRUCTURE
// =============================================================================

// Register describes the externally maintained file-name register, a CSV or
// XLSX table holding the expected sheet counts of each file.
type Register struct {
	// Path to the register. A ".xlsx" extension selects the workbook loader.
	// Default: "<input_dir>/csv/Lizard_file_name_register.csv"
	Path string `yaml:"path"`

	// Sheet is the worksheet to read for XLSX registers (default: first sheet).
	Sheet string `yaml:"sheet"`

	// Column names, matched case-insensitively against the header row.
	FilenameColumn    string `yaml:"filename_column"`
	FrontSheetsColumn string `yaml:"front_sheets_column"`
	BackSheetsColumn  string `yaml:"back_sheets_column"`
	MissingKeysColumn string `yaml:"missing_keys_column"`
}

// =============================================================================
// OUTPUT STRUCTURE
// =============================================================================

// Outputs holds the report file names, relative to OutputDir.
type Outputs struct {
	Files map[string]string `yaml:"files"`

	// Workbook, when set, also writes every report as a sheet of one XLSX
	// workbook at this path (relative to OutputDir unless absolute).
	Workbook string `yaml:"workbook"`
}

// defaultOutputFiles mirrors the report file names used by the project.
var defaultOutputFiles = map[string]string{
	ReportKeys:             "keys.csv",
	ReportKeyOverlap:       "key_overlap.csv",
	ReportKeyGap:           "key_gap.csv",
	ReportNoKeys:           "no_keys.csv",
	ReportKnownDuplicates:  "known_dup_keys.csv",
	ReportTripDup:          "trip_dup.csv",
	ReportTripGap:          "trip_gap.csv",
	ReportNumPagesActual:   "num_pages_actual.csv",
	ReportNumPagesExpected: "num_pages_expected.csv",
	ReportNumPagesFileReg:  "num_pages_file_reg.csv",
}

// =============================================================================
// PAGE COUNT STRUCTURE
// =============================================================================

// PageCount configures the external tool that counts the pages of a file.
type PageCount struct {
	// Command is the executable to run. The file path is appended to Args.
	// Default: "pdfinfo"
	Command string `yaml:"command"`

	// Args are passed before the file path.
	Args []string `yaml:"args"`

	// FixedSheets is the number of pages every file holds in addition to
	// two pages per key (front and back sheets).
	// Default: 3
	FixedSheets int `yaml:"fixed_sheets"`
}

// =============================================================================
// KNOWN DUPLICATE STRUCTURE
// =============================================================================

// Kinds of known duplicate.
const (
	DuplicateMultiFile = "multi_file"
	DuplicateSameFile  = "same_file"
)

// KnownDuplicate records a key that is known to appear twice.
type KnownDuplicate struct {
	Key   int      `yaml:"key"`
	Files []string `yaml:"files"`

	// Kind is "multi_file" (detectable from filenames) or "same_file"
	// (the key is captured twice inside one file, not detectable).
	// Default: "multi_file"
	Kind string `yaml:"kind"`

	Comment string `yaml:"comment"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// RETURNS:
//   - A pointer to the Config struct with defaults applied.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// LoadOrDefault behaves like Load but returns the defaults when the file
// does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML configuration data, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./src"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./results"
	}
	if cfg.MinFileIndex == 0 {
		cfg.MinFileIndex = 1
	}
	if cfg.MaxFileIndex == 0 {
		cfg.MaxFileIndex = 99999
	}

	n := &cfg.Naming
	if n.Prefix == "" {
		n.Prefix = "slls"
	}
	if n.Separator == "" {
		n.Separator = "_"
	}
	if len(n.Extensions) == 0 {
		n.Extensions = []string{"pdf"}
	}
	if n.KeyRange == (Range{}) {
		n.KeyRange = Range{Begin: 1, End: 60000}
	}
	if n.YearRange == (Range{}) {
		n.YearRange = Range{Begin: 1982, End: 2018}
	}
	if n.TripRange.Begin == 0 {
		n.TripRange.Begin = 1
	}

	r := &cfg.Register
	if r.FilenameColumn == "" {
		r.FilenameColumn = "filename"
	}
	if r.FrontSheetsColumn == "" {
		r.FrontSheetsColumn = "front_sheets"
	}
	if r.BackSheetsColumn == "" {
		r.BackSheetsColumn = "back_sheets"
	}
	if r.MissingKeysColumn == "" {
		r.MissingKeysColumn = "missing_keys"
	}

	if cfg.Outputs.Files == nil {
		cfg.Outputs.Files = make(map[string]string)
	}
	for name, file := range defaultOutputFiles {
		if cfg.Outputs.Files[name] == "" {
			cfg.Outputs.Files[name] = file
		}
	}

	if len(cfg.Reports) == 0 {
		cfg.Reports = append([]string(nil), AllReports...)
	}

	if cfg.PageCount.Command == "" {
		cfg.PageCount.Command = "pdfinfo"
	}
	if cfg.PageCount.FixedSheets == 0 {
		cfg.PageCount.FixedSheets = 3
	}

	for i := range cfg.KnownDuplicates {
		if cfg.KnownDuplicates[i].Kind == "" {
			cfg.KnownDuplicates[i].Kind = DuplicateMultiFile
		}
	}

	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.MinFileIndex < 1 {
		return fmt.Errorf("min_file_index must be at least 1, got %d", c.MinFileIndex)
	}
	if c.MaxFileIndex < c.MinFileIndex {
		return fmt.Errorf("max_file_index (%d) must not be less than min_file_index (%d)", c.MaxFileIndex, c.MinFileIndex)
	}

	n := c.Naming
	if len([]rune(n.Separator)) != 1 {
		return fmt.Errorf("naming.separator must be a single character, got %q", n.Separator)
	}
	if n.KeyRange.Begin < 1 || n.KeyRange.End < n.KeyRange.Begin {
		return fmt.Errorf("naming.key_range %s is invalid", n.KeyRange)
	}
	if n.YearRange.End < n.YearRange.Begin {
		return fmt.Errorf("naming.year_range %s is invalid", n.YearRange)
	}
	if n.TripRange.Begin < 0 || (n.TripRange.End != 0 && n.TripRange.End < n.TripRange.Begin) {
		return fmt.Errorf("naming.trip_range %s is invalid", n.TripRange)
	}
	for _, ext := range n.Extensions {
		if ext == "" || strings.ContainsAny(ext, "./") {
			return fmt.Errorf("naming.extensions entry %q is invalid", ext)
		}
	}

	known := make(map[string]bool, len(AllReports))
	for _, name := range AllReports {
		known[name] = true
	}
	for _, name := range c.Reports {
		if !known[name] {
			return fmt.Errorf("unknown report %q (valid: %s)", name, strings.Join(AllReports, ", "))
		}
	}

	for _, d := range c.KnownDuplicates {
		if d.Kind != DuplicateMultiFile && d.Kind != DuplicateSameFile {
			return fmt.Errorf("known duplicate key %d: kind must be %q or %q", d.Key, DuplicateMultiFile, DuplicateSameFile)
		}
		if len(d.Files) == 0 {
			return fmt.Errorf("known duplicate key %d: no files listed", d.Key)
		}
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level %q is invalid", c.LogLevel)
	}

	return nil
}

// ReportEnabled reports whether the named report is selected.
func (c *Config) ReportEnabled(name string) bool {
	for _, r := range c.Reports {
		if r == name {
			return true
		}
	}
	return false
}

// DefaultRegisterFile is the register location relative to InputDir.
const DefaultRegisterFile = "csv/Lizard_file_name_register.csv"

// ResolvedRegister returns the register settings with Path filled in. An
// empty path means DefaultRegisterFile under the input directory.
func (c *Config) ResolvedRegister() Register {
	r := c.Register
	if r.Path == "" {
		r.Path = filepath.Join(c.InputDir, DefaultRegisterFile)
	}
	return r
}

// OutputFile returns the file name configured for a report.
func (c *Config) OutputFile(report string) string {
	if f := c.Outputs.Files[report]; f != "" {
		return f
	}
	return report + ".csv"
}
