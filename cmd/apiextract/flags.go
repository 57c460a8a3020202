package main

import (
	"errors"
	"flag"
	"io"
	"strings"
)

// Run modes
const (
	ModeExtract = "extract"
	ModeInspect = "inspect"
	ModeSuggest = "suggest"
)

// SnapshotAuto places the snapshot under the configured storage base path
const SnapshotAuto = "auto"

type AppFlags struct {
	GlobalConfigFile string
	Mode             string
	Path             string
	Search           string
	PageIDs          []string
	Sort             string
	OutputDir        string
	SnapshotDir      string
	LoadDir          string
	Inputs           []string
}

// ParseFlags reads args (without the program name). Long flags win over their aliases.
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("apiextract", flag.ContinueOnError)
	fs.SetOutput(output)

	globalConfigFile := fs.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	modeFlag := fs.String("mode", "", "Mode to run the tool: extract, inspect or suggest (default extract)")
	modeFlagAlias := fs.String("m", "", "Alias for -mode")

	pathFlag := fs.String("path", "", "Path expression selecting the records to export (dotted path or jq)")
	pathFlagAlias := fs.String("p", "", "Alias for -path")

	searchFlag := fs.String("search", "", "Only keep responses whose URL, host or page contains this text")
	searchFlagAlias := fs.String("s", "", "Alias for -search")

	pagesFlag := fs.String("pages", "", "Comma separated page ids; responses of other pages are dropped")
	sortFlag := fs.String("sort", "", "Response order: default, size-desc, size-asc, path, domain or time")

	outputDir := fs.String("output", "", "CSV output directory (overrides export_config.output_dir)")
	outputDirAlias := fs.String("o", "", "Alias for -output")

	snapshotDir := fs.String("snapshot", "", "Write the processed responses and pages to this Parquet snapshot directory ('auto' for the storage base path)")
	loadDir := fs.String("load", "", "Read responses and pages from this Parquet snapshot directory instead of archives")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	flags := AppFlags{
		GlobalConfigFile: firstSet(*globalConfigFile, *globalConfigFileAlias),
		Mode:             strings.ToLower(firstSet(*modeFlag, *modeFlagAlias)),
		Path:             firstSet(*pathFlag, *pathFlagAlias),
		Search:           firstSet(*searchFlag, *searchFlagAlias),
		PageIDs:          splitList(*pagesFlag),
		Sort:             *sortFlag,
		OutputDir:        firstSet(*outputDir, *outputDirAlias),
		SnapshotDir:      *snapshotDir,
		LoadDir:          *loadDir,
		Inputs:           fs.Args(),
	}

	if flags.Mode == "" {
		flags.Mode = ModeExtract
	}
	switch flags.Mode {
	case ModeExtract, ModeInspect, ModeSuggest:
	default:
		return AppFlags{}, errors.New("-mode must be extract, inspect or suggest")
	}

	if flags.LoadDir == "" && len(flags.Inputs) == 0 {
		return AppFlags{}, errors.New("no archives given (pass .warc/.warc.gz/.wacz files or -load)")
	}

	return flags, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
