/*
Package main implements the tabular search server and CLI [DBG] application.

TabServe loads a tab-separated corpus of bibliographic records into an
immutable in-memory table, then serves case-insensitive substring searches
over one column and ranked top-N frequency aggregations over a grouping
column of the filtered rows. It can operate as a MessagePack IPC server for
integration with dashboards and editors, or as a CLI application for
testing and debugging.

The corpus is parsed exactly once per path; repeated loads return the same
cached table. Searches and aggregations are pure reads and safe to issue
concurrently against the loaded table.

# Usage

Start the server with default settings:

	tabserve

Use a custom corpus and enable debug mode:

	tabserve -data /path/to/export.tsv -skip 33 -d

Run in CLI mode for interactive searching:

	tabserve -c -col title_e -group journal -n 10

The corpus file is delimited text with tab separators. A fixed number of
leading lines (-skip) is discarded before the header row; the header names
the columns and all following lines are data rows. Short rows are padded
with empty fields so every row has every column.

# Configuration

Runtime configuration is managed through a TOML file covering the corpus
shape, search defaults and serving limits:

	[corpus]
	path = "litcovid.export.all.tsv"
	header_skip_rows = 33

	[search]
	column = "title_e"
	max_query_len = 256

	[rank]
	group_column = "journal"
	default_top_n = 10

	[server]
	default_limit = 10
	max_limit = 64

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Each request is
one frame with an op field; see pkg/server for the full message reference.

Send a search request:

	{"id": "req1", "op": "search", "q": "covid", "l": 10}

Receive the match count and leading rows:

	{"id": "req1", "rows": [...], "total": 2841, "t": 912}

Rank requests aggregate the filtered rows into the top-N most frequent
values of a grouping column:

	{"id": "req2", "op": "rank", "q": "covid", "g": "journal", "n": 10}

# Command Line Flags

The following flags control application behavior:

	-data string
	    Path to the corpus TSV (default from config)
	-skip int
	    Leading lines to discard before the header row
	-config string
	    Custom config file path
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-col string
	    Column to search (default from config)
	-group string
	    Column to rank in CLI mode (default from config)
	-limit int
	    Rows to preview per search in CLI mode
	-n int
	    Top-N cutoff for the group ranking in CLI mode

The application resolves corpus and config paths relative to the working
directory, the executable location and the user config dir, supporting both
development and production deployments.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tabserve/tabserve/internal/cli"
	"github.com/tabserve/tabserve/internal/utils"
	"github.com/tabserve/tabserve/pkg/config"
	"github.com/tabserve/tabserve/pkg/corpus"
	"github.com/tabserve/tabserve/pkg/server"
)

const (
	Version = "0.3.0-beta"
	AppName = "tabserve"
	gh      = "https://github.com/tabserve/tabserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	corpusPath := flag.String("data", "", "Path to the corpus TSV file (overrides config)")
	skipRows := flag.Int("skip", -1, "Leading lines to discard before the header row (overrides config)")
	configPath := flag.String("config", "", "Custom config file path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	searchCol := flag.String("col", "", "Column to search (overrides config)")
	groupCol := flag.String("group", "", "Column to rank in CLI mode (overrides config)")
	previewRows := flag.Int("limit", defaults.Server.DefaultLimit, "Rows to preview per search in CLI mode")
	topN := flag.Int("n", defaults.Rank.DefaultTopN, "Top-N cutoff for the group ranking in CLI mode")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["version"] = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ TabServe ] Serves really fast corpus searches!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activeConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfigPath))

	// Flags override config
	if *corpusPath != "" {
		appConfig.Corpus.Path = *corpusPath
	}
	if *skipRows >= 0 {
		appConfig.Corpus.HeaderSkipRows = *skipRows
	}
	if *searchCol != "" {
		appConfig.Search.Column = *searchCol
	}
	if *groupCol != "" {
		appConfig.Rank.GroupColumn = *groupCol
	}

	// Initialize path resolver for robust path handling
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	resolvedPath, err := pathResolver.GetCorpusPath(appConfig.Corpus.Path)
	if err != nil {
		log.Fatalf("Failed to resolve corpus path: (%v)", err)
	}

	log.Debugf("Using corpus at: %s", resolvedPath)
	log.Debugf("Init loader: headerSkipRows=[%d]", appConfig.Corpus.HeaderSkipRows)

	table, err := corpus.Load(resolvedPath, appConfig.Corpus.HeaderSkipRows)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	log.Debugf("Corpus loaded: %d rows, %d columns", table.Len(), len(table.Columns()))

	if !table.HasColumn(appConfig.Search.Column) {
		log.Fatalf("Search column %q not in corpus schema %v", appConfig.Search.Column, table.Columns())
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"searchCol", appConfig.Search.Column,
			"groupCol", appConfig.Rank.GroupColumn,
			"previewRows", *previewRows,
			"topN", *topN)

		inputHandler := cli.NewInputHandler(table,
			appConfig.Search.Column, appConfig.Rank.GroupColumn,
			*previewRows, *topN, appConfig.Search.MaxQueryLen)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	// Runtime config ops write back to disk, so the server needs a path in
	// a writable location, not just wherever the config was read from.
	updatePath := *configPath
	if updatePath == "" {
		updatePath, err = pathResolver.GetConfigPath("config.toml")
		if err != nil {
			log.Fatalf("Failed to determine config path: (%v)", err)
		}
	}
	log.Debugf("Config updates persist to: (%s)", updatePath)
	srv := server.NewServer(table, appConfig, updatePath)

	showStartupInfo(resolvedPath, table.Len())

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(corpusPath string, rows int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, " TabServe ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("corpus: ( %s ) rows: %d", corpusPath, rows)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
