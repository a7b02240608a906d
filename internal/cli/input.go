// Package cli handles cmd line input and renders search results for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tabserve/tabserve/internal/logger"
	"github.com/tabserve/tabserve/internal/utils"
	"github.com/tabserve/tabserve/pkg/corpus"
	"github.com/tabserve/tabserve/pkg/query"
)

// InputHandler processes search terms from stdin against a loaded corpus.
// Each line is run as a case-insensitive substring search over the search
// column; the handler prints the match count, a preview of the leading
// rows, and the top-N ranking of the grouping column.
type InputHandler struct {
	table        *corpus.Table
	searchColumn string
	groupColumn  string
	previewRows  int
	topN         int
	maxQueryLen  int
	requestCount int
	log          *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(table *corpus.Table, searchColumn, groupColumn string, previewRows, topN, maxQueryLen int) *InputHandler {
	return &InputHandler{
		table:        table,
		searchColumn: searchColumn,
		groupColumn:  groupColumn,
		previewRows:  previewRows,
		topN:         topN,
		maxQueryLen:  maxQueryLen,
		log:          logger.New("tabserve"),
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed query to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin.
func (h *InputHandler) Start() error {
	h.log.Printf("TabServe CLI — corpus %s (%s rows)",
		h.table.Source(), utils.FormatWithCommas(h.table.Len()))
	reader := bufio.NewReader(os.Stdin)
	h.log.Print("type a search term and press Enter (empty line matches everything, Ctrl+C to exit):")

	for {
		h.log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		h.handleInput(strings.TrimRight(line, "\r\n"))
	}
}

// handleInput runs a single search term through the engine and prints the
// match count, row preview and group ranking.
func (h *InputHandler) handleInput(term string) {
	h.requestCount++

	if len(term) > h.maxQueryLen {
		h.log.Errorf("Query too long: %d bytes (max %d)", len(term), h.maxQueryLen)
		return
	}

	start := time.Now()
	rs, err := query.Search(h.table, h.searchColumn, term)
	if err != nil {
		h.log.Errorf("Search failed: %v", err)
		return
	}
	elapsed := time.Since(start)

	h.log.Printf("Search complete — %s results found in %s rows (%v)",
		utils.FormatWithCommas(rs.Len()), utils.FormatWithCommas(h.table.Len()), elapsed)

	if rs.Len() == 0 {
		return
	}

	for i, row := range rs.Head(h.previewRows) {
		clValue := fmt.Sprintf("\033[38;5;75m%s\033[0m", row[h.searchColumn])
		h.log.Printf("%2d. %s", i+1, clValue)
	}

	entries, err := query.TopN(rs, h.groupColumn, h.topN)
	if err != nil {
		h.log.Errorf("Ranking failed: %v", err)
		return
	}

	h.log.Printf("Top %s values by count:", h.groupColumn)
	for _, e := range entries {
		group := e.Group
		if group == "" {
			group = "(blank)"
		}
		h.log.Printf("%2d. %-48s %8s", e.Rank, group, utils.FormatWithCommas(e.Count))
	}
}
