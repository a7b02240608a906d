package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tabserve/tabserve/internal/logger"
	"github.com/tabserve/tabserve/pkg/config"
	"github.com/tabserve/tabserve/pkg/corpus"
	"github.com/tabserve/tabserve/pkg/query"
)

// Server handles the IPC for corpus queries. It owns no query state: every
// request is answered by pure calls into pkg/query against the read-only
// table, so requests from a pipelining client never interfere. The only
// mutation it performs is persisting config ops to configPath.
type Server struct {
	table      *corpus.Table
	cfg        *config.Config
	configPath string
	dec        *msgpack.Decoder
	enc        *msgpack.Encoder
	log        *log.Logger
}

// NewServer creates a new query server using stdin/stdout for IPC.
// Config ops are saved to configPath.
func NewServer(table *corpus.Table, cfg *config.Config, configPath string) *Server {
	return &Server{
		table:      table,
		cfg:        cfg,
		configPath: configPath,
		dec:        msgpack.NewDecoder(os.Stdin),
		enc:        msgpack.NewEncoder(os.Stdout),
		log:        logger.NewWithConfig("ipc", log.GetLevel(), false, false, log.TextFormatter),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	s.log.Debug("Starting Server.")

	// Signal that the server is ready
	s.send(map[string]string{"status": "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one decoded request
func (s *Server) handleRequest(req Request) {
	switch req.Op {
	case OpSearch:
		s.handleSearch(req, false)
	case OpPrefix:
		s.handleSearch(req, true)
	case OpRank:
		s.handleRank(req)
	case OpHealth:
		s.handleHealth(req)
	case OpConfig:
		s.handleConfig(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

// send marshals the given response and writes it as one frame.
func (s *Server) send(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response frame
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

// errQueryTooLong rejects oversized query payloads before any scan runs.
var errQueryTooLong = errors.New("query too long")

// sendQueryError maps engine failures onto wire codes.
func (s *Server) sendQueryError(id string, err error) {
	code := 500
	switch {
	case errors.Is(err, corpus.ErrUnknownColumn):
		code = 404
	case errors.Is(err, query.ErrInvalidCutoff), errors.Is(err, errQueryTooLong):
		code = 400
	}
	s.log.Debugf("Request %s failed: %v", id, err)
	s.sendError(id, err.Error(), code)
}

// runSearch resolves request defaults and executes the filter step shared
// by search, prefix and rank ops.
func (s *Server) runSearch(req Request, byPrefix bool) (*corpus.ResultSet, error) {
	if max := s.cfg.Search.MaxQueryLen; max > 0 && len(req.Query) > max {
		return nil, fmt.Errorf("%w: exceeds maximum length of %d bytes", errQueryTooLong, max)
	}

	column := req.Column
	if column == "" {
		column = s.cfg.Search.Column
	}

	if byPrefix {
		return query.MatchPrefix(s.table, column, req.Query)
	}
	return query.Search(s.table, column, req.Query)
}

// handleSearch answers search and prefix ops with the total match count and
// the first Limit rows. Note the empty query is legal and matches all rows.
func (s *Server) handleSearch(req Request, byPrefix bool) {
	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.Server.DefaultLimit
	}
	if max := s.cfg.Server.MaxLimit; max > 0 && limit > max {
		limit = max
	}

	start := time.Now()
	rs, err := s.runSearch(req, byPrefix)
	if err != nil {
		s.sendQueryError(req.ID, err)
		return
	}
	elapsed := time.Since(start)

	s.send(SearchResponse{
		ID:        req.ID,
		Rows:      rs.Head(limit),
		Total:     rs.Len(),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleRank answers rank ops: filter, then top-N aggregate the grouping
// column of the filtered rows.
func (s *Server) handleRank(req Request) {
	group := req.Group
	if group == "" {
		group = s.cfg.Rank.GroupColumn
	}
	n := req.TopN
	if n == 0 {
		n = s.cfg.Rank.DefaultTopN
	}

	start := time.Now()
	rs, err := s.runSearch(req, false)
	if err != nil {
		s.sendQueryError(req.ID, err)
		return
	}

	entries, err := query.TopN(rs, group, n)
	if err != nil {
		s.sendQueryError(req.ID, err)
		return
	}
	elapsed := time.Since(start)

	wire := make([]RankedGroup, len(entries))
	for i, e := range entries {
		wire[i] = RankedGroup{Group: e.Group, Count: e.Count, Rank: e.Rank}
	}

	s.send(RankResponse{
		ID:        req.ID,
		Entries:   wire,
		Total:     rs.Len(),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleConfig adjusts serving limits at runtime and persists them to the
// active config file. Zero-valued fields leave their setting unchanged;
// negative values are rejected before anything is written.
func (s *Server) handleConfig(req Request) {
	if req.Limit < 0 || req.MaxLimit < 0 || req.TopN < 0 {
		s.send(ConfigResponse{ID: req.ID, Status: "error", Error: "limits must be positive"})
		return
	}

	var defaultLimit, maxLimit, topN *int
	if req.Limit > 0 {
		defaultLimit = &req.Limit
	}
	if req.MaxLimit > 0 {
		maxLimit = &req.MaxLimit
	}
	if req.TopN > 0 {
		topN = &req.TopN
	}

	if err := s.cfg.Update(s.configPath, defaultLimit, maxLimit, topN); err != nil {
		s.log.Errorf("Persisting config update: %v", err)
		s.send(ConfigResponse{ID: req.ID, Status: "error", Error: err.Error()})
		return
	}
	s.log.Debugf("Config updated: defaultLimit=%d maxLimit=%d defaultTopN=%d",
		s.cfg.Server.DefaultLimit, s.cfg.Server.MaxLimit, s.cfg.Rank.DefaultTopN)
	s.send(ConfigResponse{ID: req.ID, Status: "ok"})
}

// handleHealth reports corpus stats without running a query
func (s *Server) handleHealth(req Request) {
	s.send(HealthResponse{
		ID:      req.ID,
		Status:  "ok",
		Source:  s.table.Source(),
		Rows:    s.table.Len(),
		Columns: s.table.Columns(),
	})
}
