/*
Package server implements msgpack IPC for tabular search and aggregation.

The server speaks binary msgpack over stdin/stdout on a request response
model: clients write one encoded Request frame, the server writes one
response frame. Every message carries an ID field so clients can correlate
responses when pipelining.

A search request names an op, an optional column and a query string:

	{"id": "req_001", "op": "search", "q": "covid", "l": 10}

and comes back with the matching row count plus the first rows:

	{"id": "req_001", "rows": [...], "total": 2841, "t": 912}

Rank requests run the same substring filter, then aggregate the filtered
rows into the top-N most frequent values of a grouping column:

	{"id": "req_002", "op": "rank", "q": "covid", "g": "journal", "n": 10}
	{"id": "req_002", "e": [{"g": "Nature", "n": 120, "r": 1}, ...], "total": 2841, "t": 1044}

Prefix requests mirror search but match the beginning of the column value
and are served off the column index trie. Health requests report corpus
stats without running a query.

Config requests adjust serving limits without a restart and persist them to
the active config file (corpus shape and columns stay TOML-only):

	{"id": "req_004", "op": "config", "l": 5, "max": 32, "n": 3}
	{"id": "req_004", "status": "ok"}

When a column or parameter is invalid the server answers with an error
frame carrying an HTTP-flavored numeric code:

	{"id": "req_003", "e": "unknown column: \"missingcol\"", "c": 404}

Column and group names default to the configured corpus columns, so editor
clients usually only send the query string. An empty query string is valid
and matches every row; that mirrors the engine contract rather than being a
server convenience.
*/
package server

// Ops accepted in Request.Op.
const (
	OpSearch = "search"
	OpPrefix = "prefix"
	OpRank   = "rank"
	OpHealth = "health"
	OpConfig = "config"
)

// Request is the single inbound message shape. Fields irrelevant to the op
// stay at their zero values. For config ops Limit/MaxLimit/TopN carry the
// new serving limits; zero means leave that setting alone.
type Request struct {
	ID       string `msgpack:"id"`
	Op       string `msgpack:"op"`
	Column   string `msgpack:"col,omitempty"`
	Query    string `msgpack:"q,omitempty"`
	Group    string `msgpack:"g,omitempty"`
	Limit    int    `msgpack:"l,omitempty"`
	MaxLimit int    `msgpack:"max,omitempty"`
	TopN     int    `msgpack:"n,omitempty"`
}

// SearchResponse answers search and prefix ops. Rows holds at most Limit
// leading matches as column->value maps; Total is the full match count.
type SearchResponse struct {
	ID        string              `msgpack:"id"`
	Rows      []map[string]string `msgpack:"rows"`
	Total     int                 `msgpack:"total"`
	TimeTaken int64               `msgpack:"t"` // microseconds
}

// RankResponse answers rank ops. Total is the number of filtered rows the
// aggregation ran over, not the number of entries.
type RankResponse struct {
	ID        string        `msgpack:"id"`
	Entries   []RankedGroup `msgpack:"e"`
	Total     int           `msgpack:"total"`
	TimeTaken int64         `msgpack:"t"`
}

// RankedGroup is the wire form of one ranked aggregation entry.
type RankedGroup struct {
	Group string `msgpack:"g"`
	Count int    `msgpack:"n"`
	Rank  int    `msgpack:"r"`
}

// HealthResponse reports corpus stats.
type HealthResponse struct {
	ID      string   `msgpack:"id"`
	Status  string   `msgpack:"status"`
	Source  string   `msgpack:"source"`
	Rows    int      `msgpack:"rows"`
	Columns []string `msgpack:"columns"`
}

// ConfigResponse answers config ops.
type ConfigResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"error,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
