// Package engine implements the OAI-PMH ProtocolEngine: verb dispatch,
// argument validation, resumption-token handling, and the six request
// handlers (spec §4.5).
package engine

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/turahe/kuha-go/config"
	"github.com/turahe/kuha-go/internal/tokencodec"
)

// Request is one OAI-PMH HTTP request, with Params holding every
// occurrence of every query/form parameter so the common argument
// checker can detect illegal repetition.
type Request struct {
	Verb   string
	Params map[string][]string
}

// Param returns the single value of name, or ("", false) if it is
// absent. Callers must run checkParams first to guarantee it is not
// repeated.
func (r Request) Param(name string) (string, bool) {
	values, ok := r.Params[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Response is the verb-agnostic envelope the engine returns; the HTTP
// layer renders it to the OAI-PMH XML schema.
type Response struct {
	ResponseTime time.Time
	RequestVerb  string
	RequestArgs  map[string]string

	Identify            *IdentifyResult
	MetadataFormats     []MetadataFormat
	Sets                []SetResult
	Record              *RecordResult
	Records         []RecordResult
	Headers         []HeaderResult
	ResumptionToken *string
}

type IdentifyResult struct {
	RepositoryName         string
	AdminEmails            []string
	EarliestDatestamp      time.Time
	DeletedRecordPolicy    string
	ProtocolVersion        string
	RepositoryDescriptions []string
}

type MetadataFormat struct {
	Prefix    string
	Namespace string
	Schema    string
}

type SetResult struct {
	Spec string
	Name string
}

type HeaderResult struct {
	Identifier string
	Datestamp  time.Time
	SetSpecs   []string
	Deleted    bool
}

type RecordResult struct {
	Header HeaderResult
	XML    string
}

// Engine wires the connection pool, optional Redis cache, config, and
// token codec together to serve requests. A new read-only Store
// transaction is opened per request (spec §4.5 ordering rule) via
// store.BeginReadOnlyTx.
type Engine struct {
	pool        *pgxpool.Pool
	redisClient redis.Cmdable
	cfg         *config.Config
	tokens      *tokencodec.Codec
}

func New(pool *pgxpool.Pool, redisClient redis.Cmdable, cfg *config.Config, tokens *tokencodec.Codec) *Engine {
	return &Engine{pool: pool, redisClient: redisClient, cfg: cfg, tokens: tokens}
}
