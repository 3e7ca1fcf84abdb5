package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/collabgate/internal/audit"
	"github.com/ppiankov/collabgate/internal/enforce"
	"github.com/ppiankov/collabgate/internal/model"
	"github.com/ppiankov/collabgate/internal/proposal"
	"github.com/ppiankov/collabgate/internal/trust"
)

// resolvedProposalTTL is how long approved/rejected proposals are kept
// before server startup sweeps them.
const resolvedProposalTTL = 30 * 24 * time.Hour

// Config holds MCP server configuration.
type Config struct {
	PolicyPath   string
	Root         string
	AuditLogPath string
	Agent        string
}

// Server exposes trust resolution over MCP so coding agents can query
// and respect region trust before editing.
type Server struct {
	mcpServer *mcpsdk.Server
	proposals *proposal.Store
	auditLog  *audit.Log
	cfg       Config
}

// New creates an MCP server with its proposal store and optional audit log.
// Policy is re-read on every call so edits to policy.yaml take effect
// without a restart.
func New(cfg Config) (*Server, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.PolicyPath == "" {
		cfg.PolicyPath = trust.DefaultConfigPath(cfg.Root)
	}

	store, err := proposal.NewStore(proposal.DefaultDir(cfg.Root))
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal store: %w", err)
	}
	_ = store.Cleanup(resolvedProposalTTL)

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	s := &Server{
		proposals: store,
		auditLog:  auditLog,
		cfg:       cfg,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "collabgate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// loadPolicy reads the policy file fresh. A missing file falls back to
// defaults; a malformed one surfaces as a tool error.
func (s *Server) loadPolicy() (*trust.Config, string, error) {
	return trust.LoadConfigWithHash(s.cfg.PolicyPath)
}

func (s *Server) recordAudit(d model.TrustDecision, file string, lineStart, lineEnd int, policyHash string) {
	if s.auditLog == nil {
		return
	}
	_ = s.auditLog.Record(audit.Entry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		File:       file,
		LineStart:  lineStart,
		LineEnd:    lineEnd,
		Level:      string(d.Level),
		Source:     string(d.Source),
		Behavior:   string(enforce.BehaviorFor(d.Level)),
		Reason:     d.Reason,
		Agent:      s.cfg.Agent,
		PolicyHash: policyHash,
	})
}

// registerTools adds all collabgate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "collab_check",
		Description: "Resolve the trust level for a file or line range before editing. Returns the decision, its source tier, and the enforcement behavior.",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "collab_annotations",
		Description: "List @collab annotations in a source file with their resolved line scopes.",
	}, s.handleAnnotations)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "collab_match",
		Description: "Test whether a path matches a policy glob pattern (dry-run for policy authoring).",
	}, s.handleMatch)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "collab_pending",
		Description: "List pending edit proposals awaiting human review.",
	}, s.handlePending)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "collab_approve",
		Description: "Approve or reject a pending edit proposal by id.",
	}, s.handleApprove)
}
