package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/collabgate/internal/annotation"
	"github.com/ppiankov/collabgate/internal/enforce"
	"github.com/ppiankov/collabgate/internal/model"
	"github.com/ppiankov/collabgate/internal/pattern"
	"github.com/ppiankov/collabgate/internal/proposal"
	"github.com/ppiankov/collabgate/internal/trust"
)

// --- Input/Output types ---

// CheckInput defines parameters for the collab_check tool.
type CheckInput struct {
	File      string `json:"file" jsonschema:"project-relative path of the file to check"`
	LineStart int    `json:"line_start,omitempty" jsonschema:"first line of the region (1-indexed), omit for file-level"`
	LineEnd   int    `json:"line_end,omitempty" jsonschema:"last line of the region (inclusive), defaults to line_start"`
}

// CheckOutput contains the resolved trust decision.
type CheckOutput struct {
	Level       string   `json:"level"`
	Source      string   `json:"source"`
	Behavior    string   `json:"behavior"`
	Reason      string   `json:"reason"`
	Owner       string   `json:"owner,omitempty"`
	Intent      string   `json:"intent,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
	PolicyHash  string   `json:"policy_hash,omitempty"`
}

// AnnotationsInput defines parameters for the collab_annotations tool.
type AnnotationsInput struct {
	File string `json:"file" jsonschema:"project-relative path of the source file"`
}

// AnnotationsOutput lists the file's parsed annotations.
type AnnotationsOutput struct {
	File        string                   `json:"file"`
	Annotations []model.ParsedAnnotation `json:"annotations"`
}

// MatchInput defines parameters for the collab_match tool.
type MatchInput struct {
	Path    string `json:"path" jsonschema:"path to test"`
	Pattern string `json:"pattern" jsonschema:"glob pattern (** crosses directories, * stays within one)"`
}

// MatchOutput reports the match result.
type MatchOutput struct {
	Matched bool `json:"matched"`
}

// PendingInput is empty, no parameters needed.
type PendingInput struct{}

// PendingOutput lists pending proposals.
type PendingOutput struct {
	Proposals []PendingItem `json:"proposals"`
}

// PendingItem describes a single pending edit proposal.
type PendingItem struct {
	ID        string `json:"id"`
	File      string `json:"file"`
	LineStart int    `json:"line_start,omitempty"`
	LineEnd   int    `json:"line_end,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Agent     string `json:"agent,omitempty"`
	Owner     string `json:"owner,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ApproveInput defines parameters for the collab_approve tool.
type ApproveInput struct {
	ID       string `json:"id" jsonschema:"proposal id from collab_pending"`
	Decision string `json:"decision,omitempty" jsonschema:"approve or reject, defaults to approve"`
}

// ApproveOutput confirms the transition.
type ApproveOutput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// --- Handlers ---

// relativize maps absolute paths under the configured root to
// project-relative form so policy patterns written against the project
// layout engage.
func (s *Server) relativize(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// diskPath returns the filesystem location for a project-relative path.
func (s *Server) diskPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
}

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	if input.File == "" {
		return nil, CheckOutput{}, fmt.Errorf("file is required")
	}

	cfg, hash, err := s.loadPolicy()
	if err != nil {
		return nil, CheckOutput{}, fmt.Errorf("load policy: %w", err)
	}

	rel := s.relativize(input.File)
	d := trust.ResolveIn(cfg, s.cfg.Root, rel, input.LineStart, input.LineEnd)
	s.recordAudit(d, rel, input.LineStart, input.LineEnd, hash)

	return nil, CheckOutput{
		Level:       string(d.Level),
		Source:      string(d.Source),
		Behavior:    string(enforce.BehaviorFor(d.Level)),
		Reason:      d.Reason,
		Owner:       d.Owner,
		Intent:      d.Intent,
		Constraints: d.Constraints,
		PolicyHash:  hash,
	}, nil
}

func (s *Server) handleAnnotations(ctx context.Context, req *mcpsdk.CallToolRequest, input AnnotationsInput) (*mcpsdk.CallToolResult, AnnotationsOutput, error) {
	if input.File == "" {
		return nil, AnnotationsOutput{}, fmt.Errorf("file is required")
	}
	rel := s.relativize(input.File)
	anns := annotation.ParseFile(s.diskPath(rel))
	if anns == nil {
		anns = []model.ParsedAnnotation{}
	}
	return nil, AnnotationsOutput{File: rel, Annotations: anns}, nil
}

func (s *Server) handleMatch(ctx context.Context, req *mcpsdk.CallToolRequest, input MatchInput) (*mcpsdk.CallToolResult, MatchOutput, error) {
	if input.Pattern == "" {
		return nil, MatchOutput{}, fmt.Errorf("pattern is required")
	}
	return nil, MatchOutput{Matched: pattern.Matches(input.Path, input.Pattern)}, nil
}

func (s *Server) handlePending(ctx context.Context, req *mcpsdk.CallToolRequest, input PendingInput) (*mcpsdk.CallToolResult, PendingOutput, error) {
	pending, err := s.proposals.List(proposal.StatusPending)
	if err != nil {
		return nil, PendingOutput{}, fmt.Errorf("list proposals: %w", err)
	}

	out := PendingOutput{Proposals: []PendingItem{}}
	for _, p := range pending {
		out.Proposals = append(out.Proposals, PendingItem{
			ID:        p.ID,
			File:      p.File,
			LineStart: p.LineStart,
			LineEnd:   p.LineEnd,
			Summary:   p.Summary,
			Agent:     p.Agent,
			Owner:     p.Owner,
			CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return nil, out, nil
}

func (s *Server) handleApprove(ctx context.Context, req *mcpsdk.CallToolRequest, input ApproveInput) (*mcpsdk.CallToolResult, ApproveOutput, error) {
	if input.ID == "" {
		return nil, ApproveOutput{}, fmt.Errorf("id is required")
	}

	decision := input.Decision
	if decision == "" {
		decision = "approve"
	}

	switch decision {
	case "approve":
		if err := s.proposals.Approve(input.ID); err != nil {
			return &mcpsdk.CallToolResult{IsError: true}, ApproveOutput{}, fmt.Errorf("approve %s: %w", input.ID, err)
		}
		return nil, ApproveOutput{ID: input.ID, Status: string(proposal.StatusApproved)}, nil
	case "reject":
		if err := s.proposals.Reject(input.ID); err != nil {
			return &mcpsdk.CallToolResult{IsError: true}, ApproveOutput{}, fmt.Errorf("reject %s: %w", input.ID, err)
		}
		return nil, ApproveOutput{ID: input.ID, Status: string(proposal.StatusRejected)}, nil
	default:
		return nil, ApproveOutput{}, fmt.Errorf("decision must be approve or reject, got %q", decision)
	}
}
