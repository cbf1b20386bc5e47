package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

// Tool names.
const (
	ToolParseRFQ      = "parse_rfq"
	ToolParseRFQBatch = "parse_rfq_batch"
)

type parseInput struct {
	Text string `json:"text" jsonschema:"Free-text RFQ message, e.g. 'Client wants to buy 10M EUR/USD 3M forward'"`
}

type parseBatchInput struct {
	Texts []string `json:"texts,omitempty" jsonschema:"RFQ messages to parse; results keep this order"`
	Text  string   `json:"text,omitempty" jsonschema:"Newline-separated RFQ messages; used when texts is empty"`
}

type batchOutput struct {
	Count   int                  `json:"count"`
	Results []*rfq.ParsedRequest `json:"results"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolParseRFQ,
		Description: "Parse a free-text trading RFQ into structured fields (direction, asset class, pair, quantity, tenor, urgency) with a confidence score",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args parseInput) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, ToolParseRFQ)
		var toolErr error
		defer func() {
			s.metrics.DecrementActive(ctx, ToolParseRFQ)
			s.metrics.RecordInvocation(ctx, ToolParseRFQ, time.Since(start), toolErr)
		}()

		parsed := s.parser.Parse(ctx, args.Text)
		s.logger.Debug(ctx, "mcp.parse_rfq",
			zap.String("rfq.id", parsed.ID),
			zap.Float64("confidence", parsed.ConfidenceScore))

		result, err := jsonResult(parsed)
		toolErr = err
		return result, nil, err
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolParseRFQBatch,
		Description: "Parse several RFQs concurrently; results are returned in input order",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args parseBatchInput) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, ToolParseRFQBatch)
		var toolErr error
		defer func() {
			s.metrics.DecrementActive(ctx, ToolParseRFQBatch)
			s.metrics.RecordInvocation(ctx, ToolParseRFQBatch, time.Since(start), toolErr)
		}()

		texts := args.Texts
		if len(texts) == 0 && args.Text != "" {
			texts = rfq.SplitLines(args.Text)
		}
		if len(texts) == 0 {
			toolErr = fmt.Errorf("%w: texts or text is required", ErrInvalidInput)
			return nil, nil, toolErr
		}
		if len(texts) > s.config.MaxBatchSize {
			toolErr = fmt.Errorf("%w: batch of %d exceeds limit of %d", ErrInvalidInput, len(texts), s.config.MaxBatchSize)
			return nil, nil, toolErr
		}

		results := s.parser.ParseBatch(ctx, texts)
		result, err := jsonResult(batchOutput{Count: len(results), Results: results})
		toolErr = err
		return result, nil, err
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
