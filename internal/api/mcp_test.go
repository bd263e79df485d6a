package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fayzullaev/resumebot/internal/retrieval"
)

type fakeSearchSource struct {
	results []retrieval.Result
	err     error
}

func (f *fakeSearchSource) Add(ctx context.Context, frags []retrieval.Fragment) error { return nil }

func (f *fakeSearchSource) Query(ctx context.Context, text string, k int) ([]retrieval.Result, error) {
	return f.results, f.err
}

func (f *fakeSearchSource) Count(ctx context.Context) (int, error) { return len(f.results), nil }

func makeToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("result has %d content blocks", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestMCPRecallMergesCollections(t *testing.T) {
	deps := MCPDeps{
		Memory: fakeMemory{},
		CV:     &fakeSearchSource{results: []retrieval.Result{{Text: "факт из CV", Score: 0.8}}},
		KB:     &fakeSearchSource{results: []retrieval.Result{{Text: "факт из документов", Score: 0.5}}},
	}

	res, err := mcpRecall(deps)(context.Background(), makeToolRequest("recall", map[string]any{"query": "опыт"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("recall errored: %s", resultText(t, res))
	}

	var hits []struct {
		Collection string  `json:"collection"`
		Text       string  `json:"text"`
		Score      float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[0].Collection != "cv" || hits[1].Collection != "kb" {
		t.Errorf("collection order: %+v", hits)
	}
}

func TestMCPRecallRequiresQuery(t *testing.T) {
	deps := MCPDeps{CV: &fakeSearchSource{}, KB: &fakeSearchSource{}}

	res, err := mcpRecall(deps)(context.Background(), makeToolRequest("recall", map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("missing query should be a tool error")
	}
}

func TestMCPRecallReportsSourceFailure(t *testing.T) {
	deps := MCPDeps{
		CV: &fakeSearchSource{err: errors.New("store closed")},
		KB: &fakeSearchSource{},
	}

	res, err := mcpRecall(deps)(context.Background(), makeToolRequest("recall", map[string]any{"query": "q"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "store closed") {
		t.Errorf("result = %+v", res)
	}
}

func TestMCPRecallEmpty(t *testing.T) {
	deps := MCPDeps{CV: &fakeSearchSource{}, KB: &fakeSearchSource{}}

	res, err := mcpRecall(deps)(context.Background(), makeToolRequest("recall", map[string]any{"query": "q"}))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); got != "[]" {
		t.Errorf("empty recall = %q", got)
	}
}

func TestMCPDiagnostics(t *testing.T) {
	deps := MCPDeps{Memory: fakeMemory{}}

	res, err := mcpDiagnostics(deps)(context.Background(), makeToolRequest("diagnostics", nil))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); got != "всё в порядке" {
		t.Errorf("diagnostics = %q", got)
	}
}
