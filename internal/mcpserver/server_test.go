package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/localref/internal/insertsvc"
	"github.com/starford/localref/internal/linkgen"
	"github.com/starford/localref/internal/storage"
	"github.com/starford/localref/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider, string) {
	t.Helper()

	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)

	svc := insertsvc.NewService(store, linkgen.New(linkgen.Options{}, store),
		insertsvc.WithHistory(db),
		insertsvc.WithLogger(testutil.Logger()),
	)
	srcDir := t.TempDir()
	srv := New(Deps{
		Service:    svc,
		Store:      store,
		History:    db,
		DefaultDir: func() string { return srcDir },
	}, "test")
	return srv, store, srcDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "insert_local_file":
		result, err = srv.insertLocalFile(ctx, req)
	case "insert_data":
		result, err = srv.insertData(ctx, req)
	case "classify_file":
		result, err = srv.classifyFile(ctx, req)
	case "list_insertions":
		result, err = srv.listInsertions(ctx, req)
	case "list_references":
		result, err = srv.listReferences(ctx, req)
	case "get_reference_format":
		result, err = srv.getReferenceFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestInsertLocalFile(t *testing.T) {
	srv, store, srcDir := testServer(t)
	testutil.WriteSource(t, srcDir, "scan.PDF", "%PDF")
	_ = store.Write("day.md", []byte("Notes\n"))

	r := callTool(t, srv, "insert_local_file", map[string]any{
		"path":     "scan.PDF",
		"document": "day.md",
	})
	if r.IsError {
		t.Fatalf("insert failed: %s", resultText(r))
	}
	var res insertsvc.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Reference != "![[scan.PDF]]" {
		t.Errorf("reference = %q", res.Reference)
	}

	doc, _ := store.Read("day.md")
	if string(doc) != "Notes\n![[scan.PDF]]" {
		t.Errorf("document = %q", doc)
	}

	r = callTool(t, srv, "list_insertions", map[string]any{"document": "day.md"})
	if !strings.Contains(resultText(r), `"total": 1`) {
		t.Errorf("list = %s", resultText(r))
	}
}

func TestInsertLocalFileMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "insert_local_file", map[string]any{"path": "nope.png", "document": "day.md"})
	if !r.IsError {
		t.Error("expected error for missing file")
	}
	if !strings.HasPrefix(resultText(r), "Error inserting file: ") {
		t.Errorf("text = %q", resultText(r))
	}
}

func TestInsertData(t *testing.T) {
	srv, store, _ := testServer(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	r := callTool(t, srv, "insert_data", map[string]any{"data": uri, "apply": false})
	if r.IsError {
		t.Fatalf("insert_data failed: %s", resultText(r))
	}
	var res insertsvc.Result
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if !strings.HasSuffix(res.Destination.Path, ".png") || !res.Embedded {
		t.Errorf("result = %+v", res)
	}
	data, err := store.Read(res.Destination.Path)
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("stored = %q, %v", data, err)
	}
}

func TestDecodeData(t *testing.T) {
	if _, _, err := decodeData("data:text/plain,hello"); err == nil {
		t.Error("non-base64 data URI should fail")
	}
	data, ext, err := decodeData(base64.RawStdEncoding.EncodeToString([]byte("hi")))
	if err != nil || string(data) != "hi" || ext != "" {
		t.Errorf("bare base64 = %q %q %v", data, ext, err)
	}
}

func TestClassifyFile(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "classify_file", map[string]any{"name": "clip.MKV"})
	if !strings.Contains(resultText(r), `"class": "embeddable"`) {
		t.Errorf("classify = %s", resultText(r))
	}
}

func TestListReferences(t *testing.T) {
	srv, store, _ := testServer(t)
	_ = store.Write("day.md", []byte("[[gone.pdf]]"))
	r := callTool(t, srv, "list_references", map[string]any{"document": "day.md"})
	if !strings.Contains(resultText(r), `"gone.pdf"`) {
		t.Errorf("references = %s", resultText(r))
	}
	r = callTool(t, srv, "list_references", map[string]any{"document": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestReferenceFormatContract(t *testing.T) {
	text := ReferenceFormatContract()
	if strings.Contains(text, "{{EXTENSIONS}}") || !strings.Contains(text, "3gp, bmp") {
		t.Errorf("contract extensions not rendered")
	}
}
