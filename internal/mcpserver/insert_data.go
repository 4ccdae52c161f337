package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const maxDataSize = 10 << 20 // 10 MB

var mimeToExt = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/bmp":       ".bmp",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"audio/mpeg":      ".mp3",
	"audio/wav":       ".wav",
	"audio/ogg":       ".ogg",
	"audio/flac":      ".flac",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
	"text/markdown":   ".md",
}

func (s *Server) insertData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, ext, err := decodeData(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxDataSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxDataSize)), nil
	}

	filename := req.GetString("filename", "")
	if filename == "" {
		if ext == "" {
			ext = ".bin"
		}
		filename = uuid.New().String() + ext
	}

	document := req.GetString("document", "")
	res, err := s.deps.Service.InsertData(ctx, filename, data, document, s.sink(document, req.GetBool("apply", true)))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error inserting file: %v", err)), nil
	}
	return jsonResult(res)
}

// decodeData accepts a data:[<mediatype>];base64,<data> URI or bare base64.
// The returned extension comes from the URI media type and may be empty.
func decodeData(raw string) ([]byte, string, error) {
	encoded, ext := raw, ""
	if rest, ok := strings.CutPrefix(raw, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
		}
		if !strings.Contains(meta, ";base64") {
			return nil, "", fmt.Errorf("only base64 data URIs are supported")
		}
		mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
		encoded, ext = payload, mimeToExt[mime]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, ext, nil
}
