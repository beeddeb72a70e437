package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// transcribeTimeout bounds one transcription attempt. Large audio uploads are
// slow, so the bound is much wider than for synthesis.
const transcribeTimeout = 300 * time.Second

// TranscribeRequest describes one transcription call for a whole audio file.
type TranscribeRequest struct {
	// FilePath is the audio file to upload. It is re-read on every attempt.
	FilePath string

	Model          string
	ResponseFormat string
	Language       string
	Prompt         string
	Temperature    float64
}

// Segment is one piece of segment-level metadata from a verbose response.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the parsed transcription outcome. Raw always holds the
// exact response body; the remaining fields are populated only for JSON
// response formats.
type Transcription struct {
	Raw      []byte
	Text     string
	Language string
	Duration float64
	Segments []Segment
}

// Transcribe uploads an audio file to the transcription endpoint and returns
// the parsed result.
func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (*Transcription, error) {
	body, err := c.doWithRetry(ctx, "transcription", transcribeTimeout, func(ctx context.Context) (*http.Request, error) {
		return c.buildTranscribeRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	result := &Transcription{Raw: body}
	switch req.ResponseFormat {
	case "", "json", "verbose_json":
		var payload struct {
			Text     string    `json:"text"`
			Language string    `json:"language"`
			Duration float64   `json:"duration"`
			Segments []Segment `json:"segments"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse transcription response: %w", err)
		}
		result.Text = payload.Text
		result.Language = payload.Language
		result.Duration = payload.Duration
		result.Segments = payload.Segments
	default:
		// text, srt and vtt responses are returned verbatim
		result.Text = string(body)
	}
	return result, nil
}

func (c *Client) buildTranscribeRequest(ctx context.Context, req TranscribeRequest) (*http.Request, error) {
	audio, err := os.ReadFile(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(req.FilePath))},
		"Content-Type":        {"audio/*"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	fields := map[string]string{
		"model":           req.Model,
		"response_format": req.ResponseFormat,
		"temperature":     strconv.FormatFloat(req.Temperature, 'g', -1, 64),
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	return httpReq, nil
}
