package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"
)

// speechTimeout bounds one synthesis attempt.
const speechTimeout = 60 * time.Second

// SpeechRequest describes one synthesis call for a single text chunk.
type SpeechRequest struct {
	Model          string
	Voice          string
	ResponseFormat string
	Speed          float64

	// Text is the chunk to synthesize, uploaded as a text/plain file part.
	Text string

	// Filename names the uploaded part; defaults to input.txt.
	Filename string
}

// Speech uploads a text chunk to the synthesis endpoint and returns the raw
// audio bytes in the requested format.
func (c *Client) Speech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	return c.doWithRetry(ctx, "speech", speechTimeout, func(ctx context.Context) (*http.Request, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		filename := req.Filename
		if filename == "" {
			filename = "input.txt"
		}
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)},
			"Content-Type":        {"text/plain"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.WriteString(part, req.Text); err != nil {
			return nil, fmt.Errorf("failed to write text part: %w", err)
		}

		fields := map[string]string{
			"model":           req.Model,
			"voice":           req.Voice,
			"response_format": req.ResponseFormat,
			"speed":           strconv.FormatFloat(req.Speed, 'g', -1, 64),
		}
		for name, value := range fields {
			if err := writer.WriteField(name, value); err != nil {
				return nil, fmt.Errorf("failed to write field %s: %w", name, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", &buf)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", writer.FormDataContentType())
		return httpReq, nil
	})
}
