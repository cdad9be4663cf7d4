package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/tapevm/pkg/domain"
)

// Event is one JSON line written by the JSONHandler.
type Event struct {
	Type    string         `json:"type"` // output | input_request | system | done
	Data    string         `json:"data,omitempty"`
	Token   string         `json:"serialized_state,omitempty"`
	Outcome domain.Outcome `json:"outcome,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, text string) error {
	return h.Encoder.Encode(Event{Type: "output", Data: text})
}

// Input emits an input_request event and reads one line.
// The line may be a JSON string ("65") or raw text (65).
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := h.Encoder.Encode(Event{Type: "input_request"}); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimRight(text, "\r\n")

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}
	return text, nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: "system", Data: msg})
}

// Done emits the final event carrying the resumable token.
func (h *JSONHandler) Done(ctx context.Context, res *Result) error {
	return h.Encoder.Encode(Event{Type: "done", Token: res.Token, Outcome: res.Outcome})
}
