package erp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The Negobi API is inconsistent about response shapes: most endpoints wrap
// payloads in {success, data}, list endpoints sometimes return a bare array
// and sometimes a nested {data: {data: [...], totalPages, total}} page. The
// decoders below formalize that contract in one place; anything else is
// rejected as malformed instead of silently treated as an empty result.

// Envelope is the standard {success, data} wrapper used by the upstream API.
type Envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// ListPage holds one decoded page of a list endpoint.
type ListPage[T any] struct {
	Items      []T
	Total      int64
	TotalPages int

	// Paginated is false when the upstream returned a bare array,
	// which carries no page metadata and is treated as the full set.
	Paginated bool
}

type pagedData struct {
	Data       json.RawMessage `json:"data"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// DecodeList decodes a list response body in any of the upstream shapes.
func DecodeList[T any](body []byte) (ListPage[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ListPage[T]{}, fmt.Errorf("erp: empty list response")
	}

	// Bare array: the endpoint ignored pagination and returned everything.
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return ListPage[T]{}, fmt.Errorf("erp: malformed list response: %w", err)
		}
		return ListPage[T]{Items: items, Total: int64(len(items))}, nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return ListPage[T]{}, fmt.Errorf("erp: malformed list envelope: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return ListPage[T]{}, fmt.Errorf("erp: upstream reported failure: %s", env.Message)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ListPage[T]{}, fmt.Errorf("erp: list response has no data")
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return ListPage[T]{}, fmt.Errorf("erp: malformed list data: %w", err)
		}
		return ListPage[T]{Items: items, Total: int64(len(items))}, nil
	}

	var page pagedData
	if err := json.Unmarshal(data, &page); err != nil {
		return ListPage[T]{}, fmt.Errorf("erp: malformed paginated data: %w", err)
	}
	var items []T
	if len(page.Data) > 0 && !bytes.Equal(bytes.TrimSpace(page.Data), []byte("null")) {
		if err := json.Unmarshal(page.Data, &items); err != nil {
			return ListPage[T]{}, fmt.Errorf("erp: malformed page items: %w", err)
		}
	}
	total := page.Total
	if total == 0 {
		total = int64(len(items))
	}
	return ListPage[T]{Items: items, Total: total, TotalPages: page.TotalPages, Paginated: true}, nil
}

// DecodeOne decodes a single-object response body, enveloped or bare.
func DecodeOne[T any](body []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return out, fmt.Errorf("erp: empty response")
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err == nil && env.Data != nil {
		if env.Success != nil && !*env.Success {
			return out, fmt.Errorf("erp: upstream reported failure: %s", env.Message)
		}
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return out, fmt.Errorf("erp: malformed response data: %w", err)
		}
		return out, nil
	}

	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("erp: malformed response: %w", err)
	}
	return out, nil
}
