package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/business/web/errs"
	"gopkg.in/yaml.v3"
)

var client = http.Client{Timeout: 10 * time.Second}

// send performs the call against the node and decodes the JSON response.
func send(method string, path string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("status %d: %s: %v", resp.StatusCode, er.Error, er.Fields)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, er.Error)
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}

// render writes the value in the requested output format.
func render(w io.Writer, v any) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case "yaml":

		// Round trip through JSON so the yaml output uses the same field
		// names and payloads print as structured data.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		var doc any
		if err := dec.Decode(&doc); err != nil {
			return err
		}

		enc := yaml.NewEncoder(w)
		defer enc.Close()
		enc.SetIndent(2)
		return enc.Encode(numbers(doc))
	}

	return fmt.Errorf("unknown output format %q", output)
}

// numbers replaces json numbers with integers where possible so timestamps
// and nonces are not printed in exponent form.
func numbers(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = numbers(e)
		}
		return v

	case []any:
		for i, e := range v {
			v[i] = numbers(e)
		}
		return v

	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	}

	return v
}
