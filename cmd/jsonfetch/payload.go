package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bft-labs/jsonfetch/pkg/jsonvalue"
)

// payloadFile reports the path of an @file payload source.
func payloadFile(source string) (string, bool) {
	if strings.HasPrefix(source, "@") && len(source) > 1 {
		return source[1:], true
	}
	return "", false
}

// readPayload loads a payload from inline JSON, @file or - (stdin). The
// payload is parsed up front so malformed input never reaches the server.
func readPayload(source string, stdin io.Reader) (jsonvalue.Value, error) {
	var (
		raw []byte
		err error
	)
	switch path, isFile := payloadFile(source); {
	case source == "-":
		raw, err = io.ReadAll(stdin)
		if err != nil {
			return jsonvalue.Value{}, fmt.Errorf("read stdin: %w", err)
		}
	case isFile:
		raw, err = os.ReadFile(path)
		if err != nil {
			return jsonvalue.Value{}, fmt.Errorf("read payload: %w", err)
		}
	default:
		raw = []byte(source)
	}

	v, err := jsonvalue.Parse(raw)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("invalid payload: %w", err)
	}
	return v, nil
}

func formatValue(v jsonvalue.Value, compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
