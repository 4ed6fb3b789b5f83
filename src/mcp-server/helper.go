// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import "fmt"

// getParams extracts parameters from a JSON-RPC request.
func getParams(req map[string]any, method string) (map[string]any, error) {
	p, ok := req["params"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid %s params", method)
	}
	return p, nil
}

// getStringParam extracts a required string parameter.
func getStringParam(params map[string]any, method, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok {
		return "", fmt.Errorf("invalid %s params: missing %s", method, key)
	}
	return v, nil
}

// getMapParam extracts an optional object parameter, defaulting to empty.
func getMapParam(params map[string]any, method, key string) (map[string]any, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}
	v, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid %s params: %s is not an object", method, key)
	}
	return v, nil
}
