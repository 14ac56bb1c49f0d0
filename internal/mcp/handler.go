package mcp

import (
	"encoding/json"
	"fmt"

	"pluginops/internal/envelope"
)

// handleMessage processes an incoming MCP message and returns a response
func (s *MCPServer) handleMessage(msg *MCPMessage) *MCPMessage {
	if msg.IsResponse() {
		s.logger.Debug("Ignoring client response", "id", msg.Id)
		return nil
	}

	if msg.IsRequest() {
		return s.handleRequest(msg)
	}

	if msg.IsNotification() {
		s.handleNotification(msg)
		return nil
	}

	return NewErrorMessage(msg.Id, InvalidRequest, "Invalid message: not a request or notification", nil)
}

// handleRequest handles a JSON-RPC request
func (s *MCPServer) handleRequest(msg *MCPMessage) *MCPMessage {
	s.logger.Debug("Handling request",
		"method", msg.Method,
		"id", msg.Id,
	)

	switch msg.Method {
	case "initialize":
		return NewResultMessage(msg.Id, s.handleInitialize(paramsOrEmpty(msg)))
	case "ping":
		return NewResultMessage(msg.Id, map[string]interface{}{})
	case "tools/list":
		return NewResultMessage(msg.Id, map[string]interface{}{"tools": s.GetToolDefinitions()})
	case "tools/call":
		return s.handleCallToolRequest(msg)
	case "resources/list":
		return NewResultMessage(msg.Id, map[string]interface{}{"resources": s.GetResourceDefinitions()})
	case "resources/read":
		return s.handleReadResourceRequest(msg)
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method), nil)
	}
}

// handleNotification handles a JSON-RPC notification
func (s *MCPServer) handleNotification(msg *MCPMessage) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized")
	default:
		s.logger.Debug("Unknown notification",
			"method", msg.Method,
		)
	}
}

func paramsOrEmpty(msg *MCPMessage) map[string]interface{} {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return params
}

// handleCallToolRequest handles the tools/call request. Failures inside a tool
// are reported as an isError result carrying an error envelope; JSON-RPC errors
// are used only for malformed calls.
func (s *MCPServer) handleCallToolRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected object", nil)
	}

	toolName, ok := params["name"].(string)
	if !ok || toolName == "" {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: missing tool name", nil)
	}

	handler, exists := s.tools[toolName]
	if !exists {
		return NewErrorMessage(msg.Id, InvalidParams, fmt.Sprintf("Unknown tool: %s", toolName), nil)
	}

	toolParams, ok := params["arguments"].(map[string]interface{})
	if !ok {
		toolParams = make(map[string]interface{})
	}

	s.logger.Info("Calling tool",
		"tool", toolName,
	)

	resp, err := handler(toolParams)
	if err != nil {
		opsErr := classifyError(toolName, err)
		s.logger.Error("Tool call failed",
			"tool", toolName,
			"code", string(opsErr.Code),
			"error", err.Error(),
		)
		resp = envelope.New().Data(nil).Error(opsErr).Build()
	}

	result, err := toolResult(resp)
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}
	return NewResultMessage(msg.Id, result)
}

// toolResult wraps an envelope as MCP text content.
func toolResult(resp *envelope.Response) (map[string]interface{}, error) {
	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}

	result := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": string(jsonBytes),
			},
		},
	}
	if resp.IsError() {
		result["isError"] = true
	}
	return result, nil
}

// handleReadResourceRequest handles the resources/read request
func (s *MCPServer) handleReadResourceRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected object", nil)
	}

	uri, ok := params["uri"].(string)
	if !ok || uri == "" {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: missing uri", nil)
	}

	handler, exists := s.resources[uri]
	if !exists {
		return NewErrorMessage(msg.Id, InvalidParams, fmt.Sprintf("Unknown resource: %s", uri), nil)
	}

	s.logger.Info("Reading resource",
		"uri", uri,
	)

	data, err := handler()
	if err != nil {
		s.logger.Error("Resource read failed",
			"uri", uri,
			"error", err.Error(),
		)
		return NewErrorMessage(msg.Id, InternalError, classifyError(uri, err).Error(), nil)
	}

	text, err := json.Marshal(data)
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}

	return NewResultMessage(msg.Id, map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"uri":      uri,
				"mimeType": "application/json",
				"text":     string(text),
			},
		},
	})
}
