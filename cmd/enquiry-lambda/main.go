package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/voiceflow-enquiry/cmd/mainconfig"
	appconfig "github.com/wolfman30/voiceflow-enquiry/internal/config"
	"github.com/wolfman30/voiceflow-enquiry/internal/enquiry"
	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

// processor is the part of enquiry.Handler the Lambda adapter drives.
type processor interface {
	Process(ctx context.Context, method string, body []byte) enquiry.Response
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	dispatcher, err := mainconfig.BuildDispatcher(context.Background(), cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build dispatcher", "error", err)
		panic(err)
	}
	handler := enquiry.NewHandler(dispatcher, nil, logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, handler, evt), nil
	})
}

func handle(ctx context.Context, p processor, evt events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))

	body, err := decodeBody(evt)
	if err != nil {
		// An undecodable body is treated like an empty one and fails validation.
		body = nil
	}

	resp := p.Process(ctx, method, body)
	return toAPIGateway(resp)
}

func toAPIGateway(resp enquiry.Response) events.APIGatewayV2HTTPResponse {
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: resp.Status,
		Headers:    map[string]string{"content-type": "application/json"},
	}
	if resp.Status == http.StatusMethodNotAllowed {
		out.Headers["allow"] = http.MethodPost
	}
	data, err := json.Marshal(resp.Body)
	if err != nil {
		out.StatusCode = http.StatusInternalServerError
		out.Body = `{"error":"Internal server error"}`
		return out
	}
	out.Body = string(data)
	return out
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}
