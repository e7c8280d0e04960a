package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"
)

func runLambda(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	adapter := chiadapter.NewV2(a.router)
	a.logger.Info("starting lambda handler")
	lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := adapter.ProxyWithContextV2(ctx, req)
		if err != nil {
			a.logger.Error("lambda proxy failed",
				zap.String("path", req.RawPath),
				zap.String("requestID", req.RequestContext.RequestID),
				zap.Error(err),
			)
		}
		return resp, err
	})
	return nil
}
