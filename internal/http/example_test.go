package http_test

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/rfqd/internal/http"
	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

// ExampleServer demonstrates how to create and start the HTTP server.
func ExampleServer() {
	parser := rfq.NewParser()
	logger := logging.Nop()

	server, err := httpserver.NewServer(parser, logger, &httpserver.Config{
		Host:    "localhost",
		Port:    19090,
		Version: "dev",
	})
	if err != nil {
		panic(err)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Debug(context.Background(), "server stopped", zap.Error(err))
		}
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Println("shutdown error:", err)
	}

	fmt.Println("Server started and stopped successfully")
	// Output: Server started and stopped successfully
}
