package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/app"
	"github.com/scc-digitalhub/custom-resource-manager/internal/service"
)

var cli struct {
	Timeout time.Duration `default:"30s" help:"Give up after this long"`

	Cluster clusterCmd `cmd:"" help:"Import the schema of every version of a live resource kind"`
	File    fileCmd    `cmd:"" help:"Import a JSON or YAML schema document for one version"`
	List    listCmd    `cmd:"" help:"Print stored schemas as YAML"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("schema-import"),
		kong.Description("Manage the schemas that guard custom resource writes"),
		kong.UsageOnError())

	var (
		schemas service.SchemaService
		logger  *zap.Logger
	)
	deps := fx.New(
		app.CommonModule,
		fx.NopLogger,
		fx.Populate(&schemas, &logger),
	)
	if err := deps.Err(); err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()

	if err := deps.Start(ctx); err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	runErr := kctx.Run(&commandContext{
		ctx:     ctx,
		schemas: schemas,
		logger:  logger,
		out:     os.Stdout,
	})

	if err := deps.Stop(context.Background()); err != nil {
		logger.Warn("Failed to stop cleanly", zap.Error(err))
	}
	kctx.FatalIfErrorf(runErr)
}
