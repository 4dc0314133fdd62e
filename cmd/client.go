package cmd

import (
	"fmt"
	"io"

	"s3-client/core/config"
	"s3-client/core/logger"
	"s3-client/core/objectstore"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newClient loads the configuration and builds the logger and the object store client.
func newClient(cmd *cobra.Command) (*objectstore.Client, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := objectstore.NewFromConfig(cmd.Context(), cfg.Storage, objectstore.WithLogger(logg))
	if err != nil {
		return nil, nil, err
	}
	return client, logg, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
