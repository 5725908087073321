package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"usermgr/internal/config"
	"usermgr/internal/service"
	"usermgr/internal/storage"
)

func (a *app) exportUsersCmd() *cobra.Command {
	var (
		output string
		upload bool
	)
	cmd := &cobra.Command{
		Use:   "export-users",
		Short: "Export users as JSON, without passwords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var store storage.Service
			if upload {
				var err error
				if store, err = a.newStorage(ctx, a.cfg, a.logger); err != nil {
					return fmt.Errorf("setup storage: %w", err)
				}
			}

			return a.withUsers(ctx, func(users service.UserService) error {
				exports := service.NewExportService(users, store, a.cfg.Export.Bucket, a.cfg.Export.KeyPrefix)
				if upload {
					location, count, err := exports.Upload(ctx)
					if err != nil {
						return fmt.Errorf("upload export: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d users to %s\n", count, location)
					return nil
				}

				var (
					count int
					err   error
				)
				if output != "" {
					count, err = exportToFile(ctx, exports, output)
				} else {
					count, err = exports.Export(ctx, cmd.OutOrStdout())
				}
				if err != nil {
					return fmt.Errorf("export users: %w", err)
				}
				a.logger.Infof("exported %d users", count)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the export to this file instead of stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the export to the configured bucket")
	cmd.MarkFlagsMutuallyExclusive("output", "upload")
	return cmd
}

func exportToFile(ctx context.Context, exports service.ExportService, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	count, err := exports.Export(ctx, f)
	closeErr := f.Close()
	if err != nil {
		return 0, err
	}
	if closeErr != nil {
		return 0, fmt.Errorf("close export file %s: %w", path, closeErr)
	}
	return count, nil
}

func (a *app) listExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-exports",
		Short: "List uploaded user exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.newStorage(ctx, a.cfg, a.logger)
			if err != nil {
				return fmt.Errorf("setup storage: %w", err)
			}

			objects, err := service.NewExportService(nil, store, a.cfg.Export.Bucket, a.cfg.Export.KeyPrefix).ListExports(ctx)
			if err != nil {
				return fmt.Errorf("list exports: %w", err)
			}
			printExports(cmd.OutOrStdout(), objects)
			return nil
		},
	}
}

func printExports(w io.Writer, objects []storage.ObjectInfo) {
	if len(objects) == 0 {
		fmt.Fprintln(w, "No exports found")
		return
	}
	for _, obj := range objects {
		fmt.Fprintf(w, "%s\t%d\n", obj.Key, obj.Size)
	}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Export.Bucket == "" {
		return nil, fmt.Errorf("export bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Export.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Export.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Export.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Debugf("using s3 bucket %s (region %s)", cfg.Export.Bucket, cfg.Export.Region)
	return storage.NewS3Service(client), nil
}
