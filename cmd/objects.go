package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var putCmd = &cobra.Command{
	Use:   "put <bucket> <key> <file|->",
	Short: "Upload an object",
	Long: `Uploads a file, or stdin with "-". The bytes are stored as-is unless
--encode is set, in which case the file is parsed as JSON and stored with
the configured encoding.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logg, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer logg.Sync()

		bucket, key, path := args[0], args[1], args[2]
		create, _ := cmd.Flags().GetBool("create")
		encode, _ := cmd.Flags().GetBool("encode")

		var (
			reader io.Reader = cmd.InOrStdin()
			size   int64     = -1
		)
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			reader, size = f, info.Size()
		}

		ctx := cmd.Context()
		if encode {
			var value any
			if err := json.NewDecoder(reader).Decode(&value); err != nil {
				return fmt.Errorf("input is not valid JSON: %w", err)
			}
			if create {
				err = client.PutAutoCreate(ctx, bucket, key, value)
			} else {
				err = client.Put(ctx, bucket, key, value)
			}
		} else if create {
			err = client.PutStreamAutoCreate(ctx, bucket, key, reader, size)
		} else {
			err = client.PutStream(ctx, bucket, key, reader, size)
		}
		if err != nil {
			return err
		}

		logg.Info("Object uploaded", zap.String("bucket", bucket), zap.String("key", key))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <bucket> <key>",
	Short: "Download an object",
	Long:  `Prints the decoded object as JSON, or streams the raw bytes with --raw.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logg, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer logg.Sync()

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			rc, err := client.GetStream(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(cmd.OutOrStdout(), rc)
			return err
		}

		value, err := client.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), value)
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <bucket> [prefix]",
	Short: "List objects",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logg, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer logg.Sync()

		bucket, prefix := args[0], ""
		if len(args) == 2 {
			prefix = args[1]
		}
		ctx := cmd.Context()

		if cmd.Flags().Changed("delimiter") {
			delimiter, _ := cmd.Flags().GetString("delimiter")
			prefixes, err := client.ListByDelimiter(ctx, bucket, delimiter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), prefixes)
		}

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			objects, err := client.ListObjectsWithStats(ctx, bucket, prefix)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), objects)
		}

		keys, err := client.ListObjects(ctx, bucket, prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <bucket> [key...]",
	Short: "Delete objects",
	Long:  `Deletes the given keys, or every key under --prefix, in parallel chunks of 1000.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logg, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer logg.Sync()

		bucket, keys := args[0], args[1:]
		prefix, _ := cmd.Flags().GetString("prefix")
		if len(keys) == 0 && prefix == "" {
			return fmt.Errorf("rm needs keys or --prefix")
		}

		ctx := cmd.Context()
		if len(keys) > 0 {
			report, err := client.DeleteObjects(ctx, bucket, keys)
			if report != nil {
				_ = printJSON(cmd.OutOrStdout(), report)
			}
			return err
		}
		report, err := client.DeletePrefix(ctx, bucket, prefix)
		if report != nil {
			_ = printJSON(cmd.OutOrStdout(), report)
		}
		return err
	},
}

var mbCmd = &cobra.Command{
	Use:   "mb <bucket>",
	Short: "Create a bucket if it does not exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logg, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer logg.Sync()

		name, err := client.NormalizeBucket(args[0])
		if err != nil {
			return err
		}
		location, _ := cmd.Flags().GetString("location")
		if err := client.CreateBucket(cmd.Context(), args[0], location); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var rbCmd = &cobra.Command{
	Use:   "rb <bucket>",
	Short: "Delete an empty bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logg, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer logg.Sync()

		return client.DeleteBucket(cmd.Context(), args[0])
	},
}

func init() {
	putCmd.Flags().Bool("create", false, "Create the bucket if it does not exist")
	putCmd.Flags().Bool("encode", false, "Parse the input as JSON and store it with the configured encoding")
	getCmd.Flags().Bool("raw", false, "Write the stored bytes without decoding")
	lsCmd.Flags().Bool("stats", false, "Include size and modification time")
	lsCmd.Flags().String("delimiter", "/", "List common prefixes of the first page instead of keys")
	rmCmd.Flags().String("prefix", "", "Delete every key under this prefix")
	mbCmd.Flags().String("location", "", "Bucket location constraint (defaults to the configured region)")

	RootCmd.AddCommand(putCmd, getCmd, lsCmd, rmCmd, mbCmd, rbCmd)
}
