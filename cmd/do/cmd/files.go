package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/filedrop/internal/app"
	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/logger"
	"github.com/templui/filedrop/internal/model"
)

func loadConfig() *config.Config {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "")
	return cfg
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(ctx, a)
}

func FilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List catalog records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				files, err := a.FileService.Files(ctx)
				if err != nil {
					return err
				}
				printFiles(files)
				return nil
			})
		},
	}
}

func VerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report catalog records whose content is missing from storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				missing, err := a.FileService.Verify(ctx)
				if err != nil {
					return err
				}
				if len(missing) == 0 {
					fmt.Println("All files have content.")
					return nil
				}
				printFiles(missing)
				return fmt.Errorf("%d file(s) without content", len(missing))
			})
		},
	}
}

func printFiles(files []*model.File) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tUPLOADED\tSTORAGE")
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			f.ID, f.OriginalName, f.MimeType, f.Size, f.UploadedAt.Format(time.RFC3339), f.StorageName)
	}
	_ = w.Flush()
}
