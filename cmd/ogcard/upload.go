package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/ogcard"
	"github.com/eringen/ogcard/upload"
)

var (
	uploadID     string
	uploadRecord bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Render a card, upload it and print its URL",
	Long: `Renders a card and uploads it as og-{id}-{slug}.png to the configured
storage (disk or http). Without --id the current time in milliseconds is used.
With --record the upload is also stored in the service database.`,
	RunE: runUpload,
}

func init() {
	addCardFlags(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadID, "id", "", "content id used in the filename")
	uploadCmd.Flags().BoolVar(&uploadRecord, "record", false, "record the upload in the database")
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := ogcard.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage == ogcard.StorageHTTP && cfg.StorageEndpoint == "" {
		return errors.New("storage_endpoint is required for http storage")
	}

	r, release, err := ogcard.NewRasterizer(cfg)
	if err != nil {
		return err
	}
	defer release()

	req, style := cardFromFlags(cmd)
	if req.AuthorName == "" {
		req.AuthorName = cfg.DefaultAuthor
	}
	u := upload.New(r, ogcard.NewStorage(cfg), upload.WithLogger(logger))
	rec, ok := u.Upload(cmd.Context(), req, style, uploadID)
	if !ok {
		return errors.New("upload failed")
	}

	if uploadRecord {
		if err := record(cmd.Context(), cfg, rec, uploadID, req.Title); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), rec.URL)
	return nil
}

func record(ctx context.Context, cfg ogcard.SiteConfig, rec upload.Receipt, id, title string) error {
	path := cfg.DatabasePath
	if path == "" {
		path = "data/ogcard.db"
	}
	store, err := ogcard.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.SaveImage(ctx, ogcard.OGImage{
		ContentID: id,
		Filename:  rec.Filename,
		URL:       rec.URL,
		Key:       rec.Key,
		Title:     title,
		Size:      rec.Size,
	})
	return err
}
