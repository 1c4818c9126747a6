package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/newthinker/tasi/internal/config"
	"github.com/newthinker/tasi/internal/dashboard"
	"github.com/newthinker/tasi/internal/storage/archive"
	"github.com/newthinker/tasi/internal/view"
)

var (
	renderFormat  string
	renderSymbol  string
	renderArchive bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Load every region once against the backend and print the result",
	Long: `render runs the page start-up loads in a throwaway session and prints the
session state, the notifications and the content of every region.
With --symbol it also opens that stock and loads its indicators.
With --archive the output is also stored in the configured archive.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "yaml", "output format (yaml or json)")
	renderCmd.Flags().StringVarP(&renderSymbol, "symbol", "s", "", "stock to open after start-up")
	renderCmd.Flags().BoolVar(&renderArchive, "archive", false, "store the output in the configured archive")
	rootCmd.AddCommand(renderCmd)
}

type renderNotification struct {
	Type    string `json:"type" yaml:"type"`
	Message string `json:"message" yaml:"message"`
}

type renderOutput struct {
	State         dashboard.State      `json:"state" yaml:"state"`
	Notifications []renderNotification `json:"notifications" yaml:"notifications"`
	Regions       map[string]string    `json:"regions" yaml:"regions"`
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderFormat != "yaml" && renderFormat != "json" {
		return fmt.Errorf("unknown format %q", renderFormat)
	}

	cfg, log, err := setup()
	defer log.Sync()
	if err != nil {
		return err
	}

	deps, err := dashboardDeps(cfg, log, nil)
	if err != nil {
		return err
	}
	ctrl, err := dashboard.NewController("render", deps)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	ctrl.Init(ctx)
	if renderSymbol != "" {
		if _, err := ctrl.OpenStock(ctx, renderSymbol); err != nil {
			return err
		}
		if _, err := ctrl.LoadIndicators(ctx, renderSymbol, dashboard.IndicatorAll); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := writeRender(&buf, renderFormat, snapshot(ctrl)); err != nil {
		return err
	}
	if renderArchive {
		key, err := archiveRender(ctx, cfg.Archive, renderSymbol, renderFormat, buf.Bytes())
		if err != nil {
			return fmt.Errorf("archiving render: %w", err)
		}
		log.Info("render archived", zap.String("key", key))
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

// archiveRender stores data under a snapshot key and returns the key.
func archiveRender(ctx context.Context, cfg config.ArchiveConfig, symbol, format string, data []byte) (string, error) {
	store, err := archive.Open(archive.Config{
		Kind: cfg.Kind,
		Dir:  cfg.Dir,
		S3: archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		},
	})
	if err != nil {
		return "", err
	}
	if store == nil {
		return "", errors.New("no archive configured")
	}

	key := archive.SnapshotKey(time.Now(), symbol, format)
	if err := store.Put(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

func snapshot(ctrl *dashboard.Controller) renderOutput {
	out := renderOutput{
		State:   ctrl.State(),
		Regions: make(map[string]string),
	}
	for _, n := range ctrl.Notifications() {
		out.Notifications = append(out.Notifications, renderNotification{Type: n.Type, Message: n.Message})
	}
	for _, region := range view.RegionIDs {
		if html, err := ctrl.Region(region); err == nil && html != "" {
			out.Regions[region] = string(html)
		}
	}
	return out
}

func writeRender(w io.Writer, format string, out renderOutput) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
