package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/mockapi"
	"github.com/newthinker/tasi/internal/mockdata"
)

var mockSeeded bool

var mockapiCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Serve the stock backend API from generated data",
	RunE:  runMockAPI,
}

func init() {
	mockapiCmd.Flags().BoolVar(&mockSeeded, "seeded", true, "start with the stock list initialized")
	rootCmd.AddCommand(mockapiCmd)
}

func runMockAPI(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	defer log.Sync()
	if err != nil {
		return err
	}

	server := mockapi.NewServer(mockapi.Config{
		Host:   cfg.MockAPI.Host,
		Port:   cfg.MockAPI.Port,
		Seeded: mockSeeded,
	}, mockdata.New(time.Now().UnixNano()), log.Named("mockapi"))

	go func() {
		if err := server.Start(); err != nil {
			log.Error("mock backend error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
